// Package color implements gamma-correct sRGB/linear conversion, the one
// piece of color math two independent call sites need: vgcanvas.ColorF's
// paint-parameter premultiplication (spec.md §3 "Premultiplication happens
// when packing into paint parameters") and internal/atlaspage's page
// compositing, where a partially transparent border pixel must blend
// against its neighbor in linear light rather than in the gamma-encoded
// space 8-bit image data is authored in. The distinction matters: the
// original engine's canvas test suite (renderingCanvasTest_ColorSpace.cpp)
// exists specifically to catch blending done in the wrong space.
package color

import "math"

// ToLinear converts an 8-bit sRGB-encoded channel to linear light via a
// precomputed 256-entry table (the sRGB EOTF), avoiding a math.Pow call on
// every atlas-page blit pixel.
func ToLinear(s uint8) float32 {
	return srgbToLinear[s]
}

// FromLinear converts a linear-light float32 in [0,1] back to an 8-bit
// sRGB channel (the sRGB OETF) via a 4096-entry table, clamping out-of-range
// input rather than wrapping.
func FromLinear(l float32) uint8 {
	if l <= 0 {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return linearToSRGB[int(l*linearToSRGBSteps+0.5)]
}

// ToLinearF converts an sRGB channel already held as a float32 in [0,1] —
// as ColorF's gradient/solid-fill factories author it — to linear light,
// using the exact EOTF formula rather than a byte-quantized table.
func ToLinearF(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64((s+0.055)/1.055), 2.4))
}

const linearToSRGBSteps = 4095

var srgbToLinear [256]float32
var linearToSRGB [linearToSRGBSteps + 1]uint8

func init() {
	for i := range srgbToLinear {
		srgbToLinear[i] = ToLinearF(float32(i) / 255)
	}
	for i := range linearToSRGB {
		l := float64(i) / linearToSRGBSteps
		var s float64
		if l <= 0.0031308 {
			s = l * 12.92
		} else {
			s = 1.055*math.Pow(l, 1.0/2.4) - 0.055
		}
		linearToSRGB[i] = clampByte(s*255 + 0.5)
	}
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
