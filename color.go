package vgcanvas

import "github.com/gogpu/vgcanvas/internal/color"

// Color is an 8-bit-per-channel RGBA color, non-premultiplied. This is the
// representation stored on Vertex and in RenderGlyph.ModulationColor.
type Color struct {
	R, G, B, A uint8
}

// ColorF is a float32-per-channel RGBA color in [0,1], used by paint
// factories (gradients, solid fills) where sub-8-bit precision matters
// before it is packed and premultiplied into a paint parameters row.
type ColorF struct {
	R, G, B, A float32
}

// RGBA constructs a Color from 8-bit components.
func RGBA(r, g, b, a uint8) Color { return Color{r, g, b, a} }

// RGBAF constructs a Color from float32 components in [0,1], clamping out
// of range input.
func RGBAF(r, g, b, a float32) Color {
	return Color{
		R: floatToU8(r),
		G: floatToU8(g),
		B: floatToU8(b),
		A: floatToU8(a),
	}
}

func floatToU8(v float32) uint8 {
	v = clampF32(v, 0, 1)
	return uint8(v*255 + 0.5)
}

// ToColorF converts to float32 components in [0,1], a plain scale with no
// gamma conversion — Color is already the representation stored on every
// vertex, so this changes precision only, not color space.
func (c Color) ToColorF() ColorF {
	return ColorF{
		R: float32(c.R) / 255,
		G: float32(c.G) / 255,
		B: float32(c.B) / 255,
		A: float32(c.A) / 255,
	}
}

// Premultiplied converts this sRGB-encoded color to linear light and
// multiplies RGB by alpha, the form spec.md §3 requires when packing a
// RenderStyle's inner/outer colors into a paint parameters row (spec.md
// §4.6): GPU blending is correct only in linear space, not the
// gamma-encoded space gradient/solid-fill factories author colors in
// (grounded on the original engine's color-space regression test,
// renderingCanvasTest_ColorSpace.cpp). Alpha is already linear and passes
// through unconverted. Premultiplication never mutates the source color.
func (c ColorF) Premultiplied() ColorF {
	return ColorF{
		R: color.ToLinearF(c.R) * c.A,
		G: color.ToLinearF(c.G) * c.A,
		B: color.ToLinearF(c.B) * c.A,
		A: c.A,
	}
}

// Lerp linearly interpolates between two float colors by t in [0,1].
func (c ColorF) Lerp(o ColorF, t float32) ColorF {
	return ColorF{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

// MulAlpha returns the color with alpha scaled by a — used to apply the
// canvas's globalAlpha multiplier to glyph modulation colors (spec.md
// §4.6); paint parameter rows scale their ColorF alpha directly.
func (c Color) MulAlpha(a float32) Color {
	return Color{
		R: c.R,
		G: c.G,
		B: c.B,
		A: floatToU8(float32(c.A)/255*clampF32(a, 0, 1)),
	}
}

// Common colors used by tests and callers that don't build their own
// palette.
var (
	White       = Color{255, 255, 255, 255}
	Black       = Color{0, 0, 0, 255}
	Transparent = Color{0, 0, 0, 0}
)
