package vgcanvas

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// PaintKind distinguishes the shading model a RenderStyle encodes.
type PaintKind uint8

const (
	PaintSolid PaintKind = iota
	PaintLinearGradient
	PaintBoxGradient
	PaintRadialGradient
	PaintImagePattern
)

// WrapMode controls how a pattern or gradient samples beyond its defined
// extent.
type WrapMode uint8

const (
	WrapPad WrapMode = iota
	WrapRepeat
	WrapMirror
)

// ImageRef is a borrowed handle into an image atlas (see package
// imageatlas). It stays valid until the atlas rebuilds (spec.md §3
// "Lifecycles").
type ImageRef struct {
	AtlasVersion uint32
	Page         int32
	UVMin, UVMax Vec2
	WrapEligible bool
}

// RenderStyle is the paint value type spec.md §3/§4.2 describes: the single
// source of color for a fill or stroke, independent of the geometry it
// shades. It is small, copied freely, and interned into a Geometry's style
// table by its content Hash.
type RenderStyle struct {
	Kind PaintKind

	// UV transform: maps world-space position to gradient/pattern
	// parameter space.
	UVTransform    Transform2D
	NeedsTransform bool

	Base   Vec2 // box-gradient origin / pattern origin
	Extent Vec2 // box-gradient size / pattern size

	UVMin, UVMax Vec2 // UV rect within the referenced image, or [0,1] default

	Feather float32
	Radius  float32

	InnerColor, OuterColor ColorF

	WrapU, WrapV WrapMode
	CustomUV     bool

	Image *ImageRef // nil unless Kind == PaintImagePattern

	Hash uint64
}

// SolidStyle returns a flat-color paint.
func SolidStyle(c ColorF) RenderStyle {
	s := RenderStyle{
		Kind:        PaintSolid,
		UVTransform: Identity(),
		InnerColor:  c,
		OuterColor:  c,
	}
	s.recomputeHash()
	return s
}

// LinearGradientStyle returns a paint that transitions from innerColor at
// (sx,sy) to outerColor at (ex,ey) along the line between the two points.
// Grounded on the teacher's LinearGradientBrush, generalized to spec.md's
// flat RenderStyle: the gradient direction and length are baked into
// UVTransform so the shader reduces sampling to a single 1D lookup along
// the transformed x axis.
func LinearGradientStyle(sx, sy, ex, ey float32, inner, outer ColorF) RenderStyle {
	dx, dy := ex-sx, ey-sy
	length := Vec2{dx, dy}.Length()
	if length < 1e-6 {
		dx, dy, length = 0, 1, 1
	}
	ux, uy := dx/length, dy/length

	// World-to-gradient-space: translate origin to start, rotate so the
	// gradient axis maps to local x, scale so local x in [0,length] spans
	// the full transition.
	xform := NewTransform(ux, uy, -(ux*sx + uy*sy), -uy, ux, -(-uy*sx + ux*sy))

	s := RenderStyle{
		Kind:           PaintLinearGradient,
		UVTransform:    xform,
		NeedsTransform: true,
		Extent:         Vec2{X: length, Y: length},
		InnerColor:     inner,
		OuterColor:     outer,
	}
	s.recomputeHash()
	return s
}

// BoxGradientStyle returns a rounded-rectangle box gradient: inner color
// fills the rect (inset by feather) and fades to outer color at the edges.
// Grounded on NanoVG-style box gradients the teacher's gradient factories
// mirror conceptually (feather/radius fields exist for exactly this case).
func BoxGradientStyle(x, y, w, h, radius, feather float32, inner, outer ColorF) RenderStyle {
	s := RenderStyle{
		Kind:        PaintBoxGradient,
		UVTransform: Translation(-(x + w*0.5), -(y + h*0.5)),
		Base:        Vec2{X: x, Y: y},
		Extent:      Vec2{X: w * 0.5, Y: h * 0.5},
		Radius:      radius,
		Feather:     maxF32(1.0, feather),
		InnerColor:  inner,
		OuterColor:  outer,
	}
	s.recomputeHash()
	return s
}

// RadialGradientStyle returns a paint that transitions from innerColor at
// innerRadius to outerColor at outerRadius around (cx,cy).
func RadialGradientStyle(cx, cy, innerRadius, outerRadius float32, inner, outer ColorF) RenderStyle {
	s := RenderStyle{
		Kind:        PaintRadialGradient,
		UVTransform: Translation(-cx, -cy),
		Radius:      (innerRadius + outerRadius) * 0.5,
		Feather:     maxF32(1.0, outerRadius-innerRadius),
		InnerColor:  inner,
		OuterColor:  outer,
	}
	s.recomputeHash()
	return s
}

// ImagePatternSettings configures ImagePatternStyle beyond the atlas
// reference itself (spec.md §4.2).
type ImagePatternSettings struct {
	Angle                  float64
	OffsetX, OffsetY       float32
	ScaleX, ScaleY         float32
	PivotX, PivotY         float32
	WrapU, WrapV           WrapMode
	Alpha                  float32
	SubRectMin, SubRectMax Vec2
	HasSubRect             bool
}

// ImagePatternStyle returns a paint that samples from an atlas-resident
// image. The UV transform maps world space to the image's local
// [0,width]x[0,height] space, honoring angle/offset/scale/pivot exactly as
// spec.md §4.2 lists them.
func ImagePatternStyle(img *ImageRef, imgWidth, imgHeight float32, settings ImagePatternSettings) RenderStyle {
	sx := settings.ScaleX
	if sx == 0 {
		sx = 1
	}
	sy := settings.ScaleY
	if sy == 0 {
		sy = 1
	}

	// Build transform: pivot -> rotate -> scale -> translate to offset,
	// then invert so sampling at paintUV maps back into image space.
	toLocal := Translation(settings.PivotX, settings.PivotY).
		Multiply(RotationTransform(settings.Angle)).
		Multiply(ScaleTransform(sx, sy)).
		Multiply(Translation(-settings.PivotX, -settings.PivotY)).
		Multiply(Translation(settings.OffsetX, settings.OffsetY))

	inv, ok := toLocal.Inverse()
	if !ok {
		inv = Identity()
	}

	uvMin, uvMax := Vec2{0, 0}, Vec2{X: imgWidth, Y: imgHeight}
	customUV := false
	if settings.HasSubRect {
		uvMin, uvMax = settings.SubRectMin, settings.SubRectMax
		customUV = true
	}

	alpha := settings.Alpha
	if alpha == 0 {
		alpha = 1
	}

	s := RenderStyle{
		Kind:           PaintImagePattern,
		UVTransform:    inv,
		NeedsTransform: true,
		Extent:         Vec2{X: imgWidth, Y: imgHeight},
		UVMin:          uvMin,
		UVMax:          uvMax,
		WrapU:          settings.WrapU,
		WrapV:          settings.WrapV,
		CustomUV:       customUV,
		InnerColor:     ColorF{1, 1, 1, alpha},
		OuterColor:     ColorF{1, 1, 1, alpha},
		Image:          img,
	}
	s.recomputeHash()
	return s
}

// recomputeHash must be called after any field mutation (spec.md §4.2).
// Equality between two styles is content equality; Hash is only the
// interning key and is never relied on alone (spec.md §9 "paint hash
// collisions" — equality-on-hit still disambiguates).
func (s *RenderStyle) recomputeHash() {
	h := fnv.New64a()
	var buf [8]byte
	writeF32 := func(v float32) {
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(v))
		_, _ = h.Write(buf[:4])
	}
	writeU8 := func(v uint8) { _, _ = h.Write([]byte{v}) }

	writeU8(uint8(s.Kind))
	writeF32(s.UVTransform.A)
	writeF32(s.UVTransform.B)
	writeF32(s.UVTransform.C)
	writeF32(s.UVTransform.D)
	writeF32(s.UVTransform.E)
	writeF32(s.UVTransform.F)
	writeF32(s.Base.X)
	writeF32(s.Base.Y)
	writeF32(s.Extent.X)
	writeF32(s.Extent.Y)
	writeF32(s.UVMin.X)
	writeF32(s.UVMin.Y)
	writeF32(s.UVMax.X)
	writeF32(s.UVMax.Y)
	writeF32(s.Feather)
	writeF32(s.Radius)
	writeF32(s.InnerColor.R)
	writeF32(s.InnerColor.G)
	writeF32(s.InnerColor.B)
	writeF32(s.InnerColor.A)
	writeF32(s.OuterColor.R)
	writeF32(s.OuterColor.G)
	writeF32(s.OuterColor.B)
	writeF32(s.OuterColor.A)
	writeU8(uint8(s.WrapU))
	writeU8(uint8(s.WrapV))
	if s.CustomUV {
		writeU8(1)
	} else {
		writeU8(0)
	}
	if s.Image != nil {
		writeU8(1)
		writeF32(s.Image.UVMin.X)
		writeF32(s.Image.UVMin.Y)
		writeF32(s.Image.UVMax.X)
		writeF32(s.Image.UVMax.Y)
		binary.LittleEndian.PutUint64(buf[:8], uint64(s.Image.Page))
		_, _ = h.Write(buf[:8])
	} else {
		writeU8(0)
	}

	s.Hash = h.Sum64()
}

// Equal reports content equality between two styles (spec.md §3: "Two
// styles compare equal iff their payloads match").
func (s RenderStyle) Equal(o RenderStyle) bool {
	return s.Hash == o.Hash &&
		s.Kind == o.Kind &&
		transformCoeffsEqual(s.UVTransform, o.UVTransform) &&
		s.Base == o.Base &&
		s.Extent == o.Extent &&
		s.UVMin == o.UVMin &&
		s.UVMax == o.UVMax &&
		s.Feather == o.Feather &&
		s.Radius == o.Radius &&
		s.InnerColor == o.InnerColor &&
		s.OuterColor == o.OuterColor &&
		s.WrapU == o.WrapU &&
		s.WrapV == o.WrapV &&
		s.CustomUV == o.CustomUV &&
		imageRefEqual(s.Image, o.Image)
}

// transformCoeffsEqual compares only the affine coefficients, ignoring the
// cached class/inverse fields: two transforms built via different call
// paths (one with a cached inverse, one without) must still compare equal
// if their coefficients match, since Transform2D's class/invValid are a
// hot-path optimization, not part of its value (spec.md §9).
func transformCoeffsEqual(a, b Transform2D) bool {
	return a.A == b.A && a.B == b.B && a.C == b.C &&
		a.D == b.D && a.E == b.E && a.F == b.F
}

func imageRefEqual(a, b *ImageRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
