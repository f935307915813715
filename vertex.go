package vgcanvas

// Vertex is the GPU-facing vertex format: position, geometry UV, paint UV,
// an 8-bit RGBA color, and a 16-bit index into a paint parameters table
// (spec.md §3).
type Vertex struct {
	Pos        Vec2
	UV         Vec2
	PaintUV    Vec2
	Color      Color
	ParamIndex uint16
}

// RenderGlyph is a glyph placed by the builder, with its UV and atlas page
// left unresolved until canvas submission time (spec.md §4.5 "Text
// emission").
type RenderGlyph struct {
	GlyphKey        GlyphKey
	LocalQuad       [4]Vec2
	ModulationColor Color
}

// GlyphKey identifies one rasterized glyph instance in the glyph atlas
// (spec.md §4.3: "Keyed by (font, sizePx, glyphIndex, styleFlags)").
type GlyphKey struct {
	Font       FontHandle
	SizePx     float32
	GlyphIndex uint32
	StyleFlags uint32
}
