package vgcanvas

import "github.com/gogpu/vgcanvas/font"

// FontFaceAdapter wraps a *font.Face — the go-text/typesetting-backed
// reference Font implementation in package font — as a vgcanvas.Font, so
// Storage.RegisterFont can drive glyph atlas misses through it without
// the font package needing to import this one.
type FontFaceAdapter struct {
	Face *font.Face
}

// Rasterize implements Font.
func (a FontFaceAdapter) Rasterize(sizePx float32, glyphIndex uint32, styleFlags uint32) (alpha []byte, width, height int, bearingX, bearingY, advance float32, ok bool) {
	g, ok := a.Face.Rasterize(sizePx, glyphIndex, styleFlags)
	if !ok {
		return nil, 0, 0, 0, 0, 0, false
	}
	return g.Alpha, g.Width, g.Height, g.BearingX, g.BearingY, g.Advance, true
}

// ShapeText implements Font.
func (a FontFaceAdapter) ShapeText(sizePx float32, text string) []TextGlyph {
	glyphs := a.Face.ShapeText(sizePx, text)
	if len(glyphs) == 0 {
		return nil
	}
	out := make([]TextGlyph, len(glyphs))
	for i, g := range glyphs {
		out[i] = TextGlyph{GlyphIndex: g.GlyphIndex, X: g.X, Y: g.Y}
	}
	return out
}
