package vgcanvas

import "testing"

func TestGeometryBoundsEmptyWhenUntouched(t *testing.T) {
	g := &Geometry{}
	empty := EmptyRect()
	g.BoundsMin, g.BoundsMax = empty.Min, empty.Max
	if !g.Bounds().IsEmpty() {
		t.Error("a geometry with no accumulated bounds should report empty Bounds")
	}
}

func TestGeometryBoundsGlyphOnly(t *testing.T) {
	// EmitGlyphs never appends to Vertices, only Glyphs; Bounds must still
	// reflect the accumulated glyph quad extents, not vertex count.
	g := &Geometry{
		Glyphs:    []RenderGlyph{{LocalQuad: [4]Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}},
		BoundsMin: Vec2{X: 0, Y: 0},
		BoundsMax: Vec2{X: 10, Y: 10},
	}
	b := g.Bounds()
	if b.IsEmpty() {
		t.Fatal("glyph-only geometry must not report empty bounds")
	}
	if b.Width() != 10 || b.Height() != 10 {
		t.Errorf("bounds = %v, want 10x10", b)
	}
}

func TestStyleTableByteForByteDistinctHashBuckets(t *testing.T) {
	table := newStyleTable()
	s1 := SolidStyle(ColorF{R: 1, A: 1})
	s2 := SolidStyle(ColorF{G: 1, A: 1})
	i1 := table.intern(s1)
	i2 := table.intern(s2)
	if i1 == i2 {
		t.Error("distinct colors must not collapse to the same interned index")
	}
}
