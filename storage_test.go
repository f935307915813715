package vgcanvas

import (
	"testing"

	"github.com/gogpu/vgcanvas/glyphatlas"
)

func TestStorageRegisterImageRGBA8(t *testing.T) {
	s := NewStorage(DefaultConfig())
	src := ImageSource{
		Width: 4, Height: 4, Format: ImageFormatRGBA8,
		Pixels: make([]byte, 4*4*4),
	}
	ref, err := s.RegisterImage(src, false)
	if err != nil {
		t.Fatalf("RegisterImage: %v", err)
	}
	if ref.UVMin == ref.UVMax {
		t.Error("expected a non-degenerate UV rect for a registered image")
	}
}

func TestStorageRegisterImageRGB8Expansion(t *testing.T) {
	s := NewStorage(DefaultConfig())
	px := make([]byte, 2*2*3)
	for i := range px {
		px[i] = 200
	}
	src := ImageSource{Width: 2, Height: 2, Format: ImageFormatRGB8, Pixels: px}

	ref, err := s.RegisterImage(src, false)
	if err != nil {
		t.Fatalf("RegisterImage: %v", err)
	}
	if ref.Page < 0 {
		t.Error("expected a valid atlas page for an RGB8 image")
	}
}

func TestStorageRegisterFontAndRasterize(t *testing.T) {
	s := NewStorage(DefaultConfig())
	s.RegisterFont("body", fakeFont{})

	raster := fontRasterizer{s}
	buf, bx, by, ok := raster.Rasterize(glyphatlas.Key{Font: "body", SizePx: 16, GlyphIndex: 1})
	if !ok {
		t.Fatal("expected Rasterize to succeed for a registered font")
	}
	if buf.Width() != 8 || buf.Height() != 8 {
		t.Errorf("glyph buffer = %dx%d, want 8x8", buf.Width(), buf.Height())
	}
	_ = bx
	_ = by
}

func TestStorageRasterizeUnregisteredFontFails(t *testing.T) {
	s := NewStorage(DefaultConfig())
	raster := fontRasterizer{s}
	_, _, _, ok := raster.Rasterize(glyphatlas.Key{Font: "missing", SizePx: 16, GlyphIndex: 1})
	if ok {
		t.Error("expected Rasterize to fail for an unregistered font handle")
	}
}

func TestStorageConditionalRebuildNoChangeInitially(t *testing.T) {
	s := NewStorage(DefaultConfig())
	version, rebuilt := s.ConditionalRebuild(s.glyphAtlas.Version())
	if rebuilt {
		t.Error("ConditionalRebuild should report false when the caller's version is already current")
	}
	if version != s.glyphAtlas.Version() {
		t.Error("ConditionalRebuild should report the atlas's current version")
	}
}

func TestStorageBakedCacheStats(t *testing.T) {
	s := NewStorage(DefaultConfig())
	geom := buildFilledRect(t, 0, 0, 10, 10, SolidStyle(ColorF{A: 1}))
	s.Bake(geom, Identity(), 1)

	stats := s.BakedCacheStats()
	if stats.Len == 0 {
		t.Error("expected the baked cache to report a non-zero size after a Bake")
	}
}
