package vgcanvas

import (
	"testing"

	"github.com/gogpu/vgcanvas/glyphatlas"
	"github.com/gogpu/vgcanvas/internal/atlaspage"
)

// fakeGlyphRasterizer returns a small fixed-size opaque glyph for every key,
// so glyph-emission tests don't depend on a real font.
type fakeGlyphRasterizer struct{ calls int }

func (f *fakeGlyphRasterizer) Rasterize(key glyphatlas.Key) (*atlaspage.Page, float32, float32, bool) {
	f.calls++
	buf, err := atlaspage.New(8, 8, atlaspage.FormatGray8)
	if err != nil {
		return nil, 0, 0, false
	}
	buf.Fill(255, 255, 255, 255)
	return buf, 0, 0, true
}

func buildFilledRect(t *testing.T, x, y, w, h float32, style RenderStyle) *Geometry {
	t.Helper()
	b := NewGeometryBuilder(DefaultConfig())
	b.State().FillStyle = style
	b.Rect(x, y, w, h)
	b.Fill()
	return b.Build()
}

func TestCanvasPlaceFillRectEmitsBatch(t *testing.T) {
	c := NewCanvas(200, 200, nil, nil, Vec2{}, 1)
	geom := buildFilledRect(t, 10, 10, 50, 50, SolidStyle(ColorF{R: 1, A: 1}))

	c.Place(geom)

	if c.CulledCount() != 0 {
		t.Errorf("CulledCount = %d, want 0", c.CulledCount())
	}
	if len(c.Batches) == 0 {
		t.Fatal("expected at least one batch to be emitted")
	}
	if len(c.Vertices) == 0 {
		t.Fatal("expected vertices to be emitted")
	}
	if len(c.Params) == 0 {
		t.Fatal("expected a paint parameters row to be packed")
	}
}

func TestCanvasSetPixelPlacementRetargetsSubsequentPlace(t *testing.T) {
	c := NewCanvas(200, 200, nil, nil, Vec2{}, 1)
	geom := buildFilledRect(t, 0, 0, 10, 10, SolidStyle(ColorF{A: 1}))
	c.Place(geom)
	before := c.Vertices[0].Pos

	c.Reset()
	c.SetPixelPlacement(Vec2{X: 100, Y: 0}, 1)
	c.Place(geom)
	after := c.Vertices[0].Pos

	if after.X == before.X {
		t.Errorf("vertex X after SetPixelPlacement = %v, want shifted from %v", after.X, before.X)
	}
}

func TestCanvasCullsOutsideScissor(t *testing.T) {
	c := NewCanvas(200, 200, nil, nil, Vec2{}, 1)
	c.PushScissor(Rect{Min: Vec2{X: 100, Y: 100}, Max: Vec2{X: 150, Y: 150}})

	geom := buildFilledRect(t, 0, 0, 10, 10, SolidStyle(ColorF{A: 1}))
	c.Place(geom)

	if c.CulledCount() != 1 {
		t.Errorf("CulledCount = %d, want 1", c.CulledCount())
	}
	if len(c.Batches) != 0 {
		t.Errorf("expected no batches for fully culled geometry, got %d", len(c.Batches))
	}
}

func TestCanvasEmptyScissorSuppressesEmission(t *testing.T) {
	c := NewCanvas(200, 200, nil, nil, Vec2{}, 1)
	// A scissor with no overlap against the current (full-surface) scissor
	// collapses the frame to empty.
	c.PushScissor(Rect{Min: Vec2{X: 1000, Y: 1000}, Max: Vec2{X: 1001, Y: 1001}})

	geom := buildFilledRect(t, 0, 0, 10, 10, SolidStyle(ColorF{A: 1}))
	c.Place(geom)

	if len(c.Batches) != 0 {
		t.Errorf("expected emission to be suppressed under an empty scissor, got %d batches", len(c.Batches))
	}
}

func TestCanvasPopScissorRestoresParent(t *testing.T) {
	c := NewCanvas(200, 200, nil, nil, Vec2{}, 1)
	c.PushScissor(Rect{Min: Vec2{X: 0, Y: 0}, Max: Vec2{X: 10, Y: 10}})
	c.PopScissor()

	geom := buildFilledRect(t, 50, 50, 10, 10, SolidStyle(ColorF{A: 1}))
	c.Place(geom)

	if len(c.Batches) == 0 {
		t.Error("expected geometry outside the popped scissor to be visible again")
	}
}

func TestCanvasPaintInterningReusesRow(t *testing.T) {
	c := NewCanvas(200, 200, nil, nil, Vec2{}, 1)

	b := NewGeometryBuilder(DefaultConfig())
	style := SolidStyle(ColorF{R: 1, A: 1})
	b.State().FillStyle = style
	b.Rect(0, 0, 10, 10)
	b.Fill()
	b.Rect(20, 20, 10, 10)
	b.Fill()
	geom := b.Build()

	if len(geom.Groups) != 2 {
		t.Fatalf("setup: expected 2 groups, got %d", len(geom.Groups))
	}

	c.Place(geom)
	if len(c.Params) != 1 {
		t.Errorf("len(Params) = %d, want 1 (identical style across groups should intern once)", len(c.Params))
	}
	if len(c.Batches) != 2 {
		t.Errorf("len(Batches) = %d, want 2 (one batch per group)", len(c.Batches))
	}
}

func TestCanvasReset(t *testing.T) {
	c := NewCanvas(200, 200, nil, nil, Vec2{}, 1)
	geom := buildFilledRect(t, 0, 0, 10, 10, SolidStyle(ColorF{A: 1}))
	c.Place(geom)
	if len(c.Batches) == 0 {
		t.Fatal("setup: expected a batch before Reset")
	}

	c.Reset()
	if len(c.Batches) != 0 || len(c.Vertices) != 0 || len(c.Params) != 0 {
		t.Error("Reset should clear all accumulated output")
	}
	if c.CulledCount() != 0 {
		t.Error("Reset should clear the culled counter")
	}
}

func TestCanvasGlyphEmission(t *testing.T) {
	raster := &fakeGlyphRasterizer{}
	atlas := glyphatlas.New(256, 2, 64)
	c := NewCanvas(200, 200, atlas, raster, Vec2{}, 1)

	b := NewGeometryBuilder(DefaultConfig())
	b.EmitGlyphs([]ShapedGlyph{{GlyphIndex: 1, X: 0, Y: 0, Width: 8, Height: 8}}, FontHandle("test"), 16, 0, White)
	geom := b.Build()

	c.Place(geom)

	if raster.calls == 0 {
		t.Error("expected the glyph rasterizer to be invoked for an uncached glyph")
	}
	if len(c.Batches) == 0 {
		t.Fatal("expected a glyph batch to be flushed")
	}
	last := c.Batches[len(c.Batches)-1]
	if last.Kind != BatchConvexFill || last.BlendOp != BlendSourceOver {
		t.Errorf("glyph batch = %+v, want ConvexFill/SourceOver", last)
	}
}

func TestCanvasPlaceBuilderDoesNotResetBuilder(t *testing.T) {
	c := NewCanvas(200, 200, nil, nil, Vec2{}, 1)
	b := NewGeometryBuilder(DefaultConfig())
	b.State().FillStyle = SolidStyle(ColorF{A: 1})
	b.Rect(0, 0, 10, 10)
	b.Fill()

	c.PlaceBuilder(b)
	if len(c.Batches) == 0 {
		t.Fatal("expected PlaceBuilder to emit a batch")
	}

	// The builder must still hold its accumulated shape afterward.
	after := b.Build()
	if len(after.Groups) != 1 {
		t.Errorf("len(after.Groups) = %d, want 1 (PlaceBuilder must not reset the builder)", len(after.Groups))
	}
}
