package pathcache

import "testing"

func newTestCache() *Cache {
	return New(0.25, 0.01, 10)
}

func TestFlattenOpenLine(t *testing.T) {
	c := newTestCache()
	c.MoveTo(0, 0)
	c.LineTo(10, 0)
	c.Flatten(1, 4)

	if len(c.Paths) != 1 {
		t.Fatalf("len(Paths) = %d, want 1", len(c.Paths))
	}
	p := c.Paths[0]
	if p.Closed {
		t.Error("an unterminated path should not be closed")
	}
	if p.Count != 2 {
		t.Errorf("Count = %d, want 2", p.Count)
	}
}

func TestFlattenClosedTriangleIsConvex(t *testing.T) {
	c := newTestCache()
	c.MoveTo(0, 0)
	c.LineTo(10, 0)
	c.LineTo(5, 10)
	c.ClosePath()
	c.Flatten(1, 4)

	if len(c.Paths) != 1 {
		t.Fatalf("len(Paths) = %d, want 1", len(c.Paths))
	}
	p := c.Paths[0]
	if !p.Closed {
		t.Error("expected the path to be closed")
	}
	if !p.Convex {
		t.Error("a triangle should be classified convex")
	}
}

func TestRepairWindingReversesAgainstRequest(t *testing.T) {
	c := newTestCache()
	// Clockwise-wound square by construction.
	c.MoveTo(0, 0)
	c.LineTo(0, 10)
	c.LineTo(10, 10)
	c.LineTo(10, 0)
	c.ClosePath()
	c.SetWinding(WindingCCW)
	c.Flatten(1, 4)

	p := c.Paths[0]
	pts := c.Points[p.FirstPoint : p.FirstPoint+p.Count]
	var area float32
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].Pos.X*pts[j].Pos.Y - pts[j].Pos.X*pts[i].Pos.Y
	}
	if area <= 0 {
		t.Error("expected repaired winding to be CCW (positive signed area)")
	}
}

func TestAddPointCoalescesNearDuplicates(t *testing.T) {
	c := New(0.25, 1.0, 10) // minPointDist=1: anything closer than 1px merges
	c.MoveTo(0, 0)
	c.LineTo(0.1, 0.1)
	c.LineTo(10, 0)
	c.Flatten(1, 4)

	p := c.Paths[0]
	if p.Count != 2 {
		t.Errorf("Count = %d, want 2 (the near-duplicate point should coalesce)", p.Count)
	}
}

func TestSubdivideCubicRespectsMaxDepth(t *testing.T) {
	c := New(1e-6, 0, 2) // near-zero tolerance forces maximal subdivision
	c.MoveTo(0, 0)
	c.BezierTo(0, 100, 100, 100, 100, 0)
	c.Flatten(1, 4)

	p := c.Paths[0]
	if p.Count > (1<<2)+2 {
		t.Errorf("Count = %d, exceeded the bound implied by maxDepth=2", p.Count)
	}
}

func TestExpectedFillVertexCount(t *testing.T) {
	c := newTestCache()
	c.MoveTo(0, 0)
	c.LineTo(10, 0)
	c.LineTo(10, 10)
	c.ClosePath()
	c.Flatten(1, 4)

	withoutFringe := c.ExpectedFillVertexCount(false)
	withFringe := c.ExpectedFillVertexCount(true)
	if withoutFringe != c.Paths[0].Count {
		t.Errorf("ExpectedFillVertexCount(false) = %d, want %d", withoutFringe, c.Paths[0].Count)
	}
	if withFringe != withoutFringe*3 {
		t.Errorf("ExpectedFillVertexCount(true) = %d, want 3x the no-fringe count", withFringe)
	}
}

func TestResetClearsState(t *testing.T) {
	c := newTestCache()
	c.MoveTo(0, 0)
	c.LineTo(10, 0)
	c.Flatten(1, 4)
	if len(c.Paths) == 0 {
		t.Fatal("setup: expected flattened output before Reset")
	}

	c.Reset()
	if len(c.Paths) != 0 || len(c.Points) != 0 {
		t.Error("Reset should clear both Paths and Points")
	}
	c.Flatten(1, 4)
	if len(c.Paths) != 0 {
		t.Error("Flatten after Reset with no new commands should produce nothing")
	}
}
