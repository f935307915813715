package shelfpack

import "testing"

func TestAllocatePacksLeftToRightOnOneShelf(t *testing.T) {
	p := New(100, 100, 0)
	x1, y1, ok := p.Allocate(10, 10)
	if !ok || x1 != 0 || y1 != 0 {
		t.Fatalf("first Allocate = (%d,%d,%v), want (0,0,true)", x1, y1, ok)
	}
	x2, y2, ok := p.Allocate(10, 10)
	if !ok || x2 != 10 || y2 != 0 {
		t.Fatalf("second Allocate = (%d,%d,%v), want (10,0,true)", x2, y2, ok)
	}
}

func TestAllocateStartsNewShelfWhenRowFull(t *testing.T) {
	p := New(15, 100, 0)
	if _, _, ok := p.Allocate(10, 10); !ok {
		t.Fatal("first Allocate should succeed")
	}
	x, y, ok := p.Allocate(10, 10)
	if !ok {
		t.Fatal("second Allocate should succeed on a new shelf")
	}
	if x != 0 || y != 10 {
		t.Errorf("second item = (%d,%d), want (0,10) on a fresh shelf below", x, y)
	}
}

func TestAllocateFailsWhenPageExhausted(t *testing.T) {
	p := New(10, 10, 0)
	if _, _, ok := p.Allocate(10, 10); !ok {
		t.Fatal("first Allocate should fill the page exactly and succeed")
	}
	if _, _, ok := p.Allocate(1, 1); ok {
		t.Error("expected Allocate to fail once the page has no remaining room")
	}
}

func TestAllocateRespectsPadding(t *testing.T) {
	p := New(100, 100, 2)
	p.Allocate(10, 10)
	x, _, ok := p.Allocate(10, 10)
	if !ok {
		t.Fatal("second Allocate should succeed")
	}
	if x != 12 {
		t.Errorf("x = %d, want 12 (first item's width + padding)", x)
	}
}

func TestResetReclaimsSpace(t *testing.T) {
	p := New(20, 20, 0)
	if _, _, ok := p.Allocate(20, 20); !ok {
		t.Fatal("setup: expected the page to fit exactly")
	}
	if _, _, ok := p.Allocate(1, 1); ok {
		t.Fatal("setup: expected the page to be full")
	}

	p.Reset()
	if _, _, ok := p.Allocate(20, 20); !ok {
		t.Error("expected Allocate to succeed again after Reset")
	}
}

func TestUtilizationTracksAllocatedArea(t *testing.T) {
	p := New(100, 100, 0)
	if u := p.Utilization(); u != 0 {
		t.Errorf("initial Utilization = %v, want 0", u)
	}
	p.Allocate(10, 10)
	if u := p.Utilization(); u != 0.01 {
		t.Errorf("Utilization = %v, want 0.01 (100 / 10000)", u)
	}
}
