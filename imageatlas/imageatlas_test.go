package imageatlas

import (
	"testing"

	"github.com/gogpu/vgcanvas/internal/atlaspage"
)

func solidImage(t *testing.T, w, h int) *atlaspage.Page {
	t.Helper()
	buf, err := atlaspage.New(w, h, atlaspage.FormatRGBA8)
	if err != nil {
		t.Fatalf("atlaspage.New: %v", err)
	}
	buf.Fill(255, 0, 0, 255)
	return buf
}

func TestRegisterImagePlacesOnFirstPage(t *testing.T) {
	a := New(64, 2, "test")
	placement, err := a.RegisterImage(solidImage(t, 8, 8), false, 0)
	if err != nil {
		t.Fatalf("RegisterImage: %v", err)
	}
	if placement.Page != 0 {
		t.Errorf("Page = %d, want 0", placement.Page)
	}
	if placement.UVMax.X <= placement.UVMin.X {
		t.Error("expected a non-degenerate UV rect")
	}
	if a.PageCount() != 1 {
		t.Errorf("PageCount = %d, want 1", a.PageCount())
	}
}

func TestRegisterImageSpillsToNewPage(t *testing.T) {
	a := New(8, 2, "test")
	if _, err := a.RegisterImage(solidImage(t, 8, 8), false, 0); err != nil {
		t.Fatalf("first RegisterImage: %v", err)
	}
	second, err := a.RegisterImage(solidImage(t, 8, 8), false, 0)
	if err != nil {
		t.Fatalf("second RegisterImage: %v", err)
	}
	if second.Page != 1 {
		t.Errorf("second Page = %d, want 1 (first page already full)", second.Page)
	}
}

func TestRegisterImageOutOfSpace(t *testing.T) {
	a := New(8, 1, "test")
	if _, err := a.RegisterImage(solidImage(t, 8, 8), false, 0); err != nil {
		t.Fatalf("first RegisterImage: %v", err)
	}
	if _, err := a.RegisterImage(solidImage(t, 8, 8), false, 0); err != ErrOutOfSpace {
		t.Errorf("second RegisterImage err = %v, want ErrOutOfSpace", err)
	}
}

func TestRegisterWrapEligibleTakesOwnPage(t *testing.T) {
	a := New(64, 2, "test")
	plain, err := a.RegisterImage(solidImage(t, 4, 4), false, 0)
	if err != nil {
		t.Fatalf("plain RegisterImage: %v", err)
	}
	wrapped, err := a.RegisterImage(solidImage(t, 4, 4), true, 0)
	if err != nil {
		t.Fatalf("wrap-eligible RegisterImage: %v", err)
	}
	if wrapped.Page == plain.Page {
		t.Error("a wrap-eligible image must not share a page with an existing registration")
	}
	if !wrapped.WrapEligible {
		t.Error("expected WrapEligible to be true on the returned placement")
	}
}

func TestRegisterWrapEligibleTooLargeForPage(t *testing.T) {
	a := New(8, 1, "test")
	if _, err := a.RegisterImage(solidImage(t, 16, 16), true, 0); err != ErrOutOfSpace {
		t.Errorf("err = %v, want ErrOutOfSpace for an oversized wrap-eligible image", err)
	}
}

func TestPagePanicsOnOutOfRange(t *testing.T) {
	a := New(64, 1, "test")
	defer func() {
		if recover() == nil {
			t.Error("expected Page to panic for an unallocated page index")
		}
	}()
	a.Page(0)
}
