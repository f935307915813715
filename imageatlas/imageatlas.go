// Package imageatlas packs user-supplied images into a fixed set of
// fixed-size pages (spec.md §4.3, component C3). It is deliberately
// independent of the root vgcanvas package (no import of it) so that
// vgcanvas can hold an Atlas without an import cycle; callers convert
// Placement into vgcanvas.ImageRef at the call site (see storage.go).
package imageatlas

import (
	"errors"
	"sync"

	"github.com/gogpu/vgcanvas/internal/atlaspage"
	"github.com/gogpu/vgcanvas/internal/shelfpack"
)

// ErrOutOfSpace is returned when no page has room for a registration, and
// no free page slot remains to allocate a new one (spec.md §4.3
// "Failure modes").
var ErrOutOfSpace = errors.New("imageatlas: out of atlas space")

// UV is a normalized or pixel-space 2D coordinate, kept local to avoid
// depending on the root package's Vec2.
type UV struct{ X, Y float32 }

// Placement is the result of a successful registration: where the image
// landed and whether it may be sampled with wrap addressing.
type Placement struct {
	Page         int
	UVMin, UVMax UV
	WrapEligible bool
}

type page struct {
	buf         *atlaspage.Page
	packer      *shelfpack.Packer
	wrapClaimed bool // true once a wrap-eligible image has taken this page exclusively
}

// Atlas is a fixed page count x pageSize image atlas (spec.md §4.3
// "Image atlas"). Registration takes an atlas-wide exclusive lock;
// pages are never resized or moved once created (spec.md §5 "Atlases
// are shared (read-mostly)... Registration... takes an atlas-wide
// exclusive lock").
type Atlas struct {
	mu        sync.Mutex
	pageSize  int
	pageCount int
	pages     []*page
	debugName string
}

// New creates an Atlas with up to pageCount pages of pageSize x pageSize
// pixels, allocated lazily on first use.
func New(pageSize, pageCount int, debugName string) *Atlas {
	return &Atlas{
		pageSize:  pageSize,
		pageCount: pageCount,
		debugName: debugName,
	}
}

// RegisterImage copies pixels into a free rectangle on some page and
// returns its placement. Wrap-eligible images are placed alone on their
// own page (spec.md §4.3: "Wrap-eligible images must be placed in their
// own page... or rejected if no such page is available").
func (a *Atlas) RegisterImage(pixels *atlaspage.Page, wrapEligible bool, borderPixels int) (Placement, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	w, h := pixels.Bounds()

	if wrapEligible {
		return a.registerWrapEligibleLocked(pixels, w, h, borderPixels)
	}
	return a.registerLocked(pixels, w, h, borderPixels)
}

func (a *Atlas) registerLocked(pixels *atlaspage.Page, w, h, border int) (Placement, error) {
	for i, pg := range a.pages {
		if pg.wrapClaimed {
			continue
		}
		if x, y, ok := pg.packer.Allocate(w, h); ok {
			placement, err := a.blit(pg, pixels, x, y, w, h, border, false)
			placement.Page = i
			return placement, err
		}
	}
	pg, pageIdx, err := a.addPageLocked()
	if err != nil {
		return Placement{}, err
	}
	x, y, ok := pg.packer.Allocate(w, h)
	if !ok {
		return Placement{}, ErrOutOfSpace
	}
	placement, err := a.blit(pg, pixels, x, y, w, h, border, false)
	if err != nil {
		return Placement{}, err
	}
	placement.Page = pageIdx
	return placement, nil
}

func (a *Atlas) registerWrapEligibleLocked(pixels *atlaspage.Page, w, h, border int) (Placement, error) {
	if w > a.pageSize || h > a.pageSize {
		return Placement{}, ErrOutOfSpace
	}
	for i, pg := range a.pages {
		if pg.wrapClaimed || pg.packer.Utilization() > 0 {
			continue
		}
		pg.wrapClaimed = true
		placement, err := a.blit(pg, pixels, 0, 0, w, h, border, true)
		if err != nil {
			return Placement{}, err
		}
		placement.Page = i
		return placement, nil
	}
	pg, pageIdx, err := a.addPageLocked()
	if err != nil {
		return Placement{}, err
	}
	pg.wrapClaimed = true
	placement, err := a.blit(pg, pixels, 0, 0, w, h, border, true)
	if err != nil {
		return Placement{}, err
	}
	placement.Page = pageIdx
	return placement, nil
}

func (a *Atlas) addPageLocked() (*page, int, error) {
	if len(a.pages) >= a.pageCount {
		return nil, 0, ErrOutOfSpace
	}
	buf, err := atlaspage.New(a.pageSize, a.pageSize, atlaspage.FormatRGBA8)
	if err != nil {
		return nil, 0, err
	}
	pg := &page{buf: buf, packer: shelfpack.New(a.pageSize, a.pageSize, 1)}
	a.pages = append(a.pages, pg)
	return pg, len(a.pages) - 1, nil
}

func (a *Atlas) blit(pg *page, src *atlaspage.Page, x, y, w, h, border int, wrapEligible bool) (Placement, error) {
	atlaspage.Blit(pg.buf, src, atlaspage.Rect{X: x, Y: y, Width: w, Height: h})
	inv := 1 / float32(a.pageSize)
	return Placement{
		UVMin:        UV{X: float32(x) * inv, Y: float32(y) * inv},
		UVMax:        UV{X: float32(x+w) * inv, Y: float32(y+h) * inv},
		WrapEligible: wrapEligible,
	}, nil
}

// Page returns the backing pixel buffer for a page index, for renderer
// upload. Panics on an out-of-range index, matching the teacher's
// fail-fast convention for programmer errors on internal arena access.
func (a *Atlas) Page(index int) *atlaspage.Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pages[index].buf
}

// PageCount returns the number of pages allocated so far.
func (a *Atlas) PageCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pages)
}
