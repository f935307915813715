// Package glyphatlas packs rasterized glyph bitmaps into a set of pages
// keyed by (font, sizePx, glyphIndex, styleFlags) (spec.md §4.3
// "Glyph atlas", component C4). Independent of the root vgcanvas
// package to avoid an import cycle with storage.go; callers convert Key
// from vgcanvas.GlyphKey at the call site.
package glyphatlas

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gogpu/vgcanvas/internal/atlaspage"
	"github.com/gogpu/vgcanvas/internal/shelfpack"
)

// Key identifies one rasterized glyph instance.
type Key struct {
	Font       string
	SizePx     float32
	GlyphIndex uint32
	StyleFlags uint32
}

// UV is a normalized 2D coordinate local to this package.
type UV struct{ X, Y float32 }

// Placement is a resolved glyph location plus the metrics needed to
// position its quad. A zero-value Placement (Width==0) means the glyph
// rasterized blank or failed catastrophically (spec.md §4.3 "Failure
// modes": "the atlas returns a zero-size placement and the glyph draws
// as blank").
type Placement struct {
	Page               int
	UVMin, UVMax       UV
	Width, Height      float32
	BearingX, BearingY float32
}

// Rasterizer rasterizes one glyph to an alpha-only bitmap plus its
// baseline bearing, matching the Font interface's rasterize operation
// (spec.md §6).
type Rasterizer interface {
	Rasterize(key Key) (pixels *atlaspage.Page, bearingX, bearingY float32, ok bool)
}

type page struct {
	buf    *atlaspage.Page
	packer *shelfpack.Packer
}

// Atlas is a multi-page LRU-evicted glyph cache (spec.md §4.3, §5 "two
// phase update").
type Atlas struct {
	mu       sync.RWMutex
	pageSize int
	maxPages int
	pages    []*page
	entries  *lru.Cache[Key, Placement]
	version  uint32
}

// New creates an Atlas with up to maxPages pages of pageSize x pageSize,
// holding at most capacity resident glyph entries before the
// least-recently-used ones are evicted.
func New(pageSize, maxPages, capacity int) *Atlas {
	c, _ := lru.New[Key, Placement](capacity)
	return &Atlas{pageSize: pageSize, maxPages: maxPages, entries: c}
}

// Version returns the current atlas version. Any cached UV resolution
// taken before this value changes must be re-resolved (spec.md §4.3
// "Version discipline").
func (a *Atlas) Version() uint32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.version
}

// BeginUpdate reports whether callerVersion is stale against the
// atlas's current version, and if so acquires the update lock (spec.md
// §5: "beginUpdate(version_in_out) returns true if the caller's cached
// version is stale and acquires the update lock"). The caller must call
// EndUpdate exactly once after BeginUpdate returns true.
func (a *Atlas) BeginUpdate(callerVersion uint32) bool {
	a.mu.RLock()
	stale := callerVersion != a.version
	a.mu.RUnlock()
	if !stale {
		return false
	}
	a.mu.Lock()
	return true
}

// EndUpdate releases the update lock acquired by a stale BeginUpdate.
func (a *Atlas) EndUpdate() {
	a.mu.Unlock()
}

// Lookup resolves key to a Placement, rasterizing via raster on a miss.
// Returns the placement and the atlas version at the time of
// resolution. Never fails from the caller's perspective: catastrophic
// rasterization failure yields a blank zero-size Placement (spec.md
// §4.3 "Failure modes").
func (a *Atlas) Lookup(key Key, raster Rasterizer) (Placement, uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if p, ok := a.entries.Get(key); ok {
		return p, a.version
	}

	pixels, bx, by, ok := raster.Rasterize(key)
	if !ok || pixels == nil {
		blank := Placement{}
		a.entries.Add(key, blank)
		return blank, a.version
	}

	w, h := pixels.Bounds()
	placement, allocated := a.place(pixels, w, h)
	if !allocated {
		a.rebuildLocked()
		placement, allocated = a.place(pixels, w, h)
		if !allocated {
			// Catastrophic: even a freshly cleared atlas has no room for
			// this glyph (larger than a page). Draw blank rather than fail.
			blank := Placement{}
			a.entries.Add(key, blank)
			return blank, a.version
		}
	}
	placement.BearingX, placement.BearingY = bx, by
	a.entries.Add(key, placement)
	return placement, a.version
}

func (a *Atlas) place(pixels *atlaspage.Page, w, h int) (Placement, bool) {
	for i, pg := range a.pages {
		if x, y, ok := pg.packer.Allocate(w, h); ok {
			return a.blit(pg, i, pixels, x, y, w, h), true
		}
	}
	if len(a.pages) >= a.maxPages {
		return Placement{}, false
	}
	buf, err := atlaspage.New(a.pageSize, a.pageSize, atlaspage.FormatGray8)
	if err != nil {
		return Placement{}, false
	}
	pg := &page{buf: buf, packer: shelfpack.New(a.pageSize, a.pageSize, 1)}
	a.pages = append(a.pages, pg)
	x, y, ok := pg.packer.Allocate(w, h)
	if !ok {
		return Placement{}, false
	}
	return a.blit(pg, len(a.pages)-1, pixels, x, y, w, h), true
}

func (a *Atlas) blit(pg *page, pageIdx int, src *atlaspage.Page, x, y, w, h int) Placement {
	atlaspage.Blit(pg.buf, src, atlaspage.Rect{X: x, Y: y, Width: w, Height: h})
	inv := 1 / float32(a.pageSize)
	return Placement{
		Page:   pageIdx,
		UVMin:  UV{X: float32(x) * inv, Y: float32(y) * inv},
		UVMax:  UV{X: float32(x+w) * inv, Y: float32(y+h) * inv},
		Width:  float32(w),
		Height: float32(h),
	}
}

// rebuildLocked reclaims whole pages (spec.md §4.3: "allocation failure
// triggers a rebuild that evicts least-recently-used glyphs or reclaims
// whole pages, and bumps a monotonically increasing version"). The
// reference implementation takes the simpler of the two named
// strategies: evict the coldest half of resident entries, then reset
// every packer so their vacated cells coalesce, and bump version so
// every holder of a cached UV re-resolves.
func (a *Atlas) rebuildLocked() {
	evictCount := a.entries.Len() / 2
	if evictCount < 1 {
		evictCount = a.entries.Len()
	}
	for i := 0; i < evictCount; i++ {
		if _, _, ok := a.entries.RemoveOldest(); !ok {
			break
		}
	}
	for _, pg := range a.pages {
		pg.packer.Reset()
		pg.buf.Clear()
	}
	a.version++
}

// Page returns the backing pixel buffer for a page index, for renderer
// upload.
func (a *Atlas) Page(index int) *atlaspage.Page {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pages[index].buf
}

// PageCount returns the number of pages allocated so far.
func (a *Atlas) PageCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.pages)
}
