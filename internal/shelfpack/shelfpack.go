// Package shelfpack packs rectangles into a fixed-size page using
// horizontal shelves: each shelf has a height set by the tallest item
// placed on it, and new items go left-to-right until a shelf fills, at
// which point a new shelf starts below (spec.md §4.3).
//
// Grounded on the teacher's text/msdf/shelf.go ShelfAllocator, adapted
// to return a reset-friendly Packer shared by both the image atlas (C3)
// and the glyph atlas (C4).
package shelfpack

// Packer packs w x h rectangles into a pageWidth x pageHeight page.
type Packer struct {
	width   int
	height  int
	padding int
	shelves []shelf
	used    int
}

type shelf struct {
	y      int
	height int
	x      int
}

// New creates a Packer for a page of the given size, separating adjacent
// rectangles by padding pixels (used for glyph bleed and filtering border).
func New(width, height, padding int) *Packer {
	return &Packer{width: width, height: height, padding: padding}
}

// Allocate finds space for a w x h rectangle, returning its top-left
// corner. ok is false if the page has no remaining room.
func (p *Packer) Allocate(w, h int) (x, y int, ok bool) {
	paddedW := w + p.padding

	for i := range p.shelves {
		s := &p.shelves[i]
		if s.x+w > p.width {
			continue
		}
		if h > s.height {
			if i == len(p.shelves)-1 && s.y+h <= p.height {
				s.height = h
				x, y = s.x, s.y
				s.x += paddedW
				p.used += w * h
				return x, y, true
			}
			continue
		}
		x, y = s.x, s.y
		s.x += paddedW
		p.used += w * h
		return x, y, true
	}

	newY := 0
	if len(p.shelves) > 0 {
		last := p.shelves[len(p.shelves)-1]
		newY = last.y + last.height + p.padding
	}
	if newY+h > p.height {
		return -1, -1, false
	}
	p.shelves = append(p.shelves, shelf{y: newY, height: h, x: paddedW})
	p.used += w * h
	return 0, newY, true
}

// Reset clears all allocations, keeping shelf slice capacity.
func (p *Packer) Reset() {
	p.shelves = p.shelves[:0]
	p.used = 0
}

// Utilization returns the fraction of page area currently allocated.
func (p *Packer) Utilization() float64 {
	if p.width <= 0 || p.height <= 0 {
		return 0
	}
	return float64(p.used) / float64(p.width*p.height)
}
