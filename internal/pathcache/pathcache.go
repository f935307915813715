// Package pathcache implements the flatten/repair/join pipeline described
// by the path cache component: replay a flat command stream, adaptively
// subdivide Béziers, repair sub-path closure and winding, compute
// per-point deltas, and classify corners for stroking and AA fringes.
//
// It defines its own Vec2 to avoid an import cycle with the root package
// (mirrors the teacher's internal/path and internal/stroke packages, which
// each keep a local Point/Vec2 "to avoid import cycle").
package pathcache

import "math"

// Vec2 is a 2D float32 vector, laid out identically to the root package's
// Vec2 so conversions between them are a free struct reinterpretation.
type Vec2 struct {
	X, Y float32
}

func (v Vec2) add(w Vec2) Vec2    { return Vec2{v.X + w.X, v.Y + w.Y} }
func (v Vec2) sub(w Vec2) Vec2    { return Vec2{v.X - w.X, v.Y - w.Y} }
func (v Vec2) scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) perp() Vec2         { return Vec2{-v.Y, v.X} }
func (v Vec2) dot(w Vec2) float32 { return v.X*w.X + v.Y*w.Y }
func (v Vec2) lenSq() float32     { return v.X*v.X + v.Y*v.Y }
func (v Vec2) length() float32    { return float32(math.Sqrt(float64(v.lenSq()))) }

// Winding selects the requested orientation of a closed sub-path.
type Winding uint8

const (
	WindingCCW Winding = iota
	WindingCW
)

// PointFlags classifies a flattened corner for stroke/fringe emission.
type PointFlags uint8

const (
	FlagCorner PointFlags = 1 << iota
	FlagLeft
	FlagInnerBevel
	FlagBevel
)

// Point is one vertex of a flattened sub-path.
type Point struct {
	Pos   Vec2
	D     Vec2 // unit direction to the next point
	Len   float32
	Dm    Vec2 // extrusion bisector (unnormalized, scaled by miter factor)
	Flags PointFlags
}

// Path is one flattened sub-path, referencing a contiguous run of Points.
type Path struct {
	FirstPoint int
	Count      int
	Closed     bool
	Convex     bool
	BevelCount int
	Winding    Winding
}

// opKind tags entries in the internal replay buffer.
type opKind uint8

const (
	opMoveTo opKind = iota
	opLineTo
	opBezierTo
	opClose
	opWinding
)

type op struct {
	kind                   opKind
	x, y                   float32
	c1x, c1y, c2x, c2y     float32
	winding                Winding
}

// Cache accumulates a command stream and flattens it into Paths/Points.
// Not safe for concurrent use (matches GeometryBuilder's single-threaded
// contract).
type Cache struct {
	tessTolerance float32
	minPointDist  float32
	maxDepth      int

	ops []op

	Paths  []Path
	Points []Point
}

// New creates a Cache with the given tessellation tolerance, point-merge
// distance and Bézier recursion cap.
func New(tessTolerance, minPointDist float32, maxDepth int) *Cache {
	return &Cache{
		tessTolerance: tessTolerance,
		minPointDist:  minPointDist,
		maxDepth:      maxDepth,
	}
}

// Reset clears the command stream and flattened output for reuse.
func (c *Cache) Reset() {
	c.ops = c.ops[:0]
	c.Paths = c.Paths[:0]
	c.Points = c.Points[:0]
}

func (c *Cache) MoveTo(x, y float32) {
	c.ops = append(c.ops, op{kind: opMoveTo, x: x, y: y})
}

func (c *Cache) LineTo(x, y float32) {
	c.ops = append(c.ops, op{kind: opLineTo, x: x, y: y})
}

func (c *Cache) BezierTo(c1x, c1y, c2x, c2y, x, y float32) {
	c.ops = append(c.ops, op{kind: opBezierTo, c1x: c1x, c1y: c1y, c2x: c2x, c2y: c2y, x: x, y: y})
}

func (c *Cache) ClosePath() {
	c.ops = append(c.ops, op{kind: opClose})
}

func (c *Cache) SetWinding(w Winding) {
	c.ops = append(c.ops, op{kind: opWinding, winding: w})
}

// Flatten replays the recorded command stream into c.Paths/c.Points,
// running the seven-step pipeline spec.md §4.4 describes. strokeWidth and
// miterLimit are only used for join classification (step 6); pass 1 and a
// large value respectively when flattening for fill only, since corner
// flags are irrelevant there.
func (c *Cache) Flatten(strokeWidth, miterLimit float32) {
	c.Paths = c.Paths[:0]
	c.Points = c.Points[:0]

	var cur Vec2
	var curWinding Winding = WindingCCW
	pathOpen := false

	closePath := func() {
		if !pathOpen {
			return
		}
		p := &c.Paths[len(c.Paths)-1]
		c.repairClose(p)
		c.repairWinding(p, curWinding)
		c.computeDeltas(p)
		c.classifyJoins(p, strokeWidth, miterLimit)
		c.computeConvexity(p)
		pathOpen = false
	}

	for _, o := range c.ops {
		switch o.kind {
		case opMoveTo:
			closePath()
			c.Paths = append(c.Paths, Path{FirstPoint: len(c.Points), Winding: curWinding})
			cur = Vec2{o.x, o.y}
			c.addPoint(cur, FlagCorner)
			pathOpen = true

		case opLineTo:
			if !pathOpen {
				c.Paths = append(c.Paths, Path{FirstPoint: len(c.Points), Winding: curWinding})
				c.addPoint(cur, FlagCorner)
				pathOpen = true
			}
			cur = Vec2{o.x, o.y}
			c.addPoint(cur, FlagCorner)

		case opBezierTo:
			if !pathOpen {
				c.Paths = append(c.Paths, Path{FirstPoint: len(c.Points), Winding: curWinding})
				c.addPoint(cur, FlagCorner)
				pathOpen = true
			}
			p1 := cur
			p2 := Vec2{o.c1x, o.c1y}
			p3 := Vec2{o.c2x, o.c2y}
			p4 := Vec2{o.x, o.y}
			c.subdivideCubic(p1, p2, p3, p4, 0)
			cur = p4

		case opClose:
			if pathOpen {
				c.Paths[len(c.Paths)-1].Closed = true
			}
			closePath()

		case opWinding:
			curWinding = o.winding
			if pathOpen && len(c.Paths) > 0 {
				c.Paths[len(c.Paths)-1].Winding = o.winding
			}
		}
	}
	closePath()

	for i := range c.Paths {
		c.Paths[i].Count = 0
	}
	c.recomputeCounts()
}

// recomputeCounts derives each Path.Count from the first-point offsets,
// since addPoint may have coalesced points (so Count isn't known until all
// points for every path have been appended).
func (c *Cache) recomputeCounts() {
	for i := range c.Paths {
		start := c.Paths[i].FirstPoint
		var end int
		if i+1 < len(c.Paths) {
			end = c.Paths[i+1].FirstPoint
		} else {
			end = len(c.Points)
		}
		c.Paths[i].Count = end - start
	}
}

// addPoint appends a point, coalescing it into the previous point (OR-ing
// flags) if it lies within minPointDist (spec.md §4.4 step 2).
func (c *Cache) addPoint(pos Vec2, flags PointFlags) {
	if len(c.Paths) == 0 {
		return
	}
	path := &c.Paths[len(c.Paths)-1]
	if path.Count > 0 {
		last := &c.Points[len(c.Points)-1]
		dx := pos.X - last.Pos.X
		dy := pos.Y - last.Pos.Y
		if dx*dx+dy*dy < c.minPointDist*c.minPointDist {
			last.Flags |= flags
			return
		}
	}
	c.Points = append(c.Points, Point{Pos: pos, Flags: flags})
	path.Count++
}

// subdivideCubic implements adaptive de Casteljau subdivision per spec.md
// §4.4 step 2: terminate when (d2+d3)^2 < tessTolerance*|p4-p1|^2 or depth
// exceeds maxDepth. Grounded on internal/path/flatten.go's recursive
// halving technique, generalized to the signed-distance termination test
// the spec requires instead of a flat distance-to-chord threshold.
func (c *Cache) subdivideCubic(p1, p2, p3, p4 Vec2, depth int) {
	if depth >= c.maxDepth {
		c.addPoint(p4, FlagCorner)
		return
	}

	dx := p4.X - p1.X
	dy := p4.Y - p1.Y
	d2 := absF(((p2.X-p4.X)*dy - (p2.Y-p4.Y)*dx))
	d3 := absF(((p3.X-p4.X)*dy - (p3.Y-p4.Y)*dx))

	if (d2+d3)*(d2+d3) < c.tessTolerance*(dx*dx+dy*dy) {
		c.addPoint(p4, FlagCorner)
		return
	}

	p12 := p1.add(p2).scale(0.5)
	p23 := p2.add(p3).scale(0.5)
	p34 := p3.add(p4).scale(0.5)
	p123 := p12.add(p23).scale(0.5)
	p234 := p23.add(p34).scale(0.5)
	p1234 := p123.add(p234).scale(0.5)

	c.subdivideCubic(p1, p12, p123, p1234, depth+1)
	c.subdivideCubic(p1234, p234, p34, p4, depth+1)
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// repairClose drops a duplicate closing point within minPointDist and
// marks the sub-path closed (spec.md §4.4 step 3).
func (c *Cache) repairClose(p *Path) {
	if p.Count < 2 {
		return
	}
	first := c.Points[p.FirstPoint]
	last := c.Points[p.FirstPoint+p.Count-1]
	dx := last.Pos.X - first.Pos.X
	dy := last.Pos.Y - first.Pos.Y
	if dx*dx+dy*dy < c.minPointDist*c.minPointDist {
		c.Points = append(c.Points[:p.FirstPoint+p.Count-1], c.Points[p.FirstPoint+p.Count:]...)
		c.Points[p.FirstPoint].Flags |= last.Flags
		p.Count--
		p.Closed = true
	}
}

// repairWinding reverses the point list if the signed area disagrees with
// the requested winding (spec.md §4.4 step 4).
func (c *Cache) repairWinding(p *Path, requested Winding) {
	if !p.Closed || p.Count < 3 {
		p.Winding = requested
		return
	}
	area := c.signedArea(p)
	isCCW := area > 0
	wantCCW := requested == WindingCCW
	if isCCW != wantCCW {
		c.reversePoints(p)
	}
	p.Winding = requested
}

func (c *Cache) signedArea(p *Path) float32 {
	var area float32
	pts := c.Points[p.FirstPoint : p.FirstPoint+p.Count]
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].Pos.X*pts[j].Pos.Y - pts[j].Pos.X*pts[i].Pos.Y
	}
	return area * 0.5
}

func (c *Cache) reversePoints(p *Path) {
	pts := c.Points[p.FirstPoint : p.FirstPoint+p.Count]
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// computeDeltas fills in d (unit direction to next point) and len for
// every point (spec.md §4.4 step 5).
func (c *Cache) computeDeltas(p *Path) {
	pts := c.Points[p.FirstPoint : p.FirstPoint+p.Count]
	n := len(pts)
	if n == 0 {
		return
	}
	limit := n
	if !p.Closed {
		limit = n - 1
	}
	for i := 0; i < limit; i++ {
		j := (i + 1) % n
		d := pts[j].Pos.sub(pts[i].Pos)
		length := d.length()
		if length > 0 {
			d = d.scale(1 / length)
		}
		pts[i].D = d
		pts[i].Len = length
	}
}

// classifyJoins implements spec.md §4.4 step 6 exactly: extrusion
// bisector, left/right sign, inner-bevel detection, and bevel selection
// from the miter limit.
func (c *Cache) classifyJoins(p *Path, strokeWidth, miterLimit float32) {
	pts := c.Points[p.FirstPoint : p.FirstPoint+p.Count]
	n := len(pts)
	if n == 0 {
		return
	}

	first := 0
	if !p.Closed {
		first = 1
	}
	limit := n
	if !p.Closed {
		limit = n - 1
	}

	p.BevelCount = 0
	invStrokeWidth := float32(1)
	if strokeWidth > 0 {
		invStrokeWidth = 1 / strokeWidth
	}

	for i := first; i < limit; i++ {
		prevIdx := (i - 1 + n) % n
		dPrev := pts[prevIdx].D
		dNext := pts[i].D
		lenPrev := pts[prevIdx].Len
		lenNext := pts[i].Len

		dm := dPrev.perp().add(dNext.perp()).scale(0.5)
		dmLenSq := dm.lenSq()
		if dmLenSq > 1e-12 {
			scale := minF(600, 1/dmLenSq)
			dm = dm.scale(scale)
		}
		pts[i].Dm = dm

		cross := dNext.X*dPrev.Y - dPrev.X*dNext.Y
		var flags PointFlags = FlagCorner
		if cross > 0 {
			flags |= FlagLeft
		}

		limitVal := maxF(1.01, minF(lenPrev, lenNext)*invStrokeWidth)
		if dm.lenSq()*limitVal*limitVal < 1 {
			flags |= FlagInnerBevel
		}

		if flags&FlagCorner != 0 {
			if dm.lenSq()*miterLimit*miterLimit < 1 {
				flags |= FlagBevel
			}
		}
		if flags&(FlagInnerBevel|FlagBevel) != 0 {
			p.BevelCount++
		}

		pts[i].Flags |= flags
	}
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// computeConvexity implements spec.md §4.4 step 7: a sub-path is convex
// (conservatively) if every corner turns the way its repaired winding
// turns and no corner is an inner bevel. With classifyJoins' cross sign,
// the corners of a positive-area (WindingCCW) sub-path have Left clear and
// those of a negative-area (WindingCW) sub-path have Left set. The
// converse need not hold (spec.md §8).
func (c *Cache) computeConvexity(p *Path) {
	if !p.Closed || p.Count < 3 {
		p.Convex = false
		return
	}
	pts := c.Points[p.FirstPoint : p.FirstPoint+p.Count]
	wantLeft := p.Winding == WindingCW
	convex := true
	for _, pt := range pts {
		if (pt.Flags&FlagLeft != 0) != wantLeft || pt.Flags&FlagInnerBevel != 0 {
			convex = false
			break
		}
	}
	p.Convex = convex
}

// ExpectedFillVertexCount counts fill vertices across every path currently
// in the cache as an indexed fan plus fringe strip would need them: one
// vertex per point (the fan), plus, with an AA fringe, two more per point
// (the fringe strip). The geometry builder emits unindexed triangle lists
// instead (3·(n−2) fan vertices and 6·n fringe vertices for an n-point
// sub-path), so for its output this count is a capacity hint, not an
// upper bound.
func (c *Cache) ExpectedFillVertexCount(hasFringe bool) int {
	total := 0
	for _, p := range c.Paths {
		total += p.Count
		if hasFringe {
			total += p.Count * 2
		}
	}
	return total
}

// ExpectedStrokeVertexCount returns an exact upper bound on stroke
// vertices, accounting for per-segment quads, worst-case join geometry
// (round joins subdivide most), and end caps.
func (c *Cache) ExpectedStrokeVertexCount(join StrokeJoin, cap StrokeCap, width, tessTolerance float32) int {
	total := 0
	for _, p := range c.Paths {
		segments := p.Count
		if !p.Closed {
			segments--
		}
		if segments < 0 {
			segments = 0
		}
		total += segments * 4 // two quads' worth of vertices per segment worst case

		perJoin := 2
		if join == StrokeJoinRound {
			arcSegs := int(math.Ceil(float64(math.Pi * float64(width) / float64(maxF(tessTolerance, 1e-3)))))
			if arcSegs < 1 {
				arcSegs = 1
			}
			perJoin = arcSegs + 2
		}
		total += p.Count * perJoin

		if !p.Closed {
			capVerts := 2
			if cap == StrokeCapRound {
				capVerts = 8
			}
			total += capVerts * 2
		}
	}
	return total
}

// StrokeJoin mirrors the root package's LineJoin without importing it
// (avoids the cycle); builder.go converts between the two at the call
// site.
type StrokeJoin uint8

const (
	StrokeJoinMiter StrokeJoin = iota
	StrokeJoinRound
	StrokeJoinBevel
)

// StrokeCap mirrors the root package's LineCap.
type StrokeCap uint8

const (
	StrokeCapButt StrokeCap = iota
	StrokeCapRound
	StrokeCapSquare
)
