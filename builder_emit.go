package vgcanvas

import (
	"math"

	"github.com/gogpu/vgcanvas/internal/pathcache"
)

func toPathcacheVec(v Vec2) pathcache.Vec2 { return pathcache.Vec2{X: v.X, Y: v.Y} }
func fromPathcacheVec(v pathcache.Vec2) Vec2 { return Vec2{X: v.X, Y: v.Y} }

func toPathcacheJoin(j LineJoin) pathcache.StrokeJoin {
	switch j {
	case LineJoinRound:
		return pathcache.StrokeJoinRound
	case LineJoinBevel:
		return pathcache.StrokeJoinBevel
	default:
		return pathcache.StrokeJoinMiter
	}
}

func toPathcacheCap(c LineCap) pathcache.StrokeCap {
	switch c {
	case LineCapRound:
		return pathcache.StrokeCapRound
	case LineCapSquare:
		return pathcache.StrokeCapSquare
	default:
		return pathcache.StrokeCapButt
	}
}

// replayIntoCache pushes the builder's accumulated command stream into the
// pathcache, running the flatten/repair/join pipeline (spec.md §4.4).
func (b *GeometryBuilder) replayIntoCache(strokeWidth, miterLimit float32) {
	b.cache.Reset()
	for _, c := range b.cmds {
		switch c.kind {
		case opMoveTo:
			b.cache.MoveTo(c.x, c.y)
		case opLineTo:
			b.cache.LineTo(c.x, c.y)
		case opBezierTo:
			b.cache.BezierTo(c.c1x, c.c1y, c.c2x, c.c2y, c.x, c.y)
		case opClose:
			b.cache.ClosePath()
		case opWinding:
			if c.winding == WindingCW {
				b.cache.SetWinding(pathcache.WindingCW)
			} else {
				b.cache.SetWinding(pathcache.WindingCCW)
			}
		}
	}
	b.cache.Flatten(strokeWidth, miterLimit)
}

// Fill tessellates the accumulated path with the current fill style
// (spec.md §4.5 "Fill emission"). The winding rule is whatever SetWinding
// last requested (default CCW).
func (b *GeometryBuilder) Fill() {
	b.replayIntoCache(1, b.state.MiterLimit)
	if len(b.cache.Paths) == 0 {
		return
	}

	styleIndex := b.styles.intern(b.state.FillStyle)
	firstVertex := uint32(len(b.geom.Vertices))
	firstPath := uint32(len(b.geom.Paths))
	groupConvex := true
	groupBounds := EmptyRect()

	expected := b.cache.ExpectedFillVertexCount(b.state.AntiAlias)
	if cap(b.geom.Vertices)-len(b.geom.Vertices) < expected {
		grown := make([]Vertex, len(b.geom.Vertices), len(b.geom.Vertices)+expected)
		copy(grown, b.geom.Vertices)
		b.geom.Vertices = grown
	}

	for pi := range b.cache.Paths {
		p := &b.cache.Paths[pi]
		if !p.Closed || p.Count < 3 {
			continue
		}
		if !p.Convex {
			groupConvex = false
		}

		firstFill := uint32(len(b.geom.Vertices))
		pts := b.cache.Points[p.FirstPoint : p.FirstPoint+p.Count]

		// Fan tessellation from the first point.
		for i := 1; i < len(pts)-1; i++ {
			groupBounds = b.appendFillTriangle(pts[0].Pos, pts[i].Pos, pts[i+1].Pos, styleIndex, groupBounds)
		}

		if b.state.AntiAlias {
			// dm points into a positive-area (WindingCCW) sub-path, so the
			// extrusion is negated there to keep the fringe outside the fill.
			fringeWidth := b.state.FringeWidth
			if p.Winding == pathcache.WindingCCW {
				fringeWidth = -fringeWidth
			}
			b.appendFillFringe(pts, styleIndex, fringeWidth)
		}

		fillCount := uint32(len(b.geom.Vertices)) - firstFill
		b.geom.Paths = append(b.geom.Paths, SubPath{FirstFillVtx: firstFill, FillCount: fillCount})
	}

	vertexCount := uint32(len(b.geom.Vertices)) - firstVertex
	if vertexCount == 0 {
		return
	}
	pathCount := uint32(len(b.geom.Paths)) - firstPath

	b.geom.Groups = append(b.geom.Groups, RenderGroup{
		Kind:        GroupFill,
		StyleIndex:  styleIndex,
		BlendOp:     b.state.BlendOp,
		Convex:      groupConvex,
		FirstPath:   firstPath,
		PathCount:   pathCount,
		FirstVertex: firstVertex,
		VertexCount: vertexCount,
		Bounds:      groupBounds,
		Custom:      b.currentCustomRenderInfo(),
	})
	b.bounds = b.bounds.Union(groupBounds)
}

func (b *GeometryBuilder) appendFillTriangle(a, c, d pathcache.Vec2, styleIndex uint16, bounds Rect) Rect {
	col := White
	va := Vertex{Pos: fromPathcacheVec(a), Color: col, ParamIndex: styleIndex}
	vc := Vertex{Pos: fromPathcacheVec(c), Color: col, ParamIndex: styleIndex}
	vd := Vertex{Pos: fromPathcacheVec(d), Color: col, ParamIndex: styleIndex}
	b.geom.Vertices = append(b.geom.Vertices, va, vc, vd)
	return bounds.Include(va.Pos).Include(vc.Pos).Include(vd.Pos)
}

// appendFillFringe extrudes an AA fringe by fringeWidth along each point's
// dm bisector (a negative width extrudes against dm), emitted after the
// fill fan as an unindexed triangle list: two triangles, six vertices, per
// edge (spec.md §4.5 "Fill emission").
func (b *GeometryBuilder) appendFillFringe(pts []pathcache.Point, styleIndex uint16, fringeWidth float32) {
	n := len(pts)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		inner0 := fromPathcacheVec(pts[i].Pos)
		inner1 := fromPathcacheVec(pts[j].Pos)
		outer0 := inner0.Add(fromPathcacheVec(pts[i].Dm).Scale(fringeWidth))
		outer1 := inner1.Add(fromPathcacheVec(pts[j].Dm).Scale(fringeWidth))

		transparent := Color{255, 255, 255, 0}
		v0 := Vertex{Pos: inner0, Color: White, ParamIndex: styleIndex}
		v1 := Vertex{Pos: inner1, Color: White, ParamIndex: styleIndex}
		v2 := Vertex{Pos: outer0, Color: transparent, ParamIndex: styleIndex}
		v3 := Vertex{Pos: outer1, Color: transparent, ParamIndex: styleIndex}
		// Two triangles forming the quad strip segment.
		b.geom.Vertices = append(b.geom.Vertices, v0, v2, v1, v1, v2, v3)
	}
}

// Stroke tessellates the accumulated path with the current stroke style
// (spec.md §4.5 "Stroke emission"). Dash patterns set via SetDash are
// applied by splitting each sub-path's edges before quad expansion.
func (b *GeometryBuilder) Stroke() {
	width := b.state.StrokeWidth
	if width <= 0 {
		return
	}
	b.replayIntoCache(width, b.state.MiterLimit)
	if len(b.cache.Paths) == 0 {
		return
	}

	styleIndex := b.styles.intern(b.state.StrokeStyle)
	firstVertex := uint32(len(b.geom.Vertices))
	firstPath := uint32(len(b.geom.Paths))
	groupBounds := EmptyRect()
	half := width / 2

	expected := b.cache.ExpectedStrokeVertexCount(toPathcacheJoin(b.state.LineJoin), toPathcacheCap(b.state.LineCap), width, b.cfg.TessTolerance)
	if cap(b.geom.Vertices)-len(b.geom.Vertices) < expected {
		grown := make([]Vertex, len(b.geom.Vertices), len(b.geom.Vertices)+expected)
		copy(grown, b.geom.Vertices)
		b.geom.Vertices = grown
	}

	for pi := range b.cache.Paths {
		p := &b.cache.Paths[pi]
		if p.Count < 2 {
			continue
		}
		pts := b.cache.Points[p.FirstPoint : p.FirstPoint+p.Count]
		firstStroke := uint32(len(b.geom.Vertices))

		segments := pts
		if b.dashArray != nil {
			groupBounds = b.strokeDashed(segments, p.Closed, half, styleIndex, groupBounds)
		} else {
			groupBounds = b.strokeSolid(segments, p.Closed, half, styleIndex, groupBounds)
		}

		strokeCount := uint32(len(b.geom.Vertices)) - firstStroke
		b.geom.Paths = append(b.geom.Paths, SubPath{FirstStrokeVtx: firstStroke, StrokeCount: strokeCount})
	}

	vertexCount := uint32(len(b.geom.Vertices)) - firstVertex
	if vertexCount == 0 {
		return
	}
	pathCount := uint32(len(b.geom.Paths)) - firstPath

	b.geom.Groups = append(b.geom.Groups, RenderGroup{
		Kind:        GroupStroke,
		StyleIndex:  styleIndex,
		BlendOp:     b.state.BlendOp,
		Convex:      true,
		FirstPath:   firstPath,
		PathCount:   pathCount,
		FirstVertex: firstVertex,
		VertexCount: vertexCount,
		Bounds:      groupBounds,
		Custom:      b.currentCustomRenderInfo(),
	})
	b.bounds = b.bounds.Union(groupBounds)
}

// strokeSolid expands a polyline into a ribbon of quads, one per segment,
// honoring miter/bevel/round joins from the classified point flags and
// butt/round/square end caps (spec.md §4.5).
func (b *GeometryBuilder) strokeSolid(pts []pathcache.Point, closed bool, half float32, styleIndex uint16, bounds Rect) Rect {
	n := len(pts)
	if n < 2 {
		return bounds
	}
	segCount := n
	if !closed {
		segCount = n - 1
	}

	for i := 0; i < segCount; i++ {
		j := (i + 1) % n
		p0 := fromPathcacheVec(pts[i].Pos)
		p1 := fromPathcacheVec(pts[j].Pos)
		d := fromPathcacheVec(pts[i].D)
		n0 := d.Perp().Scale(half)

		a := p0.Add(n0)
		c := p0.Sub(n0)
		e := p1.Add(n0)
		f := p1.Sub(n0)

		va := Vertex{Pos: a, Color: White, ParamIndex: styleIndex}
		vc := Vertex{Pos: c, Color: White, ParamIndex: styleIndex}
		ve := Vertex{Pos: e, Color: White, ParamIndex: styleIndex}
		vf := Vertex{Pos: f, Color: White, ParamIndex: styleIndex}
		b.geom.Vertices = append(b.geom.Vertices, va, vc, ve, ve, vc, vf)
		bounds = bounds.Include(a).Include(c).Include(e).Include(f)
	}

	// Joins: emit a small fan at each interior corner from the extrusion
	// bisector dm, matching round/bevel/miter per the point's flags.
	jointStart := 0
	jointEnd := n
	if !closed {
		jointStart, jointEnd = 1, n-1
	}
	for i := jointStart; i < jointEnd; i++ {
		bounds = b.emitJoin(pts, i, n, half, styleIndex, bounds)
	}

	if !closed {
		bounds = b.emitCap(fromPathcacheVec(pts[0].Pos), fromPathcacheVec(pts[0].D).Neg(), half, styleIndex, bounds)
		last := n - 1
		bounds = b.emitCap(fromPathcacheVec(pts[last].Pos), fromPathcacheVec(pts[last-1].D), half, styleIndex, bounds)
	}

	return bounds
}

// emitJoin emits the corner geometry at point index i, choosing
// miter/bevel/round per spec.md §4.5 and the flags pathcache classified.
func (b *GeometryBuilder) emitJoin(pts []pathcache.Point, i, n int, half float32, styleIndex uint16, bounds Rect) Rect {
	pt := pts[i]
	center := fromPathcacheVec(pt.Pos)
	dm := fromPathcacheVec(pt.Dm)

	bevel := pt.Flags&(pathcache.FlagBevel|pathcache.FlagInnerBevel) != 0
	join := b.state.LineJoin
	if join == LineJoinMiter && bevel {
		join = LineJoinBevel
	}

	prevIdx := (i - 1 + n) % n
	nextIdx := i
	dPrev := fromPathcacheVec(pts[prevIdx].D)
	dNext := fromPathcacheVec(pts[nextIdx].D)
	nPrev := dPrev.Perp().Scale(half)
	nNext := dNext.Perp().Scale(half)

	switch join {
	case LineJoinRound:
		a0 := math.Atan2(float64(nPrev.Y), float64(nPrev.X))
		a1 := math.Atan2(float64(nNext.Y), float64(nNext.X))
		segs := int(math.Ceil(math.Abs(a1-a0) / (math.Pi / 8)))
		if segs < 1 {
			segs = 1
		}
		prev := center.Add(nPrev)
		for s := 1; s <= segs; s++ {
			theta := a0 + (a1-a0)*float64(s)/float64(segs)
			p := center.Add(Vec2{half * float32(math.Cos(theta)), half * float32(math.Sin(theta))})
			bounds = b.appendFillTriangle(toPathcacheVec(center), toPathcacheVec(prev), toPathcacheVec(p), styleIndex, bounds)
			prev = p
		}
	case LineJoinBevel:
		bounds = b.appendFillTriangle(toPathcacheVec(center), toPathcacheVec(center.Add(nPrev)), toPathcacheVec(center.Add(nNext)), styleIndex, bounds)
	default: // LineJoinMiter
		miterLen := dm.Length() * half
		limit := b.state.MiterLimit * half
		if miterLen > limit || miterLen == 0 {
			bounds = b.appendFillTriangle(toPathcacheVec(center), toPathcacheVec(center.Add(nPrev)), toPathcacheVec(center.Add(nNext)), styleIndex, bounds)
			return bounds
		}
		miterTip := center.Add(dm.Scale(half))
		bounds = b.appendFillTriangle(toPathcacheVec(center), toPathcacheVec(center.Add(nPrev)), toPathcacheVec(miterTip), styleIndex, bounds)
		bounds = b.appendFillTriangle(toPathcacheVec(center), toPathcacheVec(miterTip), toPathcacheVec(center.Add(nNext)), styleIndex, bounds)
	}
	return bounds
}

// emitCap emits an end cap at center, where dir is the unit direction
// pointing out of the stroke past the open end: square caps extend along
// it and round caps bulge along it (spec.md §4.5 "End caps").
func (b *GeometryBuilder) emitCap(center, dir Vec2, half float32, styleIndex uint16, bounds Rect) Rect {
	n := dir.Perp().Scale(half)
	switch b.state.LineCap {
	case LineCapButt:
		return bounds
	case LineCapSquare:
		ext := dir.Scale(half)
		a := center.Add(n)
		c := center.Sub(n)
		e := a.Add(ext)
		f := c.Add(ext)
		bounds = b.appendFillTriangle(toPathcacheVec(a), toPathcacheVec(c), toPathcacheVec(e), styleIndex, bounds)
		bounds = b.appendFillTriangle(toPathcacheVec(c), toPathcacheVec(f), toPathcacheVec(e), styleIndex, bounds)
		return bounds
	case LineCapRound:
		a0 := math.Atan2(float64(n.Y), float64(n.X))
		segs := 8
		prev := center.Add(n)
		for s := 1; s <= segs; s++ {
			theta := a0 - math.Pi*float64(s)/float64(segs)
			p := center.Add(Vec2{
				X: half * float32(math.Cos(theta)),
				Y: half * float32(math.Sin(theta)),
			})
			bounds = b.appendFillTriangle(toPathcacheVec(center), toPathcacheVec(prev), toPathcacheVec(p), styleIndex, bounds)
			prev = p
		}
		return bounds
	}
	return bounds
}

// strokeDashed applies the builder's dash pattern to a polyline before
// expanding each emitted "on" segment into a solid-stroke ribbon
// (supplemental feature grounded on the teacher's dash.go walking
// technique, adapted to operate on already-flattened points instead of
// path commands).
func (b *GeometryBuilder) strokeDashed(pts []pathcache.Point, closed bool, half float32, styleIndex uint16, bounds Rect) Rect {
	n := len(pts)
	if n < 2 {
		return bounds
	}
	segCount := n
	if !closed {
		segCount = n - 1
	}

	patternLen := float32(0)
	for _, l := range b.dashArray {
		patternLen += l
	}
	if patternLen <= 0 {
		return b.strokeSolid(pts, closed, half, styleIndex, bounds)
	}

	pos := b.dashOffset
	for pos < 0 {
		pos += patternLen
	}
	pos = float32(math.Mod(float64(pos), float64(patternLen)))

	dashIdx := 0
	acc := float32(0)
	for acc+b.dashArray[dashIdx] <= pos {
		acc += b.dashArray[dashIdx]
		dashIdx = (dashIdx + 1) % len(b.dashArray)
	}
	remaining := acc + b.dashArray[dashIdx] - pos
	on := dashIdx%2 == 0

	for i := 0; i < segCount; i++ {
		j := (i + 1) % n
		p0 := fromPathcacheVec(pts[i].Pos)
		p1 := fromPathcacheVec(pts[j].Pos)
		segVec := p1.Sub(p0)
		segLen := segVec.Length()
		if segLen < 1e-6 {
			continue
		}
		dir, _ := segVec.Normalized()
		walked := float32(0)

		for walked < segLen {
			step := minF32(remaining, segLen-walked)
			if on {
				a := p0.Add(dir.Scale(walked))
				c := a.Add(dir.Scale(step))
				n0 := dir.Perp().Scale(half)
				va := Vertex{Pos: a.Add(n0), Color: White, ParamIndex: styleIndex}
				vb := Vertex{Pos: a.Sub(n0), Color: White, ParamIndex: styleIndex}
				vc := Vertex{Pos: c.Add(n0), Color: White, ParamIndex: styleIndex}
				vd := Vertex{Pos: c.Sub(n0), Color: White, ParamIndex: styleIndex}
				b.geom.Vertices = append(b.geom.Vertices, va, vb, vc, vc, vb, vd)
				bounds = bounds.Include(va.Pos).Include(vb.Pos).Include(vc.Pos).Include(vd.Pos)
			}
			walked += step
			remaining -= step
			if remaining <= 1e-6 {
				dashIdx = (dashIdx + 1) % len(b.dashArray)
				remaining = b.dashArray[dashIdx]
				on = !on
			}
		}
	}
	return bounds
}

// EmitGlyphs stores a run of shaped glyphs into the geometry under
// construction. UVs and atlas page are resolved later, at canvas
// submission time, so glyph atlas rebuilds never invalidate a Geometry
// (spec.md §4.5 "Text emission").
func (b *GeometryBuilder) EmitGlyphs(glyphs []ShapedGlyph, font FontHandle, sizePx float32, styleFlags uint32, color Color) {
	if len(glyphs) == 0 {
		return
	}
	firstGlyph := uint32(len(b.geom.Glyphs))
	groupBounds := EmptyRect()
	t := b.Transform()

	for _, g := range glyphs {
		origin := Vec2{g.X, g.Y}
		quad := [4]Vec2{
			{origin.X, origin.Y},
			{origin.X + g.Width, origin.Y},
			{origin.X + g.Width, origin.Y + g.Height},
			{origin.X, origin.Y + g.Height},
		}
		for i := range quad {
			quad[i] = t.TransformPoint(quad[i])
			groupBounds = groupBounds.Include(quad[i])
		}
		b.geom.Glyphs = append(b.geom.Glyphs, RenderGlyph{
			GlyphKey: GlyphKey{
				Font:       font,
				SizePx:     sizePx,
				GlyphIndex: g.GlyphIndex,
				StyleFlags: styleFlags,
			},
			LocalQuad:       quad,
			ModulationColor: color.MulAlpha(b.state.GlobalAlpha),
		})
	}

	glyphCount := uint32(len(b.geom.Glyphs)) - firstGlyph
	b.geom.Groups = append(b.geom.Groups, RenderGroup{
		Kind:       GroupGlyphs,
		BlendOp:    BlendSourceOver,
		FirstGlyph: firstGlyph,
		GlyphCount: glyphCount,
		Bounds:     groupBounds,
		Custom:     b.currentCustomRenderInfo(),
	})
	b.bounds = b.bounds.Union(groupBounds)
}

// ShapedGlyph is one positioned glyph from the Font interface's
// shapeText result (spec.md §6), expressed in the builder's local
// coordinate space before transform.
type ShapedGlyph struct {
	GlyphIndex  uint32
	X, Y        float32
	Width, Height float32
}
