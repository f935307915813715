package vgcanvas

import (
	"math"

	"github.com/gogpu/vgcanvas/internal/pathcache"
)

// LineCap specifies the shape of stroke endpoints (spec.md §4.5 "End
// caps"). Grounded on the teacher's paint.go enum (kept, retargeted to
// float32 geometry).
type LineCap uint8

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// LineJoin specifies the shape of stroke corners (spec.md §4.5 "Stroke
// emission").
type LineJoin uint8

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// RenderState is the builder's current paint/stroke configuration
// (spec.md §4.5 "State").
type RenderState struct {
	FillStyle   RenderStyle
	StrokeStyle RenderStyle
	BlendOp     BlendOp
	LineJoin    LineJoin
	LineCap     LineCap
	StrokeWidth float32
	MiterLimit  float32
	GlobalAlpha float32
	AntiAlias   bool
	FringeWidth float32
}

// DefaultRenderState returns the state a freshly constructed
// GeometryBuilder starts with.
func DefaultRenderState() RenderState {
	return RenderState{
		FillStyle:   SolidStyle(ColorF{0, 0, 0, 1}),
		StrokeStyle: SolidStyle(ColorF{0, 0, 0, 1}),
		BlendOp:     BlendSourceOver,
		LineJoin:    LineJoinMiter,
		LineCap:     LineCapButt,
		StrokeWidth: 1,
		MiterLimit:  10,
		GlobalAlpha: 1,
		AntiAlias:   true,
		FringeWidth: 1,
	}
}

type customRendererState struct {
	kindID  uint32
	payload []byte
}

// GeometryBuilder is the retained-mode shape authoring API (spec.md §4.5,
// component C6). It accumulates path commands and style/transform state,
// and on Fill/Stroke/EmitGlyphs appends tessellated output into the
// Geometry under construction. Not safe for concurrent use (spec.md §5).
type GeometryBuilder struct {
	cfg Config

	transformStack []Transform2D
	stateStack     []RenderState
	pivotStack     []Vec2
	rendererStack  []customRendererState

	state RenderState
	pivot Vec2

	cmds    []pathOp
	curX    float32
	curY    float32
	subOpen bool

	dashArray  []float32
	dashOffset float32

	cache *pathcache.Cache

	geom    Geometry
	styles  *styleTable
	bounds  Rect
}

// NewGeometryBuilder creates a builder with an identity transform and
// default render state.
func NewGeometryBuilder(cfg Config) *GeometryBuilder {
	b := &GeometryBuilder{
		cfg:     cfg,
		state:   DefaultRenderState(),
		cache:   pathcache.New(cfg.TessTolerance, cfg.MinPointDistance, cfg.MaxSubdivisionDepth),
		styles:  newStyleTable(),
		bounds:  EmptyRect(),
	}
	b.state.FringeWidth = cfg.FringeWidth
	b.transformStack = append(b.transformStack, Identity())
	return b
}

// Reset clears the builder for authoring a new Geometry, keeping its
// configuration and stack capacity.
func (b *GeometryBuilder) Reset() {
	b.transformStack = b.transformStack[:1]
	b.transformStack[0] = Identity()
	b.stateStack = b.stateStack[:0]
	b.pivotStack = b.pivotStack[:0]
	b.rendererStack = b.rendererStack[:0]
	b.state = DefaultRenderState()
	b.state.FringeWidth = b.cfg.FringeWidth
	b.pivot = Vec2{}
	b.cmds = b.cmds[:0]
	b.subOpen = false
	b.dashArray = nil
	b.geom = Geometry{}
	b.styles = newStyleTable()
	b.bounds = EmptyRect()
}

// Build finalizes the accumulated Geometry and returns it. The builder is
// left usable for a subsequent shape after Build (spec.md §3 "the builder
// writes it, then releases").
func (b *GeometryBuilder) Build() *Geometry {
	out := b.snapshot()
	b.Reset()
	return out
}

// snapshot captures the accumulated Geometry without resetting the
// builder, for Canvas.PlaceBuilder's "extractNoReset(temp); place(temp);
// releaseRef(temp)" convenience alias (spec.md §9 open question). The
// returned Geometry must be placed and discarded before the builder
// accumulates any further path or draw calls: its slices alias the
// builder's own backing arrays and are only valid until the next append.
func (b *GeometryBuilder) snapshot() *Geometry {
	g := b.geom
	g.Styles = b.styles.styles
	if b.bounds.IsEmpty() {
		empty := EmptyRect()
		g.BoundsMin, g.BoundsMax = empty.Min, empty.Max
	} else {
		g.BoundsMin, g.BoundsMax = b.bounds.Min, b.bounds.Max
	}
	return &g
}

// --- transform stack ---

func (b *GeometryBuilder) Transform() Transform2D {
	return b.transformStack[len(b.transformStack)-1]
}

func (b *GeometryBuilder) PushTransform() {
	if len(b.transformStack) >= b.cfg.StackDepthLimit {
		stackOverflowPanic("transform", len(b.transformStack))
	}
	b.transformStack = append(b.transformStack, b.Transform())
}

func (b *GeometryBuilder) PopTransform() {
	if len(b.transformStack) <= 1 {
		diagnostic("vgcanvas: transform stack underflow")
		return
	}
	b.transformStack = b.transformStack[:len(b.transformStack)-1]
}

func (b *GeometryBuilder) SetTransform(t Transform2D) {
	b.transformStack[len(b.transformStack)-1] = t
}

func (b *GeometryBuilder) ApplyTransform(t Transform2D) {
	b.transformStack[len(b.transformStack)-1] = t.Multiply(b.Transform())
}

func (b *GeometryBuilder) Translate(tx, ty float32) { b.ApplyTransform(Translation(tx, ty)) }
func (b *GeometryBuilder) Scale(sx, sy float32)     { b.ApplyTransform(ScaleTransform(sx, sy)) }
func (b *GeometryBuilder) Rotate(angle float64)     { b.ApplyTransform(RotationTransform(angle)) }

// --- render state stack ---

func (b *GeometryBuilder) State() *RenderState { return &b.state }

func (b *GeometryBuilder) PushState() {
	if len(b.stateStack) >= b.cfg.StackDepthLimit {
		stackOverflowPanic("render state", len(b.stateStack))
	}
	b.stateStack = append(b.stateStack, b.state)
}

func (b *GeometryBuilder) PopState() {
	if len(b.stateStack) == 0 {
		diagnostic("vgcanvas: render state stack underflow")
		return
	}
	b.state = b.stateStack[len(b.stateStack)-1]
	b.stateStack = b.stateStack[:len(b.stateStack)-1]
}

// --- style pivot stack ---

func (b *GeometryBuilder) PushStylePivot(p Vec2) {
	if len(b.pivotStack) >= b.cfg.StackDepthLimit {
		stackOverflowPanic("style pivot", len(b.pivotStack))
	}
	b.pivotStack = append(b.pivotStack, b.pivot)
	b.pivot = p
}

func (b *GeometryBuilder) PopStylePivot() {
	if len(b.pivotStack) == 0 {
		diagnostic("vgcanvas: style pivot stack underflow")
		return
	}
	b.pivot = b.pivotStack[len(b.pivotStack)-1]
	b.pivotStack = b.pivotStack[:len(b.pivotStack)-1]
}

// --- custom renderer stack ---

// SelectRenderer records that subsequently emitted groups should carry a
// CustomRenderInfo pointing at kindID with payload copied into the
// Geometry's side buffer (spec.md §4.5 "Custom renderer hook").
func (b *GeometryBuilder) SelectRenderer(kindID uint32, payload []byte) {
	if len(b.rendererStack) >= b.cfg.StackDepthLimit {
		stackOverflowPanic("custom renderer", len(b.rendererStack))
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	b.rendererStack = append(b.rendererStack, customRendererState{kindID: kindID, payload: cp})
}

func (b *GeometryBuilder) PopRenderer() {
	if len(b.rendererStack) == 0 {
		diagnostic("vgcanvas: custom renderer stack underflow")
		return
	}
	b.rendererStack = b.rendererStack[:len(b.rendererStack)-1]
}

func (b *GeometryBuilder) currentCustomRenderInfo() *CustomRenderInfo {
	if len(b.rendererStack) == 0 {
		return nil
	}
	top := b.rendererStack[len(b.rendererStack)-1]
	offset := len(b.geom.CustomPayloads)
	b.geom.CustomPayloads = append(b.geom.CustomPayloads, top.payload...)
	return &CustomRenderInfo{
		KindID:        top.kindID,
		PayloadOffset: uint32(offset),
		PayloadSize:   uint32(len(top.payload)),
	}
}

// --- path command authoring ---

// BeginPath discards any uncommitted path commands, starting a fresh
// command stream.
func (b *GeometryBuilder) BeginPath() {
	b.cmds = b.cmds[:0]
	b.subOpen = false
}

func (b *GeometryBuilder) MoveTo(x, y float32) {
	p := b.Transform().TransformPoint(Vec2{x, y})
	b.cmds = append(b.cmds, pathOp{kind: opMoveTo, x: p.X, y: p.Y})
	b.curX, b.curY = p.X, p.Y
	b.subOpen = true
}

func (b *GeometryBuilder) LineTo(x, y float32) {
	if !b.subOpen {
		diagnostic("vgcanvas: lineTo with no current sub-path")
		return
	}
	p := b.Transform().TransformPoint(Vec2{x, y})
	b.cmds = append(b.cmds, pathOp{kind: opLineTo, x: p.X, y: p.Y})
	b.curX, b.curY = p.X, p.Y
}

func (b *GeometryBuilder) QuadTo(cx, cy, x, y float32) {
	// Promote to cubic (spec.md §4.4 step 2: "Quadratics are promoted to
	// cubics").
	c1x := b.curX + 2.0/3.0*(cx-b.curX)
	c1y := b.curY + 2.0/3.0*(cy-b.curY)
	c2x := x + 2.0/3.0*(cx-x)
	c2y := y + 2.0/3.0*(cy-y)
	b.BezierTo(c1x, c1y, c2x, c2y, x, y)
}

func (b *GeometryBuilder) BezierTo(c1x, c1y, c2x, c2y, x, y float32) {
	if !b.subOpen {
		diagnostic("vgcanvas: bezierTo with no current sub-path")
		return
	}
	t := b.Transform()
	p1 := t.TransformPoint(Vec2{c1x, c1y})
	p2 := t.TransformPoint(Vec2{c2x, c2y})
	p3 := t.TransformPoint(Vec2{x, y})
	b.cmds = append(b.cmds, pathOp{kind: opBezierTo, c1x: p1.X, c1y: p1.Y, c2x: p2.X, c2y: p2.Y, x: p3.X, y: p3.Y})
	b.curX, b.curY = p3.X, p3.Y
}

func (b *GeometryBuilder) ClosePath() {
	b.cmds = append(b.cmds, pathOp{kind: opClose})
	b.subOpen = false
}

func (b *GeometryBuilder) SetWinding(w Winding) {
	b.cmds = append(b.cmds, pathOp{kind: opWinding, winding: w})
}

// --- shape decomposition (spec.md §4.5 "Command authoring") ---

func (b *GeometryBuilder) Rect(x, y, w, h float32) {
	b.MoveTo(x, y)
	b.LineTo(x+w, y)
	b.LineTo(x+w, y+h)
	b.LineTo(x, y+h)
	b.ClosePath()
}

// RoundedRect emits a rectangle with a uniform corner radius r, clamped to
// half the shorter side, decomposed into 4 arcs joined by lines per
// spec.md §4.5, with control-point distance KAPPA*r.
func (b *GeometryBuilder) RoundedRect(x, y, w, h, r float32) {
	if r <= 0 {
		b.Rect(x, y, w, h)
		return
	}
	maxR := minF32(w, h) / 2
	if r > maxR {
		r = maxR
	}
	k := float32(KAPPA) * r

	b.MoveTo(x+r, y)
	b.LineTo(x+w-r, y)
	b.BezierTo(x+w-r+k, y, x+w, y+r-k, x+w, y+r)
	b.LineTo(x+w, y+h-r)
	b.BezierTo(x+w, y+h-r+k, x+w-r+k, y+h, x+w-r, y+h)
	b.LineTo(x+r, y+h)
	b.BezierTo(x+r-k, y+h, x, y+h-r+k, x, y+h-r)
	b.LineTo(x, y+r)
	b.BezierTo(x, y+r-k, x+r-k, y, x+r, y)
	b.ClosePath()
}

// Ellipse emits 4 cubic Bézier quadrants approximating an ellipse, with the
// same kappa constant (spec.md §4.5).
func (b *GeometryBuilder) Ellipse(cx, cy, rx, ry float32) {
	kx := float32(KAPPA) * rx
	ky := float32(KAPPA) * ry

	b.MoveTo(cx+rx, cy)
	b.BezierTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	b.BezierTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	b.BezierTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	b.BezierTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	b.ClosePath()
}

func (b *GeometryBuilder) Circle(cx, cy, r float32) {
	b.Ellipse(cx, cy, r, r)
}

// Arc emits ceil(|a1-a0|/(pi/2)) cubic segments approximating a circular
// arc from angle a0 to a1 around (cx,cy), dir>0 for CCW (spec.md §4.5).
func (b *GeometryBuilder) Arc(cx, cy, r, a0, a1 float32, dir int) {
	da := float64(a1 - a0)
	if dir < 0 && da > 0 {
		da -= 2 * math.Pi
	} else if dir >= 0 && da < 0 {
		da += 2 * math.Pi
	}

	segs := int(math.Ceil(math.Abs(da) / (math.Pi / 2)))
	if segs < 1 {
		segs = 1
	}
	step := da / float64(segs)

	started := b.subOpen
	for i := 0; i <= segs; i++ {
		theta := float64(a0) + step*float64(i)
		x := cx + r*float32(math.Cos(theta))
		y := cy + r*float32(math.Sin(theta))
		if i == 0 {
			if started {
				b.LineTo(x, y)
			} else {
				b.MoveTo(x, y)
			}
			continue
		}
		prevTheta := float64(a0) + step*float64(i-1)
		alpha := float32(math.Sin(step) * (math.Sqrt(4+3*math.Pow(math.Tan(step/4), 2)) - 1) / 3)
		cos0, sin0 := float32(math.Cos(prevTheta)), float32(math.Sin(prevTheta))
		cos1, sin1 := float32(math.Cos(theta)), float32(math.Sin(theta))
		p0 := Vec2{cx + r*cos0, cy + r*sin0}
		p1 := Vec2{cx + r*cos1, cy + r*sin1}
		c1 := Vec2{p0.X - alpha*r*sin0, p0.Y + alpha*r*cos0}
		c2 := Vec2{p1.X + alpha*r*sin1, p1.Y - alpha*r*cos1}
		b.BezierTo(c1.X, c1.Y, c2.X, c2.Y, p1.X, p1.Y)
	}
}

// ArcTo fillets the corner between the current point's line to p1 and the
// line p1->p2 with a tangent arc of radius r (spec.md §4.5).
func (b *GeometryBuilder) ArcTo(p1x, p1y, p2x, p2y, r float32) {
	p0 := Vec2{b.curX, b.curY}
	p1 := Vec2{p1x, p1y}
	p2 := Vec2{p2x, p2y}

	d0, len0 := p0.Sub(p1).Normalized()
	d1, len1 := p2.Sub(p1).Normalized()
	if len0 < 1e-6 || len1 < 1e-6 || r <= 0 {
		b.LineTo(p1x, p1y)
		return
	}

	a := float32(math.Acos(float64(clampF32(d0.Dot(d1), -1, 1))))
	dist := r / float32(math.Tan(float64(a)/2))
	if dist > len0 {
		dist = len0
	}
	if dist > len1 {
		dist = len1
	}

	t0 := p1.Add(d0.Scale(dist))
	t1 := p1.Add(d1.Scale(dist))

	b.LineTo(t0.X, t0.Y)

	cross := d0.Cross(d1)
	dir := 1
	if cross > 0 {
		dir = -1
	}
	bisector, _ := d0.Add(d1).Normalized()
	center := p1.Add(bisector.Scale(r / float32(math.Sin(float64(a)/2))))
	a0 := float32(math.Atan2(float64(t0.Y-center.Y), float64(t0.X-center.X)))
	a1 := float32(math.Atan2(float64(t1.Y-center.Y), float64(t1.X-center.X)))
	b.Arc(center.X, center.Y, r, a0, a1, dir)
}

// SetDash configures a dash pattern applied during Stroke (supplemental
// feature, grounded on the teacher's dash.go: alternating dash/gap
// lengths, logically duplicated if odd-length). A nil or empty pattern
// disables dashing.
func (b *GeometryBuilder) SetDash(pattern []float32, offset float32) {
	if len(pattern) == 0 {
		b.dashArray = nil
		return
	}
	allZero := true
	for _, l := range pattern {
		if l > 0 {
			allZero = false
			break
		}
	}
	if allZero {
		b.dashArray = nil
		return
	}
	arr := make([]float32, len(pattern))
	for i, l := range pattern {
		if l < 0 {
			l = -l
		}
		arr[i] = l
	}
	b.dashArray = arr
	b.dashOffset = offset
}
