package vgcanvas

import (
	"github.com/gogpu/vgcanvas/glyphatlas"
)

// BatchKind tags how a Batch's index range should be drawn (spec.md §4.6
// "Batch model").
type BatchKind uint8

const (
	BatchConvexFill BatchKind = iota
	BatchConcaveMask
	BatchConcaveFill
	BatchCustom
)

// PaintParamsRow is one row of the canvas's paint parameters array, the
// flattened form a RenderStyle (plus globalAlpha) packs down to for the
// renderer (spec.md §4.6 "Paint parameter packing").
type PaintParamsRow struct {
	InnerColor, OuterColor ColorF // premultiplied
	Extent, Base           Vec2
	WrapBits               uint8
	Radius                 float32
	Feather                float32
	FeatherHalf            float32
	InvFeather             float32
	UVMin, UVMax           Vec2
	ImageRefIndex          int32 // -1 unless Kind == PaintImagePattern

	// DirectTexture rows bypass paint math entirely: the shader samples
	// PageIndex's atlas texture directly, used for glyph runs (spec.md
	// §4.6 "allocate a direct texture parameters entry for each new page").
	DirectTexture bool
	PageIndex     int32
}

// CanvasVertex is the pixel-space vertex format the renderer consumes,
// with the scissor test precomputed per spec.md §4.6 "Scissor": ClipCenter
// holds the negated scissor center, so the shader-side test reduces to a
// single multiply-add, (pos+ClipCenter)*ClipInvHalfExtent.
type CanvasVertex struct {
	Pos               Vec2
	UV                Vec2
	Color             Color
	ParamIndex        int32
	ClipCenter        Vec2
	ClipInvHalfExtent Vec2
}

// Batch is one draw call's worth of index range plus its dispatch mode
// (spec.md §4.6 "Batch model"). Submission order is rendering order;
// batches are never reordered or merged across a Place call boundary.
type Batch struct {
	FirstIndex     uint32
	IndexCount     uint32
	BlendOp        BlendOp
	Kind           BatchKind
	CustomDrawerID uint32
	CustomPayload  []byte
}

type scissorFrame struct {
	rect  Rect // pixel-space
	empty bool
}

type paintKey struct {
	hash  uint64
	alpha float32
}

// Canvas is the per-frame compositor (spec.md §4.6, component C8): it
// consumes Geometry values built off-thread-independently by one or more
// GeometryBuilders and flattens them into pixel-space vertex/index/params
// arrays a renderer uploads verbatim, in strict submission order.
type Canvas struct {
	width, height int
	pixelOffset   Vec2
	pixelScale    float32

	glyphAtlas  *glyphatlas.Atlas
	glyphRaster glyphatlas.Rasterizer

	scissorStack []scissorFrame
	placement    Transform2D
	globalAlpha  float32

	Vertices []CanvasVertex
	Indices  []uint32
	Params   []PaintParamsRow
	ImageRefs []ImageRef
	Batches   []Batch

	paramsByPaint map[paintKey]int32
	imageRefIndex map[ImageRef]int32
	glyphPageSlot map[int]int32

	// ringVerts is the glyph ring buffer, flushed into Indices/Batches in
	// groups of glyphRingCapacity quads (spec.md §4.6 "Glyph emission").
	// Always flushed as a single SourceOver ConvexFill batch, per spec.
	ringVerts []CanvasVertex

	culledCount int
}

const glyphRingCapacity = 256

// NewCanvas constructs a Canvas over a width x height pixel surface,
// backed by glyphAtlas for resolving glyph UVs and raster for rasterizing
// glyphs not yet resident (spec.md §4.6 "Construction"). pixelOffset and
// pixelScale convert canvas-space coordinates to pixel space.
func NewCanvas(width, height int, glyphAtlas *glyphatlas.Atlas, raster glyphatlas.Rasterizer, pixelOffset Vec2, pixelScale float32) *Canvas {
	c := &Canvas{
		width:         width,
		height:        height,
		pixelOffset:   pixelOffset,
		pixelScale:    pixelScale,
		glyphAtlas:    glyphAtlas,
		glyphRaster:   raster,
		placement:     Identity(),
		globalAlpha:   1,
		paramsByPaint: make(map[paintKey]int32),
		imageRefIndex: make(map[ImageRef]int32),
		glyphPageSlot: make(map[int]int32),
	}
	c.scissorStack = []scissorFrame{{
		rect: Rect{Min: Vec2{0, 0}, Max: Vec2{X: float32(width), Y: float32(height)}},
	}}
	return c
}

// SetPixelPlacement retargets the canvas-space-to-pixel-space mapping
// (spec.md §4.6 "Construction"), grounded on the original engine's
// `Canvas::pixelPlacement`/`Canvas::placement`, which are callable
// mid-frame rather than fixed at construction. It affects only vertices
// emitted by Place calls after it returns; anything already accumulated
// this frame keeps the mapping it was emitted under.
func (c *Canvas) SetPixelPlacement(offset Vec2, scale float32) {
	c.pixelOffset = offset
	c.pixelScale = scale
}

// Reset clears all accumulated output, keeping slice capacity, and resets
// scissor/placement/alpha to the initial frame state. Call once per frame.
func (c *Canvas) Reset() {
	c.Vertices = c.Vertices[:0]
	c.Indices = c.Indices[:0]
	c.Params = c.Params[:0]
	c.ImageRefs = c.ImageRefs[:0]
	c.Batches = c.Batches[:0]
	c.ringVerts = c.ringVerts[:0]
	c.culledCount = 0
	for k := range c.paramsByPaint {
		delete(c.paramsByPaint, k)
	}
	for k := range c.imageRefIndex {
		delete(c.imageRefIndex, k)
	}
	for k := range c.glyphPageSlot {
		delete(c.glyphPageSlot, k)
	}
	c.scissorStack = c.scissorStack[:1]
	c.scissorStack[0] = scissorFrame{rect: Rect{Min: Vec2{0, 0}, Max: Vec2{X: float32(c.width), Y: float32(c.height)}}}
	c.placement = Identity()
	c.globalAlpha = 1
}

// SetPlacement replaces the current placement transform (spec.md §4.6
// "an identity placement" is the construction-time default).
func (c *Canvas) SetPlacement(t Transform2D) { c.placement = t }

// SetGlobalAlpha sets the alpha multiplier applied to subsequent Place
// calls' paint parameters and glyph modulation.
func (c *Canvas) SetGlobalAlpha(a float32) { c.globalAlpha = clampF32(a, 0, 1) }

// PushScissor intersects a new pixel-space rect with the current scissor
// (spec.md §4.6 "Scissor", §4.8 "Canvas scissor stack"). An intersection
// with non-positive extent transitions the frame to empty, silently
// suppressing emission until the matching Pop (spec.md §7 "EmptyScissor").
// Scissor rects are already pixel space: the construction-time initial
// scissor is the full pixelOffset/pixelScale-mapped surface, so nothing
// further needs mapping at push time.
func (c *Canvas) PushScissor(rect Rect) {
	top := c.scissorStack[len(c.scissorStack)-1]
	next := scissorFrame{rect: top.rect.Intersect(rect)}
	if next.rect.IsEmpty() || next.rect.Width() <= 0 || next.rect.Height() <= 0 {
		next.empty = true
	}
	c.scissorStack = append(c.scissorStack, next)
}

// PopScissor restores the parent scissor state. A pop with no matching
// push is a no-op with diagnostic (spec.md §7 "StackUnderflow").
func (c *Canvas) PopScissor() {
	if len(c.scissorStack) <= 1 {
		diagnostic("vgcanvas: scissor stack underflow")
		return
	}
	c.scissorStack = c.scissorStack[:len(c.scissorStack)-1]
}

func (c *Canvas) currentScissor() scissorFrame {
	return c.scissorStack[len(c.scissorStack)-1]
}

// Place submits a Geometry for compositing: bounds-culls it against the
// current scissor, resolves its paints and glyph pages into parameter
// rows, and appends one batch per render group in submission order
// (spec.md §4.6 "Per-place pipeline").
func (c *Canvas) Place(geom *Geometry) {
	scissor := c.currentScissor()
	if scissor.empty {
		c.culledCount++
		return
	}

	worldBounds := geom.Bounds()
	if worldBounds.IsEmpty() {
		return
	}
	pixelBounds := c.transformRectToPixel(worldBounds)
	if pixelBounds.Intersect(scissor.rect).IsEmpty() {
		c.culledCount++
		return
	}

	for page := range c.pagesReferenced(geom) {
		c.ensureGlyphPageSlot(page)
	}

	styleSlot := make([]int32, len(geom.Styles))
	for i := range styleSlot {
		styleSlot[i] = -1
	}

	for gi := range geom.Groups {
		group := &geom.Groups[gi]
		if group.Kind != GroupGlyphs {
			// Glyph quads queued by earlier groups go out first, so batch
			// order stays group order.
			c.flushGlyphRing()
		}
		paramIdx := int32(-1)
		if int(group.StyleIndex) < len(styleSlot) {
			if styleSlot[group.StyleIndex] < 0 {
				styleSlot[group.StyleIndex] = c.packStyle(geom.Styles[group.StyleIndex])
			}
			paramIdx = styleSlot[group.StyleIndex]
		}

		if group.Custom != nil {
			c.emitCustom(geom, group, paramIdx)
			continue
		}

		switch group.Kind {
		case GroupFill:
			if group.Convex {
				c.emitConvexFill(geom, group, paramIdx)
			} else {
				c.emitConcaveFill(geom, group, paramIdx)
			}
		case GroupStroke:
			c.emitConvexFill(geom, group, paramIdx)
		case GroupGlyphs:
			c.emitGlyphs(geom, group)
		case GroupTriangles:
			c.emitConvexFill(geom, group, paramIdx)
		}
	}
	c.flushGlyphRing()
}

func (c *Canvas) pagesReferenced(geom *Geometry) map[int]struct{} {
	pages := make(map[int]struct{})
	for i := 0; i < 64; i++ {
		if geom.UsedGlyphPagesMask&(1<<uint(i)) != 0 {
			pages[i] = struct{}{}
		}
	}
	return pages
}

func (c *Canvas) ensureGlyphPageSlot(page int) int32 {
	if idx, ok := c.glyphPageSlot[page]; ok {
		return idx
	}
	idx := int32(len(c.Params))
	c.Params = append(c.Params, PaintParamsRow{DirectTexture: true, PageIndex: int32(page)})
	c.glyphPageSlot[page] = idx
	return idx
}

// packStyle resolves a RenderStyle to a parameters-array row index, reusing
// an existing row if the same (hash, alpha) pair was already packed this
// frame (spec.md §4.6 "Paint interning").
func (c *Canvas) packStyle(style RenderStyle) int32 {
	key := paintKey{hash: style.Hash, alpha: c.globalAlpha}
	if idx, ok := c.paramsByPaint[key]; ok {
		return idx
	}

	innerSrc, outerSrc := style.InnerColor, style.OuterColor
	innerSrc.A *= c.globalAlpha
	outerSrc.A *= c.globalAlpha
	inner := innerSrc.Premultiplied()
	outer := outerSrc.Premultiplied()

	const epsilon = 1e-6
	feather := style.Feather
	row := PaintParamsRow{
		InnerColor:  inner,
		OuterColor:  outer,
		Extent:      style.Extent,
		Base:        style.Base,
		WrapBits:    wrapBits(style),
		Radius:      style.Radius,
		Feather:     feather,
		FeatherHalf: feather / 2,
		InvFeather:  1 / maxF32(epsilon, feather),
		UVMin:       style.UVMin,
		UVMax:       style.UVMax,
		ImageRefIndex: -1,
	}
	if style.Image != nil {
		row.ImageRefIndex = c.resolveImageRef(*style.Image)
	}

	idx := int32(len(c.Params))
	c.Params = append(c.Params, row)
	c.paramsByPaint[key] = idx
	return idx
}

func wrapBits(s RenderStyle) uint8 {
	var bits uint8
	if s.WrapU != WrapPad {
		bits |= 1
	}
	if s.WrapV != WrapPad {
		bits |= 2
	}
	if s.CustomUV {
		bits |= 4
	}
	return bits
}

func (c *Canvas) resolveImageRef(ref ImageRef) int32 {
	if idx, ok := c.imageRefIndex[ref]; ok {
		return idx
	}
	idx := int32(len(c.ImageRefs))
	c.ImageRefs = append(c.ImageRefs, ref)
	c.imageRefIndex[ref] = idx
	return idx
}

// emitCustom dispatches a group carrying a CustomRenderInfo (spec.md §4.5
// "Custom renderer hook") as a Custom batch: the vertex range is packed
// exactly like a convex fill, but the batch's shader binding is the
// registered custom drawer rather than the paint pipeline.
func (c *Canvas) emitCustom(geom *Geometry, group *RenderGroup, paramIdx int32) {
	first := uint32(len(c.Indices))
	base := uint32(len(c.Vertices))
	for i := uint32(0); i < group.VertexCount; i++ {
		v := geom.Vertices[group.FirstVertex+i]
		v.Pos = c.placement.TransformPoint(v.Pos)
		c.Vertices = append(c.Vertices, c.packVertex(v, paramIdx))
		c.Indices = append(c.Indices, base+i)
	}
	var payload []byte
	off, size := group.Custom.PayloadOffset, group.Custom.PayloadSize
	if size > 0 && int(off+size) <= len(geom.CustomPayloads) {
		payload = geom.CustomPayloads[off : off+size]
	}
	c.appendBatch(Batch{
		FirstIndex: first, IndexCount: group.VertexCount, BlendOp: group.BlendOp, Kind: BatchCustom,
		CustomDrawerID: group.Custom.KindID, CustomPayload: payload,
	})
}

func (c *Canvas) emitConvexFill(geom *Geometry, group *RenderGroup, paramIdx int32) {
	first := uint32(len(c.Indices))
	base := uint32(len(c.Vertices))
	for i := uint32(0); i < group.VertexCount; i++ {
		v := geom.Vertices[group.FirstVertex+i]
		v.Pos = c.placement.TransformPoint(v.Pos)
		c.Vertices = append(c.Vertices, c.packVertex(v, paramIdx))
		c.Indices = append(c.Indices, base+i)
	}
	c.appendBatch(Batch{FirstIndex: first, IndexCount: group.VertexCount, BlendOp: group.BlendOp, Kind: BatchConvexFill})
}

func (c *Canvas) emitConcaveFill(geom *Geometry, group *RenderGroup, paramIdx int32) {
	for p := uint32(0); p < group.PathCount; p++ {
		sub := geom.Paths[group.FirstPath+p]
		if sub.FillCount == 0 {
			continue
		}
		first := uint32(len(c.Indices))
		base := uint32(len(c.Vertices))
		for i := uint32(0); i < sub.FillCount; i++ {
			v := geom.Vertices[sub.FirstFillVtx+i]
			v.Pos = c.placement.TransformPoint(v.Pos)
			c.Vertices = append(c.Vertices, c.packVertex(v, paramIdx))
			c.Indices = append(c.Indices, base+i)
		}
		c.appendBatch(Batch{FirstIndex: first, IndexCount: sub.FillCount, BlendOp: group.BlendOp, Kind: BatchConcaveMask})
	}

	// Cover quad over the group's bounds, drawn once the stencil mask from
	// every sub-path above has accumulated (spec.md §4.6 "ConcaveFill").
	b := group.Bounds
	quad := [4]Vec2{
		{X: b.Min.X, Y: b.Min.Y}, {X: b.Max.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Max.Y}, {X: b.Min.X, Y: b.Max.Y},
	}
	first := uint32(len(c.Indices))
	base := uint32(len(c.Vertices))
	for _, p := range quad {
		c.Vertices = append(c.Vertices, c.packVertex(Vertex{Pos: c.placement.TransformPoint(p), Color: White}, paramIdx))
	}
	c.Indices = append(c.Indices, base, base+1, base+2, base, base+2, base+3)
	c.appendBatch(Batch{FirstIndex: first, IndexCount: 6, BlendOp: group.BlendOp, Kind: BatchConcaveFill})
}

func (c *Canvas) emitGlyphs(geom *Geometry, group *RenderGroup) {
	for i := uint32(0); i < group.GlyphCount; i++ {
		g := geom.Glyphs[group.FirstGlyph+i]
		placement, page, ok := c.resolveGlyph(g.GlyphKey)
		if !ok {
			continue
		}
		paramIdx := c.ensureGlyphPageSlot(page)
		color := g.ModulationColor.MulAlpha(c.globalAlpha)

		uvs := [4]Vec2{
			{X: placement.UVMin.X, Y: placement.UVMin.Y},
			{X: placement.UVMax.X, Y: placement.UVMin.Y},
			{X: placement.UVMax.X, Y: placement.UVMax.Y},
			{X: placement.UVMin.X, Y: placement.UVMax.Y},
		}
		for k := 0; k < 4; k++ {
			pos := c.placement.TransformPoint(g.LocalQuad[k])
			c.ringVerts = append(c.ringVerts, c.packVertex(Vertex{Pos: pos, UV: uvs[k], Color: color}, paramIdx))
		}
		if len(c.ringVerts) >= glyphRingCapacity*4 {
			c.flushGlyphRing()
		}
	}
}

func (c *Canvas) resolveGlyph(key GlyphKey) (glyphatlas.Placement, int, bool) {
	if c.glyphAtlas == nil {
		return glyphatlas.Placement{}, 0, false
	}
	gk := glyphatlas.Key{Font: string(key.Font), SizePx: key.SizePx, GlyphIndex: key.GlyphIndex, StyleFlags: key.StyleFlags}
	placement, _ := c.glyphAtlas.Lookup(gk, c.glyphRaster)
	if placement.Width == 0 || placement.Height == 0 {
		return placement, 0, false
	}
	return placement, placement.Page, true
}

func (c *Canvas) flushGlyphRing() {
	if len(c.ringVerts) == 0 {
		return
	}
	first := uint32(len(c.Indices))
	base := uint32(len(c.Vertices))
	c.Vertices = append(c.Vertices, c.ringVerts...)
	for i := uint32(0); i < uint32(len(c.ringVerts)); i += 4 {
		q := base + i
		c.Indices = append(c.Indices, q, q+1, q+2, q, q+2, q+3)
	}
	c.appendBatch(Batch{FirstIndex: first, IndexCount: uint32(len(c.ringVerts)) / 4 * 6, BlendOp: BlendSourceOver, Kind: BatchConvexFill})
	c.ringVerts = c.ringVerts[:0]
}

// PlaceRaw accepts externally built vertex/index data (e.g. a custom
// drawer's own tessellation) and packs it through the same paint and
// pixel-transform pipeline as builder-produced geometry (spec.md §4.6
// "Raw quads and custom drawers").
func (c *Canvas) PlaceRaw(style RenderStyle, vertices []Vertex, indices []uint32, customDrawerID uint32, hasCustomDrawer bool, payload []byte, blendOp BlendOp) {
	if c.currentScissor().empty || len(vertices) == 0 || len(indices) == 0 {
		return
	}
	paramIdx := c.packStyle(style)

	minV, maxV := indices[0], indices[0]
	for _, idx := range indices {
		if idx < minV {
			minV = idx
		}
		if idx > maxV {
			maxV = idx
		}
	}

	first := uint32(len(c.Indices))
	base := uint32(len(c.Vertices))
	for i := minV; i <= maxV; i++ {
		c.Vertices = append(c.Vertices, c.packVertex(vertices[i], paramIdx))
	}
	for _, idx := range indices {
		c.Indices = append(c.Indices, base+(idx-minV))
	}

	kind := BatchConvexFill
	if hasCustomDrawer {
		kind = BatchCustom
	}
	c.appendBatch(Batch{
		FirstIndex: first, IndexCount: uint32(len(indices)), BlendOp: blendOp, Kind: kind,
		CustomDrawerID: customDrawerID, CustomPayload: payload,
	})
}

// PlaceBuilder is a convenience alias for baking b's currently accumulated
// shape and placing it immediately, without disturbing b's own state
// (spec.md §9: "extractNoReset(temp); place(temp); releaseRef(temp)").
// Equivalent to calling b.Build() and Place, except b keeps accumulating
// afterward instead of being reset.
func (c *Canvas) PlaceBuilder(b *GeometryBuilder) {
	c.Place(b.snapshot())
}

func (c *Canvas) appendBatch(b Batch) {
	c.Batches = append(c.Batches, b)
}

// packVertex transforms a builder-space Vertex into pixel space and
// precomputes its clip test against the current scissor (spec.md §4.6
// "Scissor": "(−center, 1/halfExtent) so fragment culling is a single
// multiply-add per vertex").
func (c *Canvas) packVertex(v Vertex, paramIdx int32) CanvasVertex {
	pos := c.toPixel(v.Pos)
	scissor := c.currentScissor().rect
	center := scissor.Min.Add(scissor.Max).Scale(0.5)
	half := Vec2{X: maxF32(1e-6, scissor.Width()/2), Y: maxF32(1e-6, scissor.Height()/2)}
	return CanvasVertex{
		Pos:               pos,
		UV:                v.UV,
		Color:             v.Color,
		ParamIndex:        paramIdx,
		ClipCenter:        center.Neg(),
		ClipInvHalfExtent: Vec2{X: 1 / half.X, Y: 1 / half.Y},
	}
}

func (c *Canvas) toPixel(p Vec2) Vec2 {
	return Vec2{
		X: (p.X + c.pixelOffset.X) * c.pixelScale,
		Y: (p.Y + c.pixelOffset.Y) * c.pixelScale,
	}
}

func (c *Canvas) transformRectToPixel(r Rect) Rect {
	corners := [4]Vec2{
		c.placement.TransformPoint(Vec2{X: r.Min.X, Y: r.Min.Y}),
		c.placement.TransformPoint(Vec2{X: r.Max.X, Y: r.Min.Y}),
		c.placement.TransformPoint(Vec2{X: r.Max.X, Y: r.Max.Y}),
		c.placement.TransformPoint(Vec2{X: r.Min.X, Y: r.Max.Y}),
	}
	out := EmptyRect()
	for _, p := range corners {
		out = out.Include(c.toPixel(p))
	}
	return out
}

// CulledCount returns how many Place calls this frame were fully culled
// by the scissor or bounds test, for diagnostics (spec.md §4.6 step 1
// "bump a counter and return").
func (c *Canvas) CulledCount() int { return c.culledCount }
