package vgcanvas

// GroupKind tags a RenderGroup's batch shape (spec.md §3).
type GroupKind uint8

const (
	GroupFill GroupKind = iota
	GroupStroke
	GroupTriangles
	GroupGlyphs
)

// BlendOp selects how a group composites over existing pixels.
type BlendOp uint8

const (
	BlendSourceOver BlendOp = iota
	BlendAdditive
	BlendMultiply
	BlendCopy
)

// SubPath indexes the fill and stroke vertex ranges produced for one
// flattened sub-path (spec.md §3).
type SubPath struct {
	FirstFillVtx   uint32
	FillCount      uint32
	FirstStrokeVtx uint32
	StrokeCount    uint32
}

// CustomRenderInfo attaches a user-registered renderer to a group
// (spec.md §4.5 "Custom renderer hook").
type CustomRenderInfo struct {
	KindID        uint32
	PayloadOffset uint32
	PayloadSize   uint32
}

// RenderGroup is one emitted draw unit: a style, a blend mode, and a range
// into the owning Geometry's paths/vertices/glyphs (spec.md §3).
type RenderGroup struct {
	Kind       GroupKind
	StyleIndex uint16
	BlendOp    BlendOp
	Convex     bool

	FirstPath uint32
	PathCount uint32

	FirstVertex uint32
	VertexCount uint32

	FirstGlyph uint32
	GlyphCount uint32

	Bounds Rect

	Custom *CustomRenderInfo // nil unless selectRenderer was active
}

// Geometry is the immutable, arena-indexed product of a GeometryBuilder
// (spec.md §3 "Geometry (baked product)"). Every cross-reference inside it
// is an integer range, never a pointer, so it is trivially copyable and
// safe to hold across frames until the referenced glyph atlas rebuilds.
type Geometry struct {
	Styles []RenderStyle
	Paths  []SubPath
	Groups []RenderGroup

	Vertices []Vertex
	Glyphs   []RenderGlyph

	// CustomPayloads backs CustomRenderInfo.PayloadOffset/PayloadSize: a
	// single side buffer shared by every group's custom payload, avoiding
	// one allocation per group.
	CustomPayloads []byte

	UsedGlyphPagesMask uint64
	GlyphCacheVersion  uint32

	BoundsMin, BoundsMax Vec2
}

// Bounds returns the geometry's world-space axis-aligned bounds as a Rect.
// Returns an empty Rect if nothing was ever drawn into it (BoundsMin/Max
// are left at their EmptyRect seed). Checking this instead of vertex count
// matters for glyph-only geometry: EmitGlyphs tracks bounds without ever
// appending to Vertices.
func (g *Geometry) Bounds() Rect {
	if g.BoundsMin.X > g.BoundsMax.X || g.BoundsMin.Y > g.BoundsMax.Y {
		return EmptyRect()
	}
	return Rect{Min: g.BoundsMin, Max: g.BoundsMax}
}

// styleTable interns RenderStyle values by content hash during
// construction, so a Geometry never stores the same paint twice (spec.md
// §4.2: "the hash is the interning key").
type styleTable struct {
	styles []RenderStyle
	byHash map[uint64][]int
}

func newStyleTable() *styleTable {
	return &styleTable{byHash: make(map[uint64][]int)}
}

// intern returns the index of style in the table, appending it if no equal
// style is already present. Collisions on Hash are disambiguated by
// RenderStyle.Equal (spec.md §9 "paint hash collisions").
func (t *styleTable) intern(style RenderStyle) uint16 {
	for _, idx := range t.byHash[style.Hash] {
		if t.styles[idx].Equal(style) {
			return uint16(idx)
		}
	}
	idx := len(t.styles)
	t.styles = append(t.styles, style)
	t.byHash[style.Hash] = append(t.byHash[style.Hash], idx)
	return uint16(idx)
}
