package vgcanvas

// BakedGeometry is the renderer-facing flattened view of a Geometry:
// vertex/index/params/batch arrays with atlas UVs fully resolved and
// world-space bounds computed (spec.md §4.7 "Baked geometry and storage").
// It is produced by baking a Geometry against a specific Storage, and is
// only valid while that Storage's glyph atlas version matches the version
// captured at bake time.
type BakedGeometry struct {
	storage      *Storage
	atlasVersion uint32

	Vertices  []CanvasVertex
	Indices   []uint32
	Params    []PaintParamsRow
	ImageRefs []ImageRef
	Batches   []Batch
	Bounds    Rect
}

// Stale reports whether the glyph atlas has rebuilt since this
// BakedGeometry was produced, per spec.md §4.7: "valid only with the same
// Storage instance and while that storage's atlas version is unchanged."
func (b *BakedGeometry) Stale() bool {
	if b == nil || b.storage == nil {
		return true
	}
	return b.storage.glyphAtlas.Version() != b.atlasVersion
}

// Validate returns ErrStaleBakedGeometry if the geometry must be re-baked
// before submission (spec.md §7 "StaleBakedGeometry").
func (b *BakedGeometry) Validate() error {
	if b.Stale() {
		return ErrStaleBakedGeometry
	}
	return nil
}

// bake flattens geom through a scratch Canvas at the given placement and
// alpha, capturing the resulting arrays and the atlas version at the
// moment of baking. Grounded on Canvas.Place's own flattening pipeline: a
// bake is exactly one Place call against a dedicated, otherwise-empty
// canvas (spec.md §4.7: "produced by the canvas or a separate baking path").
func bake(storage *Storage, geom *Geometry, placement Transform2D, alpha float32) *BakedGeometry {
	c := storage.scratchCanvas
	c.Reset()
	c.SetPlacement(placement)
	c.SetGlobalAlpha(alpha)
	c.Place(geom)

	baked := &BakedGeometry{
		storage:      storage,
		atlasVersion: storage.glyphAtlas.Version(),
		Vertices:     append([]CanvasVertex(nil), c.Vertices...),
		Indices:      append([]uint32(nil), c.Indices...),
		Params:       append([]PaintParamsRow(nil), c.Params...),
		ImageRefs:    append([]ImageRef(nil), c.ImageRefs...),
		Batches:      append([]Batch(nil), c.Batches...),
		Bounds:       geom.Bounds(),
	}
	return baked
}
