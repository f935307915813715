package vgcanvas

// Renderer is the command sink a GPU backend implements and the core
// drives at the end of a frame (spec.md §6 "Renderer interface"). The
// core emits these calls in strict submission order and never calls
// back into the renderer outside of them; a Renderer implementation
// never calls back into the core either.
//
// A typical frame: upload the four arrays once via UploadVertices,
// UploadIndices, UploadParams and UploadImageRefs, then walk Batches
// in order calling Draw (or BindCustomDrawer followed by Draw for
// BatchCustom entries).
type Renderer interface {
	// UploadVertices makes a CanvasVertex buffer view available for
	// subsequent Draw calls to index into.
	UploadVertices(vertices []CanvasVertex)

	// UploadIndices makes an index buffer view available for
	// subsequent Draw calls.
	UploadIndices(indices []uint32)

	// UploadParams makes the paint parameters array available for the
	// shader's per-vertex ParamIndex lookups.
	UploadParams(params []PaintParamsRow)

	// UploadImageRefs makes the resolved image-reference table
	// available for PaintParamsRow.ImageRefIndex lookups.
	UploadImageRefs(refs []ImageRef)

	// BindCustomDrawer binds the shader registered under id before a
	// BatchCustom draw, passing its opaque payload through unexamined
	// (spec.md §4.5 "Custom renderer hook").
	BindCustomDrawer(id uint32, payload []byte) error

	// Draw issues one batched draw call over [firstIndex, firstIndex+
	// indexCount) of the currently uploaded index buffer, blended with
	// blendOp and dispatched per kind.
	Draw(firstIndex, indexCount uint32, blendOp BlendOp, kind BatchKind)
}

// Submit drives renderer through one Canvas's accumulated output in
// submission order (spec.md §6: "The core emits these operations in
// submission order at the end of the frame"). It is a thin, optional
// convenience — callers are equally free to read Canvas.Vertices,
// Canvas.Indices, Canvas.Params, Canvas.ImageRefs and Canvas.Batches
// directly and drive a Renderer themselves.
func Submit(r Renderer, c *Canvas) error {
	r.UploadVertices(c.Vertices)
	r.UploadIndices(c.Indices)
	r.UploadParams(c.Params)
	r.UploadImageRefs(c.ImageRefs)

	for _, b := range c.Batches {
		if b.Kind == BatchCustom {
			if err := r.BindCustomDrawer(b.CustomDrawerID, b.CustomPayload); err != nil {
				return err
			}
		}
		r.Draw(b.FirstIndex, b.IndexCount, b.BlendOp, b.Kind)
	}
	return nil
}

// SubmitBaked drives renderer through a BakedGeometry's frozen arrays,
// validating it is not stale against its originating Storage first
// (spec.md §4.7, §7 "StaleBakedGeometry").
func SubmitBaked(r Renderer, b *BakedGeometry) error {
	if err := b.Validate(); err != nil {
		return err
	}

	r.UploadVertices(b.Vertices)
	r.UploadIndices(b.Indices)
	r.UploadParams(b.Params)
	r.UploadImageRefs(b.ImageRefs)

	for _, batch := range b.Batches {
		if batch.Kind == BatchCustom {
			if err := r.BindCustomDrawer(batch.CustomDrawerID, batch.CustomPayload); err != nil {
				return err
			}
		}
		r.Draw(batch.FirstIndex, batch.IndexCount, batch.BlendOp, batch.Kind)
	}
	return nil
}
