package vgcanvas

import "github.com/google/uuid"

// ImageID identifies a registered image independent of its atlas
// placement, which may move on rebuild (spec.md §3 "Lifecycles").
type ImageID string

// FontHandle identifies a font known to the Font interface (spec.md §6).
type FontHandle string

// NewImageID generates a fresh, collision-free ImageID for callers that
// don't already have a natural key (a content hash, a file path) to use.
// Grounded on cross-notifier's uuid.New().String() usage for generating
// opaque stable identifiers.
func NewImageID() ImageID {
	return ImageID(uuid.New().String())
}

// NewFontHandle generates a fresh FontHandle for a font that has no
// natural name (e.g. an embedded font blob with no family metadata).
func NewFontHandle() FontHandle {
	return FontHandle(uuid.New().String())
}
