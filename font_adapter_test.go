package vgcanvas

import "testing"

// TestFontFaceAdapterSatisfiesFontInterface is a compile-time check that
// FontFaceAdapter implements the Font interface; it loads no font file.
func TestFontFaceAdapterSatisfiesFontInterface(t *testing.T) {
	var _ Font = FontFaceAdapter{}
}
