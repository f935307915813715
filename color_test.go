package vgcanvas

import "testing"

func TestRGBAF(t *testing.T) {
	c := RGBAF(1, 0, 0.5, 1)
	if c.R != 255 || c.G != 0 || c.A != 255 {
		t.Errorf("RGBAF(1,0,0.5,1) = %v", c)
	}
	if c.B < 127 || c.B > 128 {
		t.Errorf("B channel = %d, want ~127", c.B)
	}

	clamped := RGBAF(2, -1, 0, 0)
	if clamped.R != 255 || clamped.G != 0 {
		t.Errorf("RGBAF should clamp out-of-range components, got %v", clamped)
	}
}

func TestColorToColorFRoundTrip(t *testing.T) {
	c := RGBA(128, 64, 32, 255)
	f := c.ToColorF()
	if f.A != 1 {
		t.Errorf("alpha = %v, want 1", f.A)
	}
	if f.R <= 0 || f.R >= 1 {
		t.Errorf("R = %v, want in (0,1)", f.R)
	}
}

func TestColorFPremultiplied(t *testing.T) {
	c := ColorF{R: 1, G: 1, B: 1, A: 0.5}
	p := c.Premultiplied()
	if p.R != 0.5 || p.G != 0.5 || p.B != 0.5 || p.A != 0.5 {
		t.Errorf("Premultiplied = %v, want {0.5 0.5 0.5 0.5}", p)
	}

	// Source color must be untouched.
	if c.R != 1 {
		t.Error("Premultiplied must not mutate the receiver")
	}
}

func TestColorFLerp(t *testing.T) {
	a := ColorF{R: 0, G: 0, B: 0, A: 1}
	b := ColorF{R: 1, G: 1, B: 1, A: 1}
	mid := a.Lerp(b, 0.5)
	if mid.R != 0.5 || mid.G != 0.5 || mid.B != 0.5 {
		t.Errorf("Lerp(0.5) = %v, want all 0.5", mid)
	}
}

func TestColorMulAlpha(t *testing.T) {
	c := White.MulAlpha(0.5)
	if c.A < 126 || c.A > 128 {
		t.Errorf("MulAlpha(0.5) on opaque white = alpha %d, want ~127", c.A)
	}
	if c.R != 255 || c.G != 255 || c.B != 255 {
		t.Error("MulAlpha must not touch RGB channels")
	}

	clamped := White.MulAlpha(2)
	if clamped.A != 255 {
		t.Errorf("MulAlpha should clamp factor to 1, got alpha %d", clamped.A)
	}
}
