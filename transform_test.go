package vgcanvas

import (
	"math"
	"testing"
)

func TestTransformClassification(t *testing.T) {
	if Identity().Class() != ClassIdentity {
		t.Error("Identity() should classify as ClassIdentity")
	}
	if Translation(5, 0).Class() != ClassTranslation {
		t.Error("pure translation should classify as ClassTranslation")
	}
	if ScaleTransform(2, 2).Class() != ClassFull {
		t.Error("scale should classify as ClassFull")
	}
	if RotationTransform(math.Pi / 4).Class() != ClassFull {
		t.Error("rotation should classify as ClassFull")
	}
}

func TestTransformPointFastPaths(t *testing.T) {
	p := Vec2{X: 3, Y: 4}

	if got := Identity().TransformPoint(p); got != p {
		t.Errorf("identity TransformPoint = %v, want %v", got, p)
	}

	tr := Translation(1, 2)
	if got := tr.TransformPoint(p); got != (Vec2{4, 6}) {
		t.Errorf("translation TransformPoint = %v, want {4 6}", got)
	}
}

func TestTransformPointFullPath(t *testing.T) {
	t90 := RotationTransform(math.Pi / 2)
	got := t90.TransformPoint(Vec2{X: 1, Y: 0})
	if math.Abs(float64(got.X)) > 1e-5 || math.Abs(float64(got.Y)-1) > 1e-5 {
		t.Errorf("90deg rotation of (1,0) = %v, want ~(0,1)", got)
	}
}

func TestTransformMultiplyOrder(t *testing.T) {
	// Multiply(o) applies o first, then t: translate-then-scale should
	// scale around the origin after translating.
	translate := Translation(10, 0)
	scale := ScaleTransform(2, 2)
	combined := scale.Multiply(translate)

	got := combined.TransformPoint(Vec2{X: 0, Y: 0})
	if got != (Vec2{20, 0}) {
		t.Errorf("scale-after-translate of origin = %v, want {20 0}", got)
	}
}

func TestTransformInverse(t *testing.T) {
	tr := NewTransform(2, 0, 5, 0, 3, -1)
	inv, ok := tr.Inverse()
	if !ok {
		t.Fatal("expected invertible transform")
	}
	p := Vec2{X: 7, Y: -2}
	roundTrip := inv.TransformPoint(tr.TransformPoint(p))
	if math.Abs(float64(roundTrip.X-p.X)) > 1e-4 || math.Abs(float64(roundTrip.Y-p.Y)) > 1e-4 {
		t.Errorf("round trip through inverse = %v, want %v", roundTrip, p)
	}
}

func TestTransformInverseSingular(t *testing.T) {
	singular := NewTransform(0, 0, 0, 0, 0, 0)
	_, ok := singular.Inverse()
	if ok {
		t.Error("expected singular transform to report no inverse")
	}
}

func TestTransformRect(t *testing.T) {
	r := Rect{Min: Vec2{0, 0}, Max: Vec2{10, 10}}
	tr := Translation(5, 5)
	got := tr.TransformRect(r)
	want := Rect{Min: Vec2{5, 5}, Max: Vec2{15, 15}}
	if got != want {
		t.Errorf("TransformRect = %v, want %v", got, want)
	}

	rot := RotationTransform(math.Pi / 2)
	rotated := rot.TransformRect(r)
	if rotated.IsEmpty() {
		t.Error("rotated rect should not be empty")
	}
}
