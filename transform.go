package vgcanvas

import "math"

// TransformClass classifies a Transform2D so hot loops (vertex emission,
// glyph quad transforms) can branch once per batch instead of doing a full
// 2x3 multiply per vertex. See spec.md §4.1.
type TransformClass uint8

const (
	// ClassIdentity is the identity transform: points pass through unchanged.
	ClassIdentity TransformClass = iota
	// ClassTranslation has an identity linear part and non-zero translation.
	ClassTranslation
	// ClassFull is any other affine transform (scale, rotation, shear, or
	// a combination with translation).
	ClassFull
)

// Transform2D is a 2x3 affine transform:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
//
// Class is recomputed on every mutation (see recomputeClass) so that
// TransformPoint and vertex emission can take the cheapest applicable path.
// The inverse is computed lazily and cached; it is invalidated whenever the
// matrix changes.
type Transform2D struct {
	A, B, C float32
	D, E, F float32

	class TransformClass

	invValid         bool
	invA, invB, invC float32
	invD, invE, invF float32
}

// Identity returns the identity transform.
func Identity() Transform2D {
	t := Transform2D{A: 1, E: 1}
	t.recomputeClass()
	return t
}

// Translation returns a pure-translation transform.
func Translation(tx, ty float32) Transform2D {
	t := Transform2D{A: 1, E: 1, C: tx, F: ty}
	t.recomputeClass()
	return t
}

// ScaleTransform returns a transform that scales about the origin.
func ScaleTransform(sx, sy float32) Transform2D {
	t := Transform2D{A: sx, E: sy}
	t.recomputeClass()
	return t
}

// RotationTransform returns a transform that rotates by angle radians
// about the origin, mapping (1,0) to (cos, sin): counter-clockwise with y
// up, clockwise on screen in a y-down coordinate system.
func RotationTransform(angle float64) Transform2D {
	cos := float32(math.Cos(angle))
	sin := float32(math.Sin(angle))
	t := Transform2D{A: cos, B: -sin, D: sin, E: cos}
	t.recomputeClass()
	return t
}

// NewTransform builds a Transform2D from raw 2x3 coefficients and
// classifies it.
func NewTransform(a, b, c, d, e, f float32) Transform2D {
	t := Transform2D{A: a, B: b, C: c, D: d, E: e, F: f}
	t.recomputeClass()
	return t
}

// recomputeClass must be called after any field mutation (spec.md §4.1).
// Exact-identity and translation-only checks use bit-exact float equality,
// not an epsilon: a transform built by Identity() or Translation() must
// classify deterministically.
func (t *Transform2D) recomputeClass() {
	t.invValid = false
	switch {
	case t.A == 1 && t.B == 0 && t.D == 0 && t.E == 1 && t.C == 0 && t.F == 0:
		t.class = ClassIdentity
	case t.A == 1 && t.B == 0 && t.D == 0 && t.E == 1:
		t.class = ClassTranslation
	default:
		t.class = ClassFull
	}
}

// Class returns the cached classification.
func (t Transform2D) Class() TransformClass { return t.class }

// Multiply returns t applied after o, i.e. the transform that first applies
// o then t (matches the teacher's Matrix.Multiply row-major convention).
func (t Transform2D) Multiply(o Transform2D) Transform2D {
	return NewTransform(
		t.A*o.A+t.B*o.D,
		t.A*o.B+t.B*o.E,
		t.A*o.C+t.B*o.F+t.C,
		t.D*o.A+t.E*o.D,
		t.D*o.B+t.E*o.E,
		t.D*o.C+t.E*o.F+t.F,
	)
}

// TransformPoint applies the transform to a point, taking the fast path for
// Identity/Translation classes.
func (t Transform2D) TransformPoint(p Vec2) Vec2 {
	switch t.class {
	case ClassIdentity:
		return p
	case ClassTranslation:
		return Vec2{X: p.X + t.C, Y: p.Y + t.F}
	default:
		return Vec2{
			X: t.A*p.X + t.B*p.Y + t.C,
			Y: t.D*p.X + t.E*p.Y + t.F,
		}
	}
}

// TransformVector applies only the linear part (no translation) — used for
// direction vectors such as stroke extrusion normals.
func (t Transform2D) TransformVector(v Vec2) Vec2 {
	if t.class == ClassIdentity || t.class == ClassTranslation {
		return v
	}
	return Vec2{
		X: t.A*v.X + t.B*v.Y,
		Y: t.D*v.X + t.E*v.Y,
	}
}

// TransformRect returns the AABB of the transform applied to all four
// corners of r. Used for bounds propagation when culling geometry against
// the canvas scissor (spec.md §4.6 step 1).
func (t Transform2D) TransformRect(r Rect) Rect {
	if t.class == ClassIdentity {
		return r
	}
	if t.class == ClassTranslation {
		return Rect{
			Min: Vec2{r.Min.X + t.C, r.Min.Y + t.F},
			Max: Vec2{r.Max.X + t.C, r.Max.Y + t.F},
		}
	}
	corners := [4]Vec2{
		{r.Min.X, r.Min.Y}, {r.Max.X, r.Min.Y},
		{r.Max.X, r.Max.Y}, {r.Min.X, r.Max.Y},
	}
	out := EmptyRect()
	for _, c := range corners {
		out = out.Include(t.TransformPoint(c))
	}
	return out
}

// Inverse returns the inverse transform, computing and caching it on first
// use. Returns (Identity, false) for a singular matrix (determinant ~ 0).
func (t *Transform2D) Inverse() (Transform2D, bool) {
	if t.invValid {
		return NewTransform(t.invA, t.invB, t.invC, t.invD, t.invE, t.invF), true
	}
	det := t.A*t.E - t.B*t.D
	if det == 0 {
		return Identity(), false
	}
	invDet := 1 / det
	a := t.E * invDet
	b := -t.B * invDet
	d := -t.D * invDet
	e := t.A * invDet
	c := -(a*t.C + b*t.F)
	f := -(d*t.C + e*t.F)
	t.invA, t.invB, t.invC = a, b, c
	t.invD, t.invE, t.invF = d, e, f
	t.invValid = true
	return NewTransform(a, b, c, d, e, f), true
}
