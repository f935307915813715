package vgcanvas

import "math"

// Vec2 is a 2D vector or point with float32 components.
// All core geometry is expressed in float32 to match the vertex format
// the renderer ultimately uploads to the GPU (see Vertex).
type Vec2 struct {
	X, Y float32
}

// Add returns the componentwise sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 { return Vec2{v.X + w.X, v.Y + w.Y} }

// Sub returns the componentwise difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 { return Vec2{v.X - w.X, v.Y - w.Y} }

// Scale returns the vector scaled by s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Neg returns the negated vector.
func (v Vec2) Neg() Vec2 { return Vec2{-v.X, -v.Y} }

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(w Vec2) float32 { return v.X*w.X + v.Y*w.Y }

// Cross returns the z-component of the 3D cross product (v.x*w.y - v.y*w.x).
// Positive values indicate w is counter-clockwise from v.
func (v Vec2) Cross(w Vec2) float32 { return v.X*w.Y - v.Y*w.X }

// Length returns the Euclidean length of the vector.
func (v Vec2) Length() float32 { return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y))) }

// LengthSquared returns the squared length, avoiding a sqrt.
func (v Vec2) LengthSquared() float32 { return v.X*v.X + v.Y*v.Y }

// Perp returns the vector rotated 90 degrees counter-clockwise: (-y, x).
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// Normalized returns a unit-length vector in the same direction, and the
// original length. If the vector is (near) zero-length, the direction is
// returned as the zero vector and length 0, matching the path cache's
// "unit-normalize d when len > 0" rule (spec.md §4.4 step 5).
func (v Vec2) Normalized() (dir Vec2, length float32) {
	length = v.Length()
	if length > 0 {
		dir = Vec2{v.X / length, v.Y / length}
	}
	return dir, length
}

// Lerp linearly interpolates between v and w by t in [0,1].
func (v Vec2) Lerp(w Vec2, t float32) Vec2 {
	return Vec2{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
	}
}

// Min returns the componentwise minimum of two vectors.
func Min(a, b Vec2) Vec2 {
	return Vec2{minF32(a.X, b.X), minF32(a.Y, b.Y)}
}

// Max returns the componentwise maximum of two vectors.
func Max(a, b Vec2) Vec2 {
	return Vec2{maxF32(a.X, b.X), maxF32(a.Y, b.Y)}
}

func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clampF32(v, lo, hi float32) float32 {
	return maxF32(lo, minF32(hi, v))
}

// Rect is an axis-aligned bounding box in the Min/Max corner form used
// throughout the bounds fields of Geometry, RenderGroup and BakedGeometry.
type Rect struct {
	Min, Max Vec2
}

// EmptyRect returns an inverted rect (Min > Max) suitable as the seed value
// for an incremental bounds accumulation via Rect.Include.
func EmptyRect() Rect {
	return Rect{
		Min: Vec2{X: float32(math.Inf(1)), Y: float32(math.Inf(1))},
		Max: Vec2{X: float32(math.Inf(-1)), Y: float32(math.Inf(-1))},
	}
}

// IsEmpty reports whether the rect is inverted (Min greater than Max on an
// axis), as the EmptyRect seed state is. A degenerate rect with Min==Max
// on an axis is not reported empty.
func (r Rect) IsEmpty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// Include grows r to cover p, returning the expanded rect.
func (r Rect) Include(p Vec2) Rect {
	return Rect{Min: Min(r.Min, p), Max: Max(r.Max, p)}
}

// Union returns the smallest rect containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{Min: Min(r.Min, o.Min), Max: Max(r.Max, o.Max)}
}

// Intersect returns the overlap of r and o. The result IsEmpty if they do
// not overlap.
func (r Rect) Intersect(o Rect) Rect {
	result := Rect{Min: Max(r.Min, o.Min), Max: Min(r.Max, o.Max)}
	return result
}

// Width returns the rect's horizontal extent (may be negative if empty).
func (r Rect) Width() float32 { return r.Max.X - r.Min.X }

// Height returns the rect's vertical extent (may be negative if empty).
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies within the rect, inclusive of edges.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}
