package geom

import "math"

// Vec is a 2D coordinate pair, used both for point positions and for the
// free vectors (directions, offsets) derived from them.
//
// This mirrors mp.Point from the teacher's engine, trimmed to the vector
// algebra the constraint residuals in package constraint actually need.
type Vec struct {
	X, Y float64
}

// V creates a Vec from x, y coordinates.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Add returns the vector sum of two vectors.
func (v Vec) Add(w Vec) Vec {
	return Vec{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the vector difference v - w.
func (v Vec) Sub(w Vec) Vec {
	return Vec{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by s.
func (v Vec) Mul(s float64) Vec {
	return Vec{X: v.X * s, Y: v.Y * s}
}

// Length returns the Euclidean norm of the vector.
func (v Vec) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Dot returns the dot product of two vectors.
func (v Vec) Dot(w Vec) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Cross returns the 2D cross product (the z-component of the 3D cross
// product of the vectors extended into the xy-plane).
func (v Vec) Cross(w Vec) float64 {
	return v.X*w.Y - v.Y*w.X
}

// Perp returns v rotated 90 degrees counter-clockwise (v-perp in spec.md
// §4.1's notation).
func (v Vec) Perp() Vec {
	return Vec{X: -v.Y, Y: v.X}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Vec) float64 {
	return a.Sub(b).Length()
}

// MidPoint returns the midpoint between two points.
func MidPoint(a, b Vec) Vec {
	return Vec{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
