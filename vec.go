package densityfield

import "math"

// Vec3 represents a 3D position or displacement.
// Components are float32 to match GPU vertex and uniform layouts.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Mul returns the vector scaled by a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Neg returns the negation of the vector.
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(w Vec3) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Length returns the length (magnitude) of the vector.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSq())))
}

// LengthSq returns the squared length of the vector.
// Faster than Length when only magnitudes are compared.
func (v Vec3) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Distance returns the Euclidean distance between two points.
func (v Vec3) Distance(w Vec3) float32 {
	return v.Sub(w).Length()
}

// DistanceSq returns the squared Euclidean distance between two points.
func (v Vec3) DistanceSq(w Vec3) float32 {
	return v.Sub(w).LengthSq()
}

// Normalize returns a unit vector in the same direction.
// Returns the zero vector if the original vector has zero length.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / length, Y: v.Y / length, Z: v.Z / length}
}

// Lerp performs linear interpolation between two vectors.
func (v Vec3) Lerp(w Vec3, t float32) Vec3 {
	return Vec3{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
		Z: v.Z + (w.Z-v.Z)*t,
	}
}

// Min returns the component-wise minimum of two vectors.
func (v Vec3) Min(w Vec3) Vec3 {
	return Vec3{
		X: min(v.X, w.X),
		Y: min(v.Y, w.Y),
		Z: min(v.Z, w.Z),
	}
}

// Max returns the component-wise maximum of two vectors.
func (v Vec3) Max(w Vec3) Vec3 {
	return Vec3{
		X: max(v.X, w.X),
		Y: max(v.Y, w.Y),
		Z: max(v.Z, w.Z),
	}
}

// IsZero returns true if the vector is the zero vector.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Approx returns true if two vectors are approximately equal within epsilon.
func (v Vec3) Approx(w Vec3, epsilon float32) bool {
	return abs32(v.X-w.X) < epsilon && abs32(v.Y-w.Y) < epsilon && abs32(v.Z-w.Z) < epsilon
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
