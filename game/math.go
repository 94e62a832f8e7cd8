package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Round32 will round a float32 to a given precision.
func Round32(val float32, precision int) float32 {
	pwr := math32.Pow(10, float32(precision))
	return math32.Round(val*pwr) / pwr
}

// Float32ApproxEq determines whether two floating point numbers are close enough to each other
// by a threshold of 1e-5.
func Float32ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// Horizontal returns the vector with its vertical component removed.
func Horizontal(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.X(), v.Y(), 0}
}

// HorizontalLen returns the length of the vector's horizontal components.
func HorizontalLen(v mgl32.Vec3) float32 {
	return math32.Sqrt(v.X()*v.X() + v.Y()*v.Y())
}

// SafeNormal normalizes v, returning the zero vector instead of NaNs when v
// is (near) zero length.
func SafeNormal(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-8 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// ClampLen clamps the length of v to max, leaving shorter vectors untouched.
func ClampLen(v mgl32.Vec3, max float32) mgl32.Vec3 {
	l := v.Len()
	if l <= max || l < 1e-8 {
		return v
	}
	return v.Mul(max / l)
}

// ClampFloat clamps val into the range [min, max].
func ClampFloat(val, min, max float32) float32 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ProjectOnPlane projects v onto the plane described by the unit normal n.
func ProjectOnPlane(v, n mgl32.Vec3) mgl32.Vec3 {
	return v.Sub(n.Mul(v.Dot(n)))
}

// AngleBetweenDeg returns the unsigned angle between two vectors in degrees.
// Zero-length inputs yield zero.
func AngleBetweenDeg(a, b mgl32.Vec3) float32 {
	an, bn := SafeNormal(a), SafeNormal(b)
	if an.Len() < 1e-8 || bn.Len() < 1e-8 {
		return 0
	}
	dot := ClampFloat(an.Dot(bn), -1, 1)
	return mgl32.RadToDeg(math32.Acos(dot))
}

// AngleFromVerticalDeg returns the angle between a surface normal and the
// world up axis in degrees. Flat ground reports 0, a vertical wall 90.
func AngleFromVerticalDeg(normal mgl32.Vec3) float32 {
	return AngleBetweenDeg(normal, Up)
}

// Vec3ApproxEq reports whether two vectors are component-wise equal within
// 1e-5.
func Vec3ApproxEq(a, b mgl32.Vec3) bool {
	return Float32ApproxEq(a.X(), b.X()) && Float32ApproxEq(a.Y(), b.Y()) && Float32ApproxEq(a.Z(), b.Z())
}
