package volfog

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// epsilon guards denominators such as lengths used for normalization and
// half extents used in falloff fractions.
const epsilon = 1e-6

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	} else if v > hi {
		return hi
	}
	return v
}

func saturate(v float32) float32 {
	return clampf(v, 0, 1)
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

func finiteVec(v mgl32.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}

// normalize returns the unit vector of v. Vectors shorter than epsilon
// return the zero vector and false instead of NaNs.
func normalize(v mgl32.Vec3) (mgl32.Vec3, bool) {
	l := v.Len()
	if l < epsilon || !finite(l) {
		return mgl32.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

func minElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Min(a[0], b[0]), math32.Min(a[1], b[1]), math32.Min(a[2], b[2])}
}

func maxElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Max(a[0], b[0]), math32.Max(a[1], b[1]), math32.Max(a[2], b[2])}
}
