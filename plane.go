package volfog

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is given by a point on it and a unit normal.
type Plane struct {
	Point  mgl32.Vec3
	Normal mgl32.Vec3
}

const planeThickness = 1e-4

// NewPlane normalizes normal. A zero normal yields a plane that nothing
// intersects.
func NewPlane(point, normal mgl32.Vec3) Plane {
	n, _ := normalize(normal)
	return Plane{Point: point, Normal: n}
}

// Distance is the signed distance from the plane to q, positive on the
// side the normal points to.
func (p Plane) Distance(q mgl32.Vec3) float32 {
	return q.Sub(p.Point).Dot(p.Normal)
}

// PointOnPlane reports whether q lies within planeThickness of the plane.
func (p Plane) PointOnPlane(q mgl32.Vec3) bool {
	return math32.Abs(p.Distance(q)) < planeThickness
}

// RayIntersect returns the ray parameter where origin + t*dir meets the
// plane. Rays parallel to the plane do not intersect it.
func (p Plane) RayIntersect(origin, dir mgl32.Vec3) (float32, bool) {
	denom := dir.Dot(p.Normal)
	if math32.Abs(denom) < epsilon {
		return 0, false
	}
	return p.Point.Sub(origin).Dot(p.Normal) / denom, true
}

// LineIntersect returns the point where segment p1-p2 crosses the plane.
func (p Plane) LineIntersect(p1, p2 mgl32.Vec3) (mgl32.Vec3, bool) {
	a, b := p.Distance(p1), p.Distance(p2)
	if (a > 0) == (b > 0) || a == 0 || b == 0 {
		return mgl32.Vec3{}, false
	}
	t, ok := p.RayIntersect(p1, p2.Sub(p1))
	if !ok {
		return mgl32.Vec3{}, false
	}
	return p1.Add(p2.Sub(p1).Mul(t)), true
}
