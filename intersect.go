package volfog

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half line. Dir is expected to be unit length so that ray
// parameters are distances.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectAABB intersects r with the world-axis box [min, max] and returns
// the entry and exit parameters. Entry may be negative when the origin is
// inside the box.
func IntersectAABB(r Ray, min, max mgl32.Vec3) (t0, t1 float32, ok bool) {
	t0, t1 = math32.Inf(-1), math32.Inf(1)
	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin[axis], r.Dir[axis]
		if math32.Abs(d) < epsilon {
			// Parallel to this slab.
			if o < min[axis] || o > max[axis] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / d
		ta := (min[axis] - o) * inv
		tb := (max[axis] - o) * inv
		if ta > tb {
			ta, tb = tb, ta
		}
		t0 = math32.Max(t0, ta)
		t1 = math32.Min(t1, tb)
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}

// IntersectBox intersects r with the oriented box b using one slab per pair
// of opposite faces. Each slab is bounded by a face plane and the parallel
// plane one thickness further along the through-thickness normal.
func IntersectBox(r Ray, b *BoxGeometry) (t0, t1 float32, ok bool) {
	t0, t1 = math32.Inf(-1), math32.Inf(1)
	for _, s := range [3]Side{SideBottom, SideLeft, SideFront} {
		pl := b.Plane(s)
		width := b.Thickness(s)
		d0 := pl.Distance(r.Origin)
		dn := r.Dir.Dot(pl.Normal)
		if math32.Abs(dn) < epsilon {
			if d0 < 0 || d0 > width {
				return 0, 0, false
			}
			continue
		}
		ta := -d0 / dn
		tb := (width - d0) / dn
		if ta > tb {
			ta, tb = tb, ta
		}
		t0 = math32.Max(t0, ta)
		t1 = math32.Min(t1, tb)
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}
