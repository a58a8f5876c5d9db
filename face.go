package volfog

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	FACE_NORMAL  = 0
	FACE_REVERSE = 1
)

// Face is a flat convex polygon with a single colour.
type Face struct {
	Points []mgl32.Vec3
	Col    color.RGBA
	normal mgl32.Vec3
	plane  *Plane
	pend   []mgl32.Vec3
	meRev  bool
}

func NewFace(pnts []mgl32.Vec3, col color.RGBA) *Face {
	f := &Face{Points: pnts, Col: col}
	if len(pnts) > 0 {
		f.createNormal()
	}
	return f
}

func (f *Face) AddPoint(x, y, z float32) {
	f.pend = append(f.pend, mgl32.Vec3{x, y, z})
}

// Finished commits the points added with AddPoint. FACE_REVERSE flips the
// winding used for the normal.
func (f *Face) Finished(reverse int) {
	f.meRev = reverse == FACE_REVERSE
	f.Points = f.pend
	f.pend = nil
	f.plane = nil
	f.createNormal()
}

func (f *Face) Normal() mgl32.Vec3 {
	return f.normal
}

func (f *Face) Plane() Plane {
	if f.plane == nil {
		p := Plane{Point: f.MidPoint(), Normal: f.normal}
		f.plane = &p
	}
	return *f.plane
}

func (f *Face) createNormal() {
	if len(f.Points) < 3 {
		f.normal = mgl32.Vec3{0, 0, 1}
		return
	}
	u := f.Points[1].Sub(f.Points[0])
	v := f.Points[2].Sub(f.Points[1])
	n := u.Cross(v)
	if f.meRev {
		n = n.Mul(-1)
	}
	f.normal, _ = normalize(n)
}

// MidPoint is the average of the face's points.
func (f *Face) MidPoint() mgl32.Vec3 {
	var sum mgl32.Vec3
	if len(f.Points) == 0 {
		return sum
	}
	for _, p := range f.Points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float32(len(f.Points)))
}

func (f *Face) transform(m mgl32.Mat4) {
	for i, p := range f.Points {
		f.Points[i] = TransformPoint(m, p)
	}
	f.plane = nil
	f.createNormal()
}

// Intersect returns the distance along r to the face, if r crosses it
// within (tMin, tMax).
func (f *Face) Intersect(r Ray, tMin, tMax float32) (float32, bool) {
	if len(f.Points) < 3 {
		return 0, false
	}
	t, ok := f.Plane().RayIntersect(r.Origin, r.Dir)
	if !ok || t <= tMin || t >= tMax {
		return 0, false
	}
	if !f.contains(r.At(t)) {
		return 0, false
	}
	return t, true
}

// contains projects the polygon onto the axis plane the normal is most
// aligned with and counts edge crossings of a ray from p.
func (f *Face) contains(p mgl32.Vec3) bool {
	ax, ay, az := math32.Abs(f.normal.X()), math32.Abs(f.normal.Y()), math32.Abs(f.normal.Z())
	u, v := 0, 1
	if ax > ay && ax > az {
		u, v = 1, 2
	} else if ay > ax && ay > az {
		u, v = 0, 2
	}

	inside := false
	n := len(f.Points)
	for i := 0; i < n; i++ {
		a, b := f.Points[i], f.Points[(i+1)%n]
		if (a[v] > p[v]) != (b[v] > p[v]) {
			x := (b[u]-a[u])*(p[v]-a[v])/(b[v]-a[v]) + a[u]
			if p[u] < x {
				inside = !inside
			}
		}
	}
	return inside
}
