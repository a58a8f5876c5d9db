package volfog

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Side identifies a face of the fog box. Opposite sides differ only in the
// lowest bit.
type Side int

const (
	SideBottom Side = iota
	SideTop
	SideLeft
	SideRight
	SideFront
	SideBack
)

// Opposite returns the parallel face on the other side of the box.
func (s Side) Opposite() Side { return s ^ 1 }

func (s Side) String() string { return Marker(s).String() }

// BoxGeometry is the fog volume for a single frame, derived from marker
// positions.
//
// Normals are through-thickness directions: Normals[s] points from face s
// towards its opposite face, that is into the box. They are not outward
// normals.
type BoxGeometry struct {
	Center  mgl32.Vec3
	Faces   [6]mgl32.Vec3
	Corners [numCorners]mgl32.Vec3
	Normals [6]mgl32.Vec3
	// Missing lists the markers that kept their previous value during the
	// last tolerant resolution.
	Missing []Marker
}

// ResolveBox updates prev with the positions in m. Markers absent from m
// keep the value they had in prev and are reported in Missing; no error is
// raised. Use [ResolveBoxStrict] when every marker must be present.
func ResolveBox(prev BoxGeometry, m Markers) BoxGeometry {
	box := prev
	box.Missing = nil
	for mk := MarkerBottom; mk < numMarkers; mk++ {
		p, ok := m[mk]
		switch {
		case !ok:
			box.Missing = append(box.Missing, mk)
		case mk.IsCorner():
			box.Corners[mk-MarkerBLF] = p
		default:
			box.Faces[mk] = p
		}
	}
	box.update()
	return box
}

// ResolveBoxStrict builds a box from a complete marker set. Any missing
// marker yields a *ConfigurationError wrapping [ErrMissingMarker].
func ResolveBoxStrict(m Markers) (BoxGeometry, error) {
	missing := m.Missing()
	if len(missing) > 0 {
		cerr := &ConfigurationError{Err: ErrMissingMarker}
		for _, mk := range missing {
			cerr.addf("volume marker %s not set", mk)
		}
		return BoxGeometry{}, cerr
	}
	return ResolveBox(BoxGeometry{}, m), nil
}

// MarkersFromTransform generates the fourteen markers of a box with the
// given centre, full size along its local axes, and orientation. The axes
// are expected to be orthonormal.
func MarkersFromTransform(center, scale, up, forward, right mgl32.Vec3) Markers {
	u := up.Mul(scale.Y() / 2)
	r := right.Mul(scale.X() / 2)
	f := forward.Mul(scale.Z() / 2)
	m := Markers{
		MarkerBottom: center.Sub(u),
		MarkerTop:    center.Add(u),
		MarkerLeft:   center.Sub(r),
		MarkerRight:  center.Add(r),
		MarkerFront:  center.Add(f),
		MarkerBack:   center.Sub(f),
	}
	for c := MarkerBLF; c < numMarkers; c++ {
		v, l, d := cornerSides(c)
		m[c] = center.Add(m[Marker(v)].Sub(center)).Add(m[Marker(l)].Sub(center)).Add(m[Marker(d)].Sub(center))
	}
	return m
}

// NewBoxFromTransform is shorthand for resolving the markers produced by
// [MarkersFromTransform].
func NewBoxFromTransform(center, scale, up, forward, right mgl32.Vec3) (BoxGeometry, error) {
	return ResolveBoxStrict(MarkersFromTransform(center, scale, up, forward, right))
}

func (b *BoxGeometry) update() {
	var sum mgl32.Vec3
	for _, f := range b.Faces {
		sum = sum.Add(f)
	}
	b.Center = sum.Mul(1.0 / 6)
	for s := SideBottom; s <= SideBack; s++ {
		b.Normals[s], _ = normalize(b.Faces[s.Opposite()].Sub(b.Faces[s]))
	}
}

// Up is the unit direction from the bottom face to the top face.
func (b *BoxGeometry) Up() mgl32.Vec3 { return b.Normals[SideBottom] }

// Right is the unit direction from the left face to the right face.
func (b *BoxGeometry) Right() mgl32.Vec3 { return b.Normals[SideLeft] }

// Forward is the unit direction from the back face to the front face.
func (b *BoxGeometry) Forward() mgl32.Vec3 { return b.Normals[SideBack] }

// Thickness is the distance between face s and its opposite face.
func (b *BoxGeometry) Thickness(s Side) float32 {
	return b.Faces[s.Opposite()].Sub(b.Faces[s]).Len()
}

// HalfExtents returns half the box size along its right, up and forward axes.
func (b *BoxGeometry) HalfExtents() mgl32.Vec3 {
	return mgl32.Vec3{
		b.Thickness(SideLeft) / 2,
		b.Thickness(SideBottom) / 2,
		b.Thickness(SideFront) / 2,
	}
}

// Degenerate reports whether any extent of the box is too small to march.
func (b *BoxGeometry) Degenerate() bool {
	h := b.HalfExtents()
	return !finiteVec(h) || h[0] < epsilon || h[1] < epsilon || h[2] < epsilon
}

// Local expresses p relative to the box centre along the box's right, up
// and forward axes.
func (b *BoxGeometry) Local(p mgl32.Vec3) mgl32.Vec3 {
	d := p.Sub(b.Center)
	return mgl32.Vec3{d.Dot(b.Right()), d.Dot(b.Up()), d.Dot(b.Forward())}
}

// AxisAlignedBounds returns the world-axis box of the same centre and
// extents, ignoring orientation.
func (b *BoxGeometry) AxisAlignedBounds() (min, max mgl32.Vec3) {
	h := b.HalfExtents()
	return b.Center.Sub(h), b.Center.Add(h)
}

// Plane returns the plane of face s whose normal is the through-thickness
// normal of that face.
func (b *BoxGeometry) Plane(s Side) Plane {
	return Plane{Point: b.Faces[s], Normal: b.Normals[s]}
}

// ConsistentCorners reports whether every corner lies where the face
// midpoints place it, within tol.
func (b *BoxGeometry) ConsistentCorners(tol float32) bool {
	for c := MarkerBLF; c < numMarkers; c++ {
		v, l, d := cornerSides(c)
		want := b.Center.
			Add(b.Faces[v].Sub(b.Center)).
			Add(b.Faces[l].Sub(b.Center)).
			Add(b.Faces[d].Sub(b.Center))
		if d := b.Corners[c-MarkerBLF].Sub(want); math32.Abs(d[0]) > tol || math32.Abs(d[1]) > tol || math32.Abs(d[2]) > tol {
			return false
		}
	}
	return true
}
