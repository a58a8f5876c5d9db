package volfog

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"
)

// Model is a set of faces in world space.
type Model struct {
	Faces []*Face

	min, max mgl32.Vec3
	sized    bool
}

func NewModel() *Model {
	return &Model{}
}

func (o *Model) AddFace(f *Face) {
	o.Faces = append(o.Faces, f)
	o.sized = false
}

// AddFacesFromObject appends copies of other's faces.
func (o *Model) AddFacesFromObject(other *Model) {
	for _, f := range other.Faces {
		pts := make([]mgl32.Vec3, len(f.Points))
		copy(pts, f.Points)
		nf := &Face{Points: pts, Col: f.Col, meRev: f.meRev}
		nf.createNormal()
		o.AddFace(nf)
	}
}

// ApplyMatrix transforms every point of the model permanently.
func (o *Model) ApplyMatrix(m mgl32.Mat4) {
	for _, f := range o.Faces {
		f.transform(m)
	}
	o.sized = false
}

func (o *Model) TranslateAllPoints(x, y, z float32) {
	o.ApplyMatrix(mgl32.Translate3D(x, y, z))
}

func (o *Model) ScaleAllPoints(scale float32) {
	o.ApplyMatrix(mgl32.Scale3D(scale, scale, scale))
}

// Bounds returns the world-axis bounding box of all points.
func (o *Model) Bounds() (min, max mgl32.Vec3) {
	if !o.sized {
		o.calcSize()
	}
	return o.min, o.max
}

func (o *Model) calcSize() {
	o.min, o.max = mgl32.Vec3{}, mgl32.Vec3{}
	first := true
	for _, f := range o.Faces {
		for _, p := range f.Points {
			if first {
				o.min, o.max = p, p
				first = false
				continue
			}
			o.min = minElem(o.min, p)
			o.max = maxElem(o.max, p)
		}
	}
	o.sized = true
	size := o.max.Sub(o.min)
	glog.V(2).Infof("Object size: X: %.2f, Y: %.2f, Z: %.2f", size.X(), size.Y(), size.Z())
}

// CentreObject moves the model so that its bounding box is centred on the
// origin.
func (o *Model) CentreObject() {
	if len(o.Faces) == 0 {
		return
	}
	min, max := o.Bounds()
	c := min.Add(max).Mul(0.5)
	o.TranslateAllPoints(-c.X(), -c.Y(), -c.Z())
}

// Intersect returns the nearest face hit by r within (tMin, tMax).
func (o *Model) Intersect(r Ray, tMin, tMax float32) (float32, *Face, bool) {
	if !o.rayHitsBounds(r, tMin, tMax) {
		return 0, nil, false
	}
	best := tMax
	var hit *Face
	for _, f := range o.Faces {
		if t, ok := f.Intersect(r, tMin, best); ok {
			best, hit = t, f
		}
	}
	return best, hit, hit != nil
}

func (o *Model) rayHitsBounds(r Ray, tMin, tMax float32) bool {
	min, max := o.Bounds()
	pad := mgl32.Vec3{planeThickness, planeThickness, planeThickness}
	t0, t1, ok := IntersectAABB(r, min.Sub(pad), max.Add(pad))
	return ok && t1 > tMin && t0 < tMax
}

// NewCube builds an axis-aligned box of the given full size centred on the
// origin with outward-facing normals.
func NewCube(size mgl32.Vec3, col color.RGBA) *Model {
	h := size.Mul(0.5)
	v := func(x, y, z float32) mgl32.Vec3 { return mgl32.Vec3{x * h[0], y * h[1], z * h[2]} }
	quads := [6][4]mgl32.Vec3{
		{v(-1, -1, 1), v(1, -1, 1), v(1, 1, 1), v(-1, 1, 1)},     // +Z
		{v(1, -1, -1), v(-1, -1, -1), v(-1, 1, -1), v(1, 1, -1)}, // -Z
		{v(1, -1, 1), v(1, -1, -1), v(1, 1, -1), v(1, 1, 1)},     // +X
		{v(-1, -1, -1), v(-1, -1, 1), v(-1, 1, 1), v(-1, 1, -1)}, // -X
		{v(-1, 1, 1), v(1, 1, 1), v(1, 1, -1), v(-1, 1, -1)},     // +Y
		{v(-1, -1, -1), v(1, -1, -1), v(1, -1, 1), v(-1, -1, 1)}, // -Y
	}
	m := NewModel()
	for _, q := range quads {
		m.AddFace(NewFace(q[:], col))
	}
	return m
}

// NewQuad builds a horizontal square of side size at height y, facing up.
func NewQuad(size, y float32, col color.RGBA) *Model {
	h := size / 2
	m := NewModel()
	m.AddFace(NewFace([]mgl32.Vec3{
		{-h, y, h}, {h, y, h}, {h, y, -h}, {-h, y, -h},
	}, col))
	return m
}
