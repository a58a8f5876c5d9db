package volfog

import (
	"context"
	"image/color"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestSceneRaycast(t *testing.T) {
	s := shadowScene()
	testCases := []struct {
		name   string
		ray    Ray
		hit    bool
		t      float32
		normal mgl32.Vec3
	}{
		{"cube top", Ray{mgl32.Vec3{0, 20, 0}, mgl32.Vec3{0, -1, 0}}, true, 8, mgl32.Vec3{0, 1, 0}},
		{"cube side", Ray{mgl32.Vec3{-10, 10, 1}, mgl32.Vec3{1, 0, 0}}, true, 8, mgl32.Vec3{-1, 0, 0}},
		{"ground", Ray{mgl32.Vec3{10, 20, 10}, mgl32.Vec3{0, -1, 0}}, true, 20, mgl32.Vec3{0, 1, 0}},
		{"ground from below faces the ray", Ray{mgl32.Vec3{10, -5, 10}, mgl32.Vec3{0, 1, 0}}, true, 5, mgl32.Vec3{0, -1, 0}},
		{"sky", Ray{mgl32.Vec3{0, 20, 0}, mgl32.Vec3{0, 1, 0}}, false, 0, mgl32.Vec3{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, ok := s.Raycast(tc.ray, math32.Inf(1))
			if ok != tc.hit {
				t.Fatalf("hit = %t, want %t", ok, tc.hit)
			}
			if !ok {
				return
			}
			if !almostEqual(h.T, tc.t) || !vecAlmostEqual(h.Normal, tc.normal) {
				t.Errorf("hit t=%v normal=%v, want t=%v normal=%v", h.T, h.Normal, tc.t, tc.normal)
			}
		})
	}
	if _, ok := s.Raycast(Ray{mgl32.Vec3{0, 20, 0}, mgl32.Vec3{0, -1, 0}}, 5); ok {
		t.Errorf("hit beyond tMax")
	}
}

func TestRenderOpaque(t *testing.T) {
	s := NewScene()
	c := NewCube(mgl32.Vec3{4, 4, 4}, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	c.TranslateAllPoints(0, 5, 0)
	s.AddModel(c)
	cam := NewCameraLookAt(mgl32.Vec3{0, 5, 30}, mgl32.Vec3{0, 5, 0})
	sun := &DirectionalLight{Intensity: 1, Direction: mgl32.Vec3{0, 0, -1}, Color: mgl32.Vec3{1, 1, 1}}

	img, depth, err := s.RenderOpaque(context.Background(), cam.State(9, 9), sun, s.Occluder(sun))
	if err != nil {
		t.Fatal(err)
	}
	if d := depth.At(4, 4); math32.Abs(d-28) > 0.01 {
		t.Errorf("centre depth = %v, want 28", d)
	}
	if got := img.RGBAAt(4, 4); got != (color.RGBA{R: 200, G: 200, B: 200, A: 255}) {
		t.Errorf("centre colour = %v, want fully lit", got)
	}
	if d := depth.At(0, 0); !math32.IsInf(d, 1) {
		t.Errorf("corner depth = %v, want +Inf", d)
	}
	if got := img.RGBAAt(0, 0); got != s.Sky {
		t.Errorf("corner colour = %v, want sky %v", got, s.Sky)
	}
}

func TestModelBoundsAndCentre(t *testing.T) {
	m := NewCube(mgl32.Vec3{2, 4, 6}, color.RGBA{A: 255})
	m.TranslateAllPoints(10, 0, 0)
	lo, hi := m.Bounds()
	if !vecAlmostEqual(lo, mgl32.Vec3{9, -2, -3}) || !vecAlmostEqual(hi, mgl32.Vec3{11, 2, 3}) {
		t.Errorf("Bounds() = %v, %v", lo, hi)
	}
	m.ScaleAllPoints(2)
	m.CentreObject()
	lo, hi = m.Bounds()
	if !vecAlmostEqual(lo, mgl32.Vec3{-2, -4, -6}) || !vecAlmostEqual(hi, mgl32.Vec3{2, 4, 6}) {
		t.Errorf("after centring Bounds() = %v, %v", lo, hi)
	}
	for _, f := range m.Faces {
		if d := f.MidPoint().Dot(f.Normal()); d <= 0 {
			t.Errorf("face normal %v points inwards", f.Normal())
		}
	}
}

func TestFaceReverse(t *testing.T) {
	f := &Face{}
	f.AddPoint(0, 0, 0)
	f.AddPoint(1, 0, 0)
	f.AddPoint(1, 1, 0)
	f.Finished(FACE_REVERSE)
	if !vecAlmostEqual(f.Normal(), mgl32.Vec3{0, 0, -1}) {
		t.Errorf("reversed normal = %v, want (0, 0, -1)", f.Normal())
	}
	if _, ok := f.Intersect(Ray{mgl32.Vec3{0.9, 0.1, 5}, mgl32.Vec3{0, 0, -1}}, 0, 100); !ok {
		t.Errorf("ray through the triangle missed")
	}
	if _, ok := f.Intersect(Ray{mgl32.Vec3{0.1, 0.9, 5}, mgl32.Vec3{0, 0, -1}}, 0, 100); ok {
		t.Errorf("ray outside the triangle hit")
	}
}
