package volfog

import (
	"context"
	"image"
	"image/color"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// shadowBias offsets shadow rays off the surface they start on.
const shadowBias = 1e-3

// Scene is a minimal opaque world that fog is drawn over.
type Scene struct {
	Models  []*Model
	Ambient float32
	Sky     color.RGBA
}

func NewScene() *Scene {
	return &Scene{
		Ambient: DefaultAmbientLight,
		Sky:     color.RGBA{R: 135, G: 170, B: 210, A: 255},
	}
}

func (s *Scene) AddModel(m *Model) {
	s.Models = append(s.Models, m)
}

// Hit describes the nearest surface along a ray.
type Hit struct {
	T      float32
	Point  mgl32.Vec3
	Normal mgl32.Vec3
	Face   *Face
}

// Raycast returns the nearest hit along r closer than tMax.
func (s *Scene) Raycast(r Ray, tMax float32) (Hit, bool) {
	best := tMax
	var face *Face
	for _, m := range s.Models {
		if t, f, ok := m.Intersect(r, 0, best); ok {
			best, face = t, f
		}
	}
	if face == nil {
		return Hit{}, false
	}
	n := face.Normal()
	if n.Dot(r.Dir) > 0 {
		n = n.Mul(-1)
	}
	return Hit{T: best, Point: r.At(best), Normal: n, Face: face}, true
}

// Bounds is the world-axis box around every model.
func (s *Scene) Bounds() (min, max mgl32.Vec3) {
	for i, m := range s.Models {
		lo, hi := m.Bounds()
		if i == 0 {
			min, max = lo, hi
			continue
		}
		min, max = minElem(min, lo), maxElem(max, hi)
	}
	return min, max
}

// Occluder returns exact shadow-ray occlusion for light travelling along
// dir.
func (s *Scene) Occluder(sun *DirectionalLight) Occluder {
	toLight, _ := normalize(sun.Direction.Mul(-1))
	return &rayOccluder{scene: s, toLight: toLight}
}

type rayOccluder struct {
	scene   *Scene
	toLight mgl32.Vec3
}

func (o *rayOccluder) Occlusion(p mgl32.Vec3) float32 {
	r := Ray{Origin: p.Add(o.toLight.Mul(shadowBias)), Dir: o.toLight}
	if _, hit := o.scene.Raycast(r, math32.Inf(1)); hit {
		return 1
	}
	return 0
}

// RenderOpaque ray casts the scene from cam. Pixels that hit nothing get
// the sky colour and an infinite depth. The depth buffer holds distance
// along each pixel's ray.
func (s *Scene) RenderOpaque(ctx context.Context, cam CameraState, sun *DirectionalLight, shadows Occluder) (*image.RGBA, *DepthBuffer, error) {
	img := image.NewRGBA(image.Rect(0, 0, cam.Width, cam.Height))
	depth := NewDepthBuffer(cam.Width, cam.Height)

	var toLight mgl32.Vec3
	if sun != nil {
		toLight, _ = normalize(sun.Direction.Mul(-1))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < cam.Height; y++ {
		y := y
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for x := 0; x < cam.Width; x++ {
				r, farT, ok := cam.Ray(x, y)
				if !ok {
					img.SetRGBA(x, y, s.Sky)
					continue
				}
				hit, ok := s.Raycast(r, farT)
				if !ok {
					img.SetRGBA(x, y, s.Sky)
					continue
				}
				depth.Dist[y*depth.Width+x] = hit.T
				var occ float32
				if shadows != nil {
					occ = shadows.Occlusion(hit.Point.Add(hit.Normal.Mul(shadowBias)))
				}
				if sun == nil {
					occ = 1
				}
				img.SetRGBA(x, y, ShadeColor(hit.Face.Col, hit.Normal, toLight, s.Ambient, occ))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return img, depth, nil
}

