package volfog

import (
	"context"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"
)

// DemoScene is a ground plane with a few boxes, enough to show fog over
// geometry and shadows in it.
func DemoScene() *Scene {
	s := NewScene()
	s.AddModel(NewQuad(400, 0, color.RGBA{R: 110, G: 140, B: 90, A: 255}))

	boxes := []struct {
		pos, size mgl32.Vec3
		col       color.RGBA
	}{
		{mgl32.Vec3{0, 6, 0}, mgl32.Vec3{6, 12, 6}, color.RGBA{R: 200, G: 190, B: 170, A: 255}},
		{mgl32.Vec3{-12, 3, 6}, mgl32.Vec3{5, 6, 5}, color.RGBA{R: 180, G: 90, B: 70, A: 255}},
		{mgl32.Vec3{11, 4, -8}, mgl32.Vec3{4, 8, 10}, color.RGBA{R: 90, G: 110, B: 180, A: 255}},
	}
	for _, b := range boxes {
		m := NewCube(b.size, b.col)
		m.TranslateAllPoints(b.pos.X(), b.pos.Y(), b.pos.Z())
		s.AddModel(m)
	}
	return s
}

// Demo is a complete fog setup built from a FileConfig.
type Demo struct {
	Scene   *Scene
	Camera  *Camera
	Config  FogConfig
	Volume  *BoxGeometry
	Sun     *DirectionalLight
	Point   *PointLight
	Shadows Occluder
	Noise   NoiseField
}

// NewDemo builds the demo scene, adds extra models, resolves the volume and
// captures a shadow map of shadowRes texels when there is a sun.
func NewDemo(ctx context.Context, cfg *FileConfig, shadowRes int, extra ...*Model) (*Demo, error) {
	d := &Demo{
		Scene:  DemoScene(),
		Camera: cfg.Camera.Camera(),
		Config: cfg.Fog,
		Sun:    cfg.Sun,
		Point:  cfg.Point,
	}
	noise, err := cfg.NoiseField()
	if err != nil {
		return nil, err
	}
	d.Noise = noise
	for _, m := range extra {
		d.Scene.AddModel(m)
	}
	if cfg.Volume != nil {
		box, err := cfg.Volume.Box()
		if err != nil {
			return nil, err
		}
		d.Volume = &box
	}
	if d.Sun != nil && shadowRes > 0 {
		lo, hi := d.Scene.Bounds()
		center := lo.Add(hi).Mul(0.5)
		radius := hi.Sub(lo).Len() / 2
		if d.Volume != nil {
			// The fog only needs shadows where it is.
			center = d.Volume.Center
			radius = d.Volume.HalfExtents().Len()
		}
		sm, err := CaptureShadowMap(ctx, d.Scene, d.Sun, center, radius, shadowRes)
		if err != nil {
			return nil, err
		}
		d.Shadows = sm
	} else if d.Sun != nil {
		d.Shadows = d.Scene.Occluder(d.Sun)
	}
	glog.V(1).Infof("demo with %d models, volume %t, sun %t", len(d.Scene.Models), d.Volume != nil, d.Sun != nil)
	return d, nil
}

// Frame assembles the inputs of one w by h render.
func (d *Demo) Frame(w, h int, t float32, index uint64) *Frame {
	return &Frame{
		Config:  d.Config,
		Camera:  d.Camera.State(w, h),
		Volume:  d.Volume,
		Sun:     d.Sun,
		Point:   d.Point,
		Shadows: d.Shadows,
		Noise:   d.Noise,
		Time:    t,
		Index:   index,
	}
}

// Opaque renders the scene under the demo sun.
func (d *Demo) Opaque(ctx context.Context, w, h int) (*image.RGBA, *DepthBuffer, error) {
	return d.Scene.RenderOpaque(ctx, d.Camera.State(w, h), d.Sun, d.Shadows)
}
