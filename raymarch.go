package volfog

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

const (
	// minTransmittance ends a march once the remaining light contributes
	// nothing visible.
	minTransmittance = 1e-3
	// saturationAlpha is the fog opacity reached after SaturationDistance
	// of unit density: sigma = ln(1/(1-0.95)) = ln(20).
	saturationAlpha = 0.95
)

var ln20 = math32.Log(1 / (1 - saturationAlpha))

// Evaluator raymarches fog for every pixel of a frame.
type Evaluator struct {
	// Workers bounds the number of rows evaluated at once. Zero means
	// GOMAXPROCS.
	Workers int
}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// marchState is the running result of one ray.
type marchState struct {
	pos           mgl32.Vec3
	acc           mgl32.Vec3
	transmittance float32
}

// frameLight is the per-frame part of the lighting shared by every pixel.
type frameLight struct {
	sunDir   mgl32.Vec3
	sunColor mgl32.Vec3
	ambient  mgl32.Vec3
	point    *PointLight
	shadows  Occluder
	shadowK  float32
	g        float32
}

func newFrameLight(f *Frame) frameLight {
	cfg := f.Config
	fl := frameLight{g: cfg.Anisotropy}
	if f.Sun != nil {
		fl.sunDir, _ = normalize(f.Sun.Direction)
		fl.sunColor = f.Sun.Color.Mul(f.Sun.Intensity)
	}
	if cfg.Ambient {
		fl.ambient = cfg.AmbientColor.Mul(cfg.AmbientAmount)
	}
	if cfg.ExtraLights {
		fl.point = f.Point
	}
	if cfg.Shadows && f.Shadows != nil {
		fl.shadows = f.Shadows
		fl.shadowK = cfg.ShadowStrength
	}
	return fl
}

// Render fills dst with the fog of frame f. depth may be nil, meaning no
// opaque surface limits the rays.
func (e *Evaluator) Render(ctx context.Context, f *Frame, depth *DepthBuffer, dst *FogBuffer) error {
	if dst.Width <= 0 || dst.Height <= 0 || len(dst.Pix) != dst.Width*dst.Height {
		return fmt.Errorf("fog buffer %dx%d with %d samples: %w", dst.Width, dst.Height, len(dst.Pix), ErrBufferSize)
	}
	start := time.Now()
	cam := f.Camera
	cam.Width, cam.Height = dst.Width, dst.Height
	fr := *f
	fr.Camera = cam
	m := e.prepare(&fr)

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < dst.Height; y++ {
		y := y
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := dst.Pix[y*dst.Width : (y+1)*dst.Width]
			for x := range row {
				row[x] = m.pixel(x, y, depth.Sample(x, y, dst.Width, dst.Height))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if glog.V(2) {
		glog.Infof("fog %dx%d in %v (%s)", dst.Width, dst.Height, time.Since(start), f.Config)
	}
	return nil
}

// Pixel evaluates a single pixel of f. sceneDist is the distance to the
// opaque surface along the pixel's ray, +Inf for none.
func (e *Evaluator) Pixel(f *Frame, x, y int, sceneDist float32) FogSample {
	return e.prepare(f).pixel(x, y, sceneDist)
}

type marcher struct {
	f       *Frame
	density *densityModel
	light   frameLight
	sigma   float32
	steps   int
}

func (e *Evaluator) prepare(f *Frame) *marcher {
	return &marcher{
		f:       f,
		density: newDensityModel(f),
		light:   newFrameLight(f),
		sigma:   ln20 / f.Config.SaturationDistance,
		steps:   clamp(f.Config.Steps, MinSteps, MaxSteps),
	}
}

func (m *marcher) pixel(x, y int, sceneDist float32) FogSample {
	if m.f.Volume == nil || m.f.Sun == nil || !(m.sigma > 0) || !finite(m.sigma) {
		return FogSample{}
	}
	r, farT, ok := m.f.Camera.Ray(x, y)
	if !ok {
		return FogSample{}
	}
	limit := farT
	if !math32.IsNaN(sceneDist) && sceneDist < limit {
		limit = sceneDist
	}
	t0, t1, ok := m.segment(r, limit)
	if !ok {
		return FogSample{}
	}

	jitter := float32(0.5)
	if m.f.Config.Randomize {
		jitter = pixelHash(x, y, m.f.Index)
	}
	st := m.march(r, t0, t1, jitter)

	alpha := 1 - st.transmittance
	if alpha <= epsilon {
		return FogSample{}
	}
	c := st.acc.Mul(1 / alpha)
	if !finiteVec(c) || !finite(alpha) {
		return FogSample{}
	}
	return FogSample{Color: c, Alpha: saturate(alpha)}
}

// segment returns the part of r inside the fog, limited to [0, limit].
func (m *marcher) segment(r Ray, limit float32) (t0, t1 float32, ok bool) {
	if m.f.Config.SceneWide {
		t0, t1 = 0, limit
	} else {
		b := m.f.Volume
		if b.Degenerate() {
			return 0, 0, false
		}
		if m.f.Config.GlobalAxes {
			lo, hi := b.AxisAlignedBounds()
			t0, t1, ok = IntersectAABB(r, lo, hi)
		} else {
			t0, t1, ok = IntersectBox(r, b)
		}
		if !ok {
			return 0, 0, false
		}
		t0 = math32.Max(t0, 0)
		t1 = math32.Min(t1, limit)
	}
	if !(t1 > t0) || !finite(t1-t0) {
		return 0, 0, false
	}
	return t0, t1, true
}

func (m *marcher) march(r Ray, t0, t1, jitter float32) marchState {
	st := marchState{transmittance: 1}
	dt := (t1 - t0) / float32(m.steps)

	// The phase term depends only on the view direction.
	sun := m.light.sunColor.Mul(henyeyGreenstein(m.light.g, m.light.sunDir.Dot(r.Dir.Mul(-1))))

	for i := 0; i < m.steps; i++ {
		st.pos = r.At(t0 + (float32(i)+jitter)*dt)
		d := m.density.at(st.pos)
		if d <= 0 {
			continue
		}
		a := 1 - math32.Exp(-m.sigma*d*dt)
		st.acc = st.acc.Add(m.lightAt(st.pos, sun).Mul(a * st.transmittance))
		st.transmittance *= 1 - a
		if st.transmittance < minTransmittance {
			st.transmittance = 0
			break
		}
	}
	return st
}

func (m *marcher) lightAt(p, sun mgl32.Vec3) mgl32.Vec3 {
	if m.light.shadows != nil {
		sun = sun.Mul(1 - m.light.shadowK*saturate(m.light.shadows.Occlusion(p)))
	}
	l := sun.Add(m.light.ambient)
	if m.light.point != nil {
		l = l.Add(m.light.point.Contribution(p))
	}
	return l
}

// pixelHash is a per-pixel value in [0,1) that changes with the frame
// index.
func pixelHash(x, y int, frame uint64) float32 {
	h := uint64(uint32(x))*0x9E3779B97F4A7C15 ^ uint64(uint32(y))*0xC2B2AE3D27D4EB4F ^ frame*0x165667B19E3779F9
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	h *= 0xC4CEB9FE1A85EC53
	h ^= h >> 33
	return float32(h>>40) / (1 << 24)
}
