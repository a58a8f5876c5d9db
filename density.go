package volfog

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// edgeSharpness shapes the exponential edge ramp; the ramp is normalized so
// it still reaches 1 at the inner edge of the falloff zone.
const edgeSharpness = 4

// densityModel is the per-frame precomputation of the relative density
// function. at returns a non-negative multiplier of the base extinction.
type densityModel struct {
	cfg     FogConfig
	bounded bool
	box     *BoxGeometry
	half    mgl32.Vec3

	heightRef HeightReference
	heightF   float32

	noise       NoiseField
	noiseOffset mgl32.Vec3
	invNoise    float32

	edgeNorm float32
}

func newDensityModel(f *Frame) *densityModel {
	cfg := f.Config
	d := &densityModel{
		cfg:       cfg,
		bounded:   !cfg.SceneWide,
		box:       f.Volume,
		heightRef: cfg.HeightReference.Resolve(cfg.SceneWide),
		edgeNorm:  1 - math32.Exp(-edgeSharpness),
	}
	if f.Volume != nil {
		d.half = f.Volume.HalfExtents()
	}
	if d.box == nil && d.heightRef == HeightVolumeBottom {
		d.heightRef = HeightWorld
	}

	fallback := math32.Abs(cfg.HeightFalloffDistance)
	d.heightF = fallback
	if d.heightRef == HeightVolumeBottom {
		if span := 2*d.half.Y() - cfg.HeightStart; span >= epsilon {
			d.heightF = span
		}
	}

	if cfg.Noise && f.Noise != nil && cfg.NoiseStrength > 0 {
		d.noise = f.Noise
		d.noiseOffset = cfg.NoiseVelocity.Mul(f.Time)
		size := cfg.NoiseSize
		if size < MinNoiseSize {
			size = MinNoiseSize
		}
		d.invNoise = 1 / size
	}
	return d
}

// local expresses p relative to the box centre in the frame the slabs were
// built from.
func (d *densityModel) local(p mgl32.Vec3) mgl32.Vec3 {
	if d.cfg.GlobalAxes {
		return p.Sub(d.box.Center)
	}
	return d.box.Local(p)
}

func (d *densityModel) at(p mgl32.Vec3) float32 {
	factor := float32(1)
	var l mgl32.Vec3
	if d.box != nil {
		l = d.local(p)
	}
	if d.cfg.HeightFalloff {
		factor *= d.height(p, l)
	}
	if d.cfg.EdgeFalloff && d.bounded {
		factor *= d.edge(l[0], d.half[0], d.cfg.EdgeFalloffX)
		factor *= d.edge(l[2], d.half[2], d.cfg.EdgeFalloffZ)
	}
	if factor <= 0 {
		return 0
	}
	if d.noise != nil {
		n := d.noise.Sample(p.Sub(d.noiseOffset).Mul(d.invNoise))
		s := d.cfg.NoiseStrength
		if d.cfg.NoiseAdditive {
			factor *= 1 + s*n
		} else {
			factor = math32.Max(0, factor*(1-s*n))
		}
	}
	return factor
}

func (d *densityModel) height(p, l mgl32.Vec3) float32 {
	var y float32
	if d.heightRef == HeightWorld {
		y = p.Y()
	} else {
		y = l.Y() + d.half.Y()
	}
	h := y - d.cfg.HeightStart
	if h <= 0 {
		return 1
	}
	if d.heightF < epsilon {
		return 0
	}
	if d.cfg.HeightExponential {
		return math32.Exp(-d.cfg.HeightExponentRate * h / d.heightF)
	}
	return saturate(1 - h/d.heightF)
}

func (d *densityModel) edge(lx, hx, frac float32) float32 {
	zone := frac * hx
	if zone <= epsilon || hx <= epsilon {
		return 1
	}
	t := saturate((hx - math32.Abs(lx)) / zone)
	if d.cfg.EdgeExponential {
		return (1 - math32.Exp(-edgeSharpness*t)) / d.edgeNorm
	}
	return t
}
