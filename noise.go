package volfog

import (
	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

// NoiseField is a smooth scalar field with values in [0,1]. It is read
// concurrently and must not change during a render.
type NoiseField interface {
	Sample(p mgl32.Vec3) float32
}

const (
	perlinAlpha = 2
	perlinBeta  = 2
	perlinOct   = 3
)

// PerlinNoise is 3D Perlin noise remapped to [0,1].
type PerlinNoise struct {
	p *perlin.Perlin
}

func NewPerlinNoise(seed int64) *PerlinNoise {
	return &PerlinNoise{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOct, seed)}
}

func (n *PerlinNoise) Sample(p mgl32.Vec3) float32 {
	v := n.p.Noise3D(float64(p[0]), float64(p[1]), float64(p[2]))
	return unitNoise(v)
}

// PairwiseNoise approximates 3D noise by averaging 2D noise over every
// ordered pair of axes.
type PairwiseNoise struct {
	p *perlin.Perlin
}

func NewPairwiseNoise(seed int64) *PairwiseNoise {
	return &PairwiseNoise{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOct, seed)}
}

func (n *PairwiseNoise) Sample(p mgl32.Vec3) float32 {
	x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
	sum := unitNoise(n.p.Noise2D(x, y)) +
		unitNoise(n.p.Noise2D(y, z)) +
		unitNoise(n.p.Noise2D(x, z)) +
		unitNoise(n.p.Noise2D(y, x)) +
		unitNoise(n.p.Noise2D(z, y)) +
		unitNoise(n.p.Noise2D(z, x))
	return saturate(sum / 6)
}

func unitNoise(v float64) float32 {
	return saturate(float32(v*0.5 + 0.5))
}
