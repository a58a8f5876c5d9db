package volfog

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DirectionalLight is a sun. Direction is the way the light travels and is
// normalized on use.
type DirectionalLight struct {
	Intensity float32    `json:"intensity"`
	Direction mgl32.Vec3 `json:"direction"`
	Color     mgl32.Vec3 `json:"color"`
}

type Attenuation struct {
	Constant  float32 `json:"constant"`
	Linear    float32 `json:"linear"`
	Quadratic float32 `json:"quadratic"`
}

var DefaultAttenuation = Attenuation{Constant: 0.1, Linear: 0.00005, Quadratic: 0.0005}

// PointLight contributes within Range of Position.
type PointLight struct {
	Intensity   float32     `json:"intensity"`
	Color       mgl32.Vec3  `json:"color"`
	Position    mgl32.Vec3  `json:"position"`
	Range       float32     `json:"range"`
	Attenuation Attenuation `json:"attenuation"`
}

// Contribution is the attenuated light reaching p, zero beyond Range.
func (l *PointLight) Contribution(p mgl32.Vec3) mgl32.Vec3 {
	r := p.Sub(l.Position).Len()
	if r > l.Range {
		return mgl32.Vec3{}
	}
	a := l.Attenuation
	denom := a.Constant + a.Linear*r + a.Quadratic*r*r
	if denom < epsilon {
		denom = epsilon
	}
	return l.Color.Mul(l.Intensity / denom)
}

// henyeyGreenstein is the HG phase function scaled so that g = 0 gives 1.
// cosTheta is the cosine between the light's travel direction and the
// direction towards the viewer.
func henyeyGreenstein(g, cosTheta float32) float32 {
	if g == 0 {
		return 1
	}
	g2 := g * g
	denom := 1 + g2 - 2*g*cosTheta
	if denom < epsilon {
		denom = epsilon
	}
	return (1 - g2) / (denom * math32.Sqrt(denom))
}
