package volfog

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinSteps = 2
	MaxSteps = 256

	MinNoiseSize = 1
	MaxNoiseSize = 500
)

// HeightReference selects the zero level height falloff is measured from.
type HeightReference string

const (
	HeightAuto         HeightReference = "auto"
	HeightVolumeBottom HeightReference = "volumeBottom"
	HeightWorld        HeightReference = "world"
)

// Resolve replaces auto with world for scene-wide fog and with the volume
// bottom otherwise.
func (h HeightReference) Resolve(sceneWide bool) HeightReference {
	if h == HeightAuto || h == "" {
		if sceneWide {
			return HeightWorld
		}
		return HeightVolumeBottom
	}
	return h
}

func (h HeightReference) valid() bool {
	switch h {
	case "", HeightAuto, HeightVolumeBottom, HeightWorld:
		return true
	}
	return false
}

// FogConfig holds every tunable of the fog for one frame. It is treated as
// immutable once a render starts.
type FogConfig struct {
	Steps              int     `json:"steps"`
	SaturationDistance float32 `json:"saturationDistance"`
	Randomize          bool    `json:"randomize"`
	SceneWide          bool    `json:"sceneWide"`
	GlobalAxes         bool    `json:"globalAxes"`

	HeightFalloff         bool            `json:"heightFalloff"`
	HeightExponential     bool            `json:"heightExponential"`
	HeightStart           float32         `json:"heightStart"`
	HeightFalloffDistance float32         `json:"heightFalloffDistance"`
	HeightExponentRate    float32         `json:"heightExponentRate"`
	HeightReference       HeightReference `json:"heightReference"`

	EdgeFalloff     bool    `json:"edgeFalloff"`
	EdgeExponential bool    `json:"edgeExponential"`
	EdgeFalloffX    float32 `json:"edgeFalloffX"`
	EdgeFalloffZ    float32 `json:"edgeFalloffZ"`

	Shadows        bool    `json:"shadows"`
	ShadowStrength float32 `json:"shadowStrength"`

	Noise         bool       `json:"noise"`
	NoiseAdditive bool       `json:"noiseAdditive"`
	NoiseStrength float32    `json:"noiseStrength"`
	NoiseSize     float32    `json:"noiseSize"`
	NoiseVelocity mgl32.Vec3 `json:"noiseVelocity"`

	Ambient       bool       `json:"ambient"`
	AmbientAmount float32    `json:"ambientAmount"`
	AmbientColor  mgl32.Vec3 `json:"ambientColor"`

	ExtraLights bool    `json:"extraLights"`
	Anisotropy  float32 `json:"anisotropy"`
	FogScale    float32 `json:"fogScale"`
}

func DefaultFogConfig() FogConfig {
	return FogConfig{
		Steps:                 128,
		SaturationDistance:    100,
		GlobalAxes:            true,
		HeightFalloffDistance: 100,
		HeightExponentRate:    4,
		HeightReference:       HeightAuto,
		ShadowStrength:        0.8,
		NoiseSize:             1,
		AmbientAmount:         0.1,
		AmbientColor:          mgl32.Vec3{1, 1, 1},
		FogScale:              1,
	}
}

// Validate reports every out-of-range field in a single
// *ConfigurationError.
func (c FogConfig) Validate() error {
	cerr := &ConfigurationError{}
	if c.Steps < MinSteps || c.Steps > MaxSteps {
		cerr.addf("steps %d outside [%d, %d]", c.Steps, MinSteps, MaxSteps)
	}
	if !(c.SaturationDistance > 0) || !finite(c.SaturationDistance) {
		cerr.addf("saturationDistance must be positive, got %v", c.SaturationDistance)
	}
	if !finite(c.HeightStart) || !finite(c.HeightFalloffDistance) {
		cerr.addf("height falloff values must be finite")
	}
	if !(c.HeightExponentRate > 0) {
		cerr.addf("heightExponentRate must be positive, got %v", c.HeightExponentRate)
	}
	if !c.HeightReference.valid() {
		cerr.addf("heightReference %q is not one of auto, volumeBottom, world", c.HeightReference)
	}
	unit := []struct {
		name string
		v    float32
	}{
		{"edgeFalloffX", c.EdgeFalloffX},
		{"edgeFalloffZ", c.EdgeFalloffZ},
		{"shadowStrength", c.ShadowStrength},
		{"noiseStrength", c.NoiseStrength},
		{"ambientAmount", c.AmbientAmount},
	}
	for _, u := range unit {
		if !(u.v >= 0 && u.v <= 1) {
			cerr.addf("%s %v outside [0, 1]", u.name, u.v)
		}
	}
	for i, v := range c.AmbientColor {
		if !(v >= 0 && v <= 1) {
			cerr.addf("ambientColor[%d] %v outside [0, 1]", i, v)
		}
	}
	if !(c.NoiseSize >= MinNoiseSize && c.NoiseSize <= MaxNoiseSize) {
		cerr.addf("noiseSize %v outside [%d, %d]", c.NoiseSize, MinNoiseSize, MaxNoiseSize)
	}
	if !finiteVec(c.NoiseVelocity) {
		cerr.addf("noiseVelocity must be finite")
	}
	if !(c.Anisotropy > -1 && c.Anisotropy < 1) {
		cerr.addf("anisotropy %v outside (-1, 1)", c.Anisotropy)
	}
	if !(c.FogScale > 0 && c.FogScale <= 1) {
		cerr.addf("fogScale %v outside (0, 1]", c.FogScale)
	}
	return cerr.errOrNil()
}

func (c FogConfig) String() string {
	return fmt.Sprintf("fog{steps=%d sat=%.1f sceneWide=%t height=%t edge=%t shadows=%t noise=%t ambient=%t}",
		c.Steps, c.SaturationDistance, c.SceneWide, c.HeightFalloff, c.EdgeFalloff, c.Shadows, c.Noise, c.Ambient)
}
