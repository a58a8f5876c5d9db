package volfog

import (
	"bytes"
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	LegacyMinSteps         = 8
	LegacyMaxNoiseStrength = 5
)

// LegacyFogConfig is the older, smaller settings surface. Read it from
// existing files and convert with Upgrade.
//
// Deprecated: use FogConfig.
type LegacyFogConfig struct {
	MaxNumberOfSteps         int        `json:"maxNumberOfSteps"`
	DistanceToFogSaturation  float32    `json:"distanceToFogSaturation"`
	SceneWide                bool       `json:"scenewideFog"`
	UseHeightDensityFalloff  bool       `json:"useHeightDensityFalloff"`
	HeightToStartFalloffAt   float32    `json:"heightToStartFalloffAt"`
	ExponentialHeightDensity float32    `json:"exponentialHeightDensity"`
	UseEdgeDensityFalloff    bool       `json:"useEdgeDensityFalloff"`
	FogFalloffInX            float32    `json:"fogFalloffInX"`
	FogFalloffInZ            float32    `json:"fogFalloffInZ"`
	UseShadowsInFog          bool       `json:"useShadowsInFog"`
	ShadowStrength           float32    `json:"shadowStrength"`
	UseAmbientLitFog         bool       `json:"useAmbientLitFog"`
	AmbientLitFog            float32    `json:"ambientLitFog"`
	UseNoiseInFog            bool       `json:"useNoiseInFog"`
	NoiseStrength            float32    `json:"noiseStrength"`
	NoiseVelocity            mgl32.Vec3 `json:"noiseVelocity"`
	AllowExtraLights         bool       `json:"allowExtraLights"`
}

func DefaultLegacyFogConfig() LegacyFogConfig {
	return LegacyFogConfig{
		MaxNumberOfSteps:         128,
		DistanceToFogSaturation:  100,
		ExponentialHeightDensity: 1,
		ShadowStrength:           0.8,
		AmbientLitFog:            0.1,
	}
}

// UnmarshalJSON decodes over the legacy defaults so omitted fields keep
// their old default values.
func (l *LegacyFogConfig) UnmarshalJSON(b []byte) error {
	type plain LegacyFogConfig
	p := plain(DefaultLegacyFogConfig())
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	*l = LegacyFogConfig(p)
	return nil
}

func (l LegacyFogConfig) Validate() error {
	cerr := &ConfigurationError{}
	if l.MaxNumberOfSteps < LegacyMinSteps || l.MaxNumberOfSteps > MaxSteps {
		cerr.addf("maxNumberOfSteps %d outside [%d, %d]", l.MaxNumberOfSteps, LegacyMinSteps, MaxSteps)
	}
	if !(l.ExponentialHeightDensity >= 0 && l.ExponentialHeightDensity <= 1) {
		cerr.addf("exponentialHeightDensity %v outside [0, 1]", l.ExponentialHeightDensity)
	}
	if !(l.NoiseStrength >= 0 && l.NoiseStrength <= LegacyMaxNoiseStrength) {
		cerr.addf("noiseStrength %v outside [0, %d]", l.NoiseStrength, LegacyMaxNoiseStrength)
	}
	return cerr.errOrNil()
}

// Upgrade maps the legacy settings onto FogConfig. Noise strength is
// rescaled from [0,5] to [0,1] and a non-zero height density selects
// exponential falloff with rate 4*density.
func (l LegacyFogConfig) Upgrade() FogConfig {
	c := DefaultFogConfig()
	c.Steps = l.MaxNumberOfSteps
	c.SaturationDistance = l.DistanceToFogSaturation
	c.SceneWide = l.SceneWide
	c.HeightFalloff = l.UseHeightDensityFalloff
	c.HeightStart = l.HeightToStartFalloffAt
	if l.ExponentialHeightDensity > 0 {
		c.HeightExponential = true
		c.HeightExponentRate = 4 * l.ExponentialHeightDensity
	}
	c.EdgeFalloff = l.UseEdgeDensityFalloff
	c.EdgeFalloffX = l.FogFalloffInX
	c.EdgeFalloffZ = l.FogFalloffInZ
	c.Shadows = l.UseShadowsInFog
	c.ShadowStrength = l.ShadowStrength
	c.Ambient = l.UseAmbientLitFog
	c.AmbientAmount = l.AmbientLitFog
	c.Noise = l.UseNoiseInFog
	c.NoiseAdditive = true
	c.NoiseStrength = l.NoiseStrength / LegacyMaxNoiseStrength
	c.NoiseVelocity = l.NoiseVelocity
	c.ExtraLights = l.AllowExtraLights
	return c
}
