package volfog

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

func TestLegacyUpgrade(t *testing.T) {
	l := DefaultLegacyFogConfig()
	l.UseHeightDensityFalloff = true
	l.HeightToStartFalloffAt = 2
	l.ExponentialHeightDensity = 0.5
	l.UseNoiseInFog = true
	l.NoiseStrength = 2.5
	l.NoiseVelocity = mgl32.Vec3{1, 0, 0}
	l.UseEdgeDensityFalloff = true
	l.FogFalloffInX = 0.25

	want := DefaultFogConfig()
	want.HeightFalloff = true
	want.HeightStart = 2
	want.HeightExponential = true
	want.HeightExponentRate = 2
	want.Noise = true
	want.NoiseAdditive = true
	want.NoiseStrength = 0.5
	want.NoiseVelocity = mgl32.Vec3{1, 0, 0}
	want.EdgeFalloff = true
	want.EdgeFalloffX = 0.25

	got := l.Upgrade()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Upgrade() mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("upgraded config invalid: %v", err)
	}
}

func TestLegacyZeroDensityIsLinear(t *testing.T) {
	l := DefaultLegacyFogConfig()
	l.ExponentialHeightDensity = 0
	c := l.Upgrade()
	if c.HeightExponential || c.HeightExponentRate != 4 {
		t.Errorf("exponential %t rate %v, want linear with default rate", c.HeightExponential, c.HeightExponentRate)
	}
}

func TestLegacyInFile(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`{"legacy": {"maxNumberOfSteps": 32, "noiseStrength": 5}}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Fog.Steps != 32 || cfg.Fog.NoiseStrength != 1 {
		t.Errorf("steps %d noise %v, want 32 and 1", cfg.Fog.Steps, cfg.Fog.NoiseStrength)
	}
	// Fields left out of the legacy section keep their legacy defaults.
	if cfg.Fog.SaturationDistance != 100 || cfg.Fog.ShadowStrength != 0.8 {
		t.Errorf("saturation %v shadow %v", cfg.Fog.SaturationDistance, cfg.Fog.ShadowStrength)
	}
}
