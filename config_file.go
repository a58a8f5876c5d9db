package volfog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"
)

// VolumeConfig places the fog box by its pose.
type VolumeConfig struct {
	Center      mgl32.Vec3 `json:"center"`
	Scale       mgl32.Vec3 `json:"scale"`
	RotationDeg mgl32.Vec3 `json:"rotationDeg"`
}

// Box resolves the fourteen markers of the configured pose.
func (v *VolumeConfig) Box() (BoxGeometry, error) {
	rot := RotationFromDegrees(v.RotationDeg[0], v.RotationDeg[1], v.RotationDeg[2])
	right, up, forward := OrientationAxes(rot)
	return NewBoxFromTransform(v.Center, v.Scale, up, forward, right)
}

type CameraConfig struct {
	Position mgl32.Vec3 `json:"position"`
	Target   mgl32.Vec3 `json:"target"`
	FovY     float32    `json:"fovY"`
	Near     float32    `json:"near"`
	Far      float32    `json:"far"`
}

func (c CameraConfig) Validate() error {
	cerr := &ConfigurationError{}
	if !(c.FovY > 0 && c.FovY < 180) {
		cerr.addf("camera fovY %v outside (0, 180)", c.FovY)
	}
	if !(c.Near > 0) || !(c.Far > c.Near) {
		cerr.addf("camera clip range [%v, %v] is empty", c.Near, c.Far)
	}
	return cerr.errOrNil()
}

// Camera builds a camera looking from Position at Target.
func (c CameraConfig) Camera() *Camera {
	cam := NewCameraLookAt(c.Position, c.Target)
	cam.FovY, cam.Near, cam.Far = c.FovY, c.Near, c.Far
	return cam
}

// FileConfig is the on-disk description of a fog scene.
type FileConfig struct {
	Fog       FogConfig         `json:"fog"`
	Legacy    *LegacyFogConfig  `json:"legacy,omitempty"`
	Volume    *VolumeConfig     `json:"volume,omitempty"`
	Sun       *DirectionalLight `json:"sun,omitempty"`
	Point     *PointLight       `json:"point,omitempty"`
	Camera    CameraConfig      `json:"camera"`
	NoiseSeed int64             `json:"noiseSeed"`
	// Noise selects the noise generator, "perlin" or "pairwise".
	Noise string `json:"noise"`
}

const (
	NoisePerlin   = "perlin"
	NoisePairwise = "pairwise"
)

// NoiseField builds the configured noise generator.
func (c *FileConfig) NoiseField() (NoiseField, error) {
	switch c.Noise {
	case NoisePerlin, "":
		return NewPerlinNoise(c.NoiseSeed), nil
	case NoisePairwise:
		return NewPairwiseNoise(c.NoiseSeed), nil
	}
	return nil, &ConfigurationError{Problems: []string{fmt.Sprintf("unknown noise %q", c.Noise)}}
}

func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Fog: DefaultFogConfig(),
		Volume: &VolumeConfig{
			Scale: mgl32.Vec3{40, 20, 40},
		},
		Sun: &DirectionalLight{
			Intensity: 1,
			Direction: mgl32.Vec3{-0.4, -1, -0.3},
			Color:     mgl32.Vec3{1, 0.95, 0.85},
		},
		Camera: CameraConfig{
			Position: mgl32.Vec3{0, 8, 45},
			Target:   mgl32.Vec3{0, 4, 0},
			FovY:     DefaultFovY,
			Near:     DefaultNear,
			Far:      DefaultFar,
		},
		NoiseSeed: 1,
		Noise:     NoisePerlin,
	}
}

// LoadConfigFile reads and validates a JSON scene description.
func LoadConfigFile(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	cfg, err := ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes JSON over the defaults. Unknown fields are rejected.
// A legacy section, when present, replaces the fog section.
func ParseConfig(r io.Reader) (*FileConfig, error) {
	cfg := DefaultFileConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if cfg.Legacy != nil {
		if err := cfg.Legacy.Validate(); err != nil {
			return nil, err
		}
		glog.Warningf("legacy fog settings found, upgrading")
		cfg.Fog = cfg.Legacy.Upgrade()
	}
	if err := cfg.Fog.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Camera.Validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.NoiseField(); err != nil {
		return nil, err
	}
	if cfg.Point != nil && cfg.Point.Attenuation == (Attenuation{}) {
		cfg.Point.Attenuation = DefaultAttenuation
	}
	return cfg, nil
}
