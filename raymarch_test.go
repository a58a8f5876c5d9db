package volfog

import (
	"context"
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

type constNoise float32

func (n constNoise) Sample(mgl32.Vec3) float32 { return float32(n) }

type constOccluder float32

func (o constOccluder) Occlusion(mgl32.Vec3) float32 { return float32(o) }

func whiteSun() *DirectionalLight {
	return &DirectionalLight{Intensity: 1, Direction: mgl32.Vec3{0, -1, 0}, Color: mgl32.Vec3{1, 1, 1}}
}

// testFrame is a 10 unit box at the origin seen from cam.
func testFrame(t *testing.T, cfg FogConfig, cam *Camera, w, h int) *Frame {
	t.Helper()
	box := poseBox(t, mgl32.Vec3{}, mgl32.Vec3{10, 10, 10}, mgl32.Vec3{})
	return &Frame{
		Config: cfg,
		Camera: cam.State(w, h),
		Volume: &box,
		Sun:    whiteSun(),
	}
}

func uniformDepth(w, h int, d float32) *DepthBuffer {
	db := NewDepthBuffer(w, h)
	for i := range db.Dist {
		db.Dist[i] = d
	}
	return db
}

func render(t *testing.T, f *Frame, depth *DepthBuffer, w, h int) *FogBuffer {
	t.Helper()
	buf := NewFogBuffer(w, h)
	if err := NewEvaluator().Render(context.Background(), f, depth, buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf
}

func checkSamples(t *testing.T, buf *FogBuffer) {
	t.Helper()
	for i, s := range buf.Pix {
		if !finite(s.Alpha) || !finiteVec(s.Color) || s.Alpha < 0 || s.Alpha > 1 {
			t.Fatalf("pixel %d: invalid sample %+v", i, s)
		}
	}
}

func TestRayMissesVolume(t *testing.T) {
	cam := NewCameraLookAt(mgl32.Vec3{0, 20, -20}, mgl32.Vec3{0, 20, 0})
	f := testFrame(t, DefaultFogConfig(), cam, 32, 32)
	buf := render(t, f, nil, 32, 32)
	for i, s := range buf.Pix {
		if s.Alpha != 0 {
			t.Fatalf("pixel %d: alpha = %v, want 0", i, s.Alpha)
		}
	}
}

func TestSceneWideSaturates(t *testing.T) {
	cfg := DefaultFogConfig()
	cfg.SceneWide = true
	cfg.SaturationDistance = 100
	cam := NewCameraLookAt(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, -10})
	f := testFrame(t, cfg, cam, 16, 16)
	buf := render(t, f, uniformDepth(16, 16, 200), 16, 16)
	checkSamples(t, buf)
	for i, s := range buf.Pix {
		if s.Alpha <= 0.95 {
			t.Fatalf("pixel %d: alpha = %v, want > 0.95", i, s.Alpha)
		}
		if !vecAlmostEqual(s.Color, mgl32.Vec3{1, 1, 1}) {
			t.Fatalf("pixel %d: colour = %v, want sun colour", i, s.Color)
		}
	}
}

func TestAlphaGrowsWithDistance(t *testing.T) {
	cfg := DefaultFogConfig()
	cfg.SceneWide = true
	cam := NewCameraLookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1})
	f := testFrame(t, cfg, cam, 1, 1)
	e := NewEvaluator()

	var prev float32
	for _, d := range []float32{1, 10, 50, 60, 100, 150, 400} {
		a := e.Pixel(f, 0, 0, d).Alpha
		if a < prev {
			t.Errorf("alpha at %v = %v, less than %v", d, a, prev)
		}
		if d >= 0.6*cfg.SaturationDistance && a < 0.6 {
			t.Errorf("alpha at %v = %v, want >= 0.6", d, a)
		}
		prev = a
	}
	if a := e.Pixel(f, 0, 0, cfg.SaturationDistance).Alpha; math32.Abs(a-saturationAlpha) > 1e-3 {
		t.Errorf("alpha at saturation distance = %v, want %v", a, saturationAlpha)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	cfg := DefaultFogConfig()
	cfg.Randomize = true
	cfg.Noise = true
	cfg.NoiseStrength = 0.7
	cfg.NoiseVelocity = mgl32.Vec3{1, 0, 0.5}
	cfg.HeightFalloff = true
	cfg.EdgeFalloff = true
	cfg.EdgeFalloffX, cfg.EdgeFalloffZ = 0.3, 0.5
	cfg.Shadows = true
	cfg.GlobalAxes = false
	cam := NewCameraLookAt(mgl32.Vec3{3, 4, 20}, mgl32.Vec3{})
	f := testFrame(t, cfg, cam, 24, 18)
	f.Noise = NewPerlinNoise(7)
	f.Shadows = constOccluder(0.5)
	f.Time = 1.5
	f.Index = 42

	a := render(t, f, nil, 24, 18)
	b := render(t, f, nil, 24, 18)
	checkSamples(t, a)
	if diff := cmp.Diff(a.Pix, b.Pix); diff != "" {
		t.Errorf("renders differ (-first +second):\n%s", diff)
	}
}

func TestStepCounts(t *testing.T) {
	cam := NewCameraLookAt(mgl32.Vec3{2, 1, 20}, mgl32.Vec3{})
	for _, steps := range []int{MinSteps, 3, 8, 64, MaxSteps} {
		cfg := DefaultFogConfig()
		cfg.Steps = steps
		cfg.SaturationDistance = 1
		cfg.HeightFalloff = true
		buf := render(t, testFrame(t, cfg, cam, 16, 16), nil, 16, 16)
		checkSamples(t, buf)
	}
}

func TestStepsClamped(t *testing.T) {
	cam := NewCameraLookAt(mgl32.Vec3{1, 1, 20}, mgl32.Vec3{})
	testCases := []struct {
		name       string
		steps, eff int
	}{
		{"below minimum", 0, MinSteps},
		{"above maximum", 10000, MaxSteps},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultFogConfig()
			cfg.HeightFalloff = true
			cfg.HeightExponential = true
			cfg.Steps = tc.steps
			got := NewEvaluator().Pixel(testFrame(t, cfg, cam, 8, 8), 4, 4, math32.Inf(1))
			cfg.Steps = tc.eff
			want := NewEvaluator().Pixel(testFrame(t, cfg, cam, 8, 8), 4, 4, math32.Inf(1))
			if got != want {
				t.Errorf("Steps %d = %+v, want %+v", tc.steps, got, want)
			}
		})
	}
}

// With exponential height falloff the midpoint sum approaches the exact
// optical depth from below as the step count grows.
func TestMoreStepsConverge(t *testing.T) {
	cfg := DefaultFogConfig()
	cfg.SceneWide = true
	cfg.SaturationDistance = 10
	cfg.HeightFalloff = true
	cfg.HeightExponential = true
	cfg.HeightReference = HeightWorld
	cfg.HeightFalloffDistance = 10
	cam := NewCamera(mgl32.Vec3{}, 0, 0)
	f := testFrame(t, cfg, cam, 1, 1)

	sigma := ln20 / cfg.SaturationDistance
	k := cfg.HeightExponentRate / cfg.HeightFalloffDistance
	exact := 1 - math32.Exp(-sigma*(1-math32.Exp(-k*10))/k)

	ray := Ray{Origin: mgl32.Vec3{0, 10, 0}, Dir: mgl32.Vec3{0, -1, 0}}
	var prev float32
	for _, n := range []int{2, 4, 16, 64, 256} {
		f.Config.Steps = n
		st := NewEvaluator().prepare(f).march(ray, 0, 10, 0.5)
		a := 1 - st.transmittance
		if a < prev-1e-6 {
			t.Errorf("steps %d: alpha %v below %v", n, a, prev)
		}
		if a > exact+1e-4 {
			t.Errorf("steps %d: alpha %v above exact %v", n, a, exact)
		}
		prev = a
	}
	if math32.Abs(prev-exact) > 1e-3 {
		t.Errorf("alpha with %d steps = %v, want %v", MaxSteps, prev, exact)
	}
}

func TestMoreStepsSaturatedRay(t *testing.T) {
	cfg := DefaultFogConfig()
	cfg.SceneWide = true
	cfg.SaturationDistance = 100
	cam := NewCameraLookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1})
	f := testFrame(t, cfg, cam, 1, 1)

	var prev float32
	for _, n := range []int{2, 4, 16, 64, 256} {
		f.Config.Steps = n
		s := NewEvaluator().Pixel(f, 0, 0, 1000)
		if s.Alpha < prev {
			t.Errorf("steps %d: alpha %v below %v", n, s.Alpha, prev)
		}
		if s.Alpha != 1 {
			t.Errorf("steps %d: alpha %v, want 1", n, s.Alpha)
		}
		if !vecAlmostEqual(s.Color, mgl32.Vec3{1, 1, 1}) {
			t.Errorf("steps %d: colour %v, want sun colour", n, s.Color)
		}
		prev = s.Alpha
	}
}

func TestZeroEdgeFractionMatchesDisabled(t *testing.T) {
	cam := NewCameraLookAt(mgl32.Vec3{8, 3, 18}, mgl32.Vec3{})
	for _, exp := range []bool{false, true} {
		off := DefaultFogConfig()
		on := off
		on.EdgeFalloff = true
		on.EdgeExponential = exp
		on.EdgeFalloffX, on.EdgeFalloffZ = 0, 0

		a := render(t, testFrame(t, off, cam, 20, 20), nil, 20, 20)
		b := render(t, testFrame(t, on, cam, 20, 20), nil, 20, 20)
		if diff := cmp.Diff(a.Pix, b.Pix); diff != "" {
			t.Errorf("exponential=%t: zero edge fraction differs from disabled:\n%s", exp, diff)
		}
	}
}

func TestEdgeFalloffThinsFog(t *testing.T) {
	cam := NewCameraLookAt(mgl32.Vec3{0, 0, 20}, mgl32.Vec3{})
	cfg := DefaultFogConfig()
	cfg.SaturationDistance = 10
	plain := NewEvaluator().Pixel(testFrame(t, cfg, cam, 9, 9), 4, 4, math32.Inf(1))
	cfg.EdgeFalloff = true
	cfg.EdgeFalloffZ = 1
	thin := NewEvaluator().Pixel(testFrame(t, cfg, cam, 9, 9), 4, 4, math32.Inf(1))
	if !(thin.Alpha < plain.Alpha) {
		t.Errorf("edge falloff alpha %v not below %v", thin.Alpha, plain.Alpha)
	}
}

func TestDegenerateVolumeIsClear(t *testing.T) {
	cam := NewCameraLookAt(mgl32.Vec3{0, 5, 20}, mgl32.Vec3{})
	for _, global := range []bool{true, false} {
		cfg := DefaultFogConfig()
		cfg.GlobalAxes = global
		cfg.EdgeFalloff = true
		cfg.EdgeFalloffX = 0.5
		cfg.HeightFalloff = true
		f := testFrame(t, cfg, cam, 16, 16)
		flat := poseBox(t, mgl32.Vec3{}, mgl32.Vec3{10, 0, 10}, mgl32.Vec3{})
		f.Volume = &flat
		buf := render(t, f, nil, 16, 16)
		checkSamples(t, buf)
		for i, s := range buf.Pix {
			if s.Alpha != 0 {
				t.Fatalf("global=%t pixel %d: alpha %v, want 0", global, i, s.Alpha)
			}
		}
	}
}

func TestOrientedVolume(t *testing.T) {
	// A slab yawed 45 degrees with local axes: looking along its thin side
	// sees less fog than looking along its long side.
	cfg := DefaultFogConfig()
	cfg.GlobalAxes = false
	cfg.SaturationDistance = 20
	slab := poseBox(t, mgl32.Vec3{}, mgl32.Vec3{40, 4, 4}, mgl32.Vec3{0, 45, 0})
	sample := func(dir mgl32.Vec3) FogSample {
		cam := NewCameraLookAt(dir.Mul(-60), mgl32.Vec3{})
		f := testFrame(t, cfg, cam, 1, 1)
		f.Volume = &slab
		return NewEvaluator().Pixel(f, 0, 0, math32.Inf(1))
	}
	long := sample(slab.Right())
	short := sample(slab.Forward())
	if !(long.Alpha > short.Alpha) || short.Alpha <= 0 {
		t.Errorf("long alpha %v, short alpha %v", long.Alpha, short.Alpha)
	}
}

func TestLightingTerms(t *testing.T) {
	cam := NewCameraLookAt(mgl32.Vec3{0, 0, 20}, mgl32.Vec3{})
	base := DefaultFogConfig()
	base.SaturationDistance = 5

	pixel := func(cfg FogConfig, edit func(*Frame)) FogSample {
		f := testFrame(t, cfg, cam, 1, 1)
		if edit != nil {
			edit(f)
		}
		return NewEvaluator().Pixel(f, 0, 0, math32.Inf(1))
	}
	plain := pixel(base, nil)

	t.Run("shadow", func(t *testing.T) {
		cfg := base
		cfg.Shadows = true
		cfg.ShadowStrength = 0.8
		got := pixel(cfg, func(f *Frame) { f.Shadows = constOccluder(1) })
		if !vecAlmostEqual(got.Color, plain.Color.Mul(0.2)) {
			t.Errorf("shadowed colour = %v, want %v", got.Color, plain.Color.Mul(0.2))
		}
		if !almostEqual(got.Alpha, plain.Alpha) {
			t.Errorf("shadow changed alpha: %v vs %v", got.Alpha, plain.Alpha)
		}
	})

	t.Run("shadows without occluder", func(t *testing.T) {
		cfg := base
		cfg.Shadows = true
		if got := pixel(cfg, nil); got != plain {
			t.Errorf("got %+v, want %+v", got, plain)
		}
	})

	t.Run("ambient only", func(t *testing.T) {
		cfg := base
		cfg.Ambient = true
		cfg.AmbientAmount = 0.5
		cfg.AmbientColor = mgl32.Vec3{1, 0, 0}
		got := pixel(cfg, func(f *Frame) { f.Sun.Intensity = 0 })
		if !vecAlmostEqual(got.Color, mgl32.Vec3{0.5, 0, 0}) {
			t.Errorf("ambient colour = %v, want (0.5, 0, 0)", got.Color)
		}
	})

	t.Run("point light gated", func(t *testing.T) {
		pl := &PointLight{Intensity: 1, Color: mgl32.Vec3{0, 0, 1}, Position: mgl32.Vec3{}, Range: 50, Attenuation: DefaultAttenuation}
		cfg := base
		off := pixel(cfg, func(f *Frame) { f.Point = pl })
		if off != plain {
			t.Errorf("point light used without ExtraLights")
		}
		cfg.ExtraLights = true
		on := pixel(cfg, func(f *Frame) { f.Point = pl })
		if !(on.Color.Z() > plain.Color.Z()) {
			t.Errorf("point light blue %v not above %v", on.Color.Z(), plain.Color.Z())
		}
	})

	t.Run("forward scattering", func(t *testing.T) {
		cfg := base
		cfg.Anisotropy = 0.6
		toward := pixel(cfg, func(f *Frame) { f.Sun.Direction = mgl32.Vec3{0, 0, 1} })
		away := pixel(cfg, func(f *Frame) { f.Sun.Direction = mgl32.Vec3{0, 0, -1} })
		if !(toward.Color.X() > plain.Color.X() && away.Color.X() < plain.Color.X()) {
			t.Errorf("toward %v, isotropic %v, away %v", toward.Color.X(), plain.Color.X(), away.Color.X())
		}
	})
}

func TestNoiseModes(t *testing.T) {
	cfg := DefaultFogConfig()
	cfg.SceneWide = true
	cfg.Noise = true
	cfg.NoiseStrength = 1
	cam := NewCamera(mgl32.Vec3{}, 0, 0)
	f := testFrame(t, cfg, cam, 1, 1)
	f.Noise = constNoise(1)
	e := NewEvaluator()

	f.Config.NoiseAdditive = false
	if a := e.Pixel(f, 0, 0, 50).Alpha; a != 0 {
		t.Errorf("subtractive full-strength noise alpha = %v, want 0", a)
	}
	f.Config.NoiseAdditive = true
	want := 1 - math32.Exp(-2*ln20/cfg.SaturationDistance*50)
	if a := e.Pixel(f, 0, 0, 50).Alpha; math32.Abs(a-want) > 1e-3 {
		t.Errorf("additive noise alpha = %v, want %v", a, want)
	}
	f.Noise = nil
	plain := 1 - math32.Exp(-ln20/cfg.SaturationDistance*50)
	if a := e.Pixel(f, 0, 0, 50).Alpha; math32.Abs(a-plain) > 1e-3 {
		t.Errorf("missing noise field alpha = %v, want %v", a, plain)
	}
}

func TestHeightFalloff(t *testing.T) {
	testCases := []struct {
		name string
		edit func(*FogConfig)
		y    float32
		want float32
	}{
		{"below start", func(c *FogConfig) {}, -3, 1},
		{"linear halfway", func(c *FogConfig) {}, 5, 0.5},
		{"linear above", func(c *FogConfig) {}, 20, 0},
		{"exponential", func(c *FogConfig) { c.HeightExponential = true }, 5, math32.Exp(-2)},
		{"zero distance step", func(c *FogConfig) { c.HeightFalloffDistance = 0 }, 0.5, 0},
		{"negative distance", func(c *FogConfig) { c.HeightFalloffDistance = -10 }, 5, 0.5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultFogConfig()
			cfg.SceneWide = true
			cfg.HeightFalloff = true
			cfg.HeightFalloffDistance = 10
			tc.edit(&cfg)
			f := testFrame(t, cfg, NewCamera(mgl32.Vec3{}, 0, 0), 1, 1)
			got := newDensityModel(f).at(mgl32.Vec3{3, tc.y, -4})
			if !almostEqual(got, tc.want) {
				t.Errorf("density = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHeightFromVolumeBottom(t *testing.T) {
	cfg := DefaultFogConfig()
	cfg.HeightFalloff = true
	cfg.HeightReference = HeightAuto
	f := testFrame(t, cfg, NewCamera(mgl32.Vec3{}, 0, 0), 1, 1)
	m := newDensityModel(f)
	if m.heightRef != HeightVolumeBottom {
		t.Fatalf("auto resolved to %q for a bounded volume", m.heightRef)
	}
	// The box spans y in [-5, 5], so its centre is halfway up.
	if got := m.at(mgl32.Vec3{0, 0, 0}); !almostEqual(got, 0.5) {
		t.Errorf("density at centre = %v, want 0.5", got)
	}
	if got := m.at(mgl32.Vec3{0, -5, 0}); !almostEqual(got, 1) {
		t.Errorf("density at bottom = %v, want 1", got)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := testFrame(t, DefaultFogConfig(), NewCameraLookAt(mgl32.Vec3{0, 0, 20}, mgl32.Vec3{}), 8, 8)
	err := NewEvaluator().Render(ctx, f, nil, NewFogBuffer(8, 8))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestRenderRejectsBadBuffer(t *testing.T) {
	f := testFrame(t, DefaultFogConfig(), NewCamera(mgl32.Vec3{}, 0, 0), 8, 8)
	err := NewEvaluator().Render(context.Background(), f, nil, &FogBuffer{Width: 4, Height: 4})
	if !errors.Is(err, ErrBufferSize) {
		t.Errorf("Render() error = %v, want ErrBufferSize", err)
	}
}

func TestPixelHash(t *testing.T) {
	seen := map[float32]bool{}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			h := pixelHash(x, y, 3)
			if h < 0 || h >= 1 {
				t.Fatalf("pixelHash(%d, %d) = %v outside [0, 1)", x, y, h)
			}
			seen[h] = true
		}
	}
	if len(seen) < 60 {
		t.Errorf("only %d distinct hashes over 64 pixels", len(seen))
	}
	if pixelHash(1, 2, 3) == pixelHash(1, 2, 4) {
		t.Errorf("hash does not change with frame index")
	}
}
