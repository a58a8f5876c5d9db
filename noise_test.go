package volfog

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNoiseFields(t *testing.T) {
	testCases := []struct {
		name string
		make func(seed int64) NoiseField
	}{
		{"perlin", func(s int64) NoiseField { return NewPerlinNoise(s) }},
		{"pairwise", func(s int64) NoiseField { return NewPairwiseNoise(s) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, b := tc.make(3), tc.make(3)
			var lo, hi float32 = 1, 0
			for i := 0; i < 500; i++ {
				p := mgl32.Vec3{float32(i) * 0.37, float32(i%17) * 0.91, float32(i%5) * 1.3}
				v := a.Sample(p)
				if v < 0 || v > 1 {
					t.Fatalf("Sample(%v) = %v outside [0, 1]", p, v)
				}
				if w := b.Sample(p); w != v {
					t.Fatalf("same seed differs at %v: %v vs %v", p, v, w)
				}
				lo, hi = min(lo, v), max(hi, v)
			}
			if hi-lo < 0.05 {
				t.Errorf("noise barely varies: [%v, %v]", lo, hi)
			}
		})
	}
}
