package volfog

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestShadeColor(t *testing.T) {
	toLight := mgl32.Vec3{0, 0, 1}
	testCases := []struct {
		name      string
		base      color.RGBA
		normal    mgl32.Vec3
		occlusion float32
		expected  color.RGBA
	}{
		{
			name:     "Head-on lighting",
			base:     color.RGBA{R: 200, G: 200, B: 200, A: 255},
			normal:   mgl32.Vec3{0, 0, 1},
			expected: color.RGBA{R: 200, G: 200, B: 200, A: 255},
		},
		{
			name:     "Facing away from light",
			base:     color.RGBA{R: 200, G: 200, B: 200, A: 255},
			normal:   mgl32.Vec3{0, 0, -1},
			expected: color.RGBA{R: 116, G: 116, B: 116, A: 255}, // Only ambient light
		},
		{
			name:     "90 degrees to light, diffuse should be 0",
			base:     color.RGBA{R: 200, G: 200, B: 200, A: 255},
			normal:   mgl32.Vec3{1, 0, 0},
			expected: color.RGBA{R: 116, G: 116, B: 116, A: 255},
		},
		{
			name:     "45 degrees to light",
			base:     color.RGBA{R: 200, G: 200, B: 200, A: 255},
			normal:   mgl32.Vec3{0.70710678118, 0, 0.70710678118},
			expected: color.RGBA{R: 175, G: 175, B: 175, A: 255},
		},
		{
			name:      "Fully shadowed",
			base:      color.RGBA{R: 200, G: 200, B: 200, A: 255},
			normal:    mgl32.Vec3{0, 0, 1},
			occlusion: 1,
			expected:  color.RGBA{R: 116, G: 116, B: 116, A: 255},
		},
		{
			name:     "Color clamping low",
			base:     color.RGBA{R: 10, G: 10, B: 10, A: 255},
			normal:   mgl32.Vec3{0, 0, -1},
			expected: color.RGBA{R: 7, G: 7, B: 7, A: 255},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := ShadeColor(tc.base, tc.normal, toLight, DefaultAmbientLight, tc.occlusion)
			if result != tc.expected {
				t.Errorf("ShadeColor() = %v, want %v", result, tc.expected)
			}
		})
	}
}
