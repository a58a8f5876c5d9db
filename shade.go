package volfog

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultAmbientLight is the minimum brightness of any lit surface.
const DefaultAmbientLight = 0.65

// ShadeColor darkens base by how much light reaches a surface with unit
// normal n. toLight points from the surface to the light and occlusion in
// [0,1] removes the direct part. A brightness of 1 leaves base unchanged.
func ShadeColor(base color.RGBA, n, toLight mgl32.Vec3, ambient, occlusion float32) color.RGBA {
	diffuse := n.Dot(toLight)
	if diffuse < 0 {
		diffuse = 0
	}
	lightAmount := 1 - ambient
	brightness := ambient + diffuse*lightAmount*(1-saturate(occlusion))

	c := 240 - int(math32.Round(brightness*240))

	min := 7
	r1 := clamp(int(base.R)-c, min, 255)
	g1 := clamp(int(base.G)-c, min, 255)
	b1 := clamp(int(base.B)-c, min, 255)
	return color.RGBA{R: uint8(r1), G: uint8(g1), B: uint8(b1), A: 255}
}
