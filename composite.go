package volfog

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// Compositor blends a fog buffer over the opaque scene.
type Compositor struct{}

func NewCompositor() *Compositor {
	return &Compositor{}
}

// Composite writes scene*(1-a) + fog*a into dst. dst and scene share
// bounds; fog must match their size and is indexed from the bounds'
// minimum point. Scene alpha is kept. scene is only read.
func (c *Compositor) Composite(dst *image.RGBA, scene image.Image, fog *FogBuffer) error {
	b := dst.Bounds()
	if scene.Bounds() != b {
		return fmt.Errorf("scene %v, destination %v: %w", scene.Bounds(), b, ErrBufferSize)
	}
	if fog.Width != b.Dx() || fog.Height != b.Dy() {
		return fmt.Errorf("fog %dx%d, destination %dx%d: %w", fog.Width, fog.Height, b.Dx(), b.Dy(), ErrBufferSize)
	}

	src, fast := scene.(*image.RGBA)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var sr, sg, sb, sa float32
			if fast {
				i := src.PixOffset(x, y)
				p := src.Pix[i : i+4 : i+4]
				sr, sg, sb, sa = float32(p[0])/0xff, float32(p[1])/0xff, float32(p[2])/0xff, float32(p[3])/0xff
			} else {
				r, g, bl, a := scene.At(x, y).RGBA()
				sr, sg, sb, sa = float32(r)/0xffff, float32(g)/0xffff, float32(bl)/0xffff, float32(a)/0xffff
			}
			s := fog.Pix[(y-b.Min.Y)*fog.Width+(x-b.Min.X)]
			a := saturate(s.Alpha)
			// Scene values are premultiplied, so the fog is scaled by the
			// scene's coverage.
			k := a * sa
			i := dst.PixOffset(x, y)
			d := dst.Pix[i : i+4 : i+4]
			d[0] = unit8(sr*(1-a)+s.Color[0]*k, sa)
			d[1] = unit8(sg*(1-a)+s.Color[1]*k, sa)
			d[2] = unit8(sb*(1-a)+s.Color[2]*k, sa)
			d[3] = uint8(math32.Round(sa * 0xff))
		}
	}
	return nil
}

func unit8(v, max float32) uint8 {
	return uint8(math32.Round(clampf(v, 0, max) * 0xff))
}
