package volfog

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// FogSample is the fog seen through one pixel. Color is straight, not
// premultiplied by Alpha.
type FogSample struct {
	Color mgl32.Vec3
	Alpha float32
}

// FogBuffer is a float image of fog samples. It implements draw.Image so
// it can be scaled with golang.org/x/image/draw; that view clamps colour
// to [0,1].
type FogBuffer struct {
	Width, Height int
	Pix           []FogSample
}

func NewFogBuffer(w, h int) *FogBuffer {
	return &FogBuffer{Width: w, Height: h, Pix: make([]FogSample, w*h)}
}

func (b *FogBuffer) Reset() {
	clear(b.Pix)
}

// Sample returns the fog at (x, y), zero outside the buffer.
func (b *FogBuffer) Sample(x, y int) FogSample {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return FogSample{}
	}
	return b.Pix[y*b.Width+x]
}

func (b *FogBuffer) ColorModel() color.Model { return color.NRGBA64Model }

func (b *FogBuffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

func (b *FogBuffer) At(x, y int) color.Color {
	s := b.Sample(x, y)
	return color.NRGBA64{
		R: unit16(s.Color[0]),
		G: unit16(s.Color[1]),
		B: unit16(s.Color[2]),
		A: unit16(s.Alpha),
	}
}

func (b *FogBuffer) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	b.Pix[y*b.Width+x] = FogSample{
		Color: mgl32.Vec3{float32(n.R) / 0xffff, float32(n.G) / 0xffff, float32(n.B) / 0xffff},
		Alpha: float32(n.A) / 0xffff,
	}
}

func unit16(v float32) uint16 {
	return uint16(math32.Round(saturate(v) * 0xffff))
}

// DepthBuffer holds, per pixel, the distance along the camera ray to the
// nearest opaque surface. +Inf means nothing was hit.
type DepthBuffer struct {
	Width, Height int
	Dist          []float32
}

func NewDepthBuffer(w, h int) *DepthBuffer {
	d := &DepthBuffer{Width: w, Height: h, Dist: make([]float32, w*h)}
	inf := math32.Inf(1)
	for i := range d.Dist {
		d.Dist[i] = inf
	}
	return d
}

// At returns the distance at (x, y). A nil buffer or a point outside it is
// infinitely far.
func (d *DepthBuffer) At(x, y int) float32 {
	if d == nil || x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return math32.Inf(1)
	}
	return d.Dist[y*d.Width+x]
}

// Sample maps pixel (x, y) of a w by h image onto the buffer with nearest
// neighbour lookup, for fog rendered at a different resolution.
func (d *DepthBuffer) Sample(x, y, w, h int) float32 {
	if d == nil || w <= 0 || h <= 0 {
		return math32.Inf(1)
	}
	if w == d.Width && h == d.Height {
		return d.At(x, y)
	}
	sx := (x*d.Width + d.Width/2) / w
	sy := (y*d.Height + d.Height/2) / h
	return d.At(sx, sy)
}

type poolKey struct{ w, h int }

// BufferPool recycles fog buffers by size.
type BufferPool struct {
	mu          sync.Mutex
	pools       map[poolKey]*sync.Pool
	outstanding atomic.Int64
}

func NewBufferPool() *BufferPool {
	return &BufferPool{pools: make(map[poolKey]*sync.Pool)}
}

func (p *BufferPool) pool(w, h int) *sync.Pool {
	k := poolKey{w, h}
	p.mu.Lock()
	defer p.mu.Unlock()
	sp, ok := p.pools[k]
	if !ok {
		sp = &sync.Pool{New: func() any { return NewFogBuffer(w, h) }}
		p.pools[k] = sp
	}
	return sp
}

// Acquire returns a cleared w by h buffer. Every acquired buffer must be
// handed back with Release.
func (p *BufferPool) Acquire(w, h int) (*FogBuffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("acquire %dx%d fog buffer: %w", w, h, ErrBufferSize)
	}
	b := p.pool(w, h).Get().(*FogBuffer)
	b.Reset()
	p.outstanding.Add(1)
	return b, nil
}

func (p *BufferPool) Release(b *FogBuffer) {
	if b == nil {
		return
	}
	p.outstanding.Add(-1)
	p.pool(b.Width, b.Height).Put(b)
}

// Outstanding is the number of acquired buffers not yet released.
func (p *BufferPool) Outstanding() int {
	return int(p.outstanding.Load())
}
