package volfog

import (
	"context"
	"image"

	"github.com/chewxy/math32"
	"github.com/golang/glog"
	"golang.org/x/image/draw"
)

// Result describes how a frame was produced.
type Result struct {
	// Bypassed is set when the scene was copied through without fog.
	Bypassed bool
	Missing  []string
	// FogWidth and FogHeight are the size the fog was evaluated at.
	FogWidth, FogHeight int
}

// Pipeline runs the fog pass followed by the compositing pass.
type Pipeline struct {
	Evaluator  *Evaluator
	Compositor *Compositor
	Pool       *BufferPool
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		Evaluator:  NewEvaluator(),
		Compositor: NewCompositor(),
		Pool:       NewBufferPool(),
	}
}

func (p *Pipeline) missing(f *Frame) []string {
	var missing []string
	if p.Evaluator == nil {
		missing = append(missing, "fog evaluator")
	}
	if p.Compositor == nil {
		missing = append(missing, "compositor")
	}
	if f == nil {
		return append(missing, "frame")
	}
	return append(missing, f.MissingResources()...)
}

// Render returns a new image of scene with fog. scene is never written to.
// When a required input is missing the scene is copied unchanged and the
// result is marked Bypassed.
func (p *Pipeline) Render(ctx context.Context, f *Frame, scene image.Image, depth *DepthBuffer) (*image.RGBA, Result, error) {
	b := scene.Bounds()
	dst := image.NewRGBA(b)

	if missing := p.missing(f); len(missing) > 0 {
		glog.V(1).Infof("fog bypassed, missing %v", missing)
		draw.Draw(dst, b, scene, b.Min, draw.Src)
		return dst, Result{Bypassed: true, Missing: missing}, nil
	}
	if p.Pool == nil {
		p.Pool = NewBufferPool()
	}

	w, h := b.Dx(), b.Dy()
	fw, fh := w, h
	if s := f.Config.FogScale; s > 0 && s < 1 {
		fw = max(1, int(math32.Round(float32(w)*s)))
		fh = max(1, int(math32.Round(float32(h)*s)))
	}
	res := Result{FogWidth: fw, FogHeight: fh}

	fog, err := p.Pool.Acquire(fw, fh)
	if err != nil {
		return nil, res, err
	}
	defer p.Pool.Release(fog)

	if err := p.Evaluator.Render(ctx, f, depth, fog); err != nil {
		return nil, res, err
	}

	full := fog
	if fw != w || fh != h {
		up, err := p.Pool.Acquire(w, h)
		if err != nil {
			return nil, res, err
		}
		defer p.Pool.Release(up)
		draw.BiLinear.Scale(up, up.Bounds(), fog, fog.Bounds(), draw.Src, nil)
		full = up
	}

	if err := p.Compositor.Composite(dst, scene, full); err != nil {
		return nil, res, err
	}
	return dst, res, nil
}
