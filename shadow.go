package volfog

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// Occluder reports how much of the sun is blocked at a point, from 0 (fully
// lit) to 1 (fully shadowed). Implementations are read concurrently.
type Occluder interface {
	Occlusion(p mgl32.Vec3) float32
}

// RayCaster finds the nearest opaque surface along a ray.
type RayCaster interface {
	Raycast(r Ray, tMax float32) (Hit, bool)
}

// ShadowMap is an orthographic depth map seen from the sun, covering a
// square of side 2*Radius around Center.
type ShadowMap struct {
	Center mgl32.Vec3
	Radius float32
	Res    int
	// Bias is subtracted from a point's depth before comparison.
	Bias float32

	dir    mgl32.Vec3
	u, v   mgl32.Vec3
	origin mgl32.Vec3
	depth  []float32
}

// CaptureShadowMap casts res*res rays along the sun direction through the
// sphere of radius around center.
func CaptureShadowMap(ctx context.Context, caster RayCaster, sun *DirectionalLight, center mgl32.Vec3, radius float32, res int) (*ShadowMap, error) {
	if res <= 0 || !(radius > 0) {
		return nil, fmt.Errorf("shadow map %d texels over radius %v: %w", res, radius, ErrBufferSize)
	}
	dir, ok := normalize(sun.Direction)
	if !ok {
		return nil, &ConfigurationError{Problems: []string{"sun direction is zero"}}
	}
	sm := &ShadowMap{
		Center: center,
		Radius: radius,
		Res:    res,
		Bias:   4*radius/float32(res) + 0.01,
		dir:    dir,
		origin: center.Sub(dir.Mul(2 * radius)),
		depth:  make([]float32, res*res),
	}
	sm.u, sm.v = basisFrom(dir)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for j := 0; j < res; j++ {
		j := j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := 0; i < res; i++ {
				r := Ray{Origin: sm.texelOrigin(float32(i)+0.5, float32(j)+0.5), Dir: dir}
				d := math32.Inf(1)
				if hit, ok := caster.Raycast(r, 4*radius); ok {
					d = hit.T
				}
				sm.depth[j*res+i] = d
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	glog.V(1).Infof("captured %dx%d shadow map, radius %.1f", res, res, radius)
	return sm, nil
}

func (sm *ShadowMap) texelOrigin(fi, fj float32) mgl32.Vec3 {
	size := 2 * sm.Radius / float32(sm.Res)
	su := fi*size - sm.Radius
	sv := fj*size - sm.Radius
	return sm.origin.Add(sm.u.Mul(su)).Add(sm.v.Mul(sv))
}

func (sm *ShadowMap) shadowed(i, j int, depth float32) float32 {
	if i < 0 || j < 0 || i >= sm.Res || j >= sm.Res {
		return 0
	}
	if depth-sm.Bias > sm.depth[j*sm.Res+i] {
		return 1
	}
	return 0
}

// Occlusion filters the depth comparison over the four nearest texels.
// Points outside the map are lit.
func (sm *ShadowMap) Occlusion(p mgl32.Vec3) float32 {
	rel := p.Sub(sm.origin)
	depth := rel.Dot(sm.dir)
	if depth <= 0 {
		return 0
	}
	size := 2 * sm.Radius / float32(sm.Res)
	fx := (rel.Dot(sm.u)+sm.Radius)/size - 0.5
	fy := (rel.Dot(sm.v)+sm.Radius)/size - 0.5
	if fx < -1 || fy < -1 || fx > float32(sm.Res) || fy > float32(sm.Res) {
		return 0
	}
	x0, y0 := math32.Floor(fx), math32.Floor(fy)
	tx, ty := fx-x0, fy-y0
	i, j := int(x0), int(y0)
	top := sm.shadowed(i, j, depth)*(1-tx) + sm.shadowed(i+1, j, depth)*tx
	bot := sm.shadowed(i, j+1, depth)*(1-tx) + sm.shadowed(i+1, j+1, depth)*tx
	return top*(1-ty) + bot*ty
}
