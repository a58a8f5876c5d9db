// Command fogrender renders the fog demo to PNG files without a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/smasonuk/volfog"
)

func main() {
	configPath := flag.String("config", "", "JSON scene configuration")
	out := flag.String("out", "fog.png", "output PNG; with -frames > 1 a frame number is inserted")
	width := flag.Int("width", 640, "image width")
	height := flag.Int("height", 360, "image height")
	frames := flag.Int("frames", 1, "number of frames to render")
	fps := flag.Float64("fps", 24, "frame rate used to advance noise time")
	plyPath := flag.String("ply", "", "optional ASCII PLY mesh added to the scene")
	plyScale := flag.Float64("ply-scale", 1, "scale applied to the PLY mesh after centring")
	shadowRes := flag.Int("shadow-res", 512, "shadow map resolution, 0 for exact shadow rays")
	flag.Parse()
	defer glog.Flush()

	if err := run(*configPath, *out, *plyPath, float32(*plyScale), *width, *height, *frames, *shadowRes, float32(*fps)); err != nil {
		glog.Exit(err)
	}
}

func run(configPath, out, plyPath string, plyScale float32, w, h, frames, shadowRes int, fps float32) error {
	ctx := context.Background()
	cfg := volfog.DefaultFileConfig()
	if configPath != "" {
		var err error
		if cfg, err = volfog.LoadConfigFile(configPath); err != nil {
			return err
		}
	}
	var extra []*volfog.Model
	if plyPath != "" {
		m, err := volfog.LoadPLYFile(plyPath, volfog.FACE_NORMAL)
		if err != nil {
			return err
		}
		m.CentreObject()
		m.ScaleAllPoints(plyScale)
		lo, _ := m.Bounds()
		m.TranslateAllPoints(0, -lo.Y(), 0)
		extra = append(extra, m)
	}
	demo, err := volfog.NewDemo(ctx, cfg, shadowRes, extra...)
	if err != nil {
		return err
	}

	scene, depth, err := demo.Opaque(ctx, w, h)
	if err != nil {
		return fmt.Errorf("render scene: %w", err)
	}
	p := volfog.NewPipeline()
	for i := 0; i < frames; i++ {
		start := time.Now()
		f := demo.Frame(w, h, float32(i)/fps, uint64(i))
		img, res, err := p.Render(ctx, f, scene, depth)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if res.Bypassed {
			glog.Warningf("frame %d passed through without fog, missing %v", i, res.Missing)
		}
		name := frameName(out, i, frames)
		if err := writePNG(name, img); err != nil {
			return err
		}
		glog.Infof("wrote %s (%dx%d, fog %dx%d) in %v", name, w, h, res.FogWidth, res.FogHeight, time.Since(start))
	}
	return nil
}

func frameName(out string, i, frames int) string {
	if frames <= 1 {
		return out
	}
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s_%04d%s", strings.TrimSuffix(out, ext), i, ext)
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return f.Close()
}
