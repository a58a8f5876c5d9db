// Command fogview shows the fog demo in a window.
//
// WASD moves, shift runs, dragging with the left mouse button looks around.
// H, E, N, B, M, R and G toggle height falloff, edge falloff, noise,
// shadows, ambient light, jitter and scene-wide fog. L removes the sun,
// which passes the scene through without fog.
package main

import (
	"context"
	"flag"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/smasonuk/volfog"
)

func main() {
	configPath := flag.String("config", "", "JSON scene configuration")
	width := flag.Int("width", 320, "render width")
	height := flag.Int("height", 240, "render height")
	shadowRes := flag.Int("shadow-res", 256, "shadow map resolution, 0 for exact shadow rays")
	flag.Parse()
	defer glog.Flush()

	cfg := volfog.DefaultFileConfig()
	if *configPath != "" {
		var err error
		if cfg, err = volfog.LoadConfigFile(*configPath); err != nil {
			glog.Exitf("load config: %v", err)
		}
	}
	demo, err := volfog.NewDemo(context.Background(), cfg, *shadowRes)
	if err != nil {
		glog.Exitf("build demo: %v", err)
	}

	ebiten.SetWindowSize(*width*2, *height*2)
	ebiten.SetWindowTitle("volfog")
	if err := ebiten.RunGame(NewGame(demo, *width, *height)); err != nil {
		glog.Exit(err)
	}
}
