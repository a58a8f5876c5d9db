package main

import (
	"context"
	"fmt"
	"image"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/smasonuk/volfog"
)

const (
	moveSpeed        = 20
	mouseSensitivity = 1
	tickSeconds      = 1.0 / 60
)

type Game struct {
	demo     *volfog.Demo
	pipeline *volfog.Pipeline
	sun      *volfog.DirectionalLight

	width, height int
	frame         *image.RGBA
	result        volfog.Result
	index         uint64
	elapsed       float32

	lastX, lastY int
	dragging     bool
}

func NewGame(demo *volfog.Demo, w, h int) *Game {
	return &Game{
		demo:     demo,
		pipeline: volfog.NewPipeline(),
		sun:      demo.Sun,
		width:    w,
		height:   h,
	}
}

func (g *Game) Update() error {
	g.move()
	g.toggles()

	ctx := context.Background()
	scene, depth, err := g.demo.Opaque(ctx, g.width, g.height)
	if err != nil {
		return err
	}
	g.elapsed += tickSeconds
	g.index++
	f := g.demo.Frame(g.width, g.height, g.elapsed, g.index)
	out, res, err := g.pipeline.Render(ctx, f, scene, depth)
	if err != nil {
		return err
	}
	g.frame, g.result = out, res
	return nil
}

// move applies WASD movement, doubled while shift is held, and mouse look
// while the left button is dragged.
func (g *Game) move() {
	cam := g.demo.Camera
	speed := float32(moveSpeed * tickSeconds)
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		speed *= 2
	}
	var fwd, right float32
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		fwd += speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		fwd -= speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		right += speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		right -= speed
	}
	cam.Move(fwd, right, 0)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging = true
		g.lastX, g.lastY = ebiten.CursorPosition()
	}
	if g.dragging {
		x, y := ebiten.CursorPosition()
		dx := float32(x-g.lastX) / 200.0 * mouseSensitivity
		dy := float32(y-g.lastY) / 200.0 * mouseSensitivity
		cam.AddAngle(-dy, -dx)
		g.lastX, g.lastY = x, y
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
	}
}

func (g *Game) toggles() {
	cfg := &g.demo.Config
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		cfg.HeightFalloff = !cfg.HeightFalloff
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		cfg.EdgeFalloff = !cfg.EdgeFalloff
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		cfg.Noise = !cfg.Noise
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		cfg.Shadows = !cfg.Shadows
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		cfg.Ambient = !cfg.Ambient
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		cfg.Randomize = !cfg.Randomize
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		cfg.SceneWide = !cfg.SceneWide
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		if g.demo.Sun != nil {
			g.demo.Sun = nil
		} else {
			g.demo.Sun = g.sun
		}
		glog.Infof("sun enabled: %t", g.demo.Sun != nil)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.frame != nil {
		screen.WritePixels(g.frame.Pix)
	}
	status := "fog"
	if g.result.Bypassed {
		status = fmt.Sprintf("bypassed, missing %v", g.result.Missing)
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %0.2f  %s\n%s", ebiten.ActualFPS(), status, g.demo.Config))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
