package volfog

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultFovY = 60
	DefaultNear = 0.3
	DefaultFar  = 1000

	maxPitch = 89 * math32.Pi / 180
)

var worldUp = mgl32.Vec3{0, 1, 0}

// Camera is a yaw/pitch perspective camera. Yaw 0 and pitch 0 look down
// -Z. Angles are in radians, FovY in degrees.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	FovY     float32
	Near     float32
	Far      float32
}

func NewCamera(pos mgl32.Vec3, yaw, pitch float32) *Camera {
	c := &Camera{
		Position: pos,
		FovY:     DefaultFovY,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
	c.AddAngle(pitch, yaw)
	return c
}

// NewCameraLookAt points a new camera from pos at target. If the two
// coincide the camera keeps the default orientation.
func NewCameraLookAt(pos, target mgl32.Vec3) *Camera {
	c := NewCamera(pos, 0, 0)
	c.LookAt(target)
	return c
}

func (c *Camera) LookAt(target mgl32.Vec3) {
	d, ok := normalize(target.Sub(c.Position))
	if !ok {
		return
	}
	c.Yaw = math32.Atan2(-d.X(), -d.Z())
	c.Pitch = clampf(math32.Asin(clampf(d.Y(), -1, 1)), -maxPitch, maxPitch)
}

// AddAngle rotates the camera about its local X (pitch) and the world Y
// (yaw) axes. Pitch stops short of straight up or down.
func (c *Camera) AddAngle(x, y float32) {
	c.Pitch = clampf(c.Pitch+x, -maxPitch, maxPitch)
	c.Yaw += y
}

func (c *Camera) rotation() mgl32.Mat4 {
	return mgl32.HomogRotate3DY(c.Yaw).Mul4(mgl32.HomogRotate3DX(c.Pitch))
}

// Forward is the unit viewing direction.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.rotation().Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
}

func (c *Camera) Right() mgl32.Vec3 {
	return c.rotation().Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()
}

// Move translates the camera along its forward and right directions and
// along the world up axis.
func (c *Camera) Move(forward, right, up float32) {
	c.Position = c.Position.
		Add(c.Forward().Mul(forward)).
		Add(c.Right().Mul(right)).
		Add(worldUp.Mul(up))
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), worldUp)
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// State captures the inverse matrices needed to rebuild per-pixel rays for
// an image of w by h pixels.
func (c *Camera) State(w, h int) CameraState {
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	return CameraState{
		InvView:  c.View().Inv(),
		InvProj:  c.Projection(aspect).Inv(),
		Far:      c.Far,
		Width:    w,
		Height:   h,
		Position: c.Position,
	}
}

// CameraState is the read-only camera description of one frame.
type CameraState struct {
	InvView  mgl32.Mat4
	InvProj  mgl32.Mat4
	Far      float32
	Width    int
	Height   int
	Position mgl32.Vec3
}

// Ray returns the world-space ray through the centre of pixel (x, y) and
// the distance along it to the far plane. Pixel rows grow downwards.
func (s CameraState) Ray(x, y int) (Ray, float32, bool) {
	if s.Width <= 0 || s.Height <= 0 {
		return Ray{}, 0, false
	}
	ndc := mgl32.Vec4{
		2*(float32(x)+0.5)/float32(s.Width) - 1,
		1 - 2*(float32(y)+0.5)/float32(s.Height),
		1,
		1,
	}
	v := s.InvProj.Mul4x1(ndc)
	if math32.Abs(v.W()) < epsilon {
		return Ray{}, 0, false
	}
	view := v.Vec3().Mul(1 / v.W())
	farT := view.Len()
	dir, ok := normalize(s.InvView.Mul4x1(view.Vec4(0)).Vec3())
	if !ok || !finite(farT) {
		return Ray{}, 0, false
	}
	origin := s.InvView.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	return Ray{Origin: origin, Dir: dir}, farT, true
}
