package volfog

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	ROTX = 0
	ROTY = 1
	ROTZ = 2
)

// NewRotationMatrix rotates by theta radians about one world axis.
func NewRotationMatrix(axis int, theta float32) mgl32.Mat4 {
	switch axis {
	case ROTX:
		return mgl32.HomogRotate3DX(theta)
	case ROTY:
		return mgl32.HomogRotate3DY(theta)
	case ROTZ:
		return mgl32.HomogRotate3DZ(theta)
	}
	return mgl32.Ident4()
}

// RotationFromDegrees builds an orientation from Euler angles in degrees,
// applied Z first, then X, then Y.
func RotationFromDegrees(x, y, z float32) mgl32.Mat4 {
	ry := NewRotationMatrix(ROTY, mgl32.DegToRad(y))
	rx := NewRotationMatrix(ROTX, mgl32.DegToRad(x))
	rz := NewRotationMatrix(ROTZ, mgl32.DegToRad(z))
	return ry.Mul4(rx).Mul4(rz)
}

// OrientationAxes returns the images of the +X, +Y and +Z axes under m.
func OrientationAxes(m mgl32.Mat4) (right, up, forward mgl32.Vec3) {
	right = TransformDirection(m, mgl32.Vec3{1, 0, 0})
	up = TransformDirection(m, mgl32.Vec3{0, 1, 0})
	forward = TransformDirection(m, mgl32.Vec3{0, 0, 1})
	return right, up, forward
}

func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDirection applies the rotation part of m only.
func TransformDirection(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

// basisFrom returns two unit vectors perpendicular to n and to each other.
func basisFrom(n mgl32.Vec3) (u, v mgl32.Vec3) {
	ref := worldUp
	if n.Y() > 0.99 || n.Y() < -0.99 {
		ref = mgl32.Vec3{1, 0, 0}
	}
	u, _ = normalize(ref.Cross(n))
	v = n.Cross(u)
	return u, v
}
