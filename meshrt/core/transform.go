package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

var (
	axisX = mgl32.Vec3{1, 0, 0}
	axisY = mgl32.Vec3{0, 1, 0}
	axisZ = mgl32.Vec3{0, 0, 1}
)

// Transform places a particle emitter (or the canvas hosting it) in the world.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() *Transform {
	return &Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t *Transform) LocalToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

func (t *Transform) WorldToLocal() mgl32.Mat4 {
	// inv(M) = inv(S) * inv(R) * inv(T)
	invScale := mgl32.Scale3D(1.0/t.Scale.X(), 1.0/t.Scale.Y(), 1.0/t.Scale.Z())
	invRotate := t.Rotation.Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())

	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

// EulerToQuat builds a rotation from Euler degrees. Z is applied first,
// then X, then Y, which is the convention particle systems report angles in.
func EulerToQuat(deg mgl32.Vec3) mgl32.Quat {
	if deg == (mgl32.Vec3{}) {
		return mgl32.QuatIdent()
	}
	qy := mgl32.QuatRotate(mgl32.DegToRad(deg.Y()), axisY)
	qx := mgl32.QuatRotate(mgl32.DegToRad(deg.X()), axisX)
	qz := mgl32.QuatRotate(mgl32.DegToRad(deg.Z()), axisZ)
	return qy.Mul(qx).Mul(qz)
}

// TransformPoint applies an affine matrix to a point.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, m)
}
