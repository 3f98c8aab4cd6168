package gpu

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera circles a target point. Y is up; yaw turns about Y and pitch
// tilts towards it, both in radians.
type OrbitCamera struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
	FovY     float32 // degrees
}

func NewOrbitCamera(target mgl32.Vec3, distance float32) *OrbitCamera {
	return &OrbitCamera{Target: target, Distance: distance, FovY: 60}
}

// Eye is the camera position.
func (c *OrbitCamera) Eye() mgl32.Vec3 {
	cp := math32.Cos(c.Pitch)
	offset := mgl32.Vec3{
		cp * math32.Sin(c.Yaw),
		math32.Sin(c.Pitch),
		cp * math32.Cos(c.Yaw),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// Orbit turns the camera, keeping pitch short of the poles.
func (c *OrbitCamera) Orbit(dYaw, dPitch float32) {
	const limit = math32.Pi/2 - 0.01
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -limit, limit)
}

// Zoom scales the distance, never closer than one unit.
func (c *OrbitCamera) Zoom(factor float32) {
	c.Distance = math32.Max(1, c.Distance*factor)
}

func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *OrbitCamera) ViewProjection(width, height uint32) mgl32.Mat4 {
	aspect := float32(width) / float32(max(height, 1))
	proj := mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, 0.1, 200)
	return proj.Mul4(c.ViewMatrix())
}
