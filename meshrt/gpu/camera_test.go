package gpu

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestOrbitCameraEye(t *testing.T) {
	c := NewOrbitCamera(mgl32.Vec3{0, 3, 0}, 10)
	assertVec3(t, mgl32.Vec3{0, 3, 10}, c.Eye())

	c.Orbit(math32.Pi/2, 0)
	assertVec3(t, mgl32.Vec3{10, 3, 0}, c.Eye())
}

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func TestOrbitCameraPitchClamped(t *testing.T) {
	c := NewOrbitCamera(mgl32.Vec3{}, 5)
	c.Orbit(0, 10)
	assert.Less(t, c.Pitch, float32(math32.Pi/2))
	c.Orbit(0, -20)
	assert.Greater(t, c.Pitch, float32(-math32.Pi/2))
}

func TestOrbitCameraZoom(t *testing.T) {
	c := NewOrbitCamera(mgl32.Vec3{}, 4)
	c.Zoom(0.5)
	assert.Equal(t, float32(2), c.Distance)
	c.Zoom(0.01)
	assert.Equal(t, float32(1), c.Distance)
}

func TestViewProjectionCentersTarget(t *testing.T) {
	c := NewOrbitCamera(mgl32.Vec3{1, 2, 3}, 8)
	clip := c.ViewProjection(800, 600).Mul4x1(mgl32.Vec4{1, 2, 3, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-5)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-5)
}
