package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestEulerToQuat_AxisOrder(t *testing.T) {
	tests := []struct {
		name     string
		euler    mgl32.Vec3
		in       mgl32.Vec3
		expected mgl32.Vec3
	}{
		{"identity", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 2, 3}},
		{"z 90", mgl32.Vec3{0, 0, 90}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{"x 90", mgl32.Vec3{90, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{"y 90", mgl32.Vec3{0, 90, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}},
		// Z first takes X to Y, then X takes Y to Z
		{"z then x", mgl32.Vec3{90, 0, 90}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}

	for _, tc := range tests {
		got := EulerToQuat(tc.euler).Rotate(tc.in)
		if !got.ApproxEqualThreshold(tc.expected, 1e-5) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestTransform_WorldToLocalInvertsLocalToWorld(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{10, -4, 2}
	tr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 0, 1})
	tr.Scale = mgl32.Vec3{2, 2, 1}

	p := mgl32.Vec3{3, 5, 7}
	world := TransformPoint(tr.LocalToWorld(), p)
	back := TransformPoint(tr.WorldToLocal(), world)

	assert.True(t, back.ApproxEqualThreshold(p, 1e-4), "expected %v, got %v", p, back)
}

func TestParticle_NormalizedAge(t *testing.T) {
	p := Particle{StartLifetime: 4, RemainingLifetime: 1}
	assert.InDelta(t, 0.75, p.NormalizedAge(), 1e-6)
	assert.InDelta(t, 0.75, p.NormalizedLifetime(), 1e-6)
	assert.InDelta(t, 3, p.TimeAlive(), 1e-6)

	p.RemainingLifetime = 5
	assert.Equal(t, float32(0), p.NormalizedAge())
	assert.Equal(t, float32(0), p.TimeAlive())

	p.StartLifetime = 0
	assert.Equal(t, float32(1), p.NormalizedAge())
}
