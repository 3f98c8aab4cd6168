package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestColor32_Lerp(t *testing.T) {
	a := Color32{0, 100, 200, 255}
	b := Color32{255, 0, 200, 55}

	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
	assert.Equal(t, a, a.Lerp(b, -3), "t is clamped")
	assert.Equal(t, b, a.Lerp(b, 3), "t is clamped")
	assert.Equal(t, Color32{127, 50, 200, 155}, a.Lerp(b, 0.5))
}

func TestColor32_Modulate(t *testing.T) {
	c := Color32{200, 100, 50, 255}
	assert.Equal(t, c, c.Modulate(White))
	assert.Equal(t, Clear, c.Modulate(Clear))
	assert.Equal(t, Color32{100, 50, 25, 128}, c.Modulate(Color32{128, 128, 128, 128}))
}

func TestColor32_Vec4RoundTrip(t *testing.T) {
	c := Color32{12, 34, 56, 78}
	assert.Equal(t, c, Color32FromVec4(c.Vec4()))
	assert.Equal(t, White, Color32FromVec4(mgl32.Vec4{2, 2, 2, 2}))
}
