package core

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestKeyframeCurve_Evaluate(t *testing.T) {
	linear := NewKeyframeCurve(
		Keyframe{Time: 1, Value: 1, InTangent: 1, OutTangent: 1},
		Keyframe{Time: 0, Value: 0, InTangent: 1, OutTangent: 1},
	)
	assert.Equal(t, float32(0), linear.Keys[0].Time, "keys are sorted")

	for _, x := range []float32{0, 0.25, 0.5, 0.75, 1} {
		assert.InDelta(t, x, linear.Evaluate(x), 1e-5, "t=%v", x)
	}
	assert.Equal(t, float32(0), linear.Evaluate(-1))
	assert.Equal(t, float32(1), linear.Evaluate(2))

	linear.Multiplier = 3
	assert.InDelta(t, 1.5, linear.Evaluate(0.5), 1e-5)
}

func TestKeyframeCurve_FlatTangentsEaseInOut(t *testing.T) {
	c := NewKeyframeCurve(Keyframe{Time: 0, Value: 0}, Keyframe{Time: 1, Value: 1})
	assert.InDelta(t, 0.5, c.Evaluate(0.5), 1e-6)
	assert.Less(t, c.Evaluate(0.1), float32(0.1))
	assert.Greater(t, c.Evaluate(0.9), float32(0.9))
}

func TestKeyframeCurve_Stepped(t *testing.T) {
	c := NewKeyframeCurve(
		Keyframe{Time: 0, Value: 2, OutTangent: math32.Inf(1)},
		Keyframe{Time: 1, Value: 5},
	)
	assert.Equal(t, float32(2), c.Evaluate(0.99))
	assert.Equal(t, float32(5), c.Evaluate(1))
}

func TestKeyframeCurve_Empty(t *testing.T) {
	assert.Equal(t, float32(0), NewKeyframeCurve().Evaluate(0.5))
}

func TestStopGradient_Evaluate(t *testing.T) {
	g := NewStopGradient(
		[]ColorKey{{Time: 1, Color: [3]uint8{255, 255, 255}}, {Time: 0, Color: [3]uint8{0, 0, 0}}},
		[]AlphaKey{{Time: 0, Alpha: 255}, {Time: 1, Alpha: 0}},
	)

	assert.Equal(t, Color32{0, 0, 0, 255}, g.Evaluate(0))
	assert.Equal(t, Color32{255, 255, 255, 0}, g.Evaluate(1))
	assert.Equal(t, Color32{127, 127, 127, 127}, g.Evaluate(0.5))
	assert.Equal(t, g.Evaluate(0), g.Evaluate(-1))

	g.Fixed = true
	assert.Equal(t, Color32{0, 0, 0, 255}, g.Evaluate(0.99))
}

func TestStopGradient_NoKeysIsWhite(t *testing.T) {
	assert.Equal(t, White, (&StopGradient{}).Evaluate(0.3))
}
