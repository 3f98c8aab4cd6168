package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuadIndices(t *testing.T) {
	for i := 0; i < 5; i++ {
		v := uint32(4 * i)
		assert.Equal(t, [6]uint32{v, v + 1, v + 2, v + 2, v + 3, v}, QuadIndices(i))
	}
}

func TestMesh_BoundsAndOverride(t *testing.T) {
	m := NewMesh()
	m.SetVertices([]mgl32.Vec3{{-1, -2, 0}, {3, 1, 0}, {0, 0, 5}})
	assert.Equal(t, AABB{Min: mgl32.Vec3{-1, -2, 0}, Max: mgl32.Vec3{3, 1, 5}}, m.Bounds)
	assert.False(t, m.BoundsOverridden)

	m.Clear()
	require.Empty(t, m.Vertices)

	override := CubeAABB(mgl32.Vec3{}, 10)
	m.SetVertices([]mgl32.Vec3{{1, 1, 1}, {1, 1, 1}})
	assert.True(t, m.Bounds.Degenerate())
	m.SetBounds(override)
	assert.Equal(t, override, m.Bounds)
	assert.Equal(t, mgl32.Vec3{-5, -5, -5}, override.Min)
	assert.Equal(t, mgl32.Vec3{10, 10, 10}, override.Size())
}
