package buffer

import (
	"testing"

	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadAt(x float32, c core.Color32) core.Quad {
	return core.Quad{
		Positions: [4]mgl32.Vec3{{x, 0, 0}, {x, 1, 0}, {x + 1, 1, 0}, {x + 1, 0, 0}},
		Color:     c,
		UV0:       [4]mgl32.Vec2{{0, 0}, {0, 1}, {1, 1}, {1, 0}},
		UV1:       mgl32.Vec4{1, 2, 3, 0.5},
		HasUV1:    true,
	}
}

func TestNewSizesArrays(t *testing.T) {
	b := New(3, false)
	assert.Equal(t, 3, b.Capacity())
	assert.Equal(t, 12, b.VertexCapacity())
	assert.Equal(t, 18, b.IndexCapacity())
	assert.Nil(t, b.UV1(3))
}

func TestIndicesAreFixedTopology(t *testing.T) {
	b := New(2, false)
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}, b.Indices(2))

	b.Ensure(3)
	assert.Equal(t, []uint32{8, 9, 10, 10, 11, 8}, b.Indices(3)[12:])
}

func TestEnsureIsGrowOnly(t *testing.T) {
	b := New(4, true)
	b.WriteQuad(1, quadAt(5, core.White))

	assert.False(t, b.Ensure(2))
	assert.Equal(t, 4, b.Capacity())

	assert.True(t, b.Ensure(10))
	assert.Equal(t, 10, b.Capacity())
	assert.Equal(t, 40, b.VertexCapacity())
	assert.Equal(t, mgl32.Vec3{5, 0, 0}, b.Vertices(2)[4], "contents survive growth")
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 0.5}, b.UV1(2)[7])

	assert.False(t, b.Ensure(5))
	assert.Equal(t, 10, b.Capacity())
}

func TestWriteQuadFillsAllCorners(t *testing.T) {
	b := New(2, true)
	red := core.Color32{R: 255, A: 255}
	b.WriteQuad(1, quadAt(2, red))

	verts := b.Vertices(2)[4:8]
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, verts[core.LeftBottom])
	assert.Equal(t, mgl32.Vec3{3, 0, 0}, verts[core.RightBottom])
	for _, c := range b.Colors(2)[4:8] {
		assert.Equal(t, red, c)
	}
	for _, uv := range b.UV1(2)[4:8] {
		assert.Equal(t, mgl32.Vec4{1, 2, 3, 0.5}, uv)
	}
}

func TestWriteQuadOutOfRangePanics(t *testing.T) {
	b := New(1, false)
	assert.Panics(t, func() { b.WriteQuad(1, core.Quad{}) })
	assert.Panics(t, func() { b.WriteQuad(-1, core.Quad{}) })
}

func TestCommitUploadsActivePrefix(t *testing.T) {
	b := New(4, false)
	for i := 0; i < 4; i++ {
		b.WriteQuad(i, quadAt(float32(i*10), core.White))
	}

	mesh := core.NewMesh()
	b.Commit(mesh, 2)
	require.Len(t, mesh.Vertices, 8)
	assert.Len(t, mesh.Colors, 8)
	assert.Len(t, mesh.UV0, 8)
	assert.Empty(t, mesh.UV1)
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}, mesh.Triangles)
	assert.Equal(t, 2, mesh.QuadCount())
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, mesh.Bounds.Min)
	assert.Equal(t, mgl32.Vec3{11, 1, 0}, mesh.Bounds.Max)

	// a smaller frame leaves nothing stale behind
	b.Commit(mesh, 1)
	assert.Equal(t, 1, mesh.QuadCount())
	assert.Len(t, mesh.Vertices, 4)
}

func TestCommitZeroClears(t *testing.T) {
	b := New(2, true)
	b.WriteQuad(0, quadAt(0, core.White))
	mesh := core.NewMesh()
	b.Commit(mesh, 1)
	v := mesh.Version

	b.Commit(mesh, 0)
	assert.Empty(t, mesh.Vertices)
	assert.Empty(t, mesh.Triangles)
	assert.Greater(t, mesh.Version, v)
}

func TestCommitSecondaryUV(t *testing.T) {
	b := New(1, true)
	b.WriteQuad(0, quadAt(0, core.White))
	mesh := core.NewMesh()
	b.Commit(mesh, 1)
	require.Len(t, mesh.UV1, 4)
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 0.5}, mesh.UV1[3])
}

func TestReleaseContract(t *testing.T) {
	b := New(2, false)
	b.Release()
	assert.True(t, b.Released())
	assert.Equal(t, 0, b.Capacity())
	assert.Panics(t, func() { b.Release() })
	assert.Panics(t, func() { b.Ensure(4) })
	assert.Panics(t, func() { b.Commit(core.NewMesh(), 0) })
}
