package core

import "github.com/go-gl/mathgl/mgl32"

const (
	VerticesPerQuad = 4
	IndicesPerQuad  = 6
)

// Quad corner order. Triangle winding relies on it.
const (
	LeftBottom = iota
	LeftTop
	RightTop
	RightBottom
)

// Quad is one particle's worth of vertex data.
type Quad struct {
	Positions [4]mgl32.Vec3
	Color     Color32
	UV0       [4]mgl32.Vec2
	// UV1 is only meaningful when HasUV1 is set; it is shared by all corners.
	UV1    mgl32.Vec4
	HasUV1 bool
}

// QuadIndices returns the two triangles of quad i: {4i, 4i+1, 4i+2, 4i+2, 4i+3, 4i}.
func QuadIndices(i int) [IndicesPerQuad]uint32 {
	v := uint32(i * VerticesPerQuad)
	return [IndicesPerQuad]uint32{v, v + 1, v + 2, v + 2, v + 3, v}
}
