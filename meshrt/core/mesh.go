package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MeshSink receives committed geometry. Slices passed in are only valid for
// the duration of the call; implementations must copy what they keep.
type MeshSink interface {
	Clear()
	SetVertices(vertices []mgl32.Vec3)
	SetColors(colors []Color32)
	SetUV0(uvs []mgl32.Vec2)
	SetUV1(uvs []mgl32.Vec4)
	SetTriangles(indices []uint32)
	SetBounds(bounds AABB)
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// CubeAABB is a box of the given edge length centred on center.
func CubeAABB(center mgl32.Vec3, edge float32) AABB {
	h := edge * 0.5
	ext := mgl32.Vec3{h, h, h}
	return AABB{Min: center.Sub(ext), Max: center.Add(ext)}
}

// BoundsOf computes the box enclosing points. Empty input gives a zero box.
func BoundsOf(points []mgl32.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	b := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < b.Min[k] {
				b.Min[k] = p[k]
			}
			if p[k] > b.Max[k] {
				b.Max[k] = p[k]
			}
		}
	}
	return b
}

func (b AABB) Size() mgl32.Vec3 { return b.Max.Sub(b.Min) }

func (b AABB) Center() mgl32.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Degenerate reports whether the box has no volume along every axis.
func (b AABB) Degenerate() bool {
	s := b.Size()
	return s.X() == 0 && s.Y() == 0 && s.Z() == 0
}

// Mesh is an in-memory MeshSink. Storage is reused between commits.
type Mesh struct {
	Vertices  []mgl32.Vec3
	Colors    []Color32
	UV0       []mgl32.Vec2
	UV1       []mgl32.Vec4
	Triangles []uint32
	Bounds    AABB

	// BoundsOverridden is set when the last commit supplied explicit bounds.
	BoundsOverridden bool
	Version          uint64
}

func NewMesh() *Mesh { return &Mesh{} }

func (m *Mesh) Clear() {
	m.Vertices = m.Vertices[:0]
	m.Colors = m.Colors[:0]
	m.UV0 = m.UV0[:0]
	m.UV1 = m.UV1[:0]
	m.Triangles = m.Triangles[:0]
	m.Bounds = AABB{}
	m.BoundsOverridden = false
	m.Version++
}

func (m *Mesh) SetVertices(vertices []mgl32.Vec3) {
	m.Vertices = append(m.Vertices[:0], vertices...)
	if !m.BoundsOverridden {
		m.Bounds = BoundsOf(m.Vertices)
	}
}

func (m *Mesh) SetColors(colors []Color32) { m.Colors = append(m.Colors[:0], colors...) }

func (m *Mesh) SetUV0(uvs []mgl32.Vec2) { m.UV0 = append(m.UV0[:0], uvs...) }

func (m *Mesh) SetUV1(uvs []mgl32.Vec4) { m.UV1 = append(m.UV1[:0], uvs...) }

func (m *Mesh) SetTriangles(indices []uint32) {
	m.Triangles = append(m.Triangles[:0], indices...)
}

func (m *Mesh) SetBounds(bounds AABB) {
	m.Bounds = bounds
	m.BoundsOverridden = true
}

// QuadCount is the number of complete quads currently held.
func (m *Mesh) QuadCount() int { return len(m.Triangles) / IndicesPerQuad }
