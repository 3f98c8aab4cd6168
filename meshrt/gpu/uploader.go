package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// MeshUploader is a core.MeshSink backed by one GPU buffer per vertex
// attribute plus an index buffer. Buffers are grown, never shrunk.
type MeshUploader struct {
	Device *wgpu.Device

	PositionBuf *wgpu.Buffer
	ColorBuf    *wgpu.Buffer
	UV0Buf      *wgpu.Buffer
	UV1Buf      *wgpu.Buffer
	IndexBuf    *wgpu.Buffer

	VertexCount uint32
	IndexCount  uint32
	HasUV1      bool
	Bounds      core.AABB

	label  string
	colors []mgl32.Vec4
}

var _ core.MeshSink = (*MeshUploader)(nil)

func NewMeshUploader(device *wgpu.Device) *MeshUploader {
	return &MeshUploader{
		Device: device,
		label:  "ParticleMesh-" + uuid.NewString()[:8],
	}
}

// alignedSize rounds n up to the 4-byte multiple WriteBuffer requires.
func alignedSize(n int) uint64 {
	size := uint64(n)
	if size%4 != 0 {
		size += 4 - size%4
	}
	return size
}

func (m *MeshUploader) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage) bool {
	needed := alignedSize(len(data))
	if needed == 0 {
		return false
	}

	grew := false
	if current := *buf; current == nil || current.GetSize() < needed {
		if current != nil {
			current.Release()
		}
		newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: m.label + "-" + name,
			Size:  needed,
			Usage: usage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		*buf = newBuf
		grew = true
	}
	m.Device.GetQueue().WriteBuffer(*buf, 0, padded(data, needed))
	return grew
}

func padded(data []byte, size uint64) []byte {
	if uint64(len(data)) == size {
		return data
	}
	out := make([]byte, size)
	copy(out, data)
	return out
}

func (m *MeshUploader) Clear() {
	m.VertexCount = 0
	m.IndexCount = 0
	m.HasUV1 = false
	m.Bounds = core.AABB{}
}

func (m *MeshUploader) SetVertices(vertices []mgl32.Vec3) {
	m.ensureBuffer("positions", &m.PositionBuf, wgpu.ToBytes(vertices), wgpu.BufferUsageVertex)
	m.VertexCount = uint32(len(vertices))
	m.Bounds = core.BoundsOf(vertices)
}

func (m *MeshUploader) SetColors(colors []core.Color32) {
	m.colors = ColorsToVec4(m.colors[:0], colors)
	m.ensureBuffer("colors", &m.ColorBuf, wgpu.ToBytes(m.colors), wgpu.BufferUsageVertex)
}

func (m *MeshUploader) SetUV0(uvs []mgl32.Vec2) {
	m.ensureBuffer("uv0", &m.UV0Buf, wgpu.ToBytes(uvs), wgpu.BufferUsageVertex)
}

func (m *MeshUploader) SetUV1(uvs []mgl32.Vec4) {
	m.ensureBuffer("uv1", &m.UV1Buf, wgpu.ToBytes(uvs), wgpu.BufferUsageVertex)
	m.HasUV1 = len(uvs) > 0
}

func (m *MeshUploader) SetTriangles(indices []uint32) {
	m.ensureBuffer("indices", &m.IndexBuf, wgpu.ToBytes(indices), wgpu.BufferUsageIndex)
	m.IndexCount = uint32(len(indices))
}

func (m *MeshUploader) SetBounds(bounds core.AABB) { m.Bounds = bounds }

// ColorsToVec4 appends colors as normalized floats, the vertex format the
// particle shader reads.
func ColorsToVec4(dst []mgl32.Vec4, colors []core.Color32) []mgl32.Vec4 {
	for _, c := range colors {
		dst = append(dst, c.Vec4())
	}
	return dst
}

// Draw binds the attribute buffers and issues one indexed draw. The pass
// must already have the pipeline and camera bind group set.
func (m *MeshUploader) Draw(pass *wgpu.RenderPassEncoder) {
	if m.IndexCount == 0 {
		return
	}
	pass.SetVertexBuffer(0, m.PositionBuf, 0, wgpu.WholeSize)
	pass.SetVertexBuffer(1, m.ColorBuf, 0, wgpu.WholeSize)
	pass.SetVertexBuffer(2, m.UV0Buf, 0, wgpu.WholeSize)
	if m.HasUV1 {
		pass.SetVertexBuffer(3, m.UV1Buf, 0, wgpu.WholeSize)
	}
	pass.SetIndexBuffer(m.IndexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(m.IndexCount, 1, 0, 0, 0)
}

func (m *MeshUploader) Release() {
	for _, b := range []**wgpu.Buffer{&m.PositionBuf, &m.ColorBuf, &m.UV0Buf, &m.UV1Buf, &m.IndexBuf} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
}

// vertex strides as laid out by the uploader
var (
	positionStride = uint64(unsafe.Sizeof(mgl32.Vec3{}))
	colorStride    = uint64(unsafe.Sizeof(mgl32.Vec4{}))
	uv0Stride      = uint64(unsafe.Sizeof(mgl32.Vec2{}))
	uv1Stride      = uint64(unsafe.Sizeof(mgl32.Vec4{}))
)
