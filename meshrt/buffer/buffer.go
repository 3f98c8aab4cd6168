// Package buffer owns the growable vertex, color, UV and index arrays that
// quads are written into, and commits the active prefix to a mesh sink.
package buffer

import (
	"fmt"

	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Buffers stores quads at fixed offsets: vertices 4i..4i+3 and indices
// 6i..6i+5 for particle i. Capacity only ever grows.
type Buffers struct {
	vertices []mgl32.Vec3
	colors   []core.Color32
	uv0      []mgl32.Vec2
	uv1      []mgl32.Vec4
	indices  []uint32

	capacity    int
	secondaryUV bool
	released    bool
}

// New allocates room for maxParticles quads. With secondaryUV set a UV1
// channel is kept alongside UV0.
func New(maxParticles int, secondaryUV bool) *Buffers {
	b := &Buffers{secondaryUV: secondaryUV}
	b.Ensure(maxParticles)
	return b
}

// Capacity is the number of quads that fit without growing.
func (b *Buffers) Capacity() int { return b.capacity }

func (b *Buffers) VertexCapacity() int { return len(b.vertices) }

func (b *Buffers) IndexCapacity() int { return len(b.indices) }

func (b *Buffers) SecondaryUV() bool { return b.secondaryUV }

// Ensure grows the arrays to hold at least particles quads and reports
// whether a reallocation happened. Existing contents are preserved.
func (b *Buffers) Ensure(particles int) bool {
	b.mustBeLive("Ensure")
	if particles <= b.capacity {
		return false
	}

	vc := particles * core.VerticesPerQuad
	b.vertices = grow(b.vertices, vc)
	b.colors = grow(b.colors, vc)
	b.uv0 = grow(b.uv0, vc)
	if b.secondaryUV {
		b.uv1 = grow(b.uv1, vc)
	}

	prev := b.capacity
	b.indices = grow(b.indices, particles*core.IndicesPerQuad)
	// topology never changes, so it is written once per slot
	for i := prev; i < particles; i++ {
		idx := core.QuadIndices(i)
		copy(b.indices[i*core.IndicesPerQuad:], idx[:])
	}
	b.capacity = particles
	return true
}

func grow[T any](s []T, n int) []T {
	out := make([]T, n)
	copy(out, s)
	return out
}

// WriteQuad stores q at particle slot i. Writing outside capacity panics:
// callers must Ensure first.
func (b *Buffers) WriteQuad(i int, q core.Quad) {
	if i < 0 || i >= b.capacity {
		panic(fmt.Sprintf("buffer: quad %d outside capacity %d", i, b.capacity))
	}
	v := i * core.VerticesPerQuad
	copy(b.vertices[v:v+4], q.Positions[:])
	copy(b.uv0[v:v+4], q.UV0[:])
	for k := v; k < v+4; k++ {
		b.colors[k] = q.Color
	}
	if b.secondaryUV {
		for k := v; k < v+4; k++ {
			b.uv1[k] = q.UV1
		}
	}
	idx := core.QuadIndices(i)
	copy(b.indices[i*core.IndicesPerQuad:], idx[:])
}

// Vertices exposes the first n quads' positions; the slice aliases storage.
func (b *Buffers) Vertices(n int) []mgl32.Vec3 { return b.vertices[:n*core.VerticesPerQuad] }

func (b *Buffers) Colors(n int) []core.Color32 { return b.colors[:n*core.VerticesPerQuad] }

func (b *Buffers) UV0(n int) []mgl32.Vec2 { return b.uv0[:n*core.VerticesPerQuad] }

// UV1 returns nil when the secondary channel is disabled.
func (b *Buffers) UV1(n int) []mgl32.Vec4 {
	if !b.secondaryUV {
		return nil
	}
	return b.uv1[:n*core.VerticesPerQuad]
}

func (b *Buffers) Indices(n int) []uint32 { return b.indices[:n*core.IndicesPerQuad] }

// Commit clears dst and uploads exactly the first active quads.
func (b *Buffers) Commit(dst core.MeshSink, active int) {
	b.mustBeLive("Commit")
	if active > b.capacity {
		panic(fmt.Sprintf("buffer: commit of %d quads exceeds capacity %d", active, b.capacity))
	}
	dst.Clear()
	if active <= 0 {
		return
	}
	dst.SetVertices(b.Vertices(active))
	dst.SetColors(b.Colors(active))
	dst.SetUV0(b.UV0(active))
	if b.secondaryUV {
		dst.SetUV1(b.UV1(active))
	}
	dst.SetTriangles(b.Indices(active))
}

// Release drops all storage. It must be called exactly once.
func (b *Buffers) Release() {
	if b.released {
		panic("buffer: released twice")
	}
	b.released = true
	b.vertices, b.colors, b.uv0, b.uv1, b.indices = nil, nil, nil, nil, nil
	b.capacity = 0
}

func (b *Buffers) Released() bool { return b.released }

func (b *Buffers) mustBeLive(op string) {
	if b.released {
		panic("buffer: " + op + " after Release")
	}
}
