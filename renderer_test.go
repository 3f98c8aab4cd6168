package particlemesh

import (
	"bytes"
	"log"
	"testing"

	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/gekko3d/particlemesh/meshrt/uv"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitParticle(pos mgl32.Vec3) core.Particle {
	return core.Particle{
		Position:          pos,
		Size3D:            mgl32.Vec3{2, 2, 2},
		StartLifetime:     2,
		RemainingLifetime: 1,
		Color:             core.White,
	}
}

func newTestRenderer(t *testing.T, mutate func(*Config)) *Renderer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxParticles = 4
	if mutate != nil {
		mutate(cfg)
	}
	r, err := NewRenderer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if !r.Released() {
			r.Release()
		}
	})
	return r
}

func TestPopulateSingleQuadAndBoundsOverride(t *testing.T) {
	r := newTestRenderer(t, nil)
	frame := core.NewFrame([]core.Particle{unitParticle(mgl32.Vec3{})})
	mesh := core.NewMesh()
	require.NoError(t, r.Populate(&frame, mesh))

	assert.Equal(t, []mgl32.Vec3{{-1, -1, 0}, {-1, 1, 0}, {1, 1, 0}, {1, -1, 0}}, mesh.Vertices)
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, mesh.Triangles)
	assert.Equal(t, []mgl32.Vec2{{0, 0}, {0, 1}, {1, 1}, {1, 0}}, mesh.UV0)

	assert.True(t, mesh.BoundsOverridden)
	assert.Equal(t, mgl32.Vec3{-540, -540, -540}, mesh.Bounds.Min)
	assert.Equal(t, mgl32.Vec3{540, 540, 540}, mesh.Bounds.Max)
}

func TestPopulateComputesBoundsForManyParticles(t *testing.T) {
	r := newTestRenderer(t, nil)
	frame := core.NewFrame([]core.Particle{unitParticle(mgl32.Vec3{}), unitParticle(mgl32.Vec3{10, 0, 0})})
	mesh := core.NewMesh()
	require.NoError(t, r.Populate(&frame, mesh))

	assert.False(t, mesh.BoundsOverridden)
	assert.Equal(t, mgl32.Vec3{-1, -1, 0}, mesh.Bounds.Min)
	assert.Equal(t, mgl32.Vec3{11, 1, 0}, mesh.Bounds.Max)
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}, mesh.Triangles)
}

func TestPopulateZeroParticlesClears(t *testing.T) {
	for _, batchMode := range []bool{false, true} {
		r := newTestRenderer(t, func(c *Config) { c.UseParallelBatchMode = batchMode })
		mesh := core.NewMesh()
		full := core.NewFrame([]core.Particle{unitParticle(mgl32.Vec3{}), unitParticle(mgl32.Vec3{1, 1, 1})})
		require.NoError(t, r.Populate(&full, mesh))
		require.Equal(t, 2, mesh.QuadCount())

		empty := core.NewFrame(nil)
		require.NoError(t, r.Populate(&empty, mesh))
		assert.Empty(t, mesh.Vertices, "batch=%v", batchMode)
		assert.Empty(t, mesh.Triangles, "batch=%v", batchMode)
	}
}

func TestPopulateGrowsCapacity(t *testing.T) {
	r := newTestRenderer(t, func(c *Config) { c.MaxParticles = 2 })
	ps := make([]core.Particle, 9)
	for i := range ps {
		ps[i] = unitParticle(mgl32.Vec3{float32(i), 0, 0})
	}
	frame := core.NewFrame(ps)
	mesh := core.NewMesh()
	require.NoError(t, r.Populate(&frame, mesh))
	assert.Equal(t, 9, mesh.QuadCount())
	assert.Equal(t, 9, r.Capacity())

	frame.Particles = ps[:3]
	require.NoError(t, r.Populate(&frame, mesh))
	assert.Equal(t, 3, mesh.QuadCount())
	assert.Equal(t, 9, r.Capacity())
}

func TestSequentialAndBatchAgree(t *testing.T) {
	withCurves := func(c *Config) {
		c.MaxParticles = 200
		c.PackScaleAgeToSecondaryUV = true
		c.ParallelThreshold = 8
		c.SizeOverLifetime = CurveConfig{Enabled: true, Multiplier: 1, Keys: []KeyframeConfig{
			{Time: 0, Value: 0.5, OutTangent: 1}, {Time: 1, Value: 1.5, InTangent: 1},
		}}
		c.ColorOverLifetime = GradientConfig{
			Enabled:   true,
			ColorKeys: []ColorKeyConfig{{Time: 0, R: 255, G: 255, B: 255}, {Time: 1, R: 255, G: 0, B: 0}},
			AlphaKeys: []AlphaKeyConfig{{Time: 0, Alpha: 255}, {Time: 1, Alpha: 0}},
		}
	}
	seq := newTestRenderer(t, withCurves)
	bat := newTestRenderer(t, func(c *Config) {
		withCurves(c)
		c.UseParallelBatchMode = true
		c.Workers = 4
	})

	ps := make([]core.Particle, 150)
	for i := range ps {
		f := float32(i)
		ps[i] = core.Particle{
			Position:          mgl32.Vec3{f, -f, f * 0.25},
			Rotation3D:        mgl32.Vec3{f, f * 2, f * 3},
			Size3D:            mgl32.Vec3{1, 0.5, 2},
			StartLifetime:     3,
			RemainingLifetime: 3 * float32(i) / 150,
			Color:             core.Color32{R: 200, G: 100, B: 50, A: 255},
		}
	}
	frame := core.NewFrame(ps)
	frame.Space = core.SimulationSpaceWorld
	frame.WorldToLocal = mgl32.Translate3D(-5, 0, 0)

	a, b := core.NewMesh(), core.NewMesh()
	require.NoError(t, seq.Populate(&frame, a))
	require.NoError(t, bat.Populate(&frame, b))

	require.Len(t, b.Vertices, len(a.Vertices))
	for i := range a.Vertices {
		for k := 0; k < 3; k++ {
			assert.InDelta(t, a.Vertices[i][k], b.Vertices[i][k], 1e-3, "vertex %d axis %d", i, k)
		}
	}
	for i := range a.Colors {
		for k, ch := range [4][2]uint8{
			{a.Colors[i].R, b.Colors[i].R}, {a.Colors[i].G, b.Colors[i].G},
			{a.Colors[i].B, b.Colors[i].B}, {a.Colors[i].A, b.Colors[i].A},
		} {
			assert.InDelta(t, ch[0], ch[1], 2, "color %d channel %d", i, k)
		}
	}
	assert.Equal(t, a.Triangles, b.Triangles)
	assert.Equal(t, a.UV0, b.UV0)
	require.Len(t, b.UV1, len(a.UV1))
	for i := range a.UV1 {
		for k := 0; k < 4; k++ {
			assert.InDelta(t, a.UV1[i][k], b.UV1[i][k], 1e-4, "uv1 %d component %d", i, k)
		}
	}
}

func TestSequentialTextureSheet(t *testing.T) {
	r := newTestRenderer(t, func(c *Config) {
		c.TextureSheet = TextureSheetConfig{
			Enabled: true, TilesX: 4, TilesY: 2, Cycles: 1,
			Animation: "whole_sheet", RowMode: "fixed",
		}
	})
	// time alive 5.5 of 8 -> frame 5 -> column 1, row 0
	p := unitParticle(mgl32.Vec3{})
	p.StartLifetime, p.RemainingLifetime = 8, 2.5
	frame := core.NewFrame([]core.Particle{p})
	mesh := core.NewMesh()
	require.NoError(t, r.Populate(&frame, mesh))

	sheet, err := r.Config().TextureSheet.Sampler()
	require.NoError(t, err)
	want := sheet.(*uv.SheetSampler).TileCorners(5)
	assert.Equal(t, want[:], mesh.UV0)
	assert.Equal(t, mgl32.Vec2{0.25, 0}, mesh.UV0[core.LeftBottom])
	assert.Equal(t, mgl32.Vec2{0.5, 0.5}, mesh.UV0[core.RightTop])
}

func TestNewRendererRejectsSheetInBatchMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseParallelBatchMode = true
	cfg.TextureSheet.Enabled = true
	_, err := NewRenderer(cfg)
	assert.ErrorIs(t, err, ErrUnsupportedConfig)
}

func TestRendererModeAndLogging(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.UseParallelBatchMode = true
	r, err := NewRenderer(cfg, WithLogger(NewWriterLogger(log.New(&buf, "", 0), "test", true)), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, ModeBatch, r.Mode())
	assert.Contains(t, buf.String(), r.ID().String())
	assert.Contains(t, buf.String(), "mode=batch")

	r.Release()
	assert.Contains(t, buf.String(), "released")
}

func TestPopulateWarnsWhenGrowingPastCapacity(t *testing.T) {
	for _, batchMode := range []bool{false, true} {
		var buf bytes.Buffer
		cfg := DefaultConfig()
		cfg.MaxParticles = 2
		cfg.UseParallelBatchMode = batchMode
		r, err := NewRenderer(cfg, WithLogger(NewWriterLogger(log.New(&buf, "", 0), "test", false)))
		require.NoError(t, err)

		ps := []core.Particle{unitParticle(mgl32.Vec3{}), unitParticle(mgl32.Vec3{1, 0, 0})}
		frame := core.NewFrame(ps)
		require.NoError(t, r.Populate(&frame, core.NewMesh()))
		assert.NotContains(t, buf.String(), "WARN")

		frame = core.NewFrame(append(ps, unitParticle(mgl32.Vec3{2, 0, 0})))
		require.NoError(t, r.Populate(&frame, core.NewMesh()))
		assert.Contains(t, buf.String(), "[test] WARN:")
		assert.Contains(t, buf.String(), "3 particles exceed capacity 2")

		// grown buffers hold the same count without another warning
		buf.Reset()
		require.NoError(t, r.Populate(&frame, core.NewMesh()))
		assert.NotContains(t, buf.String(), "WARN")
		r.Release()
	}
}

func TestRendererReleaseContract(t *testing.T) {
	for _, batchMode := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.UseParallelBatchMode = batchMode
		r, err := NewRenderer(cfg)
		require.NoError(t, err)
		r.Release()

		frame := core.NewFrame(nil)
		assert.Panics(t, func() { _ = r.Populate(&frame, core.NewMesh()) })
		assert.Panics(t, func() { r.Release() })
		assert.Panics(t, func() { r.Capacity() })
	}
}
