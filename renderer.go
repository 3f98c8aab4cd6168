// Package particlemesh turns per-step particle snapshots into quad meshes.
//
// A Renderer owns grow-only vertex buffers and, in batch mode, a worker
// pool with precomputed lifetime tables. Each Populate call clears the sink
// and commits exactly one quad per active particle.
package particlemesh

import (
	"fmt"

	"github.com/gekko3d/particlemesh/meshrt/batch"
	"github.com/gekko3d/particlemesh/meshrt/billboard"
	"github.com/gekko3d/particlemesh/meshrt/buffer"
	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/gekko3d/particlemesh/meshrt/uv"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Mode identifies which execution path a renderer uses.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeBatch      Mode = "batch"
)

type Option func(*Renderer)

// WithLogger routes lifecycle messages to l. A nil logger is ignored.
func WithLogger(l Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

type Renderer struct {
	id  uuid.UUID
	cfg Config
	log Logger

	// sequential path
	buffers *buffer.Buffers
	sampler uv.Sampler
	size    core.Curve
	color   core.Gradient

	// batch path
	engine *batch.Engine

	released bool
}

// NewRenderer validates cfg and allocates the resources for its mode.
func NewRenderer(cfg *Config, opts ...Option) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{id: uuid.New(), cfg: *cfg, log: NewNopLogger()}
	for _, opt := range opts {
		opt(r)
	}

	r.size = cfg.SizeOverLifetime.Curve()
	r.color = cfg.ColorOverLifetime.Gradient()

	if cfg.UseParallelBatchMode {
		e, err := batch.NewEngine(batch.Config{
			MaxParticles:              cfg.MaxParticles,
			Workers:                   cfg.Workers,
			Threshold:                 cfg.ParallelThreshold,
			LUTResolution:             cfg.LUTResolution,
			SizeOverLifetime:          r.size,
			ColorOverLifetime:         r.color,
			CollapseToPoint:           cfg.CollapseToPoint,
			PackScaleAgeToSecondaryUV: cfg.PackScaleAgeToSecondaryUV,
			Logger:                    r.log,
		})
		if err != nil {
			return nil, fmt.Errorf("particlemesh: creating batch engine: %w", err)
		}
		r.engine = e
	} else {
		sampler, err := cfg.TextureSheet.Sampler()
		if err != nil {
			return nil, err
		}
		r.sampler = sampler
		r.buffers = buffer.New(cfg.MaxParticles, cfg.PackScaleAgeToSecondaryUV)
	}

	r.log.Infof("renderer %s created: mode=%s max_particles=%d", r.id, r.Mode(), cfg.MaxParticles)
	return r, nil
}

func (r *Renderer) ID() uuid.UUID { return r.id }

func (r *Renderer) Config() Config { return r.cfg }

func (r *Renderer) Mode() Mode { return r.cfg.Mode() }

// Capacity is the particle count the current buffers hold without growing.
func (r *Renderer) Capacity() int {
	r.mustBeLive("Capacity")
	if r.engine != nil {
		return r.engine.Capacity()
	}
	return r.buffers.Capacity()
}

// Populate builds one quad per particle of frame and commits them to sink.
// The only error is batch.ErrBatchInFlight when a batch renderer is
// populated concurrently.
func (r *Renderer) Populate(frame *core.Frame, sink core.MeshSink) error {
	r.mustBeLive("Populate")
	n := len(frame.Particles)
	if n == 0 {
		sink.Clear()
		return nil
	}
	if capacity := r.Capacity(); n > capacity {
		r.log.Warnf("renderer %s: %d particles exceed capacity %d (max_particles=%d), growing buffers",
			r.id, n, capacity, r.cfg.MaxParticles)
	}

	if r.engine != nil {
		if err := r.engine.Compute(frame, sink); err != nil {
			return err
		}
	} else {
		r.populateSequential(frame, sink)
	}

	// one quad has no usable extent of its own
	if n == 1 {
		sink.SetBounds(core.CubeAABB(mgl32.Vec3{}, r.cfg.FallbackBoundsExtent))
	}
	return nil
}

func (r *Renderer) populateSequential(frame *core.Frame, sink core.MeshSink) {
	n := len(frame.Particles)
	if r.buffers.Ensure(n) {
		r.log.Debugf("renderer %s grew buffers to %d particles", r.id, n)
	}
	opts := billboard.OptionsForFrame(frame, r.cfg.CollapseToPoint, r.cfg.PackScaleAgeToSecondaryUV)

	for i := range frame.Particles {
		p := &frame.Particles[i]
		in := billboard.Inputs{Size: p.Size3D, Color: p.Color, UV: r.sampler.Corners(p)}
		if r.size != nil || r.color != nil {
			nl := p.NormalizedLifetime()
			if r.size != nil {
				in.Size = in.Size.Mul(r.size.Evaluate(nl))
			}
			if r.color != nil {
				in.Color = in.Color.Modulate(r.color.Evaluate(nl))
			}
		}
		billboard.Write(r.buffers, i, billboard.Build(p, in, &opts))
	}
	r.buffers.Commit(sink, n)
}

// Release frees buffers, tables and workers. It panics if called twice.
func (r *Renderer) Release() {
	if r.released {
		panic("particlemesh: renderer released twice")
	}
	r.released = true
	if r.engine != nil {
		r.engine.Release()
	}
	if r.buffers != nil {
		r.buffers.Release()
	}
	r.log.Infof("renderer %s released", r.id)
}

func (r *Renderer) Released() bool { return r.released }

func (r *Renderer) mustBeLive(op string) {
	if r.released {
		panic("particlemesh: " + op + " called on a released renderer")
	}
}
