// Package batch computes a whole frame of quads on a persistent worker pool.
// Lifetime curves are read from precomputed lookup tables instead of being
// evaluated per particle, and only static UVs are supported.
package batch

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gekko3d/particlemesh/meshrt/billboard"
	"github.com/gekko3d/particlemesh/meshrt/buffer"
	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/gekko3d/particlemesh/meshrt/lut"
	"github.com/gekko3d/particlemesh/meshrt/uv"
	"github.com/google/uuid"
)

// DefaultThreshold is the particle count below which a frame is computed on
// the calling goroutine. Dispatch overhead dominates under it.
const DefaultThreshold = 64

var ErrBatchInFlight = errors.New("batch: compute already in flight")

// Logger is the subset of the module logger the engine writes to.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}

// Config describes one engine instance. A nil SizeOverLifetime or
// ColorOverLifetime disables that module.
type Config struct {
	MaxParticles  int
	Workers       int
	Threshold     int
	LUTResolution int

	SizeOverLifetime  core.Curve
	ColorOverLifetime core.Gradient

	CollapseToPoint           bool
	PackScaleAgeToSecondaryUV bool

	Logger Logger
}

// Engine owns its snapshot copy, its mesh buffers and its lookup tables.
// One Compute runs at a time.
type Engine struct {
	id  uuid.UUID
	cfg Config
	log Logger

	snapshot []core.Particle
	buffers  *buffer.Buffers
	sizeLUT  *lut.LUT[float32]
	colorLUT *lut.LUT[core.Color32]
	uvs      uv.Corners

	// set for the duration of one Compute; workers read it
	opts billboard.Options

	pool     *pool
	inFlight atomic.Bool
	released atomic.Bool
}

// NewEngine builds the lookup tables, allocates buffers for
// cfg.MaxParticles and starts the worker pool.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.MaxParticles < 0 {
		return nil, fmt.Errorf("batch: negative max particles %d", cfg.MaxParticles)
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.LUTResolution == 0 {
		cfg.LUTResolution = lut.DefaultResolution
	}
	log := cfg.Logger
	if log == nil {
		log = nopLogger{}
	}

	sizeLUT, err := buildSizeLUT(cfg.SizeOverLifetime, cfg.LUTResolution)
	if err != nil {
		return nil, fmt.Errorf("batch: size over lifetime: %w", err)
	}
	colorLUT, err := buildColorLUT(cfg.ColorOverLifetime, cfg.LUTResolution)
	if err != nil {
		sizeLUT.Release()
		return nil, fmt.Errorf("batch: color over lifetime: %w", err)
	}

	e := &Engine{
		id:       uuid.New(),
		cfg:      cfg,
		log:      log,
		snapshot: make([]core.Particle, 0, cfg.MaxParticles),
		buffers:  buffer.New(cfg.MaxParticles, cfg.PackScaleAgeToSecondaryUV),
		sizeLUT:  sizeLUT,
		colorLUT: colorLUT,
		uvs:      uv.Static(),
	}
	e.pool = newPool(cfg.Workers, e.computeSpan)
	log.Infof("batch engine %s created: capacity=%d workers=%d lut=%d/%d",
		e.id, cfg.MaxParticles, e.pool.workers, sizeLUT.Len(), colorLUT.Len())
	return e, nil
}

// disabled modules keep the minimum table of their neutral value
func buildSizeLUT(c core.Curve, n int) (*lut.LUT[float32], error) {
	if c == nil {
		return lut.NewCurve(core.ConstantCurve(1), lut.MinResolution)
	}
	return lut.NewCurve(c, n)
}

func buildColorLUT(g core.Gradient, n int) (*lut.LUT[core.Color32], error) {
	if g == nil {
		return lut.NewGradient(core.ConstantGradient(core.White), lut.MinResolution)
	}
	return lut.NewGradient(g, n)
}

func (e *Engine) ID() uuid.UUID { return e.id }

// Capacity is the number of particles the engine can take without growing.
func (e *Engine) Capacity() int { return e.buffers.Capacity() }

func (e *Engine) Workers() int { return e.pool.workers }

// Compute copies the frame's particles, builds every quad and commits the
// result to sink. It returns ErrBatchInFlight if another Compute on the
// same engine has not returned yet.
func (e *Engine) Compute(frame *core.Frame, sink core.MeshSink) error {
	e.mustBeLive("Compute")
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrBatchInFlight
	}
	defer e.inFlight.Store(false)

	n := len(frame.Particles)
	e.snapshot = append(e.snapshot[:0], frame.Particles...)
	if e.buffers.Ensure(n) {
		e.log.Debugf("batch engine %s grew buffers to %d particles", e.id, n)
	}
	e.opts = billboard.OptionsForFrame(frame, e.cfg.CollapseToPoint, e.cfg.PackScaleAgeToSecondaryUV)

	if n < e.cfg.Threshold {
		e.computeSpan(0, n)
	} else {
		e.pool.run(n)
	}

	e.buffers.Commit(sink, n)
	return nil
}

// computeSpan writes quads [start,end). Spans never overlap so workers
// touch disjoint buffer ranges.
func (e *Engine) computeSpan(start, end int) {
	for i := start; i < end; i++ {
		p := &e.snapshot[i]
		nl := p.NormalizedLifetime()
		in := billboard.Inputs{
			Size:  p.Size3D.Mul(e.sizeLUT.Evaluate(nl)),
			Color: p.Color.Modulate(e.colorLUT.Evaluate(nl)),
			UV:    e.uvs,
		}
		billboard.Write(e.buffers, i, billboard.Build(p, in, &e.opts))
	}
}

// Release stops the workers and frees tables and buffers. Calling it twice,
// calling it while Compute is running, or calling any other method
// afterwards, panics.
func (e *Engine) Release() {
	if e.released.Load() {
		panic("batch: engine released twice")
	}
	// held for good: a released engine never computes again
	if !e.inFlight.CompareAndSwap(false, true) {
		panic("batch: Release while Compute in flight")
	}
	if !e.released.CompareAndSwap(false, true) {
		panic("batch: engine released twice")
	}
	e.pool.stop()
	e.sizeLUT.Release()
	e.colorLUT.Release()
	e.buffers.Release()
	e.snapshot = nil
	e.log.Infof("batch engine %s released", e.id)
}

func (e *Engine) Released() bool { return e.released.Load() }

func (e *Engine) mustBeLive(op string) {
	if e.released.Load() {
		panic("batch: " + op + " after Release")
	}
}
