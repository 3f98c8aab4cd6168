// Package uv computes per-quad texture coordinates, either the fixed unit
// square or a texture-sheet tile picked from a particle's age.
package uv

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrUnsupportedConfig = errors.New("uv: unsupported texture sheet configuration")

// Corners are UVs in quad corner order: leftBottom, leftTop, rightTop, rightBottom.
type Corners = [4]mgl32.Vec2

var staticCorners = Corners{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

// Static returns the full-texture corners, independent of particle state.
func Static() Corners { return staticCorners }

// Sampler picks the UV corners of one particle.
type Sampler interface {
	Corners(p *core.Particle) Corners
}

// StaticSampler always yields Static().
type StaticSampler struct{}

func (StaticSampler) Corners(*core.Particle) Corners { return staticCorners }

type AnimationType uint8

const (
	AnimationWholeSheet AnimationType = iota
	AnimationSingleRow
)

func (a AnimationType) String() string {
	switch a {
	case AnimationWholeSheet:
		return "whole_sheet"
	case AnimationSingleRow:
		return "single_row"
	}
	return fmt.Sprintf("AnimationType(%d)", uint8(a))
}

// ParseAnimationType accepts the names produced by String.
func ParseAnimationType(s string) (AnimationType, error) {
	switch s {
	case "whole_sheet", "wholesheet", "WholeSheet":
		return AnimationWholeSheet, nil
	case "single_row", "singlerow", "SingleRow":
		return AnimationSingleRow, nil
	}
	return 0, fmt.Errorf("%w: animation type %q", ErrUnsupportedConfig, s)
}

type RowMode uint8

const (
	RowFixed RowMode = iota
	RowRandom
)

func (m RowMode) String() string {
	switch m {
	case RowFixed:
		return "fixed"
	case RowRandom:
		return "random"
	}
	return fmt.Sprintf("RowMode(%d)", uint8(m))
}

func ParseRowMode(s string) (RowMode, error) {
	switch s {
	case "fixed", "Fixed", "custom", "":
		return RowFixed, nil
	case "random", "Random":
		return RowRandom, nil
	}
	return 0, fmt.Errorf("%w: row mode %q", ErrUnsupportedConfig, s)
}

// SheetConfig describes a texture-sheet animation.
type SheetConfig struct {
	TilesX, TilesY int
	Cycles         int
	Animation      AnimationType
	RowMode        RowMode
	RowIndex       int
	// FrameOverTime maps cycle progress to sheet progress; nil means linear.
	FrameOverTime core.Curve
}

// SheetSampler selects a tile per particle from a validated SheetConfig.
type SheetSampler struct {
	cfg            SheetConfig
	xDelta, yDelta float32
}

// NewSheetSampler validates cfg. Unknown animation types and row modes are
// rejected here so they never surface per particle.
func NewSheetSampler(cfg SheetConfig) (*SheetSampler, error) {
	switch cfg.Animation {
	case AnimationWholeSheet, AnimationSingleRow:
	default:
		return nil, fmt.Errorf("%w: animation type %v", ErrUnsupportedConfig, cfg.Animation)
	}
	switch cfg.RowMode {
	case RowFixed, RowRandom:
	default:
		return nil, fmt.Errorf("%w: row mode %v", ErrUnsupportedConfig, cfg.RowMode)
	}
	if cfg.TilesX < 1 || cfg.TilesY < 1 {
		return nil, fmt.Errorf("%w: tile grid %dx%d", ErrUnsupportedConfig, cfg.TilesX, cfg.TilesY)
	}
	if cfg.Cycles < 1 {
		return nil, fmt.Errorf("%w: cycle count %d", ErrUnsupportedConfig, cfg.Cycles)
	}
	if cfg.Animation == AnimationSingleRow && cfg.RowMode == RowFixed &&
		(cfg.RowIndex < 0 || cfg.RowIndex >= cfg.TilesY) {
		return nil, fmt.Errorf("%w: row index %d outside %d rows", ErrUnsupportedConfig, cfg.RowIndex, cfg.TilesY)
	}
	if cfg.FrameOverTime == nil {
		cfg.FrameOverTime = core.LinearCurve
	}
	return &SheetSampler{
		cfg:    cfg,
		xDelta: 1 / float32(cfg.TilesX),
		yDelta: 1 / float32(cfg.TilesY),
	}, nil
}

func (s *SheetSampler) Config() SheetConfig { return s.cfg }

// CycleProgress is the normalized position of the particle within its
// current animation cycle.
func (s *SheetSampler) CycleProgress(p *core.Particle) float32 {
	if p.StartLifetime <= 0 {
		return 0
	}
	perCycle := p.StartLifetime / float32(s.cfg.Cycles)
	return math32.Mod(p.TimeAlive(), perCycle) / perCycle
}

// Frame returns the sheet frame index for p.
func (s *SheetSampler) Frame(p *core.Particle) int {
	progress := s.cfg.FrameOverTime.Evaluate(s.CycleProgress(p))
	x := s.cfg.TilesX

	if s.cfg.Animation == AnimationWholeSheet {
		total := x * s.cfg.TilesY
		return clampFrame(progress, total)
	}

	frame := clampFrame(progress, x)
	row := s.cfg.RowIndex
	if s.cfg.RowMode == RowRandom {
		row = RandomRow(p.RandomSeed, s.cfg.TilesY)
	}
	return frame + row*x
}

func clampFrame(progress float32, count int) int {
	f := math32.Floor(progress * float32(count))
	if !(f > 0) {
		return 0
	}
	if f > float32(count-1) {
		return count - 1
	}
	return int(f)
}

// Tile decodes a frame into its column and (bottom-up) row.
func (s *SheetSampler) Tile(frame int) (col, row int) {
	col = frame % s.cfg.TilesX
	row = s.cfg.TilesY - 1 - frame/s.cfg.TilesX
	return col, row
}

// TileCorners returns the UV corners of a frame's tile.
func (s *SheetSampler) TileCorners(frame int) Corners {
	col, row := s.Tile(frame)
	sX := float32(col) * s.xDelta
	sY := float32(row) * s.yDelta
	eX := sX + s.xDelta
	eY := sY + s.yDelta
	return Corners{{sX, sY}, {sX, eY}, {eX, eY}, {eX, sY}}
}

func (s *SheetSampler) Corners(p *core.Particle) Corners {
	return s.TileCorners(s.Frame(p))
}

// RandomRow picks a row in [0, rows) from a particle seed. It is a pure
// function of its inputs, so evaluation order and goroutine never matter.
func RandomRow(seed uint32, rows int) int {
	if rows <= 1 {
		return 0
	}
	return int(mix(seed) % uint64(rows))
}

// mix is the splitmix64 finalizer.
func mix(seed uint32) uint64 {
	z := uint64(seed) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
