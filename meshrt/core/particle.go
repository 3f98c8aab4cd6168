package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SimulationSpace is the frame particle positions are expressed in.
type SimulationSpace uint8

const (
	SimulationSpaceLocal SimulationSpace = iota
	SimulationSpaceWorld
)

func (s SimulationSpace) String() string {
	switch s {
	case SimulationSpaceLocal:
		return "local"
	case SimulationSpaceWorld:
		return "world"
	}
	return "unknown"
}

// Particle is one entry of the per-step snapshot handed over by the simulation.
// Rotation3D holds Euler angles in degrees.
type Particle struct {
	Position          mgl32.Vec3
	Rotation3D        mgl32.Vec3
	Size3D            mgl32.Vec3
	StartLifetime     float32
	RemainingLifetime float32
	Color             Color32
	RandomSeed        uint32
}

// TimeAlive is the elapsed life in seconds, never negative.
func (p *Particle) TimeAlive() float32 {
	return math32.Max(p.StartLifetime-p.RemainingLifetime, 0)
}

// NormalizedAge returns clamp01(1 - remaining/start).
func (p *Particle) NormalizedAge() float32 {
	if p.StartLifetime <= 0 {
		return 1
	}
	return Clamp01(1 - p.RemainingLifetime/p.StartLifetime)
}

// NormalizedLifetime returns clamp01((start - remaining)/start). It matches
// NormalizedAge up to rounding and is the time axis of the lifetime curves.
func (p *Particle) NormalizedLifetime() float32 {
	if p.StartLifetime <= 0 {
		return 1
	}
	return Clamp01((p.StartLifetime - p.RemainingLifetime) / p.StartLifetime)
}

// Rotation converts the Euler angles to a quaternion applying Z, then X, then Y.
func (p *Particle) Rotation() mgl32.Quat {
	return EulerToQuat(p.Rotation3D)
}

// Frame is everything the geometry pipeline reads during one rendering step.
type Frame struct {
	Particles    []Particle
	Space        SimulationSpace
	WorldToLocal mgl32.Mat4
}

// NewFrame returns a local-space frame with an identity world-to-local transform.
func NewFrame(particles []Particle) Frame {
	return Frame{
		Particles:    particles,
		Space:        SimulationSpaceLocal,
		WorldToLocal: mgl32.Ident4(),
	}
}

func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
