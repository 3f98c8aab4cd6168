// Package sim is a small CPU particle emitter used to drive the mesh
// renderer from tools and tests. It produces per-step snapshots; it is not
// meant to be physically accurate.
package sim

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// EmitterConfig controls spawning and integration. Ranges are (min, max).
type EmitterConfig struct {
	MaxParticles int

	SpawnRate        float32    // particles per second
	LifetimeRange    [2]float32 // seconds
	StartSpeedRange  [2]float32 // units/sec
	StartSizeRange   [2]float32 // world units
	StartColorMin    [4]float32 // RGBA 0..1
	StartColorMax    [4]float32
	Gravity          float32 // downward acceleration
	Drag             float32 // per-second linear drag
	ConeAngleDegrees float32 // 0 emits along the emitter up axis

	// AngularSpeedRange spins particles about their facing axis, degrees/sec.
	AngularSpeedRange [2]float32
	// StartRotationRange is the initial Z rotation in degrees.
	StartRotationRange [2]float32
}

// DefaultEmitterConfig is a gentle upward fountain.
func DefaultEmitterConfig() EmitterConfig {
	return EmitterConfig{
		MaxParticles:       512,
		SpawnRate:          120,
		LifetimeRange:      [2]float32{1, 2.5},
		StartSpeedRange:    [2]float32{2, 5},
		StartSizeRange:     [2]float32{0.2, 0.6},
		StartColorMin:      [4]float32{0.8, 0.4, 0.1, 1},
		StartColorMax:      [4]float32{1, 0.9, 0.3, 1},
		Gravity:            3,
		Drag:               0.2,
		ConeAngleDegrees:   25,
		AngularSpeedRange:  [2]float32{-90, 90},
		StartRotationRange: [2]float32{0, 360},
	}
}

// Emitter owns a structure-of-arrays particle pool. Dead particles are
// swap-removed so the live ones stay packed at the front.
type Emitter struct {
	Config    EmitterConfig
	Transform core.Transform
	// Space decides whether snapshots are reported in world space (and
	// carry the emitter's world-to-local matrix) or emitter-local space.
	Space core.SimulationSpace

	rng *rand.Rand

	pos     []mgl32.Vec3
	vel     []mgl32.Vec3
	age     []float32
	life    []float32
	size    []float32
	color   []core.Color32
	rot     []float32
	spin    []float32
	seed    []uint32
	alive   int
	spawned uint64

	spawnAcc float32
}

// NewEmitter seeds its own generator so runs are reproducible.
func NewEmitter(cfg EmitterConfig, seed int64) *Emitter {
	e := &Emitter{
		Config:    cfg,
		Transform: *core.NewTransform(),
		Space:     core.SimulationSpaceWorld,
		rng:       rand.New(rand.NewSource(seed)),
	}
	e.resize(cfg.MaxParticles)
	return e
}

func (e *Emitter) resize(capacity int) {
	if capacity <= 0 {
		capacity = 1
	}
	e.pos = make([]mgl32.Vec3, capacity)
	e.vel = make([]mgl32.Vec3, capacity)
	e.age = make([]float32, capacity)
	e.life = make([]float32, capacity)
	e.size = make([]float32, capacity)
	e.color = make([]core.Color32, capacity)
	e.rot = make([]float32, capacity)
	e.spin = make([]float32, capacity)
	e.seed = make([]uint32, capacity)
	e.alive = 0
	e.spawnAcc = 0
}

// Alive is the number of live particles.
func (e *Emitter) Alive() int { return e.alive }

// Spawned is the total number of particles ever emitted.
func (e *Emitter) Spawned() uint64 { return e.spawned }

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func (e *Emitter) rangeSample(r [2]float32) float32 {
	return lerp(r[0], r[1], e.rng.Float32())
}

// sampleDirection picks a direction uniformly inside a cone around the
// emitter's up axis, then orients it by rot.
func (e *Emitter) sampleDirection(rot mgl32.Quat, coneDeg float32) mgl32.Vec3 {
	up := mgl32.Vec3{0, 1, 0}
	if coneDeg <= 0 {
		return rot.Rotate(up).Normalize()
	}
	thetaMax := math32.Pi * (coneDeg / 180)
	cosTheta := lerp(math32.Cos(thetaMax), 1, e.rng.Float32())
	sinTheta := math32.Sqrt(1 - cosTheta*cosTheta)
	phi := 2 * math32.Pi * e.rng.Float32()

	local := mgl32.Vec3{math32.Cos(phi) * sinTheta, cosTheta, math32.Sin(phi) * sinTheta}
	return rot.Rotate(local).Normalize()
}

func (e *Emitter) killAt(i int) {
	last := e.alive - 1
	e.pos[i] = e.pos[last]
	e.vel[i] = e.vel[last]
	e.age[i] = e.age[last]
	e.life[i] = e.life[last]
	e.size[i] = e.size[last]
	e.color[i] = e.color[last]
	e.rot[i] = e.rot[last]
	e.spin[i] = e.spin[last]
	e.seed[i] = e.seed[last]
	e.alive--
}

// Step spawns and integrates one tick. A non-positive dt uses 1/60.
func (e *Emitter) Step(dt float32) {
	if dt <= 0 {
		dt = 1.0 / 60.0
	}
	if e.Config.MaxParticles != len(e.pos) && e.Config.MaxParticles > 0 {
		e.resize(e.Config.MaxParticles)
	}
	e.spawn(dt)

	drag := math32.Max(0, 1-e.Config.Drag*dt)
	gravity := mgl32.Vec3{0, -e.Config.Gravity * dt, 0}
	i := 0
	for i < e.alive {
		age := e.age[i] + dt
		if age >= e.life[i] {
			e.killAt(i)
			continue
		}
		v := e.vel[i].Add(gravity).Mul(drag)
		e.vel[i] = v
		e.pos[i] = e.pos[i].Add(v.Mul(dt))
		e.rot[i] += e.spin[i] * dt
		e.age[i] = age
		i++
	}
}

func (e *Emitter) spawn(dt float32) {
	e.spawnAcc += e.Config.SpawnRate * dt
	count := int(e.spawnAcc)
	if count > 0 {
		e.spawnAcc -= float32(count)
	}
	count = min(count, len(e.pos)-e.alive)

	origin := e.Transform.Position
	if e.Space == core.SimulationSpaceLocal {
		origin = mgl32.Vec3{}
	}
	for k := 0; k < count; k++ {
		i := e.alive
		e.alive++
		e.spawned++

		e.pos[i] = origin
		dir := e.sampleDirection(e.Transform.Rotation, e.Config.ConeAngleDegrees)
		e.vel[i] = dir.Mul(e.rangeSample(e.Config.StartSpeedRange))
		e.age[i] = 0
		e.life[i] = e.rangeSample(e.Config.LifetimeRange)
		e.size[i] = e.rangeSample(e.Config.StartSizeRange)

		var c mgl32.Vec4
		for j := 0; j < 4; j++ {
			c[j] = lerp(e.Config.StartColorMin[j], e.Config.StartColorMax[j], e.rng.Float32())
		}
		e.color[i] = core.Color32FromVec4(c)
		e.rot[i] = e.rangeSample(e.Config.StartRotationRange)
		e.spin[i] = e.rangeSample(e.Config.AngularSpeedRange)
		e.seed[i] = e.rng.Uint32()
	}
}

// Snapshot writes the live particles into dst, growing it if needed, and
// returns the filled prefix.
func (e *Emitter) Snapshot(dst []core.Particle) []core.Particle {
	if cap(dst) < e.alive {
		dst = make([]core.Particle, e.alive)
	}
	dst = dst[:e.alive]
	for i := range dst {
		s := e.size[i]
		dst[i] = core.Particle{
			Position:          e.pos[i],
			Rotation3D:        mgl32.Vec3{0, 0, e.rot[i]},
			Size3D:            mgl32.Vec3{s, s, s},
			StartLifetime:     e.life[i],
			RemainingLifetime: e.life[i] - e.age[i],
			Color:             e.color[i],
			RandomSeed:        e.seed[i],
		}
	}
	return dst
}

// Frame snapshots into dst and wraps the result with the emitter's space.
func (e *Emitter) Frame(dst []core.Particle) core.Frame {
	f := core.NewFrame(e.Snapshot(dst))
	f.Space = e.Space
	if e.Space == core.SimulationSpaceWorld {
		f.WorldToLocal = e.Transform.WorldToLocal()
	}
	return f
}
