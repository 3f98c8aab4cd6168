package main

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/gekko3d/particlemesh"
	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/gekko3d/particlemesh/meshrt/preview"
	"github.com/gekko3d/particlemesh/meshrt/sim"
	"github.com/gekko3d/particlemesh/telemetry"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"
)

const (
	emitterSpacing = 6
	spacingPixels  = 240
)

// EmitterComponent drives one reference emitter. Sway rocks the emitter
// around its Z axis so world-space snapshots exercise the transform.
type EmitterComponent struct {
	Name    string
	Emitter *sim.Emitter
	Sway    float32 // degrees
	Period  float32 // seconds
	elapsed float32
}

// MeshComponent owns the renderer and the CPU mesh it commits into.
type MeshComponent struct {
	Renderer *particlemesh.Renderer
	Mesh     *core.Mesh
	scratch  []core.Particle
}

type scene struct {
	world  *ecs.World
	mapper *ecs.Map3[core.Transform, EmitterComponent, MeshComponent]
	filter *ecs.Filter3[core.Transform, EmitterComponent, MeshComponent]
	log    particlemesh.Logger

	// merged holds every emitter's mesh in world space for the last step
	merged *core.Mesh
}

func newScene(cfg *particlemesh.Config, emitters int, seed int64, logger particlemesh.Logger) (*scene, error) {
	world := ecs.NewWorld()
	s := &scene{
		world:  world,
		mapper: ecs.NewMap3[core.Transform, EmitterComponent, MeshComponent](world),
		filter: ecs.NewFilter3[core.Transform, EmitterComponent, MeshComponent](world),
		log:    logger,
		merged: core.NewMesh(),
	}

	offset := float32(emitters-1) * emitterSpacing / 2
	for i := 0; i < emitters; i++ {
		r, err := particlemesh.NewRenderer(cfg, particlemesh.WithLogger(logger))
		if err != nil {
			s.release()
			return nil, fmt.Errorf("emitter %d: %w", i, err)
		}

		emCfg := sim.DefaultEmitterConfig()
		emCfg.MaxParticles = cfg.MaxParticles
		tr := core.NewTransform()
		tr.Position[0] = float32(i)*emitterSpacing - offset

		s.mapper.NewEntity(
			tr,
			&EmitterComponent{
				Name:    fmt.Sprintf("emitter-%d", i),
				Emitter: sim.NewEmitter(emCfg, seed+int64(i)),
				Sway:    20 + 10*float32(i),
				Period:  3,
			},
			&MeshComponent{Renderer: r, Mesh: core.NewMesh()},
		)
	}
	logger.Infof("scene created with %d emitters, mode=%s", emitters, cfg.Mode())
	return s, nil
}

// step advances every emitter, populates its mesh and returns one stats
// row per emitter.
func (s *scene) step(step int, dt float32) ([]telemetry.StepStats, error) {
	var stats []telemetry.StepStats
	s.merged.Clear()

	query := s.filter.Query()
	for query.Next() {
		tr, em, mc := query.Get()

		em.elapsed += dt
		angle := em.Sway * math32.Sin(2*math32.Pi*em.elapsed/em.Period)
		tr.Rotation = core.EulerToQuat(mgl32.Vec3{0, 0, angle})

		em.Emitter.Transform = *tr
		em.Emitter.Step(dt)
		frame := em.Emitter.Frame(mc.scratch)
		mc.scratch = frame.Particles

		start := time.Now()
		if err := mc.Renderer.Populate(&frame, mc.Mesh); err != nil {
			query.Close()
			return nil, fmt.Errorf("%s: %w", em.Name, err)
		}
		build := time.Since(start)

		preview.Append(s.merged, mc.Mesh, tr.LocalToWorld())
		stats = append(stats, telemetry.NewStepStats(step, em.Name, string(mc.Renderer.Mode()),
			len(frame.Particles), len(mc.Mesh.Vertices), len(mc.Mesh.Triangles), mc.Renderer.Capacity(), build))
	}
	return stats, nil
}

// release frees every renderer and removes the entities.
func (s *scene) release() {
	var entities []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		_, _, mc := query.Get()
		if !mc.Renderer.Released() {
			mc.Renderer.Release()
		}
		entities = append(entities, query.Entity())
	}
	for _, e := range entities {
		s.mapper.Remove(e)
	}
}
