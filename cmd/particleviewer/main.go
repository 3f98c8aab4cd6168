// Command particleviewer shows a reference emitter in a window, rebuilding
// its mesh every frame and drawing it with WebGPU.
package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particlemesh"
	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/gekko3d/particlemesh/meshrt/gpu"
	"github.com/gekko3d/particlemesh/meshrt/sim"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Renderer config YAML (empty = defaults)")
	seed := flag.Int64("seed", 42, "Emitter random seed")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := particlemesh.NewDefaultLogger("viewer", *debug)

	cfg, err := particlemesh.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(1280, 720, "Particle Mesh Viewer", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	state, err := gpu.NewState(window)
	if err != nil {
		log.Fatalf("failed to init webgpu: %v", err)
	}
	defer state.Release()

	pass, err := gpu.NewParticleRenderPass(state.Device, state.Config.Format, cfg.PackScaleAgeToSecondaryUV)
	if err != nil {
		log.Fatalf("failed to create particle pass: %v", err)
	}
	defer pass.Release()

	renderer, err := particlemesh.NewRenderer(cfg, particlemesh.WithLogger(logger))
	if err != nil {
		log.Fatalf("failed to create renderer: %v", err)
	}
	defer renderer.Release()

	mesh := gpu.NewMeshUploader(state.Device)
	defer mesh.Release()

	emCfg := sim.DefaultEmitterConfig()
	emCfg.MaxParticles = cfg.MaxParticles
	emitter := sim.NewEmitter(emCfg, *seed)
	emitter.Space = core.SimulationSpaceLocal

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		state.Resize(width, height)
	})
	camera := gpu.NewOrbitCamera(mgl32.Vec3{0, 3, 0}, 10)
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyLeft:
			camera.Orbit(-0.05, 0)
		case glfw.KeyRight:
			camera.Orbit(0.05, 0)
		case glfw.KeyUp:
			camera.Orbit(0, 0.05)
		case glfw.KeyDown:
			camera.Orbit(0, -0.05)
		}
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		camera.Zoom(1 - float32(yoff)*0.1)
	})

	var particles []core.Particle
	last := glfw.GetTime()
	for !window.ShouldClose() {
		glfw.PollEvents()

		now := glfw.GetTime()
		emitter.Step(float32(now - last))
		last = now

		frame := emitter.Frame(particles)
		particles = frame.Particles
		if err := renderer.Populate(&frame, mesh); err != nil {
			logger.Errorf("populate: %v", err)
			continue
		}

		pass.UpdateCamera(camera.ViewProjection(state.Config.Width, state.Config.Height))
		if err := state.Frame(wgpu.Color{R: 0.02, G: 0.02, B: 0.04, A: 1}, func(rp *wgpu.RenderPassEncoder) {
			pass.Draw(rp, mesh)
		}); err != nil {
			logger.Errorf("frame: %v", err)
		}
	}
}
