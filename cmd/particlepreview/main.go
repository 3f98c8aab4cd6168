// Command particlepreview runs reference emitters headlessly, builds their
// meshes with the particle mesh renderer, and writes PNG frames plus
// per-step telemetry.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gekko3d/particlemesh"
	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/gekko3d/particlemesh/meshrt/preview"
	"github.com/gekko3d/particlemesh/telemetry"
	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	configPath := flag.String("config", "", "Renderer config YAML (empty = defaults)")
	steps := flag.Int("steps", 240, "Number of simulation steps")
	dt := flag.Float64("dt", 1.0/60.0, "Step length in seconds")
	emitters := flag.Int("emitters", 3, "Number of emitters")
	seed := flag.Int64("seed", 42, "Base random seed")
	outputDir := flag.String("output", "preview-out", "Output directory")
	pngEvery := flag.Int("png-every", 30, "Write a PNG every N steps (0 = never)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := particlemesh.NewDefaultLogger("preview", *debug)

	cfg, err := particlemesh.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := cfg.WriteYAML(filepath.Join(*outputDir, "config.yaml")); err != nil {
		log.Fatalf("failed to write config: %v", err)
	}

	out, err := telemetry.Create(*outputDir)
	if err != nil {
		log.Fatalf("failed to open telemetry: %v", err)
	}
	defer out.Close()

	scene, err := newScene(cfg, *emitters, *seed, logger)
	if err != nil {
		log.Fatalf("failed to build scene: %v", err)
	}
	defer scene.release()

	ras, err := preview.NewRasterizer(canvasFor(*emitters))
	if err != nil {
		log.Fatalf("failed to create rasterizer: %v", err)
	}

	var rows []telemetry.StepStats
	start := time.Now()
	for step := 0; step < *steps; step++ {
		stats, err := scene.step(step, float32(*dt))
		if err != nil {
			log.Fatalf("step %d: %v", step, err)
		}
		if err := out.Write(stats...); err != nil {
			log.Fatalf("step %d: %v", step, err)
		}
		rows = append(rows, stats...)

		if *pngEvery > 0 && step%*pngEvery == 0 {
			path := filepath.Join(*outputDir, fmt.Sprintf("frame_%05d.png", step))
			label := fmt.Sprintf("step %d  quads %d", step, scene.merged.QuadCount())
			if err := writePNG(path, ras, scene.merged, label); err != nil {
				log.Fatalf("step %d: %v", step, err)
			}
			logger.Debugf("wrote %s", path)
		}
	}

	logger.Infof("%d steps in %s: %s", *steps, time.Since(start).Round(time.Millisecond), telemetry.Summarize(rows))
}

// canvasFor spreads the emitters horizontally with a little margin.
func canvasFor(emitters int) preview.Canvas {
	c := preview.DefaultCanvas()
	c.Width = max(512, emitters*spacingPixels)
	c.Center = mgl32.Vec2{0, 3}
	return c
}

func writePNG(path string, ras *preview.Rasterizer, mesh *core.Mesh, label string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, ras.Render(mesh, label)); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
