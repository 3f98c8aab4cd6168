package particlemesh

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/particlemesh/meshrt/core"
	"github.com/gekko3d/particlemesh/meshrt/lut"
	"github.com/gekko3d/particlemesh/meshrt/uv"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var (
	// ErrUnsupportedConfig is returned for configurations the renderer
	// cannot execute, such as an unknown animation type or texture-sheet
	// animation combined with batch mode.
	ErrUnsupportedConfig = uv.ErrUnsupportedConfig
	// ErrInvalidConfig covers out-of-range numeric settings.
	ErrInvalidConfig = errors.New("particlemesh: invalid configuration")
)

// Config holds every renderer option.
type Config struct {
	MaxParticles              int  `yaml:"max_particles"`
	UseParallelBatchMode      bool `yaml:"use_parallel_batch_mode"`
	CollapseToPoint           bool `yaml:"collapse_to_point"`
	PackScaleAgeToSecondaryUV bool `yaml:"pack_scale_age_to_secondary_uv"`

	LUTResolution        int     `yaml:"lut_resolution"`
	Workers              int     `yaml:"workers"`
	ParallelThreshold    int     `yaml:"parallel_threshold"`
	FallbackBoundsExtent float32 `yaml:"fallback_bounds_extent"`

	TextureSheet      TextureSheetConfig `yaml:"texture_sheet"`
	SizeOverLifetime  CurveConfig        `yaml:"size_over_lifetime"`
	ColorOverLifetime GradientConfig     `yaml:"color_over_lifetime"`
}

// TextureSheetConfig selects animated UVs. Animation is whole_sheet or
// single_row; RowMode is fixed or random.
type TextureSheetConfig struct {
	Enabled       bool        `yaml:"enabled"`
	TilesX        int         `yaml:"tiles_x"`
	TilesY        int         `yaml:"tiles_y"`
	Cycles        int         `yaml:"cycles"`
	Animation     string      `yaml:"animation"`
	RowMode       string      `yaml:"row_mode"`
	RowIndex      int         `yaml:"row_index"`
	FrameOverTime CurveConfig `yaml:"frame_over_time"`
}

// CurveConfig is a keyframe curve. Disabled curves leave the value untouched.
type CurveConfig struct {
	Enabled    bool             `yaml:"enabled"`
	Multiplier float32          `yaml:"multiplier"`
	Keys       []KeyframeConfig `yaml:"keys"`
}

type KeyframeConfig struct {
	Time       float32 `yaml:"time"`
	Value      float32 `yaml:"value"`
	InTangent  float32 `yaml:"in_tangent,omitempty"`
	OutTangent float32 `yaml:"out_tangent,omitempty"`
}

// GradientConfig is a list of color and alpha stops.
type GradientConfig struct {
	Enabled   bool             `yaml:"enabled"`
	Fixed     bool             `yaml:"fixed"`
	ColorKeys []ColorKeyConfig `yaml:"color_keys"`
	AlphaKeys []AlphaKeyConfig `yaml:"alpha_keys"`
}

type ColorKeyConfig struct {
	Time float32 `yaml:"time"`
	R    uint8   `yaml:"r"`
	G    uint8   `yaml:"g"`
	B    uint8   `yaml:"b"`
}

type AlphaKeyConfig struct {
	Time  float32 `yaml:"time"`
	Alpha uint8   `yaml:"alpha"`
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("particlemesh: embedded defaults: %v", err))
	}
	return cfg
}

// Load reads path over the embedded defaults and validates the result. An
// empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Mode reports the execution path the configuration selects.
func (c *Config) Mode() Mode {
	if c.UseParallelBatchMode {
		return ModeBatch
	}
	return ModeSequential
}

// Validate checks ranges and rejects unsupported combinations.
func (c *Config) Validate() error {
	if c.MaxParticles < 0 {
		return fmt.Errorf("%w: max_particles %d", ErrInvalidConfig, c.MaxParticles)
	}
	if c.LUTResolution < lut.MinResolution {
		return fmt.Errorf("%w: lut_resolution %d below %d", ErrInvalidConfig, c.LUTResolution, lut.MinResolution)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	}
	if c.ParallelThreshold < 0 {
		return fmt.Errorf("%w: parallel_threshold %d", ErrInvalidConfig, c.ParallelThreshold)
	}
	if c.FallbackBoundsExtent < 0 {
		return fmt.Errorf("%w: fallback_bounds_extent %g", ErrInvalidConfig, c.FallbackBoundsExtent)
	}
	if c.SizeOverLifetime.Enabled && c.SizeOverLifetime.Multiplier == 0 {
		return fmt.Errorf("%w: size_over_lifetime multiplier is 0", ErrInvalidConfig)
	}
	if !c.TextureSheet.Enabled {
		return nil
	}
	if c.UseParallelBatchMode {
		return fmt.Errorf("%w: texture sheet animation is not available in batch mode", ErrUnsupportedConfig)
	}
	if _, err := c.TextureSheet.Sampler(); err != nil {
		return err
	}
	return nil
}

// Sampler returns the UV sampler the sequential path uses.
func (t TextureSheetConfig) Sampler() (uv.Sampler, error) {
	if !t.Enabled {
		return uv.StaticSampler{}, nil
	}
	anim, err := uv.ParseAnimationType(t.Animation)
	if err != nil {
		return nil, err
	}
	mode, err := uv.ParseRowMode(t.RowMode)
	if err != nil {
		return nil, err
	}
	return uv.NewSheetSampler(uv.SheetConfig{
		TilesX:        t.TilesX,
		TilesY:        t.TilesY,
		Cycles:        t.Cycles,
		Animation:     anim,
		RowMode:       mode,
		RowIndex:      t.RowIndex,
		FrameOverTime: t.FrameOverTime.Curve(),
	})
}

// Curve returns nil when the curve is disabled or has no keys.
func (c CurveConfig) Curve() core.Curve {
	if !c.Enabled || len(c.Keys) == 0 {
		return nil
	}
	keys := make([]core.Keyframe, len(c.Keys))
	for i, k := range c.Keys {
		keys[i] = core.Keyframe{Time: k.Time, Value: k.Value, InTangent: k.InTangent, OutTangent: k.OutTangent}
	}
	curve := core.NewKeyframeCurve(keys...)
	curve.Multiplier = c.Multiplier
	return curve
}

// Gradient returns nil when the gradient is disabled.
func (g GradientConfig) Gradient() core.Gradient {
	if !g.Enabled {
		return nil
	}
	ck := make([]core.ColorKey, len(g.ColorKeys))
	for i, k := range g.ColorKeys {
		ck[i] = core.ColorKey{Time: k.Time, Color: [3]uint8{k.R, k.G, k.B}}
	}
	ak := make([]core.AlphaKey, len(g.AlphaKeys))
	for i, k := range g.AlphaKeys {
		ak[i] = core.AlphaKey{Time: k.Time, Alpha: k.Alpha}
	}
	grad := core.NewStopGradient(ck, ak)
	grad.Fixed = g.Fixed
	return grad
}

// WriteYAML writes the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
