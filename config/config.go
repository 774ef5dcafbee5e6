// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfiguration is returned when loaded values cannot drive a simulation.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Seeding   SeedingConfig   `yaml:"seeding"`
	Proximity ProximityConfig `yaml:"proximity"`
	Body      BodyConfig      `yaml:"body"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// RectConfig is an axis-aligned rectangle in world units.
type RectConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// SeedingConfig holds initial population parameters.
type SeedingConfig struct {
	Bounds      RectConfig `yaml:"bounds"`       // Area sampled for starting positions
	MinDistance float64    `yaml:"min_distance"` // Minimum separation between seeded bodies
	Count       int        `yaml:"count"`        // Initial population size
	MaxAttempts int        `yaml:"max_attempts"` // Rejected samples tolerated per body before giving up
}

// ProximityConfig holds the neighbour-band rules of the proximity controller.
type ProximityConfig struct {
	MinThreshold   float64 `yaml:"min_threshold"`    // Lower bound of the neighbour band (inclusive)
	MaxThreshold   float64 `yaml:"max_threshold"`    // Upper bound of the neighbour band (exclusive)
	SpawnJitter    int     `yaml:"spawn_jitter"`     // Max offset of a spawned body from the pair midpoint, per axis
	SpawnWeightCap int     `yaml:"spawn_weight_cap"` // Too-close pairs spawn only if one weight is below this
	MaxWeight      int     `yaml:"max_weight"`       // Bodies above this weight are culled as overcrowded
	CrowdWeight    int     `yaml:"crowd_weight"`     // Pairs with a weight above this repel instead of attract
	Step           float64 `yaml:"step"`             // Movement per pass, divided by the mover's weight

	// Compare bodies spawned during a pass against the rest of that pass.
	CompareSpawnedSamePass bool `yaml:"compare_spawned_same_pass"`
}

// BodyConfig holds the look of spawned bodies.
type BodyConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Color  string  `yaml:"color"` // Hex color, e.g. "#ffffff"
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // Ticks averaged by the perf collector
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	BodyColor color.RGBA
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the embedded defaults. It panics if they are broken,
// which only a bad build can cause.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Validate checks that the values describe a runnable simulation.
func (c *Config) Validate() error {
	p := c.Proximity
	switch {
	case p.MinThreshold >= p.MaxThreshold:
		return fmt.Errorf("%w: min_threshold %.2f must be below max_threshold %.2f",
			ErrInvalidConfiguration, p.MinThreshold, p.MaxThreshold)
	case p.MinThreshold < 0:
		return fmt.Errorf("%w: min_threshold must not be negative", ErrInvalidConfiguration)
	case p.Step < 0:
		return fmt.Errorf("%w: step must not be negative", ErrInvalidConfiguration)
	case p.SpawnJitter < 0:
		return fmt.Errorf("%w: spawn_jitter must not be negative", ErrInvalidConfiguration)
	case p.MaxWeight < 1:
		return fmt.Errorf("%w: max_weight must be at least 1", ErrInvalidConfiguration)
	}

	s := c.Seeding
	switch {
	case s.Count < 0:
		return fmt.Errorf("%w: seeding count must not be negative", ErrInvalidConfiguration)
	case s.Bounds.W < 0 || s.Bounds.H < 0:
		return fmt.Errorf("%w: seeding bounds must have non-negative size", ErrInvalidConfiguration)
	case s.MaxAttempts < 1:
		return fmt.Errorf("%w: seeding max_attempts must be at least 1", ErrInvalidConfiguration)
	}

	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("%w: screen size must be positive", ErrInvalidConfiguration)
	}
	if c.Body.Width <= 0 || c.Body.Height <= 0 {
		return fmt.Errorf("%w: body size must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	col, err := colorful.Hex(c.Body.Color)
	if err != nil {
		return fmt.Errorf("%w: body color %q: %v", ErrInvalidConfiguration, c.Body.Color, err)
	}
	r, g, b := col.RGB255()
	c.Derived.BodyColor = color.RGBA{R: r, G: g, B: b, A: 255}

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
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
