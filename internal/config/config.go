package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/attractor/internal/field"
)

const (
	// Spring-damper defaults, in N/m and N/(m/s).
	DefaultStiffness = 2000.0
	DefaultDamping   = 10.0

	// DefaultSampleInterval must stay short enough for force updates
	// to keep the haptic loop stable.
	DefaultSampleInterval = 500 * time.Microsecond

	DefaultListen = "127.0.0.1:8735"
)

var identity = []float64{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
}

// Duration reads from yaml as either a time.ParseDuration string
// ("500us", "0.5ms") or raw integer nanoseconds, and writes back as a
// string.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("duration: want a string like \"500us\" or integer nanoseconds, got %q", value.Value)
	}
	*d = Duration(n)
	return nil
}

// Config is the on-disk parameter file for the attractor node.
// Matrices are row-major lists of 9 values, vectors lists of 3.
type Config struct {
	Basis          []float64 `yaml:"basis"`
	Weights        []float64 `yaml:"weights"`
	Offset         []float64 `yaml:"offset"`
	Stiffness      float64   `yaml:"stiffness"`
	Damping        float64   `yaml:"damping"`
	ForceTransform []float64 `yaml:"force_transform"`
	SampleInterval Duration  `yaml:"sample_interval"`
	PublishForce   bool      `yaml:"publish_force"`
	Listen         string    `yaml:"listen"`
	DataDir        string    `yaml:"data_dir"`
}

// DefaultConfig is the free-movement baseline: identity basis and
// transform, unit weights, zero offset. The attractor exerts no force
// until the basis is narrowed to a plane, line, or point.
func DefaultConfig() *Config {
	return &Config{
		Basis:          append([]float64(nil), identity...),
		Weights:        []float64{1, 1, 1},
		Offset:         []float64{0, 0, 0},
		Stiffness:      DefaultStiffness,
		Damping:        DefaultDamping,
		ForceTransform: append([]float64(nil), identity...),
		SampleInterval: Duration(DefaultSampleInterval),
		PublishForce:   true,
		Listen:         DefaultListen,
		DataDir:        ".attractor",
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a parameter file on top of base: keys absent from the
// file keep base's values, so a preset survives a partial file.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects malformed parameter files before they reach the
// numerical core: wrong shapes, non-finite values, negative gains.
// A weight of exactly zero is a legal degenerate configuration.
func (c *Config) Validate() error {
	if err := finiteSlice("basis", c.Basis, 9); err != nil {
		return err
	}
	if err := finiteSlice("force_transform", c.ForceTransform, 9); err != nil {
		return err
	}
	if err := finiteSlice("weights", c.Weights, 3); err != nil {
		return err
	}
	if err := finiteSlice("offset", c.Offset, 3); err != nil {
		return err
	}
	for i, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("weights[%d] must be >= 0, got %f", i, w)
		}
	}
	if math.IsNaN(c.Stiffness) || c.Stiffness < 0 {
		return fmt.Errorf("stiffness must be >= 0, got %f", c.Stiffness)
	}
	if math.IsNaN(c.Damping) || c.Damping < 0 {
		return fmt.Errorf("damping must be >= 0, got %f", c.Damping)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample_interval must be positive, got %s", c.SampleInterval)
	}
	return nil
}

func finiteSlice(name string, s []float64, want int) error {
	if len(s) != want {
		return fmt.Errorf("%s needs %d values, got %d", name, want, len(s))
	}
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s[%d] is not finite", name, i)
		}
	}
	return nil
}

// Attractor converts the file values into a core configuration
// snapshot. Call Validate first; conversion does not re-check ranges.
func (c *Config) Attractor() (field.AttractorConfig, error) {
	basis, err := field.MatFromSlice(c.Basis)
	if err != nil {
		return field.AttractorConfig{}, fmt.Errorf("basis: %w", err)
	}
	if len(c.Weights) != 3 || len(c.Offset) != 3 {
		return field.AttractorConfig{}, fmt.Errorf("weights and offset need 3 values each")
	}
	return field.AttractorConfig{
		Basis:     basis,
		Weights:   field.Vec3{c.Weights[0], c.Weights[1], c.Weights[2]},
		Offset:    field.Vec3{c.Offset[0], c.Offset[1], c.Offset[2]},
		Stiffness: c.Stiffness,
		Damping:   c.Damping,
	}, nil
}

// Transform converts the force_transform values into a matrix.
func (c *Config) Transform() (field.Mat3, error) {
	m, err := field.MatFromSlice(c.ForceTransform)
	if err != nil {
		return field.Mat3{}, fmt.Errorf("force_transform: %w", err)
	}
	return m, nil
}
