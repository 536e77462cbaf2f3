package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/gradepipe/internal/classify"
	"github.com/danielpatrickdp/gradepipe/internal/scoring"
)

// #region env
const (
	EnvLogLevel = "GRADEPIPE_LOG_LEVEL"
	EnvStrategy = "GRADEPIPE_STRATEGY"
	EnvScale    = "GRADEPIPE_SCALE"
)

// #endregion env

// #region types

// Config is the pipeline configuration.
type Config struct {
	Log        LogConfig          `yaml:"log"`
	Strategy   string             `yaml:"strategy" validate:"required"`
	Scale      string             `yaml:"scale" validate:"required"`
	Channels   []string           `yaml:"channels" validate:"dive,oneof=email sms mobile"`
	Strategies []WeightedStrategy `yaml:"strategies" validate:"dive"`
	Scales     []ScaleConfig      `yaml:"scales" validate:"dive"`
}

// LogConfig selects log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// WeightedStrategy declares a custom positional weighted strategy.
type WeightedStrategy struct {
	ID         string    `yaml:"id" validate:"required"`
	Name       string    `yaml:"name"`
	Components []string  `yaml:"components"`
	Weights    []float64 `yaml:"weights" validate:"required,min=1"`
}

// ScaleConfig declares a custom classification table.
type ScaleConfig struct {
	ID      string        `yaml:"id" validate:"required"`
	Name    string        `yaml:"name"`
	Default string        `yaml:"default" validate:"required"`
	Ranges  []RangeConfig `yaml:"ranges" validate:"dive"`
}

// RangeConfig is one [Min, Max) band. A missing Max means unbounded above.
type RangeConfig struct {
	Label string   `yaml:"label" validate:"required"`
	Min   float64  `yaml:"min"`
	Max   *float64 `yaml:"max"`
}

// #endregion types

// #region defaults

// Default returns a configuration that needs no file.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Strategy: string(scoring.StrategyStandard),
		Scale:    string(classify.ScaleFour),
		Channels: []string{"email"},
	}
}

// #endregion defaults

// #region load

var validate = validator.New()

// Load reads a YAML file over the defaults, applies environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decode(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates it. No environment
// overrides are applied.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	if err := decode(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Log.Level = envOr(EnvLogLevel, c.Log.Level)
	c.Strategy = envOr(EnvStrategy, c.Strategy)
	c.Scale = envOr(EnvScale, c.Scale)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load

// #region validate

// Validate checks field constraints, then that every custom strategy and
// scale builds and that the selected IDs resolve.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, s := range c.Strategies {
		if len(s.Components) > 0 && len(s.Components) != len(s.Weights) {
			return fmt.Errorf("invalid config: strategy %q has %d components but %d weights",
				s.ID, len(s.Components), len(s.Weights))
		}
	}
	if _, err := c.Tables(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.ResolveStrategy(c.Strategy); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.ResolveTable(c.Scale); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// #endregion validate

// #region resolve

// StrategySet returns built-in strategies merged with custom ones.
// A custom ID shadows a built-in of the same name.
func (c *Config) StrategySet() map[string]scoring.Strategy {
	builtins := scoring.Builtins()
	out := make(map[string]scoring.Strategy, len(builtins)+len(c.Strategies))
	for id, s := range builtins {
		out[string(id)] = s
	}
	for _, s := range c.Strategies {
		name := s.Name
		if name == "" {
			name = s.ID
		}
		out[s.ID] = scoring.NewNamedWeighted(name, s.Components, s.Weights)
	}
	return out
}

// Tables returns built-in tables merged with custom ones.
func (c *Config) Tables() (map[string]*classify.Table, error) {
	builtins := classify.Builtins()
	out := make(map[string]*classify.Table, len(builtins)+len(c.Scales))
	for id, t := range builtins {
		out[string(id)] = t
	}
	for _, sc := range c.Scales {
		ranges := make([]classify.Range, len(sc.Ranges))
		for i, r := range sc.Ranges {
			upper := math.Inf(1)
			if r.Max != nil {
				upper = *r.Max
			}
			ranges[i] = classify.Range{Lower: r.Min, Upper: upper, Label: r.Label}
		}
		name := sc.Name
		if name == "" {
			name = sc.ID
		}
		t, err := classify.NewTable(name, sc.Default, ranges...)
		if err != nil {
			return nil, err
		}
		out[sc.ID] = t
	}
	return out, nil
}

// ResolveStrategy finds a strategy by ID.
func (c *Config) ResolveStrategy(id string) (scoring.Strategy, error) {
	s, ok := c.StrategySet()[id]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", id)
	}
	return s, nil
}

// ResolveTable finds a classification table by ID.
func (c *Config) ResolveTable(id string) (*classify.Table, error) {
	tables, err := c.Tables()
	if err != nil {
		return nil, err
	}
	t, ok := tables[id]
	if !ok {
		return nil, fmt.Errorf("unknown scale %q", id)
	}
	return t, nil
}

// #endregion resolve
