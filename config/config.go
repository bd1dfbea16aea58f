// Package config loads and builds the simulation's run parameters: world
// and room sizing, per-tick pacing and execution budgets, the initial
// synthetic-user count, and the map generator's terrain thresholds.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds every recognized option (spec §6.4). Zero values are never
// valid on their own; Builder.Build fills in Default's values for anything
// left unset by file and environment overlays.
type Config struct {
	WorldRadius    int     `yaml:"world_radius" json:"worldRadius"`
	RoomRadius     int     `yaml:"room_radius" json:"roomRadius"`
	TargetTickMs   int     `yaml:"target_tick_ms" json:"targetTickMs"`
	ExecutionLimit int     `yaml:"execution_limit" json:"executionLimit"`
	NActors        int     `yaml:"n_actors" json:"nActors"`
	ChancePlain    float64 `yaml:"chance_plain" json:"chancePlain"`
	ChanceWall     float64 `yaml:"chance_wall" json:"chanceWall"`
	PlainDilation  int     `yaml:"plain_dilation" json:"plainDilation"`
	Seed           uint64  `yaml:"seed" json:"seed"`
}

// Default returns the configuration used when no file or environment
// overlay supplies a value.
func Default() Config {
	return Config{
		WorldRadius:    5,
		RoomRadius:     50,
		TargetTickMs:   50,
		ExecutionLimit: 100_000,
		NActors:        1,
		ChancePlain:    0.5,
		ChanceWall:     0.15,
		PlainDilation:  2,
		Seed:           1,
	}
}

// Builder assembles a Config by layering a file overlay and an environment
// overlay on top of Default, in the teacher's fluent With* style.
type Builder struct {
	base    Config
	envPref string
}

// NewBuilder starts from Default.
func NewBuilder() Builder {
	return Builder{base: Default()}
}

// WithFile merges the YAML document at path over the current base,
// leaving fields the file omits untouched.
func (b Builder) WithFile(path string) (Builder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := b.base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return b, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	b.base = cfg
	return b, nil
}

// WithEnvPrefix records the prefix (e.g. "CAOLO_") Build looks under; with
// that prefix Build reads world_radius from "CAOLO_WORLD_RADIUS".
func (b Builder) WithEnvPrefix(prefix string) Builder {
	b.envPref = prefix
	return b
}

// Build applies the environment overlay and returns the finished Config.
func (b Builder) Build() (Config, error) {
	cfg := b.base

	overlays := []struct {
		key string
		set func(string) error
	}{
		{"world_radius", intSetter(&cfg.WorldRadius)},
		{"room_radius", intSetter(&cfg.RoomRadius)},
		{"target_tick_ms", intSetter(&cfg.TargetTickMs)},
		{"execution_limit", intSetter(&cfg.ExecutionLimit)},
		{"n_actors", intSetter(&cfg.NActors)},
		{"chance_plain", floatSetter(&cfg.ChancePlain)},
		{"chance_wall", floatSetter(&cfg.ChanceWall)},
		{"plain_dilation", intSetter(&cfg.PlainDilation)},
		{"seed", uintSetter(&cfg.Seed)},
	}

	for _, o := range overlays {
		raw, ok := os.LookupEnv(b.envPref + envName(o.key))
		if !ok {
			continue
		}
		if err := o.set(raw); err != nil {
			return Config{}, fmt.Errorf("config: env %s%s: %w", b.envPref, envName(o.key), err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first structurally invalid field, if any.
func (c Config) Validate() error {
	switch {
	case c.WorldRadius <= 0:
		return fmt.Errorf("config: world_radius must be positive")
	case c.RoomRadius <= 0:
		return fmt.Errorf("config: room_radius must be positive")
	case c.ExecutionLimit <= 0:
		return fmt.Errorf("config: execution_limit must be positive")
	case c.ChancePlain < 0 || c.ChancePlain > 1:
		return fmt.Errorf("config: chance_plain must be in [0,1]")
	case c.ChanceWall < 0 || c.ChanceWall > 1:
		return fmt.Errorf("config: chance_wall must be in [0,1]")
	case c.PlainDilation < 0:
		return fmt.Errorf("config: plain_dilation must be non-negative")
	}
	return nil
}

func intSetter(dst *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func uintSetter(dst *uint64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func floatSetter(dst *float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// envName upper-cases a snake_case config key into its environment variable
// form, e.g. "target_tick_ms" -> "TARGET_TICK_MS".
func envName(key string) string {
	out := make([]byte, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
