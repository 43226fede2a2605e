// Package config loads lignin-replay settings. Defaults are overlaid by an
// optional TOML file and then by LIGNIN_REPLAY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the config file looked up in Dir when no path is given.
const FileName = "config.toml"

// Config holds every setting the CLI reads.
type Config struct {
	Log     Log     `toml:"log"`
	Match   Match   `toml:"match"`
	Mesh    Mesh    `toml:"mesh"`
	Journal Journal `toml:"journal"`
	Metrics Metrics `toml:"metrics"`
	Engine  Engine  `toml:"engine"`
}

type Log struct {
	Level  string `toml:"level" env:"LIGNIN_REPLAY_LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `toml:"format" env:"LIGNIN_REPLAY_LOG_FORMAT" validate:"oneof=json console"`
}

type Match struct {
	// Tolerance is the absolute tolerance for area, perimeter and centroid.
	Tolerance float64 `toml:"tolerance" env:"LIGNIN_REPLAY_MATCH_TOLERANCE" validate:"gt=0"`
}

type Mesh struct {
	// Cells is the marching cubes resolution along the longest axis.
	Cells int `toml:"cells" env:"LIGNIN_REPLAY_MESH_CELLS" validate:"gt=0"`
}

type Journal struct {
	// Path of the SQLite run journal. Empty disables journaling.
	Path string `toml:"path" env:"LIGNIN_REPLAY_JOURNAL_PATH"`
}

type Metrics struct {
	// Path of the Prometheus textfile. Empty disables metrics output.
	Path string `toml:"path" env:"LIGNIN_REPLAY_METRICS_PATH"`
}

type Engine struct {
	Timeout Duration `toml:"timeout" env:"LIGNIN_REPLAY_ENGINE_TIMEOUT"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log:   Log{Level: "info", Format: "console"},
		Match: Match{Tolerance: 1e-9},
		Mesh:  Mesh{Cells: 200},
		Engine: Engine{
			Timeout: Duration{5 * time.Second},
		},
	}
}

// Dir returns the directory holding the default config file.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lignin-replay"), nil
}

// Load builds the configuration. An explicit path must exist; with an
// empty path the file in Dir is read when present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err == nil {
			path = filepath.Join(dir, FileName)
		}
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ParseEnv overlays environment variables onto target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
	})
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Engine.Timeout.Duration <= 0 {
		return fmt.Errorf("invalid config: engine.timeout must be positive")
	}
	return nil
}

// Write saves c as TOML at path, creating the directory if needed.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
