package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/example/tilepipe/internal/core/adjacency"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "tilepipe.toml"

const (
	defaultDatabase = "~/.tilepipe/tilepipe.db"
	defaultInterval = 30 * time.Second
	defaultLogLevel = "info"
)

// ErrUnknownStage is returned when a stage id is not configured.
var ErrUnknownStage = errors.New("unknown stage")

// Config represents the tilepipe project configuration
type Config struct {
	Database string        `toml:"database"`
	Interval string        `toml:"interval"`  // Go duration, e.g. "30s"
	LogLevel string        `toml:"log_level"` // trace, debug, info, warn, error
	Stages   []StageConfig `toml:"stages"`
}

// StageConfig declares one pipeline stage.
type StageConfig struct {
	ID    string `toml:"id"`
	Name  string `toml:"name,omitempty"`
	Input string `toml:"input,omitempty"` // id of the feeding stage
	Axis  string `toml:"axis,omitempty"`  // x, y or z for adjacent-tile stages
}

// Default returns a config with one source stage and one Z-adjacent stage.
func Default() *Config {
	return &Config{
		Database: defaultDatabase,
		Interval: defaultInterval.String(),
		LogLevel: defaultLogLevel,
		Stages: []StageConfig{
			{ID: "raw", Name: "Raw tiles"},
			{ID: "z-compare", Name: "Z adjacent comparison", Input: "raw", Axis: "z"},
		},
	}
}

// Load reads and validates the TOML config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config (%s): %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config (%s): %w", path, err)
	}

	return &cfg, nil
}

// Save writes cfg as TOML to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Database) == "" {
		c.Database = defaultDatabase
	}
	if strings.TrimSpace(c.Interval) == "" {
		c.Interval = defaultInterval.String()
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	for i := range c.Stages {
		if c.Stages[i].Name == "" {
			c.Stages[i].Name = c.Stages[i].ID
		}
	}
}

// Validate checks stage ids, input references and adjacency axes.
// An unrecognized axis is a hard error so misconfigured stages never run.
func (c *Config) Validate() error {
	if _, err := c.PollInterval(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Stages))
	for i, s := range c.Stages {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return fmt.Errorf("stage[%d] missing id", i)
		}
		if seen[id] {
			return fmt.Errorf("stage %q declared twice", id)
		}

		if s.Input != "" {
			if s.Input == id {
				return fmt.Errorf("stage %q cannot feed itself", id)
			}
			if !seen[s.Input] {
				return fmt.Errorf("stage %q input %q must be declared before it", id, s.Input)
			}
		}

		if s.Axis != "" {
			if _, err := adjacency.ParseAxis(s.Axis); err != nil {
				return fmt.Errorf("stage %q: %w", id, err)
			}
			if s.Input == "" {
				return fmt.Errorf("stage %q has an axis but no input stage", id)
			}
		}

		seen[id] = true
	}

	return nil
}

// PollInterval returns the scheduler tick interval.
func (c *Config) PollInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", c.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", d)
	}
	return d, nil
}

// Stage returns the stage with the given id.
func (c *Config) Stage(id string) (*StageConfig, error) {
	for i := range c.Stages {
		if c.Stages[i].ID == id {
			return &c.Stages[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStage, id)
}

// DatabasePath returns the database path with a leading ~ expanded.
func (c *Config) DatabasePath() (string, error) {
	path := c.Database
	if path == ":memory:" {
		return path, nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}
