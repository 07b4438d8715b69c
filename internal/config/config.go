package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the patchline settings loaded from yaml.
type Config struct {
	Engine struct {
		FuzzyThreshold    float64 `yaml:"fuzzy_threshold"`     // 1.0 = exact match only, lower accepts fuzzy matches
		BufferLines       int     `yaml:"buffer_lines"`        // windowed search reach around the anchor line
		ExtractDeadlineMs int     `yaml:"extract_deadline_ms"` // time budget for diff block extraction
	} `yaml:"engine"`

	Log struct {
		Path        string `yaml:"path"`        // empty disables logging
		Development bool   `yaml:"development"` // readable encoding, debug level
	} `yaml:"log"`

	Output struct {
		Color bool `yaml:"color"`
	} `yaml:"output"`
}

// Load reads and validates a config file. A missing file is not an error:
// defaults are returned so the CLI works without any configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return &cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Engine.FuzzyThreshold == 0 {
		c.Engine.FuzzyThreshold = 1.0
	}
	if c.Engine.BufferLines == 0 {
		c.Engine.BufferLines = 40
	}
	if c.Engine.ExtractDeadlineMs == 0 {
		c.Engine.ExtractDeadlineMs = 30000
	}
}

func (c *Config) validate() error {
	if c.Engine.FuzzyThreshold < 0 || c.Engine.FuzzyThreshold > 1 {
		return fmt.Errorf("engine.fuzzy_threshold must be between 0 and 1, got %v", c.Engine.FuzzyThreshold)
	}
	if c.Engine.BufferLines < 0 {
		return fmt.Errorf("engine.buffer_lines must not be negative, got %d", c.Engine.BufferLines)
	}
	if c.Engine.ExtractDeadlineMs < 0 {
		return fmt.Errorf("engine.extract_deadline_ms must not be negative, got %d", c.Engine.ExtractDeadlineMs)
	}
	return nil
}
