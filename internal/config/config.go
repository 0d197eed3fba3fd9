// Package config loads the orc configuration file and applies environment
// overrides and defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultModel is used when neither the config file nor the environment
// names a model.
const DefaultModel = "claude-sonnet-4-5"

// DefaultConfigFile is looked up in the working directory when no explicit
// path is given.
const DefaultConfigFile = "orc.yaml"

// Config is the effective configuration for one process.
type Config struct {
	// Model is the sampling model identifier passed to the provider.
	Model string `yaml:"model" validate:"required"`
	// BaseURL overrides the provider endpoint. Empty uses the default.
	BaseURL string `yaml:"baseUrl,omitempty"`
	// MaxTokens per round trip.
	MaxTokens int `yaml:"maxTokens,omitempty" validate:"omitempty,gt=0"`
	// MaxIterations bounds remote round trips per invocation. Zero means
	// unset and falls back to the agent default.
	MaxIterations int `yaml:"maxIterations,omitempty" validate:"omitempty,gte=1"`
	// Temperature for generation.
	Temperature float64 `yaml:"temperature,omitempty" validate:"gte=0,lte=1"`
	// Tools is the default tool allow-list.
	Tools []string `yaml:"tools,omitempty"`
}

// Load reads the config file at path, falling back to DefaultConfigFile in
// the working directory. A missing file is not an error; defaults apply.
// Environment variables ORC_MODEL and ORC_CUSTOM_URL override the file.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// No config file; rely on defaults and environment.
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if env := os.Getenv("ORC_MODEL"); env != "" {
		cfg.Model = env
	}
	if env := os.Getenv("ORC_CUSTOM_URL"); env != "" {
		cfg.BaseURL = env
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
