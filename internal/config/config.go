// Package config loads the optional YAML profile of the bioc command.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/bioc/core/bioc"
	"github.com/FocuswithJustin/bioc/core/encoding"
)

// Config is the complete CLI profile.
type Config struct {
	Validation ValidationConfig `yaml:"validation"`
	Writer     WriterConfig     `yaml:"writer"`
	Log        LogConfig        `yaml:"log"`
}

// ValidationConfig configures the span validator and DTD check.
type ValidationConfig struct {
	// Mode is "collect" or "fail-fast".
	Mode string `yaml:"mode"`
	// IDPolicy is "strict" or "lenient".
	IDPolicy string `yaml:"id_policy"`
	// DTD is a schema file checked before span validation (empty = none)
	DTD string `yaml:"dtd"`
}

// WriterConfig configures output streams.
type WriterConfig struct {
	Encoding   string `yaml:"encoding"`
	Indent     string `yaml:"indent"`
	Standalone bool   `yaml:"standalone"`
	// DOCTYPE is written verbatim; empty keeps the input's declaration
	DOCTYPE string `yaml:"doctype"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the profile used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Validation: ValidationConfig{
			Mode:     "collect",
			IDPolicy: "strict",
		},
		Writer: WriterConfig{
			Encoding:   encoding.UTF8,
			Standalone: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.ValidatorMode(); err != nil {
		return err
	}
	if _, err := c.IDPolicy(); err != nil {
		return err
	}
	if _, err := encoding.Canonical(c.Writer.Encoding); err != nil {
		return fmt.Errorf("writer.encoding: %w", err)
	}
	return nil
}

// ValidatorMode returns the configured validation mode.
func (c *Config) ValidatorMode() (bioc.Mode, error) {
	switch c.Validation.Mode {
	case "", "collect":
		return bioc.CollectErrors, nil
	case "fail-fast":
		return bioc.FailFast, nil
	}
	return bioc.CollectErrors, fmt.Errorf("validation.mode must be collect or fail-fast, got %q", c.Validation.Mode)
}

// IDPolicy returns the configured duplicate id policy.
func (c *Config) IDPolicy() (bioc.IDPolicy, error) {
	p, ok := bioc.ParseIDPolicy(c.Validation.IDPolicy)
	if !ok {
		return p, fmt.Errorf("validation.id_policy must be strict or lenient, got %q", c.Validation.IDPolicy)
	}
	return p, nil
}

// LoadFromFile loads configuration from a YAML file over the defaults.
// Relative DTD paths are resolved against the file's directory.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if dtd := config.Validation.DTD; dtd != "" && !filepath.IsAbs(dtd) {
		config.Validation.DTD = filepath.Join(filepath.Dir(path), dtd)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
