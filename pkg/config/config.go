// Package config loads the user configuration of graf.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	"src.graf.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[config] ")

// Config is the user configuration.
type Config struct {
	Viewport Viewport `yaml:"viewport"`
	Analysis Analysis `yaml:"analysis"`
	Integral Integral `yaml:"integral"`
	Store    Store    `yaml:"store"`
}

// Viewport holds the initial viewport.
type Viewport struct {
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Scale  float64    `yaml:"scale"`
	Offset [2]float64 `yaml:"offset"`
}

// Analysis holds parameters of root and intersection finding.
type Analysis struct {
	DedupeRadius float64 `yaml:"dedupe-radius"`
}

// Integral holds parameters of numeric integration.
type Integral struct {
	Subintervals int `yaml:"subintervals"`
}

// Store holds the location of the database.
type Store struct {
	Path string `yaml:"path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Viewport: Viewport{Width: 800, Height: 600, Scale: 50},
		Analysis: Analysis{DedupeRadius: 6},
		Integral: Integral{Subintervals: 200},
	}
}

// Parse reads a configuration from r. Keys that are absent keep their default
// values; unknown keys are an error.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch {
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return fmt.Errorf("viewport size must be positive, got %vx%v",
			c.Viewport.Width, c.Viewport.Height)
	case c.Viewport.Scale <= 0:
		return fmt.Errorf("viewport scale must be positive, got %v", c.Viewport.Scale)
	case c.Analysis.DedupeRadius < 0:
		return fmt.Errorf("dedupe-radius must not be negative, got %v", c.Analysis.DedupeRadius)
	}
	return nil
}

// DefaultPath returns the path of the configuration file used when none is
// given, following the XDG base directory convention.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "graf", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "graf", "config.yaml"), nil
}

// Load reads the configuration file at path. An empty path means the default
// path, which may be absent; an explicitly given path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = DefaultPath()
		if err != nil {
			logger.Println("no default config path:", err)
			return Default(), nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	logger.Println("loading", path)
	c, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
