// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"

	"github.com/woozymasta/quadtile/tilesystem"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Attribution string  `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	ZoomLimit   int     `yaml:"zoom,omitempty" json:"zoom"`
	DefaultDPI  float64 `yaml:"dpi,omitempty" json:"dpi"`
	Metrics     bool    `yaml:"metrics,omitempty" json:"-"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Normalize fills defaults and rejects values the tile scheme cannot address.
func (c *Config) Normalize() error {
	if c.ZoomLimit == 0 {
		c.ZoomLimit = tilesystem.MaxLevelOfDetail
	}
	if c.ZoomLimit < 1 || c.ZoomLimit > tilesystem.MaxLevelOfDetail {
		return fmt.Errorf("zoom limit %d outside [1, %d]", c.ZoomLimit, tilesystem.MaxLevelOfDetail)
	}

	if c.DefaultDPI == 0 {
		c.DefaultDPI = 96
	}
	if c.DefaultDPI < 0 {
		return fmt.Errorf("dpi %v must be positive", c.DefaultDPI)
	}

	return nil
}
