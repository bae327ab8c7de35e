// Package config loads the tl configuration file (.tl/config.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/treelist/pkg/tree"
)

// Generator names accepted in ids.generator.
const (
	GeneratorRandom  = "random"
	GeneratorCounter = "counter"
)

// Config represents the configuration file.
type Config struct {
	// Catalogs lists catalog files; empty means the bundled catalog.
	// Relative paths resolve against the config file's directory.
	Catalogs []string `yaml:"catalogs,omitempty" json:"catalogs,omitempty"`

	// IDs configures id generation for roots and expanded children
	IDs IDConfig `yaml:"ids,omitempty" json:"ids,omitempty"`

	// Watch reloads the catalog when a catalog file changes (default: true)
	Watch *bool `yaml:"watch,omitempty" json:"watch,omitempty"`

	// UI tunes the terminal display
	UI UIConfig `yaml:"ui,omitempty" json:"ui,omitempty"`

	// dir is the directory of the file the config was loaded from
	dir string
}

// IDConfig selects and parameterizes the id generator.
type IDConfig struct {
	// Generator is "counter" (default) or "random"
	Generator string `yaml:"generator,omitempty" json:"generator,omitempty"`

	// Min and Max bound random ids (default 1..100000)
	Min int `yaml:"min,omitempty" json:"min,omitempty"`
	Max int `yaml:"max,omitempty" json:"max,omitempty"`

	// Seed for the random generator; 0 picks one from the clock
	Seed uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// Start is the first id handed out by the counter (default 1)
	Start int `yaml:"start,omitempty" json:"start,omitempty"`
}

// UIConfig holds display preferences.
type UIConfig struct {
	// DetailPane shows the selected city's description below the list
	DetailPane *bool `yaml:"detail_pane,omitempty" json:"detail_pane,omitempty"`

	// Expand names roots to expand at startup
	Expand []string `yaml:"expand,omitempty" json:"expand,omitempty"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.IDs.Generator == "" {
		c.IDs.Generator = GeneratorCounter
	}
	if c.IDs.Min == 0 && c.IDs.Max == 0 {
		c.IDs.Min = int(tree.DefaultMinID)
		c.IDs.Max = int(tree.DefaultMaxID)
	}
	if c.IDs.Start == 0 {
		c.IDs.Start = 1
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	switch c.IDs.Generator {
	case GeneratorRandom:
		if c.IDs.Max < c.IDs.Min {
			return fmt.Errorf("ids: max (%d) is below min (%d)", c.IDs.Max, c.IDs.Min)
		}
	case GeneratorCounter:
	default:
		return fmt.Errorf("ids: unknown generator %q (want %q or %q)",
			c.IDs.Generator, GeneratorRandom, GeneratorCounter)
	}

	for i, p := range c.Catalogs {
		if p == "" {
			return fmt.Errorf("catalogs[%d]: path is required", i)
		}
	}
	return nil
}

// WatchEnabled returns whether catalog files are watched
func (c *Config) WatchEnabled() bool {
	if c.Watch == nil {
		return true
	}
	return *c.Watch
}

// DetailPaneEnabled returns whether the detail pane is shown
func (c *Config) DetailPaneEnabled() bool {
	if c.UI.DetailPane == nil {
		return true
	}
	return *c.UI.DetailPane
}

// CatalogPaths returns catalog paths resolved against the config directory,
// with directory entries expanded to the catalog files beneath them.
func (c *Config) CatalogPaths() []string {
	paths := make([]string, 0, len(c.Catalogs))
	for _, p := range c.Catalogs {
		if !filepath.IsAbs(p) && c.dir != "" {
			p = filepath.Join(c.dir, p)
		}
		paths = append(paths, p)
	}
	return ExpandCatalogs(paths)
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = filepath.Dir(path)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}
