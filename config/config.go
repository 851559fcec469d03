// Package config holds the YAML configuration of the dashboard service.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	KindREST   = "rest"
	KindSQLite = "sqlite"
)

// Config holds all service configuration.
type Config struct {
	Listen string      `yaml:"listen"`
	Store  StoreConfig `yaml:"store"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Kind    string `yaml:"kind"` // "rest" or "sqlite"
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
	DBPath  string `yaml:"db_path"`
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Store.Kind == "" {
		c.Store.Kind = KindSQLite
	}
	if c.Store.DBPath == "" {
		c.Store.DBPath = "tablero.db"
	}
}

// Validate rejects unusable store configurations.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case KindREST:
		if c.Store.URL == "" {
			return fmt.Errorf("config: store.url is required for kind %q", KindREST)
		}
	case KindSQLite:
	default:
		return fmt.Errorf("config: unknown store.kind %q", c.Store.Kind)
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

// Load reads a YAML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
