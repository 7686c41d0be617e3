package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/rosterd/rosterd/core/metrics"
	"github.com/rosterd/rosterd/core/roster"
)

// Config is the full service configuration.
type Config struct {
	Generation roster.Config  `json:"generation"`
	Metrics    metrics.Config `json:"metrics"`
	Store      StoreConfig    `json:"store"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `json:"path"`
}

// SetDefaults fills the default database path.
func (c *StoreConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "rosterd.db"
	}
}

// Validate checks the store section.
func (c StoreConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("store path is required")
	}
	return nil
}

// Load reads the configuration file and applies ROSTERD_ environment
// overrides. Absent generation keys keep their defaults, so a minimal
// file with only the store path is valid.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("ROSTERD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "rosterd_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Config{Generation: roster.DefaultConfig()}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Store.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Generation.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
