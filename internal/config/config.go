// Package config loads the process-wide, read-only configuration:
// resolver source priorities, manual overrides, adapters to initialize, the
// snapshot export directory, and tracing.
package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration document.
type Config struct {
	Source struct {
		Priorities map[string]float64 `yaml:"priorities"`
	} `yaml:"source"`
	Overrides      map[string]string `yaml:"overrides"`
	Snapshot       struct {
		Dir string `yaml:"dir"`
	} `yaml:"snapshot"`
	Ingestion struct {
		Adapters []string `yaml:"adapters"`
	} `yaml:"ingestion"`
	Tracing struct {
		Enabled     bool   `yaml:"enabled"`
		Endpoint    string `yaml:"endpoint"`
		TLSCAPath   string `yaml:"tls_ca_path"`
		TLSInsecure bool   `yaml:"tls_insecure"`
	} `yaml:"tracing"`
}

// Default returns an empty, valid Config: no priority overrides, no manual
// overrides, every built-in adapter enabled, no snapshot directory.
func Default() *Config {
	cfg := &Config{}
	cfg.Source.Priorities = map[string]float64{}
	cfg.Overrides = map[string]string{}
	cfg.Ingestion.Adapters = []string{
		"router-log", "configuration-file", "network-discovery", "cicd-pipeline",
		"api-gateway", "observability", "kubernetes", "custom-text",
	}
	return cfg
}

// Load reads and parses a YAML configuration file using koanf, following
// a load → unmarshal pattern. Unset fields keep Default's
// zero values.
func Load(path string) (*Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load depgraph config from %q: %w", path, err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse depgraph config from %q: %w", path, err)
	}

	if cfg.Source.Priorities == nil {
		cfg.Source.Priorities = map[string]float64{}
	}
	if cfg.Overrides == nil {
		cfg.Overrides = map[string]string{}
	}
	return cfg, nil
}
