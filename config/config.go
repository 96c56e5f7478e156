// Package config loads the service configuration from a YAML or JSON file,
// with environment overrides (CD_ prefix, "__" as the section separator).
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

	"github.com/quentinlb/cocktaild/core/metrics"
	"github.com/quentinlb/cocktaild/infra/machine"
)

type Config struct {
	API      APIConfig      `json:"api"`
	Mongo    MongoConfig    `json:"mongo"`
	Machine  machine.Config `json:"machine"`
	Dispatch DispatchConfig `json:"dispatch"`
	Metrics  metrics.Config `json:"metrics"`
	Logging  LoggingConfig  `json:"logging"`
}

// APIConfig defines the HTTP listener settings.
type APIConfig struct {
	Addr string `json:"addr"`
	// CORSOrigins lists the allowed origins. Empty means allow all.
	CORSOrigins []string `json:"cors_origins"`
	// FilesDir is where uploaded files are stored and served from.
	FilesDir string `json:"files_dir"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.FilesDir == "" {
		c.FilesDir = "files"
	}
}

// MongoConfig defines the persistence backend. When Enabled is false the
// service runs on in-memory stores, the mode used in tests and on machines
// without a database.
type MongoConfig struct {
	Enabled  bool   `json:"enabled"`
	URI      string `json:"uri"`
	Database string `json:"database"`
}

func (c *MongoConfig) SetDefaults() {
	if c.URI == "" {
		c.URI = "mongodb://localhost:27017"
	}
	if c.Database == "" {
		c.Database = "cocktaild"
	}
}

// DispatchConfig bounds the order execution pipeline.
type DispatchConfig struct {
	// MachineTimeoutSeconds caps how long one cocktail run may take,
	// including the wait for the machine acknowledgment.
	MachineTimeoutSeconds int `json:"machine_timeout_seconds"`
}

func (c *DispatchConfig) SetDefaults() {
	if c.MachineTimeoutSeconds == 0 {
		c.MachineTimeoutSeconds = 60
	}
}

func (c DispatchConfig) Validate() error {
	if c.MachineTimeoutSeconds < 0 {
		return fmt.Errorf("machine_timeout_seconds must be positive")
	}
	return nil
}

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
	if err := k.Load(env.Provider("CD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "cd_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.API.SetDefaults()
	cfg.Mongo.SetDefaults()
	cfg.Machine.SetDefaults()
	cfg.Dispatch.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Machine.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Dispatch.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
