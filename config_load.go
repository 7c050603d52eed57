package uirgateway

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/briefcasebrain/uir-gateway/provider"
)

// LoadConfig reads and parses a config file from the given path.
// Supported formats: JSON (.json), YAML (.yaml, .yml).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Config{Cache: DefaultCacheConfig(), Bind: DefaultBindConfig()}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}

	return &cfg, nil
}

// ValidateConfig validates a Config for correctness.
func ValidateConfig(cfg Config) error {
	if len(cfg.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}

	for name, pc := range cfg.Providers {
		if pc.Name != "" && pc.Name != name {
			return fmt.Errorf("provider %q: config name %q does not match map key", name, pc.Name)
		}
		switch pc.Kind {
		case provider.KindSearchEngine, provider.KindVectorDB, provider.KindDocumentStore,
			provider.KindKnowledgeGraph, provider.KindEnterprise, provider.KindAcademic, provider.KindDataWarehouse:
		default:
			return fmt.Errorf("provider %q: unknown kind %q", name, pc.Kind)
		}
	}

	if cfg.Bind.Port < 0 || cfg.Bind.Port > 65535 {
		return fmt.Errorf("bind port %d out of range", cfg.Bind.Port)
	}

	if cfg.WorkerCount < 0 {
		return fmt.Errorf("worker count must not be negative")
	}

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", cfg.LogLevel)
	}

	if cfg.Admin.DSN != "" && cfg.Admin.EncryptionKey == "" {
		return fmt.Errorf("admin.encryption_key is required when admin.dsn is set")
	}

	return nil
}
