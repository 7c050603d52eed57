package uirgateway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/briefcasebrain/uir-gateway/provider"
)

func TestLoadConfig_Valid(t *testing.T) {
	data := `{
		"providers": {
			"web-a": {"name": "web-a", "kind": "search_engine"},
			"vectors-a": {"name": "vectors-a", "kind": "vector_db"}
		},
		"bind": {"host": "127.0.0.1", "port": 9090}
	}`
	path := writeTempFile(t, "config.json", data)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Providers) != 2 {
		t.Errorf("expected 2 providers, got %d", len(cfg.Providers))
	}
	if cfg.Bind.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Bind.Port)
	}
}

func TestLoadConfig_NonExistentFile(t *testing.T) {
	_, err := LoadConfig("/tmp/does-not-exist-config-12345.json")
	if err == nil {
		t.Fatal("expected error for non-existent file")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeTempFile(t, "bad.json", `{invalid`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	cfg := Config{
		Providers: map[string]provider.Config{"web-a": {Name: "web-a", Kind: provider.KindSearchEngine}},
		Bind:      DefaultBindConfig(),
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateConfig_EmptyProviders(t *testing.T) {
	cfg := Config{Bind: DefaultBindConfig()}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error for empty providers")
	}
}

func TestValidateConfig_UnknownKind(t *testing.T) {
	cfg := Config{
		Providers: map[string]provider.Config{"x": {Name: "x", Kind: "unknown"}},
		Bind:      DefaultBindConfig(),
	}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error for unknown provider kind")
	}
}

func TestValidateConfig_NameMismatch(t *testing.T) {
	cfg := Config{
		Providers: map[string]provider.Config{"x": {Name: "y", Kind: provider.KindSearchEngine}},
		Bind:      DefaultBindConfig(),
	}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error for name/key mismatch")
	}
}

func TestValidateConfig_InvalidPort(t *testing.T) {
	cfg := Config{
		Providers: map[string]provider.Config{"x": {Name: "x", Kind: provider.KindSearchEngine}},
		Bind:      BindConfig{Port: 70000},
	}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestValidateConfig_AdminDSNRequiresEncryptionKey(t *testing.T) {
	cfg := Config{
		Providers: map[string]provider.Config{"x": {Name: "x", Kind: provider.KindSearchEngine}},
		Bind:      DefaultBindConfig(),
		Admin:     AdminConfig{DSN: "gateway.db"},
	}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error when admin DSN is set without an encryption key")
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	data := `
providers:
  web-a:
    name: web-a
    kind: search_engine
  vectors-a:
    name: vectors-a
    kind: vector_db
`
	path := writeTempFile(t, "config.yaml", data)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Providers) != 2 {
		t.Errorf("expected 2 providers, got %d", len(cfg.Providers))
	}
}

func TestLoadConfig_YML(t *testing.T) {
	data := `
providers:
  web-a:
    name: web-a
    kind: search_engine
`
	path := writeTempFile(t, "config.yml", data)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Providers) != 1 {
		t.Errorf("expected 1 provider, got %d", len(cfg.Providers))
	}
}

func TestLoadConfig_UnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "config.toml", "key = value")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestLoadConfig_DefaultsAppliedBeforeParse(t *testing.T) {
	path := writeTempFile(t, "config.json", `{"providers": {"x": {"name": "x", "kind": "search_engine"}}}`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache.LocalCapacity != DefaultCacheConfig().LocalCapacity {
		t.Errorf("expected default cache capacity to survive an empty cache block, got %d", cfg.Cache.LocalCapacity)
	}
	if cfg.Bind.Port != DefaultBindConfig().Port {
		t.Errorf("expected default bind port to survive an empty bind block, got %d", cfg.Bind.Port)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}
