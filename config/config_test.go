package config

import (
	"os"
	"path/filepath"
	"testing"
)

// ============================================================================
// CONFIG TESTS
// ============================================================================

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tablero.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Listen != ":8080" {
		t.Errorf("Listen = %q, want :8080", cfg.Listen)
	}
	if cfg.Store.Kind != KindSQLite {
		t.Errorf("Store.Kind = %q, want sqlite", cfg.Store.Kind)
	}
	if cfg.Store.DBPath != "tablero.db" {
		t.Errorf("Store.DBPath = %q, want tablero.db", cfg.Store.DBPath)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "listen: \":9090\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("Listen = %q, want :9090", cfg.Listen)
	}
	if cfg.Store.Kind != KindSQLite || cfg.Store.DBPath != "tablero.db" {
		t.Errorf("store defaults not applied: %+v", cfg.Store)
	}
}

func TestLoadRESTConfig(t *testing.T) {
	path := writeConfig(t, `
store:
  kind: rest
  url: https://example.supabase.co
  anon_key: secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Kind != KindREST || cfg.Store.URL != "https://example.supabase.co" {
		t.Errorf("store = %+v", cfg.Store)
	}
}

func TestLoadRejectsRESTWithoutURL(t *testing.T) {
	path := writeConfig(t, "store:\n  kind: rest\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for rest store without url")
	}
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	path := writeConfig(t, "store:\n  kind: carrier-pigeon\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown store kind")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := writeConfig(t, "listen: [unclosed\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
