package workspacefinder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwatobipen/entry-cli/internal/domain"
)

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	root := t.TempDir()

	// Partial config (no paths/store)
	content := []byte("entry-cli:\n  defaults:\n    profile: thorough\n")
	if err := os.WriteFile(filepath.Join(root, "entry-cli.yaml"), content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Defaults.Profile != "thorough" {
		t.Fatalf("expected profile=thorough, got=%s", cfg.Defaults.Profile)
	}
	if cfg.Store.Precision != 4 || !cfg.Store.Index {
		t.Fatalf("store defaults lost: %+v", cfg.Store)
	}
	if cfg.Paths.SetsDir != "sets" || cfg.Paths.ProfilesDir != "profiles" || cfg.Paths.RunsDir != "runs" {
		t.Fatalf("path defaults lost: %+v", cfg.Paths)
	}
}

func TestLoadConfig_OverridesStoreAndPaths(t *testing.T) {
	root := t.TempDir()

	content := []byte(`
entry-cli:
  store:
    precision: 2
    index: false
  paths:
    sets_dir: molecules
    runs_dir: artifacts
`)
	if err := os.WriteFile(filepath.Join(root, "entry-cli.yaml"), content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Store.Precision != 2 || cfg.Store.Index {
		t.Fatalf("store not applied: %+v", cfg.Store)
	}
	if cfg.Paths.SetsDir != "molecules" || cfg.Paths.RunsDir != "artifacts" {
		t.Fatalf("paths not applied: %+v", cfg.Paths)
	}
	if cfg.Paths.ProfilesDir != "profiles" {
		t.Fatalf("untouched path lost its default: %+v", cfg.Paths)
	}
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
	// Defaults still come back so callers can keep going.
	if cfg.Defaults.Profile != "default" {
		t.Fatalf("defaults not returned: %+v", cfg)
	}
}
