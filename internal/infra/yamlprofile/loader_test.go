package yamlprofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwatobipen/entry-cli/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func profilesRoot(t *testing.T) (root, dir string) {
	t.Helper()
	root = t.TempDir()
	dir = filepath.Join(root, "profiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	return root, dir
}

func TestLoadProfile_ByName(t *testing.T) {
	root, dir := profilesRoot(t)
	writeFile(t, dir, "fast.yaml", `
name: fast
vars:
  core: "c1ccccc1"
conformers:
  max_conformers: 10
  opt_steps: 50
`)

	p, err := NewLoader(root).LoadProfile("fast")
	if err != nil {
		t.Fatalf("LoadProfile error: %v", err)
	}

	if p.Name != "fast" {
		t.Fatalf("name = %q", p.Name)
	}
	if p.Vars["core"] != "c1ccccc1" {
		t.Fatalf("vars = %v", p.Vars)
	}
	if p.Conformers.MaxConformers != 10 || p.Conformers.OptSteps != 50 {
		t.Fatalf("params not applied: %+v", p.Conformers)
	}
	// Untouched fields keep their defaults.
	def := domain.DefaultConformerParams()
	if p.Conformers.RMSDCutoff != def.RMSDCutoff || p.Conformers.Seed != def.Seed {
		t.Fatalf("defaults lost: %+v", p.Conformers)
	}
}

func TestLoadProfile_ByPath(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "custom.yaml", "conformers:\n  seed: 7\n")

	prof, err := NewLoader(t.TempDir()).LoadProfile(p)
	if err != nil {
		t.Fatalf("LoadProfile error: %v", err)
	}
	if prof.Name != "custom" {
		t.Fatalf("name = %q, want filename fallback", prof.Name)
	}
	if prof.Conformers.Seed != 7 {
		t.Fatalf("seed = %d", prof.Conformers.Seed)
	}
}

func TestLoadProfile_LocalOverlayWins(t *testing.T) {
	root, dir := profilesRoot(t)
	writeFile(t, dir, "default.yaml", `
name: default
vars:
  sub: F
conformers:
  max_conformers: 100
  seed: 1
`)
	writeFile(t, dir, "local.yaml", `
vars:
  sub: Cl
conformers:
  seed: 42
`)

	p, err := NewLoader(root).LoadProfile("default")
	if err != nil {
		t.Fatalf("LoadProfile error: %v", err)
	}
	if p.Vars["sub"] != "Cl" {
		t.Fatalf("local vars did not override: %v", p.Vars)
	}
	if p.Conformers.Seed != 42 {
		t.Fatalf("local seed did not override: %+v", p.Conformers)
	}
	if p.Conformers.MaxConformers != 100 {
		t.Fatalf("profile value lost under overlay: %+v", p.Conformers)
	}
}

func TestLoadProfile_NotFound(t *testing.T) {
	root, _ := profilesRoot(t)
	if _, err := NewLoader(root).LoadProfile("nope"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestLoadProfile_InvalidParams(t *testing.T) {
	root, dir := profilesRoot(t)
	writeFile(t, dir, "bad.yaml", "conformers:\n  max_conformers: 0\n")

	if _, err := NewLoader(root).LoadProfile("bad"); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestListProfiles_SkipsLocalOverlay(t *testing.T) {
	root, dir := profilesRoot(t)
	writeFile(t, dir, "default.yaml", "name: default\n")
	writeFile(t, dir, "thorough.yaml", "name: thorough\n")
	writeFile(t, dir, "local.yaml", "vars: {}\n")

	refs, err := NewLoader(root).ListProfiles(root)
	if err != nil {
		t.Fatalf("ListProfiles error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d: %+v", len(refs), refs)
	}
	if refs[0].Name != "default" || refs[1].Name != "thorough" {
		t.Fatalf("unexpected refs: %+v", refs)
	}
}
