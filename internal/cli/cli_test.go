package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwatobipen/entry-cli/internal/domain"
	"github.com/iwatobipen/entry-cli/internal/infra/yamlset"
)

// --- looksLikePath ---

func TestLooksLikePath(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"demo", false},
		{"demo.yaml", false},
		{"./demo.yaml", true},
		{"sets/demo.yaml", true},
		{"/abs/path/demo.yaml", true},
	}
	for _, c := range cases {
		if got := looksLikePath(c.input); got != c.want {
			t.Errorf("looksLikePath(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- hasYAMLExt ---

func TestHasYAMLExt(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"demo.yaml", true},
		{"demo.yml", true},
		{"DEMO.YAML", true},
		{"demo.json", false},
		{"demo", false},
		{"", false},
	}
	for _, c := range cases {
		if got := hasYAMLExt(c.input); got != c.want {
			t.Errorf("hasYAMLExt(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- fileExists ---

func TestFileExists_True(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "exists.txt")
	if err := os.WriteFile(p, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !fileExists(p) {
		t.Errorf("expected fileExists=true for %s", p)
	}
}

func TestFileExists_False(t *testing.T) {
	tmp := t.TempDir()
	if fileExists(filepath.Join(tmp, "not_there.txt")) {
		t.Error("expected fileExists=false for non-existent file")
	}
}

// --- countFailures ---

func TestCountFailures_Empty(t *testing.T) {
	if n := countFailures(domain.RunResult{}); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}

func TestCountFailures_SomeFail(t *testing.T) {
	run := domain.RunResult{
		Results: []domain.MoleculeResult{
			{Assertions: []domain.AssertionResult{{Passed: true}}},
			{Assertions: []domain.AssertionResult{{Passed: false}}},
			{Error: &domain.RunError{Kind: domain.RunErrorParse}},
		},
	}
	if n := countFailures(run); n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}

// --- countAssertionPassFail ---

func TestCountAssertionPassFail_Mixed(t *testing.T) {
	in := []domain.AssertionResult{
		{Passed: true},
		{Passed: false},
		{Passed: true},
	}
	pass, fail := countAssertionPassFail(in)
	if pass != 2 || fail != 1 {
		t.Errorf("expected pass=2 fail=1, got pass=%d fail=%d", pass, fail)
	}
}

func TestCountAssertionPassFail_Empty(t *testing.T) {
	pass, fail := countAssertionPassFail(nil)
	if pass != 0 || fail != 0 {
		t.Errorf("expected 0/0, got %d/%d", pass, fail)
	}
}

// --- formatEnergies ---

func TestFormatEnergies_Truncates(t *testing.T) {
	out := formatEnergies([]float64{1, 2, 3, 4}, 2)
	if !strings.Contains(out, "+2 more") {
		t.Errorf("expected truncation marker, got %q", out)
	}
}

func TestFormatEnergies_Short(t *testing.T) {
	out := formatEnergies([]float64{1.5}, 5)
	if out != "1.500" {
		t.Errorf("expected %q, got %q", "1.500", out)
	}
}

// --- printRun ---

func TestPrintRun_JSON_ValidOutput(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	run := domain.RunResult{
		SetName:     "leads",
		ProfileName: "default",
		StartedAt:   now,
		EndedAt:     now.Add(100 * time.Millisecond),
	}
	var buf bytes.Buffer
	if err := printRun(&buf, run, "abc123", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if payload["run_id"] != "abc123" {
		t.Errorf("expected run_id=abc123, got %v", payload["run_id"])
	}
	if payload["run"] == nil {
		t.Error("expected 'run' key in JSON output")
	}
}

func TestPrintRun_Pretty_ContainsSetName(t *testing.T) {
	run := domain.RunResult{
		SetName:     "leads",
		ProfileName: "default",
		StartedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndedAt:     time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC),
	}
	var buf bytes.Buffer
	if err := printRun(&buf, run, "run-42", "pretty"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "leads") {
		t.Errorf("expected set name in pretty output, got:\n%s", out)
	}
	if !strings.Contains(out, "run-42") {
		t.Errorf("expected run ID in pretty output, got:\n%s", out)
	}
}

func TestPrintRun_EmptyFormat_IsPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := printRun(&buf, domain.RunResult{}, "", ""); err != nil {
		t.Fatalf("empty format should behave like pretty, got error: %v", err)
	}
}

func TestPrintRun_UnknownFormat_ReturnsError(t *testing.T) {
	var buf bytes.Buffer
	err := printRun(&buf, domain.RunResult{}, "", "xml")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "xml") {
		t.Errorf("expected error to mention format, got: %v", err)
	}
}

func TestPrintPrettyRun_WithResults(t *testing.T) {
	run := domain.RunResult{
		SetName:     "leads",
		ProfileName: "fast",
		Results: []domain.MoleculeResult{
			{
				Name:      "aspirin",
				SMILES:    "CC(=O)Oc1ccccc1C(=O)O",
				ElapsedMS: 42,
				Properties: &domain.Properties{
					Formula:        "C9H8O4",
					MolWeight:      180.159,
					RotatableBonds: 3,
					Glob:           0.21,
					PBF:            0.55,
					Conformers:     12,
				},
				Energies: []float64{1.2, 1.9},
				Assertions: []domain.AssertionResult{
					{Name: "molwt.max", Passed: true, Message: "180.159 <= 500"},
					{Name: "glob.min", Passed: false, Message: "0.21 < 0.3"},
				},
			},
		},
	}
	var buf bytes.Buffer
	printPrettyRun(&buf, run, "")
	out := buf.String()

	if !strings.Contains(out, "aspirin") {
		t.Errorf("expected molecule name in output, got:\n%s", out)
	}
	if !strings.Contains(out, "C9H8O4") {
		t.Errorf("expected formula in output, got:\n%s", out)
	}
	if !strings.Contains(out, "1 pass / 1 fail") {
		t.Errorf("expected assertion pass/fail count, got:\n%s", out)
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("expected FAIL status for failing molecule, got:\n%s", out)
	}
}

func TestPrintPrettyRun_MoleculeWithError(t *testing.T) {
	run := domain.RunResult{
		Results: []domain.MoleculeResult{
			{
				Name:  "broken",
				Error: &domain.RunError{Kind: domain.RunErrorParse, Message: "unexpected token"},
			},
		},
	}
	var buf bytes.Buffer
	printPrettyRun(&buf, run, "")
	out := buf.String()

	if !strings.Contains(out, "unexpected token") {
		t.Errorf("expected error message in output, got:\n%s", out)
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("expected FAIL status for errored molecule, got:\n%s", out)
	}
}

// --- command structure ---

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Use] = true
	}
	for _, expected := range []string{"run", "validate", "version", "init [dir]", "sets", "profiles", "export"} {
		if !names[expected] {
			t.Errorf("expected subcommand %q to be registered", expected)
		}
	}
}

func TestRunCmd_Flags(t *testing.T) {
	cmd := runCmd()
	if cmd.Use != "run" {
		t.Errorf("expected Use=run, got %q", cmd.Use)
	}
	for _, flag := range []string{"set", "profile", "workspace", "parallel", "no-save", "format"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on run command", flag)
		}
	}
	if got := cmd.Flags().Lookup("parallel").DefValue; got != "4" {
		t.Errorf("--parallel default = %s, want 4", got)
	}
}

func TestValidateCmd_Flags(t *testing.T) {
	cmd := validateCmd()
	for _, flag := range []string{"set", "profile", "workspace"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on validate command", flag)
		}
	}
}

func TestExportCmd_Flags(t *testing.T) {
	cmd := exportCmd()
	for _, flag := range []string{"run", "select", "format", "output", "workspace"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on export command", flag)
		}
	}
}

func TestSetsCmd_HasListSubcommand(t *testing.T) {
	cmd := setsCmd()
	found := false
	for _, sub := range cmd.Commands() {
		if sub.Use == "list" {
			found = true
		}
	}
	if !found {
		t.Error("expected 'list' subcommand under sets")
	}
}

func TestProfilesCmd_HasListSubcommand(t *testing.T) {
	cmd := profilesCmd()
	found := false
	for _, sub := range cmd.Commands() {
		if sub.Use == "list" {
			found = true
		}
	}
	if !found {
		t.Error("expected 'list' subcommand under profiles")
	}
}

func TestInitCmd_Flags(t *testing.T) {
	cmd := initCmd()
	if cmd.Flags().Lookup("force") == nil {
		t.Error("expected --force flag on init command")
	}
}

// --- resolveWorkspaceRoot ---

func TestResolveWorkspaceRoot_ExplicitPath(t *testing.T) {
	tmp := t.TempDir()
	got, err := resolveWorkspaceRoot(tmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != tmp {
		t.Errorf("expected %q, got %q", tmp, got)
	}
}

func TestResolveWorkspaceRoot_RelativePath(t *testing.T) {
	got, err := resolveWorkspaceRoot(".")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
}

// --- resolveSetPath / resolveProfileArg ---

func testWorkspace(t *testing.T) *workspaceCtx {
	t.Helper()
	tmp := t.TempDir()

	setsDir := filepath.Join(tmp, "sets")
	if err := os.MkdirAll(setsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	set := "name: leads\nmolecules:\n  - name: benzene\n    smiles: c1ccccc1\n"
	if err := os.WriteFile(filepath.Join(setsDir, "leads.yaml"), []byte(set), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := domain.DefaultConfig()
	return &workspaceCtx{
		root: tmp,
		cfg:  cfg,
		sets: yamlset.NewLoader(yamlset.WithSetsDir(cfg.Paths.SetsDir)),
	}
}

func TestResolveSetPath_ByName(t *testing.T) {
	ws := testWorkspace(t)
	got, err := resolveSetPath(ws, "leads")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(ws.root, "sets", "leads.yaml")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestResolveSetPath_ByFilename(t *testing.T) {
	ws := testWorkspace(t)
	got, err := resolveSetPath(ws, "leads.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(ws.root, "sets", "leads.yaml")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestResolveSetPath_RelativePath(t *testing.T) {
	ws := testWorkspace(t)
	got, err := resolveSetPath(ws, "sets/leads.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(ws.root, "sets", "leads.yaml")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestResolveSetPath_NotFound(t *testing.T) {
	ws := testWorkspace(t)
	if _, err := resolveSetPath(ws, "missing"); err == nil {
		t.Fatal("expected error for unknown set")
	}
}

func TestResolveSetPath_Empty(t *testing.T) {
	ws := testWorkspace(t)
	if _, err := resolveSetPath(ws, "  "); err == nil {
		t.Fatal("expected error for empty set argument")
	}
}

func TestResolveProfileArg_DefaultsToConfig(t *testing.T) {
	ws := testWorkspace(t)
	got, err := resolveProfileArg(ws, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ws.cfg.Defaults.Profile {
		t.Errorf("expected default profile %q, got %q", ws.cfg.Defaults.Profile, got)
	}
}

func TestResolveProfileArg_NamePassesThrough(t *testing.T) {
	ws := testWorkspace(t)
	got, err := resolveProfileArg(ws, "fast")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fast" {
		t.Errorf("expected %q, got %q", "fast", got)
	}
}

func TestResolveProfileArg_FilenameResolvesUnderProfilesDir(t *testing.T) {
	ws := testWorkspace(t)
	got, err := resolveProfileArg(ws, "fast.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(ws.root, ws.cfg.Paths.ProfilesDir, "fast.yaml")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
