package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwatobipen/entry-cli/internal/domain"
	"github.com/iwatobipen/entry-cli/internal/infra/confrunner"
	"github.com/iwatobipen/entry-cli/internal/infra/runstore"
	"github.com/iwatobipen/entry-cli/internal/infra/workspacefinder"
	"github.com/iwatobipen/entry-cli/internal/infra/yamlprofile"
	"github.com/iwatobipen/entry-cli/internal/infra/yamlset"
	"github.com/iwatobipen/entry-cli/internal/ports"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config

	sets ports.SetLoader

	profiles       ports.ProfileLoader
	profileCatalog ports.ProfileCatalog

	runner    ports.MoleculeRunner
	validator ports.StructureValidator
	store     ports.ArtifactStore
}

func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	// A missing config file is fine: defaults come back with the error.
	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil && !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	setLoader := yamlset.NewLoader(
		yamlset.WithSetsDir(cfg.Paths.SetsDir),
	)

	profileLoader := yamlprofile.NewLoader(
		root,
		yamlprofile.WithProfilesDir(cfg.Paths.ProfilesDir),
	)

	runner := confrunner.New()
	store := runstore.NewJSONStore(root, cfg)

	return &workspaceCtx{
		root:           root,
		cfg:            cfg,
		sets:           setLoader,
		profiles:       profileLoader,
		profileCatalog: profileLoader,
		runner:         runner,
		validator:      runner,
		store:          store,
	}, nil
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	locator := workspacefinder.NewFinder()
	root, err := locator.FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `entry-cli init`): %w", wd, err)
	}
	return root, nil
}

func resolveSetPath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("set is required (use --set or -s)")
	}

	// If arg looks like a path (contains separators), resolve relative to workspace root.
	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	setsDir := filepath.Join(ws.root, ws.cfg.Paths.SetsDir)

	// If user provided "demo.yaml", treat it as file under the sets dir.
	if hasYAMLExt(in) {
		p := filepath.Join(setsDir, in)
		if fileExists(p) {
			return p, nil
		}
	}

	// If user provided "demo", try demo.yaml / demo.yml in the sets dir.
	p1 := filepath.Join(setsDir, in+".yaml")
	if fileExists(p1) {
		return p1, nil
	}
	p2 := filepath.Join(setsDir, in+".yml")
	if fileExists(p2) {
		return p2, nil
	}

	// As a last resort: match by the set's "name" field.
	refs, err := ws.sets.ListSets(ws.root)
	if err == nil {
		for _, r := range refs {
			if strings.EqualFold(r.Name, in) {
				return r.Path, nil
			}
		}
	}

	return "", fmt.Errorf("set %q not found in %q", in, setsDir)
}

func resolveProfileArg(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return ws.cfg.Defaults.Profile, nil
	}

	// If arg is a path, resolve relative to workspace root.
	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	// If user provided "fast.yaml", treat it as file under the profiles dir.
	if hasYAMLExt(in) {
		return filepath.Join(ws.root, ws.cfg.Paths.ProfilesDir, in), nil
	}

	// Otherwise, treat it as a profile name ("fast") and let the loader resolve it.
	return in, nil
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
