package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iwatobipen/entry-cli/internal/domain"
	"github.com/iwatobipen/entry-cli/internal/infra/confrunner"
	"github.com/iwatobipen/entry-cli/internal/infra/runstore"
	"github.com/iwatobipen/entry-cli/internal/infra/workspacefinder"
	"github.com/iwatobipen/entry-cli/internal/infra/yamlprofile"
	"github.com/iwatobipen/entry-cli/internal/infra/yamlset"
	"github.com/iwatobipen/entry-cli/internal/usecase"
)

func cmdRefreshWorkspace(deps Deps) tea.Cmd {
	return func() tea.Msg {
		wd, err := os.Getwd()
		if err != nil {
			return workspaceRefreshedMsg{cwd: "", found: false, err: fmt.Errorf("getwd: %w", err)}
		}
		if deps.WorkspaceLocator == nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: errors.New("WorkspaceLocator is nil")}
		}

		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr != nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: findErr}
		}

		return workspaceRefreshedMsg{cwd: wd, found: true, root: root, err: nil}
	}
}

func cmdInitWorkspaceHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.WorkspaceInitializer == nil {
			return initWorkspaceDoneMsg{root: root, err: errors.New("WorkspaceInitializer is nil")}
		}

		err := deps.WorkspaceInitializer.Init(domain.WorkspaceSpec{Root: root}, true)
		return initWorkspaceDoneMsg{root: root, err: err}
	}
}

func cmdLoadSets(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil && !domain.IsKind(err, domain.KindNotFound) {
			return setsLoadedMsg{root: root, err: err}
		}

		loader := yamlset.NewLoader(
			yamlset.WithSetsDir(cfg.Paths.SetsDir),
		)

		refs, err := loader.ListSets(root)
		return setsLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdLoadProfiles(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil && !domain.IsKind(err, domain.KindNotFound) {
			return profilesLoadedMsg{root: root, err: err}
		}

		loader := yamlprofile.NewLoader(
			root,
			yamlprofile.WithProfilesDir(cfg.Paths.ProfilesDir),
		)

		refs, err := loader.ListProfiles(root)
		return profilesLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdPreviewSet(path string) tea.Cmd {
	return func() tea.Msg {
		p := filepath.Clean(path)

		loader := yamlset.NewLoader()
		set, err := loader.LoadSet(p)
		if err != nil {
			return setPreviewMsg{path: p, preview: "", err: err}
		}

		var b strings.Builder
		b.WriteString("Set: ")
		b.WriteString(set.Name)
		b.WriteString("\n\n")

		if len(set.Vars) > 0 {
			b.WriteString("Vars:\n")
			for k, v := range set.Vars {
				b.WriteString("  - ")
				b.WriteString(k)
				b.WriteString(" = ")
				b.WriteString(v)
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}

		b.WriteString("Molecules:\n")
		for _, m := range set.Molecules {
			b.WriteString("  - ")
			b.WriteString(m.Name)
			b.WriteString("\n    ")
			b.WriteString(m.SMILES)
			b.WriteString("\n")
		}

		return setPreviewMsg{path: p, preview: b.String(), err: nil}
	}
}

func listenRunner(ch <-chan runnerDoneMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return runnerDoneMsg{err: errors.New("runner channel closed")}
		}
		return msg
	}
}

func startRunAsync(
	workspaceRoot, setPath, profileName string,
	log *slog.Logger,
	debug bool,
) tea.Cmd {
	ch := make(chan runnerDoneMsg, 1)

	if log == nil {
		log = slog.Default()
	}

	go func() {
		defer close(ch)

		log.Info("run.start",
			"workspace", workspaceRoot,
			"set_path", setPath,
			"profile", profileName,
			"debug", debug,
		)

		cfg, err := workspacefinder.LoadConfig(workspaceRoot)
		if err != nil && !domain.IsKind(err, domain.KindNotFound) {
			log.Error("run.load_config.failed", "err", err)
			ch <- runnerDoneMsg{err: err}
			return
		}

		setLoader := yamlset.NewLoader(
			yamlset.WithSetsDir(cfg.Paths.SetsDir),
		)
		profileLoader := yamlprofile.NewLoader(
			workspaceRoot,
			yamlprofile.WithProfilesDir(cfg.Paths.ProfilesDir),
		)

		runner := confrunner.New()
		store := runstore.NewJSONStore(workspaceRoot, cfg)

		uc := usecase.NewRunSet(setLoader, profileLoader, runner,
			usecase.WithArtifactStore(store),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		run, id, execErr := uc.Execute(ctx, setPath, profileName)

		if execErr != nil {
			log.Error("run.failed", "err", execErr, "saved_id", id)
		} else {
			log.Info("run.ok", "saved_id", id)
		}

		for _, rr := range run.Results {
			if rr.Error != nil {
				log.Warn("molecule.error",
					"name", rr.Name,
					"smiles", rr.SMILES,
					"kind", string(rr.Error.Kind),
					"message", rr.Error.Message,
					"elapsed_ms", rr.ElapsedMS,
				)
			} else if debug && rr.Properties != nil {
				log.Debug("molecule.ok",
					"name", rr.Name,
					"smiles", rr.SMILES,
					"molwt", rr.Properties.MolWeight,
					"glob", rr.Properties.Glob,
					"pbf", rr.Properties.PBF,
					"conformers", rr.Properties.Conformers,
					"elapsed_ms", rr.ElapsedMS,
				)
			}
		}

		ch <- runnerDoneMsg{run: run, id: id, err: execErr}
	}()

	return listenRunner(ch)
}
