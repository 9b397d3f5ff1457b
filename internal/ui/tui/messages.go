package tui

import "github.com/iwatobipen/entry-cli/internal/domain"

type workspaceRefreshedMsg struct {
	cwd   string
	found bool
	root  string
	err   error
}

type initWorkspaceDoneMsg struct {
	root string
	err  error
}

type setsLoadedMsg struct {
	root string
	refs []domain.SetRef
	err  error
}

type profilesLoadedMsg struct {
	root string
	refs []domain.ProfileRef
	err  error
}

type setPreviewMsg struct {
	path    string
	preview string
	err     error
}

type runnerDoneMsg struct {
	run domain.RunResult
	id  string
	err error
}
