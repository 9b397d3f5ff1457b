package ports

import "github.com/iwatobipen/entry-cli/internal/domain"

// ArtifactStore persists run artifacts for reproducibility.
type ArtifactStore interface {
	SaveRun(run domain.RunResult) (id string, err error)
	LoadRun(id string) (domain.RunResult, error)
	ListRuns() ([]domain.RunRef, error)
}
