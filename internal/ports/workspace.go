package ports

import "github.com/iwatobipen/entry-cli/internal/domain"

type WorkspaceInitializer interface {
	Init(spec domain.WorkspaceSpec, force bool) error
}
