package ports

import "github.com/iwatobipen/entry-cli/internal/domain"

// SetLoader loads molecule sets from a source (e.g., filesystem).
type SetLoader interface {
	LoadSet(path string) (domain.Set, error)
	ListSets(root string) ([]domain.SetRef, error)
}
