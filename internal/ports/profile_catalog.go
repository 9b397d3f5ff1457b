package ports

import "github.com/iwatobipen/entry-cli/internal/domain"

type ProfileCatalog interface {
	ListProfiles(root string) ([]domain.ProfileRef, error)
}
