package ports

import "github.com/iwatobipen/entry-cli/internal/domain"

// ProfileLoader loads run profiles from a source (e.g., filesystem).
type ProfileLoader interface {
	LoadProfile(path string) (domain.Profile, error)
}
