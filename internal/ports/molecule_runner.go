package ports

import (
	"context"

	"github.com/iwatobipen/entry-cli/internal/domain"
)

// MoleculeRunner computes the properties of a single resolved molecule.
// Failures land in the result's Error field rather than in a returned error
// so one bad molecule never aborts a whole set.
type MoleculeRunner interface {
	Run(ctx context.Context, spec domain.MoleculeSpec, params domain.ConformerParams) domain.MoleculeResult
}
