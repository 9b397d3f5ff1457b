package usecase

import (
	"context"
	"fmt"

	"github.com/iwatobipen/entry-cli/internal/domain"
	"github.com/iwatobipen/entry-cli/internal/ports"
)

// ValidateSet checks a set + profile pair without computing anything
// expensive: every {{var}} must resolve and every SMILES must parse.
type ValidateSet struct {
	sets      ports.SetLoader
	profiles  ports.ProfileLoader
	validator ports.StructureValidator
}

func NewValidateSet(sl ports.SetLoader, pl ports.ProfileLoader, sv ports.StructureValidator) *ValidateSet {
	return &ValidateSet{
		sets:      sl,
		profiles:  pl,
		validator: sv,
	}
}

func (uc *ValidateSet) Execute(ctx context.Context, setPath string, profilePath string) error {
	set, err := uc.sets.LoadSet(setPath)
	if err != nil {
		return err
	}

	profile, err := uc.profiles.LoadProfile(profilePath)
	if err != nil {
		return err
	}

	vars := domain.Merge(set.Vars, profile.Vars)

	for _, spec := range set.Molecules {
		if err := ctx.Err(); err != nil {
			return err
		}

		resolved, err := domain.ResolveMolecule(spec, vars)
		if err != nil {
			return fmt.Errorf("molecule %q: %w", spec.Name, err)
		}

		if err := uc.validator.Check(resolved.SMILES); err != nil {
			return fmt.Errorf("molecule %q: %w", spec.Name, err)
		}
	}

	return nil
}
