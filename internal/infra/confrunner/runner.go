// Package confrunner computes conformer-averaged properties for a single
// molecule: parse the SMILES, fill hydrogens, build an ensemble and average
// the shape descriptors over it.
package confrunner

import (
	"context"
	"errors"
	"time"

	"github.com/iwatobipen/entry-cli/internal/chem/conformer"
	"github.com/iwatobipen/entry-cli/internal/chem/descriptor"
	"github.com/iwatobipen/entry-cli/internal/chem/geom"
	"github.com/iwatobipen/entry-cli/internal/chem/smiles"
	"github.com/iwatobipen/entry-cli/internal/domain"
	"github.com/iwatobipen/entry-cli/internal/ports"
)

type Runner struct{}

func New() *Runner {
	return &Runner{}
}

var (
	_ ports.MoleculeRunner     = (*Runner)(nil)
	_ ports.StructureValidator = (*Runner)(nil)
)

// Run computes the property block for one resolved molecule. Failures come
// back inside the result, tagged with the stage that produced them.
func (r *Runner) Run(ctx context.Context, spec domain.MoleculeSpec, params domain.ConformerParams) domain.MoleculeResult {
	start := time.Now()
	result := domain.MoleculeResult{
		Name:       spec.Name,
		SMILES:     spec.SMILES,
		Tags:       spec.Tags,
		Assertions: []domain.AssertionResult{},
	}

	m, err := smiles.Parse(spec.SMILES)
	if err != nil {
		result.Error = domain.NewRunError(domain.RunErrorParse, err)
		result.ElapsedMS = time.Since(start).Milliseconds()
		return result
	}

	// Topological properties need no geometry.
	props := domain.Properties{
		Formula:        m.Formula(),
		MolWeight:      m.Weight(),
		RotatableBonds: m.RotatableBonds(),
	}

	full := m.ExplicitHydrogens()
	ens, err := conformer.Generate(ctx, full, conformer.Params{
		RMSDCutoff:    params.RMSDCutoff,
		EnergyWindow:  params.EnergyWindow,
		MaxConformers: params.MaxConformers,
		OptSteps:      params.OptSteps,
		Seed:          params.Seed,
	})
	if err != nil {
		kind := domain.ClassifyRunError(err)
		if kind == domain.RunErrorUnknown {
			kind = domain.RunErrorConformers
			if errors.Is(err, geom.ErrEmbed) {
				kind = domain.RunErrorEmbed
			}
		}
		result.Error = domain.NewRunError(kind, err)
		result.ElapsedMS = time.Since(start).Milliseconds()
		return result
	}

	props.Glob = descriptor.Mean(ens.Coords, descriptor.Glob)
	props.PBF = descriptor.Mean(ens.Coords, descriptor.PBF)
	props.Conformers = ens.Len()

	result.Properties = &props
	result.Energies = ens.Energies
	result.ElapsedMS = time.Since(start).Milliseconds()
	return result
}

// Check parses the SMILES and discards the molecule.
func (r *Runner) Check(s string) error {
	_, err := smiles.Parse(s)
	return err
}
