package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/iwatobipen/entry-cli/internal/domain"
	"github.com/iwatobipen/entry-cli/internal/ports"
	ucassert "github.com/iwatobipen/entry-cli/internal/usecase/assert"
)

// DefaultParallelism bounds concurrent molecules when no override is given.
const DefaultParallelism = 4

// RunSet computes properties for every molecule of a set under a profile.
type RunSet struct {
	sets     ports.SetLoader
	profiles ports.ProfileLoader
	runner   ports.MoleculeRunner
	store    ports.ArtifactStore
	parallel int
}

type RunSetOption func(*RunSet)

// WithArtifactStore persists each finished run and returns its id.
func WithArtifactStore(s ports.ArtifactStore) RunSetOption {
	return func(uc *RunSet) { uc.store = s }
}

// WithParallelism bounds the number of molecules computed at once,
// clamped to at least one.
func WithParallelism(n int) RunSetOption {
	return func(uc *RunSet) {
		if n < 1 {
			n = 1
		}
		uc.parallel = n
	}
}

func NewRunSet(sl ports.SetLoader, pl ports.ProfileLoader, r ports.MoleculeRunner, opts ...RunSetOption) *RunSet {
	uc := &RunSet{
		sets:     sl,
		profiles: pl,
		runner:   r,
		parallel: DefaultParallelism,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute loads the set and profile, resolves variables, runs every molecule
// and evaluates its assertions. Results keep the set's ordering regardless
// of parallelism. The returned id is empty when no store is configured.
func (uc *RunSet) Execute(ctx context.Context, setPath string, profilePath string) (domain.RunResult, string, error) {
	set, err := uc.sets.LoadSet(setPath)
	if err != nil {
		return domain.RunResult{}, "", err
	}

	profile, err := uc.profiles.LoadProfile(profilePath)
	if err != nil {
		return domain.RunResult{}, "", err
	}

	// set vars < profile vars
	vars := domain.Merge(set.Vars, profile.Vars)

	run := domain.RunResult{
		SetName:     set.Name,
		SetPath:     setPath,
		ProfileName: profile.Name,
		StartedAt:   time.Now(),
		Results:     make([]domain.MoleculeResult, len(set.Molecules)),
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < uc.parallel; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				run.Results[i] = uc.runOne(ctx, set.Molecules[i], vars, profile.Conformers)
			}
		}()
	}
	for i := range set.Molecules {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	run.EndedAt = time.Now()

	var id string
	if uc.store != nil {
		id, err = uc.store.SaveRun(run)
		if err != nil {
			return run, "", err
		}
	}
	return run, id, nil
}

func (uc *RunSet) runOne(ctx context.Context, spec domain.MoleculeSpec, vars domain.Vars, params domain.ConformerParams) domain.MoleculeResult {
	if err := ctx.Err(); err != nil {
		return domain.MoleculeResult{
			Name:       spec.Name,
			SMILES:     spec.SMILES,
			Tags:       spec.Tags,
			Assertions: []domain.AssertionResult{},
			Error:      domain.NewRunError(domain.RunErrorCanceled, err),
		}
	}

	resolved, err := domain.ResolveMolecule(spec, vars)
	if err != nil {
		// Config-level failure: mark the molecule, keep the set going.
		return domain.MoleculeResult{
			Name:       spec.Name,
			SMILES:     spec.SMILES,
			Tags:       spec.Tags,
			Assertions: []domain.AssertionResult{},
			Error:      domain.NewRunError("", err),
		}
	}

	res := uc.runner.Run(ctx, resolved, params)

	// Assertions are always evaluated; missing properties fail the
	// declared bounds instead of silently passing.
	res.Assertions = ucassert.Evaluate(resolved.Assert, res.Properties)
	if res.Assertions == nil {
		res.Assertions = []domain.AssertionResult{}
	}
	return res
}
