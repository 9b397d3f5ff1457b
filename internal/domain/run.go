package domain

import (
	"context"
	"errors"
	"time"
)

// RunErrorKind is a high-level classification of per-molecule failures.
type RunErrorKind string

const (
	RunErrorUnknown    RunErrorKind = "unknown"
	RunErrorParse      RunErrorKind = "parse"
	RunErrorEmbed      RunErrorKind = "embed"
	RunErrorConformers RunErrorKind = "conformers"
	RunErrorCanceled   RunErrorKind = "canceled"
)

// RunError represents a structured error produced by a runner.
type RunError struct {
	Kind    RunErrorKind `json:"kind"`
	Message string       `json:"message"`
}

// NewRunError wraps err with an explicit kind.
func NewRunError(kind RunErrorKind, err error) *RunError {
	if err == nil {
		return nil
	}
	if kind == "" {
		kind = ClassifyRunError(err)
	}
	return &RunError{Kind: kind, Message: err.Error()}
}

// ClassifyRunError recognizes the error shapes the domain can name without
// depending on the chemistry packages. Runners set stage-specific kinds.
func ClassifyRunError(err error) RunErrorKind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return RunErrorCanceled
	}
	return RunErrorUnknown
}

// AssertionResult is the output of a single property assertion.
type AssertionResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// Properties is the conformer-averaged property block for one molecule.
type Properties struct {
	// Formula is the molecular formula in Hill order.
	Formula string `json:"formula"`

	// MolWeight is the molecular weight in g/mol.
	MolWeight float64 `json:"molwt"`

	// RotatableBonds counts non-terminal heavy-atom single bonds,
	// rings and amides excluded.
	RotatableBonds int `json:"rb"`

	// Glob is the globularity: smallest/largest eigenvalue of the atomic
	// coordinate covariance matrix, averaged over the ensemble. -1 when
	// the geometry is degenerate.
	Glob float64 `json:"glob"`

	// PBF is the plane-of-best-fit score in Å, averaged over the ensemble.
	PBF float64 `json:"pbf"`

	// Conformers is the size of the ensemble the averages were taken over.
	Conformers int `json:"conformers"`
}

// MoleculeResult is the outcome for a single molecule entry.
type MoleculeResult struct {
	Name   string   `json:"name"`
	SMILES string   `json:"smiles"`
	Tags   []string `json:"tags,omitempty"`

	Properties *Properties `json:"properties,omitempty"`

	// Energies holds the per-conformer force-field energies of the kept
	// ensemble, minimum first.
	Energies []float64 `json:"energies,omitempty"`

	Assertions []AssertionResult `json:"assertions"`

	ElapsedMS int64     `json:"elapsed_ms"`
	Error     *RunError `json:"error,omitempty"`
}

// Failed reports whether the molecule errored or missed an assertion.
func (r MoleculeResult) Failed() bool {
	if r.Error != nil {
		return true
	}
	for _, a := range r.Assertions {
		if !a.Passed {
			return true
		}
	}
	return false
}

// RunResult represents the result of executing a whole set.
type RunResult struct {
	SetName     string `json:"set"`
	SetPath     string `json:"set_path"`
	ProfileName string `json:"profile"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	Results []MoleculeResult `json:"results"`
}

// RunRef is a lightweight reference to a persisted run artifact.
type RunRef struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	SetName     string    `json:"set"`
	ProfileName string    `json:"profile"`
	StartedAt   time.Time `json:"started_at"`
}
