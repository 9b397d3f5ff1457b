package domain

// Bound is an optional closed interval over a numeric property.
// Nil edges are unconstrained.
type Bound struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// PropertyAssertionsSpec declares acceptance windows for computed properties.
// Only non-nil bounds are evaluated.
type PropertyAssertionsSpec struct {
	MolWeight      *Bound `json:"molwt,omitempty"`
	RotatableBonds *Bound `json:"rb,omitempty"`
	Glob           *Bound `json:"glob,omitempty"`
	PBF            *Bound `json:"pbf,omitempty"`
}

// MoleculeSpec describes a single molecule entry and its acceptance rules.
// SMILES and tags may contain {{var}} placeholders resolved at run time.
type MoleculeSpec struct {
	Name   string
	SMILES string
	Tags   []string

	Assert PropertyAssertionsSpec
}

// Set groups molecules under one logical unit (Git-friendly).
type Set struct {
	Name string

	// Vars are default fragment/abbreviation variables available to all
	// molecules in the set. Profile vars override these.
	Vars Vars

	Molecules []MoleculeSpec
}

// SetRef is a lightweight reference to a set file on disk.
type SetRef struct {
	Name string
	Path string
}
