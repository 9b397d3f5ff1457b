package domain

// ConformerParams controls the diverse conformer search.
type ConformerParams struct {
	// RMSDCutoff is the heavy-atom RMSD (Å) below which two conformers are
	// considered duplicates.
	RMSDCutoff float64

	// EnergyWindow is the maximum energy (arbitrary force-field units)
	// above the ensemble minimum a conformer may have and still be kept.
	EnergyWindow float64

	// MaxConformers caps the ensemble size.
	MaxConformers int

	// OptSteps is the number of relaxation steps per candidate geometry.
	OptSteps int

	// Seed makes embedding and torsion sampling deterministic.
	Seed int64
}

// DefaultConformerParams mirrors the classic confab defaults, with the
// ensemble cap lowered to something sane for a workbench run.
func DefaultConformerParams() ConformerParams {
	return ConformerParams{
		RMSDCutoff:    0.5,
		EnergyWindow:  50.0,
		MaxConformers: 256,
		OptSteps:      200,
		Seed:          1,
	}
}

// Profile defines a named parameter context for runs (fast/thorough/...).
type Profile struct {
	Name       string
	Vars       Vars
	Conformers ConformerParams
}

// ProfileRef is a lightweight reference to a profile file on disk.
type ProfileRef struct {
	Name string
	Path string
}
