package conformer

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/iwatobipen/entry-cli/internal/chem/smiles"
)

func testParams() Params {
	return Params{
		RMSDCutoff:    0.5,
		EnergyWindow:  50,
		MaxConformers: 256,
		OptSteps:      150,
		Seed:          1,
	}
}

func generate(t *testing.T, s string, p Params) Ensemble {
	t.Helper()
	m, err := smiles.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	ens, err := Generate(context.Background(), m.ExplicitHydrogens(), p)
	if err != nil {
		t.Fatalf("Generate(%q): %v", s, err)
	}
	return ens
}

func TestGenerateRigidMolecule(t *testing.T) {
	ens := generate(t, "CC", testParams())
	if ens.Len() != 1 {
		t.Fatalf("ethane: %d conformers, want 1", ens.Len())
	}
	if len(ens.Energies) != 1 {
		t.Fatalf("energies length %d, want 1", len(ens.Energies))
	}
}

func TestGenerateFlexibleMolecule(t *testing.T) {
	p := testParams()
	ens := generate(t, "CCCC", p)
	if ens.Len() < 1 || ens.Len() > 3 {
		t.Fatalf("butane: %d conformers, want 1..3", ens.Len())
	}

	for i := 1; i < ens.Len(); i++ {
		if ens.Energies[i] < ens.Energies[i-1] {
			t.Fatalf("energies not ascending: %v", ens.Energies)
		}
	}

	// Kept conformers must stay apart by at least the cutoff.
	m, err := smiles.Parse("CCCC")
	if err != nil {
		t.Fatal(err)
	}
	full := m.ExplicitHydrogens()
	heavy := heavyIndices(full)
	for i := 0; i < ens.Len(); i++ {
		for j := i + 1; j < ens.Len(); j++ {
			d := RMSD(pick(ens.Coords[i], heavy), pick(ens.Coords[j], heavy))
			if d < p.RMSDCutoff {
				t.Errorf("conformers %d,%d: rmsd %.3f below cutoff %.1f", i, j, d, p.RMSDCutoff)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := testParams()
	a := generate(t, "CCOCC", p)
	b := generate(t, "CCOCC", p)
	if a.Len() != b.Len() {
		t.Fatalf("ensemble sizes differ: %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Energies {
		if a.Energies[i] != b.Energies[i] {
			t.Fatalf("energy %d differs for the same seed: %v vs %v", i, a.Energies[i], b.Energies[i])
		}
	}
}

func TestGenerateCap(t *testing.T) {
	p := testParams()
	p.MaxConformers = 2
	ens := generate(t, "CCCCCC", p)
	if ens.Len() > 2 {
		t.Fatalf("hexane: %d conformers, cap is 2", ens.Len())
	}
}

func TestGenerateCanceled(t *testing.T) {
	m, err := smiles.Parse("CCCCCC")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Generate(ctx, m.ExplicitHydrogens(), testParams()); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestRMSDIdentical(t *testing.T) {
	p := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
	if d := RMSD(p, p); d > 1e-9 {
		t.Fatalf("RMSD of identical sets = %v, want 0", d)
	}
}

func TestRMSDInvariantToRigidMotion(t *testing.T) {
	p := []r3.Vec{{}, {X: 1.5}, {Y: 1.2}, {X: 0.4, Z: 0.9}}

	// Rotate 90 degrees about z and translate.
	shift := r3.Vec{X: 3, Y: -2, Z: 5}
	q := make([]r3.Vec, len(p))
	for i, v := range p {
		q[i] = r3.Add(r3.Vec{X: -v.Y, Y: v.X, Z: v.Z}, shift)
	}

	if d := RMSD(p, q); d > 1e-6 {
		t.Fatalf("RMSD after rigid motion = %v, want ~0", d)
	}
}

func TestRMSDDetectsDifference(t *testing.T) {
	p := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
	q := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 3}}
	if d := RMSD(p, q); d < 0.1 {
		t.Fatalf("RMSD of distinct sets = %v, want > 0.1", d)
	}
	if d := RMSD(p, q[:3]); !math.IsNaN(d) {
		t.Fatalf("RMSD of mismatched sizes = %v, want NaN", d)
	}
}
