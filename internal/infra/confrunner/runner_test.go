package confrunner

import (
	"context"
	"math"
	"testing"

	"github.com/iwatobipen/entry-cli/internal/domain"
)

func fastParams() domain.ConformerParams {
	p := domain.DefaultConformerParams()
	p.MaxConformers = 5
	p.OptSteps = 50
	return p
}

func TestRun_ComputesProperties(t *testing.T) {
	r := New()
	res := r.Run(context.Background(), domain.MoleculeSpec{
		Name:   "ethanol",
		SMILES: "CCO",
		Tags:   []string{"solvent"},
	}, fastParams())

	if res.Error != nil {
		t.Fatalf("unexpected error: %+v", res.Error)
	}
	if res.Properties == nil {
		t.Fatal("no properties computed")
	}

	p := res.Properties
	if p.Formula != "C2H6O" {
		t.Errorf("formula = %q, want C2H6O", p.Formula)
	}
	if math.Abs(p.MolWeight-46.069) > 0.01 {
		t.Errorf("molwt = %v, want ~46.069", p.MolWeight)
	}
	// The C-C and C-O bonds are both terminal: one end has a single heavy
	// neighbor, so neither counts as a rotor.
	if p.RotatableBonds != 0 {
		t.Errorf("rb = %d, want 0", p.RotatableBonds)
	}
	if p.Conformers < 1 {
		t.Errorf("conformers = %d, want >= 1", p.Conformers)
	}
	if p.Glob <= 0 || p.Glob > 1 {
		t.Errorf("glob = %v, want in (0, 1]", p.Glob)
	}
	if p.PBF < 0 {
		t.Errorf("pbf = %v, want >= 0", p.PBF)
	}
	if len(res.Energies) != p.Conformers {
		t.Errorf("%d energies for %d conformers", len(res.Energies), p.Conformers)
	}
	if res.Name != "ethanol" || res.Tags[0] != "solvent" {
		t.Errorf("spec fields lost: %+v", res)
	}
}

func TestRun_MethaneNearSpherical(t *testing.T) {
	r := New()
	res := r.Run(context.Background(), domain.MoleculeSpec{
		Name:   "methane",
		SMILES: "C",
	}, domain.DefaultConformerParams())

	if res.Error != nil {
		t.Fatalf("unexpected error: %+v", res.Error)
	}
	p := res.Properties
	if p.Glob < 0.8 {
		t.Errorf("glob = %.4f, want near 1 for a tetrahedral molecule", p.Glob)
	}
	if p.PBF < 0.1 {
		t.Errorf("pbf = %.4f, want clearly nonplanar", p.PBF)
	}
}

func TestRun_BenzeneFlat(t *testing.T) {
	r := New()
	res := r.Run(context.Background(), domain.MoleculeSpec{
		Name:   "benzene",
		SMILES: "c1ccccc1",
	}, domain.DefaultConformerParams())

	if res.Error != nil {
		t.Fatalf("unexpected error: %+v", res.Error)
	}
	p := res.Properties
	if p.Glob > 0.1 {
		t.Errorf("glob = %.4f, want near 0 for a planar ring", p.Glob)
	}
	if p.PBF > 0.1 {
		t.Errorf("pbf = %.4f, want near 0 for a planar ring", p.PBF)
	}
}

func TestRun_ParseErrorIsTagged(t *testing.T) {
	r := New()
	res := r.Run(context.Background(), domain.MoleculeSpec{
		Name:   "broken",
		SMILES: "C1CC",
	}, fastParams())

	if res.Error == nil {
		t.Fatal("expected parse error")
	}
	if res.Error.Kind != domain.RunErrorParse {
		t.Fatalf("kind = %q, want parse", res.Error.Kind)
	}
	if res.Properties != nil {
		t.Fatal("properties computed for a broken structure")
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New()
	res := r.Run(ctx, domain.MoleculeSpec{Name: "m", SMILES: "CCCCCC"}, fastParams())
	if res.Error == nil || res.Error.Kind != domain.RunErrorCanceled {
		t.Fatalf("expected canceled error, got %+v", res.Error)
	}
}

func TestRun_DeterministicAcrossCalls(t *testing.T) {
	r := New()
	spec := domain.MoleculeSpec{Name: "m", SMILES: "CCOC"}

	a := r.Run(context.Background(), spec, fastParams())
	b := r.Run(context.Background(), spec, fastParams())
	if a.Error != nil || b.Error != nil {
		t.Fatalf("unexpected errors: %+v %+v", a.Error, b.Error)
	}
	if a.Properties.Glob != b.Properties.Glob || a.Properties.PBF != b.Properties.PBF {
		t.Fatalf("same seed produced different descriptors: %+v vs %+v", a.Properties, b.Properties)
	}
}

func TestCheck(t *testing.T) {
	r := New()
	if err := r.Check("c1ccccc1"); err != nil {
		t.Fatalf("valid SMILES rejected: %v", err)
	}
	if err := r.Check("C(C"); err == nil {
		t.Fatal("invalid SMILES accepted")
	}
}
