package smiles

import (
	"errors"
	"testing"
)

func TestParse_Ethanol(t *testing.T) {
	m, err := Parse("CCO")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if m.NumAtoms() != 3 || m.NumBonds() != 2 {
		t.Fatalf("expected 3 atoms / 2 bonds, got %d/%d", m.NumAtoms(), m.NumBonds())
	}

	wantH := []int{3, 2, 1}
	for i, want := range wantH {
		if got := m.Atom(i).ImplicitH; got != want {
			t.Errorf("atom %d: implicit H = %d, want %d", i, got, want)
		}
	}
}

func TestParse_Benzene(t *testing.T) {
	m, err := Parse("c1ccccc1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if m.NumAtoms() != 6 || m.NumBonds() != 6 {
		t.Fatalf("expected 6 atoms / 6 bonds, got %d/%d", m.NumAtoms(), m.NumBonds())
	}
	for i := 0; i < 6; i++ {
		a := m.Atom(i)
		if !a.Aromatic {
			t.Errorf("atom %d not aromatic", i)
		}
		if a.ImplicitH != 1 {
			t.Errorf("atom %d: implicit H = %d, want 1", i, a.ImplicitH)
		}
	}
	for i := 0; i < 6; i++ {
		if !m.Bond(i).Aromatic {
			t.Errorf("bond %d not aromatic", i)
		}
	}
}

func TestParse_Pyridine(t *testing.T) {
	m, err := Parse("c1ccncc1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := m.Formula(); got != "C5H5N" {
		t.Fatalf("formula = %q, want C5H5N", got)
	}
}

func TestParse_Toluene(t *testing.T) {
	m, err := Parse("Cc1ccccc1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := m.Formula(); got != "C7H8" {
		t.Fatalf("formula = %q, want C7H8", got)
	}
}

func TestParse_BranchesAndDoubleBond(t *testing.T) {
	// Acetamide.
	m, err := Parse("CC(=O)N")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := m.Formula(); got != "C2H5NO" {
		t.Fatalf("formula = %q, want C2H5NO", got)
	}

	b, ok := m.BondBetween(1, 2)
	if !ok || b.Order != 2 {
		t.Fatalf("expected C=O double bond, got %+v (ok=%v)", b, ok)
	}
}

func TestParse_TwoLetterElements(t *testing.T) {
	m, err := Parse("ClCBr")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if m.NumAtoms() != 3 {
		t.Fatalf("expected 3 atoms, got %d", m.NumAtoms())
	}
	if m.Atom(0).Element != "Cl" || m.Atom(2).Element != "Br" {
		t.Fatalf("unexpected elements: %q %q", m.Atom(0).Element, m.Atom(2).Element)
	}
}

func TestParse_BracketAtoms(t *testing.T) {
	// Pyrrole: the written [nH] must keep its hydrogen.
	m, err := Parse("c1cc[nH]c1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := m.Formula(); got != "C4H5N" {
		t.Fatalf("formula = %q, want C4H5N", got)
	}

	// Charge without hydrogen auto-fill.
	m, err = Parse("C[O-]")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	o := m.Atom(1)
	if o.Charge != -1 {
		t.Fatalf("charge = %d, want -1", o.Charge)
	}
	if o.ImplicitH != 0 {
		t.Fatalf("bracket atom grew hydrogens: %d", o.ImplicitH)
	}
}

func TestParse_PercentRingBond(t *testing.T) {
	m, err := Parse("C%10CCCC%10")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if m.NumAtoms() != 5 || m.NumBonds() != 5 {
		t.Fatalf("expected cyclopentane, got %d atoms / %d bonds", m.NumAtoms(), m.NumBonds())
	}
}

func TestParse_RingNumberReuse(t *testing.T) {
	m, err := Parse("c1ccccc1-c1ccccc1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := m.Formula(); got != "C12H10" {
		t.Fatalf("formula = %q, want C12H10", got)
	}
	if got := m.RotatableBonds(); got != 1 {
		t.Fatalf("biphenyl rotors = %d, want 1", got)
	}
}

func TestParse_StereoMarkersIgnored(t *testing.T) {
	m, err := Parse("C[C@H](N)C(=O)O")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := m.Formula(); got != "C3H7NO2" {
		t.Fatalf("alanine formula = %q, want C3H7NO2", got)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		in  string
		pos int
	}{
		{"", 0},
		{"C(C", 3},
		{"C1CC", 1},
		{"CC.C", 2},
		{"C==C", 2},
		{"C{", 1},
		{"[CH4", 0},
		{"C%1C", 1},
		{"1CC", 0},
		{"C)C", 1},
	}

	for _, c := range cases {
		_, err := Parse(c.in)
		if err == nil {
			t.Errorf("Parse(%q): expected error", c.in)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q): expected *ParseError, got %T", c.in, err)
			continue
		}
		if pe.Pos != c.pos {
			t.Errorf("Parse(%q): offset = %d, want %d (%v)", c.in, pe.Pos, c.pos, err)
		}
	}
}

func TestParse_ConflictingRingBondSymbols(t *testing.T) {
	if _, err := Parse("C=1CCCCC-1"); err == nil {
		t.Fatal("expected conflicting ring bond error")
	}
}
