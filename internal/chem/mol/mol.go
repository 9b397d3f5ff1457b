// Package mol models a molecule as a graph of atoms and bonds and derives
// the constitutional properties (formula, weight, rotatable bonds) the
// shape profile needs.
package mol

import (
	"fmt"

	"github.com/iwatobipen/entry-cli/internal/chem/periodic"
)

// Atom is a graph node. Hydrogens are implicit until ExplicitHydrogens.
type Atom struct {
	Element  string
	Aromatic bool
	Charge   int

	// ImplicitH is the number of attached hydrogens not present as graph
	// nodes.
	ImplicitH int
}

// Bond is an undirected edge between two atom indices.
type Bond struct {
	A, B     int
	Order    int // 1, 2 or 3
	Aromatic bool
}

// Other returns the bond end that is not atom i.
func (b Bond) Other(i int) int {
	if b.A == i {
		return b.B
	}
	return b.A
}

// Molecule is an editable molecular graph.
type Molecule struct {
	atoms []Atom
	bonds []Bond
	adj   [][]int // bond indices per atom
}

func New() *Molecule {
	return &Molecule{}
}

func (m *Molecule) NumAtoms() int { return len(m.atoms) }
func (m *Molecule) NumBonds() int { return len(m.bonds) }

func (m *Molecule) Atom(i int) Atom { return m.atoms[i] }
func (m *Molecule) Bond(i int) Bond { return m.bonds[i] }

// AddAtom appends an atom and returns its index.
func (m *Molecule) AddAtom(a Atom) int {
	m.atoms = append(m.atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.atoms) - 1
}

// SetImplicitH overrides the implicit hydrogen count of atom i.
func (m *Molecule) SetImplicitH(i, n int) {
	m.atoms[i].ImplicitH = n
}

// AddBond appends a bond between existing atoms and returns its index.
func (m *Molecule) AddBond(b Bond) (int, error) {
	if b.A == b.B {
		return 0, fmt.Errorf("self bond on atom %d", b.A)
	}
	if b.A < 0 || b.A >= len(m.atoms) || b.B < 0 || b.B >= len(m.atoms) {
		return 0, fmt.Errorf("bond references missing atom (%d-%d)", b.A, b.B)
	}
	if _, ok := m.BondBetween(b.A, b.B); ok {
		return 0, fmt.Errorf("duplicate bond %d-%d", b.A, b.B)
	}
	if b.Order < 1 || b.Order > 3 {
		return 0, fmt.Errorf("bond %d-%d has order %d", b.A, b.B, b.Order)
	}

	m.bonds = append(m.bonds, b)
	idx := len(m.bonds) - 1
	m.adj[b.A] = append(m.adj[b.A], idx)
	m.adj[b.B] = append(m.adj[b.B], idx)
	return idx, nil
}

// BondsOf returns the bond indices incident to atom i.
func (m *Molecule) BondsOf(i int) []int { return m.adj[i] }

// Neighbors returns the atom indices adjacent to atom i.
func (m *Molecule) Neighbors(i int) []int {
	out := make([]int, 0, len(m.adj[i]))
	for _, bi := range m.adj[i] {
		out = append(out, m.bonds[bi].Other(i))
	}
	return out
}

// BondBetween finds the bond connecting atoms i and j.
func (m *Molecule) BondBetween(i, j int) (Bond, bool) {
	for _, bi := range m.adj[i] {
		if m.bonds[bi].Other(i) == j {
			return m.bonds[bi], true
		}
	}
	return Bond{}, false
}

// Degree is the number of explicit neighbors of atom i.
func (m *Molecule) Degree(i int) int { return len(m.adj[i]) }

// HeavyDegree counts non-hydrogen neighbors of atom i.
func (m *Molecule) HeavyDegree(i int) int {
	n := 0
	for _, bi := range m.adj[i] {
		if m.atoms[m.bonds[bi].Other(i)].Element != "H" {
			n++
		}
	}
	return n
}

// BondOrderSum is the valence consumed by explicit bonds of atom i.
// Aromatic bonds count 1.5.
func (m *Molecule) BondOrderSum(i int) float64 {
	var sum float64
	for _, bi := range m.adj[i] {
		b := m.bonds[bi]
		if b.Aromatic {
			sum += 1.5
			continue
		}
		sum += float64(b.Order)
	}
	return sum
}

// Connected reports whether all atoms sit in one fragment.
func (m *Molecule) Connected() bool {
	if len(m.atoms) == 0 {
		return true
	}
	seen := make([]bool, len(m.atoms))
	stack := []int{0}
	seen[0] = true
	count := 1
	for len(stack) > 0 {
		at := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range m.Neighbors(at) {
			if !seen[nb] {
				seen[nb] = true
				count++
				stack = append(stack, nb)
			}
		}
	}
	return count == len(m.atoms)
}

// ExplicitHydrogens returns a copy with implicit hydrogens expanded into
// graph atoms, in input order with hydrogens appended at the end.
func (m *Molecule) ExplicitHydrogens() *Molecule {
	out := New()
	for _, a := range m.atoms {
		c := a
		c.ImplicitH = 0
		out.AddAtom(c)
	}
	for _, b := range m.bonds {
		// Bonds were valid in the source graph.
		_, _ = out.AddBond(b)
	}
	for i, a := range m.atoms {
		for n := 0; n < a.ImplicitH; n++ {
			h := out.AddAtom(Atom{Element: "H"})
			_, _ = out.AddBond(Bond{A: i, B: h, Order: 1})
		}
	}
	return out
}

// weightOf is a helper shared by Weight and Formula.
func weightOf(symbol string) float64 {
	return periodic.Weight(symbol)
}
