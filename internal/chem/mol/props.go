package mol

import (
	"fmt"
	"sort"
	"strings"
)

// Formula returns the molecular formula in Hill order: carbon first,
// hydrogen second, all other elements alphabetically. Without carbon, every
// element (hydrogen included) sorts alphabetically.
func (m *Molecule) Formula() string {
	counts := map[string]int{}
	for i, a := range m.atoms {
		counts[a.Element]++
		counts["H"] += m.atoms[i].ImplicitH
	}
	if counts["H"] == 0 {
		delete(counts, "H")
	}

	symbols := make([]string, 0, len(counts))
	for s := range counts {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var ordered []string
	if counts["C"] > 0 {
		ordered = append(ordered, "C")
		if counts["H"] > 0 {
			ordered = append(ordered, "H")
		}
		for _, s := range symbols {
			if s != "C" && s != "H" {
				ordered = append(ordered, s)
			}
		}
	} else {
		ordered = symbols
	}

	var b strings.Builder
	for _, s := range ordered {
		b.WriteString(s)
		if counts[s] > 1 {
			fmt.Fprintf(&b, "%d", counts[s])
		}
	}
	return b.String()
}

// Weight returns the molecular weight in g/mol, implicit hydrogens included.
func (m *Molecule) Weight() float64 {
	var w float64
	for _, a := range m.atoms {
		w += weightOf(a.Element)
		w += float64(a.ImplicitH) * weightOf("H")
	}
	return w
}

// RotatableBonds counts single non-ring bonds between non-terminal heavy
// atoms, excluding amide C-N bonds, matching the classic rotor definition.
func (m *Molecule) RotatableBonds() int {
	return len(m.RotatableBondIndices())
}

// RotatableBondIndices lists the bond indices that RotatableBonds counts.
// Torsion driving spins the molecule around exactly these bonds.
func (m *Molecule) RotatableBondIndices() []int {
	ring := m.RingBonds()
	var idx []int
	for i, b := range m.bonds {
		if m.isRotatable(i, b, ring) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (m *Molecule) isRotatable(idx int, b Bond, ring []bool) bool {
	if b.Order != 1 || b.Aromatic || ring[idx] {
		return false
	}
	if m.atoms[b.A].Element == "H" || m.atoms[b.B].Element == "H" {
		return false
	}
	// Terminal bonds carry no torsion.
	if m.HeavyDegree(b.A) < 2 || m.HeavyDegree(b.B) < 2 {
		return false
	}
	if m.isAmide(b.A, b.B) || m.isAmide(b.B, b.A) {
		return false
	}
	return true
}

// isAmide reports whether n-c is the N-C bond of an amide group, i.e. c is a
// carbon double-bonded to an oxygen and n is a nitrogen.
func (m *Molecule) isAmide(n, c int) bool {
	if m.atoms[n].Element != "N" || m.atoms[c].Element != "C" {
		return false
	}
	for _, bi := range m.adj[c] {
		b := m.bonds[bi]
		if b.Order == 2 && m.atoms[b.Other(c)].Element == "O" {
			return true
		}
	}
	return false
}
