package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/iwatobipen/entry-cli/internal/chem/mol"
	"github.com/iwatobipen/entry-cli/internal/chem/periodic"
)

// Force constants, in arbitrary units consistent across terms.
const (
	kBond      = 300.0 // per Å²
	kAngle     = 30.0  // per rad²
	kTorsion   = 0.5   // threefold barrier on single bonds
	kPlanar    = 5.0   // twofold barrier on double/aromatic bonds
	repEpsilon = 0.1
	gradStep   = 1e-4
)

type bondTerm struct {
	a, b int
	r0   float64
}

type angleTerm struct {
	a, b, c int // b is the vertex
	theta0  float64
}

type torsionTerm struct {
	a, b, c, d int
	planar     bool
}

type pairTerm struct {
	a, b  int
	sigma float64
}

// ForceField holds the precomputed interaction terms of one molecule.
// Coordinates are supplied per evaluation, so one ForceField serves every
// conformer of the molecule.
type ForceField struct {
	bonds    []bondTerm
	angles   []angleTerm
	torsions []torsionTerm
	pairs    []pairTerm
}

func NewForceField(m *mol.Molecule) *ForceField {
	ff := &ForceField{}

	for i := 0; i < m.NumBonds(); i++ {
		b := m.Bond(i)
		ff.bonds = append(ff.bonds, bondTerm{a: b.A, b: b.B, r0: IdealBondLength(m, b)})
	}

	for v := 0; v < m.NumAtoms(); v++ {
		nbs := m.Neighbors(v)
		for i := 0; i < len(nbs); i++ {
			for j := i + 1; j < len(nbs); j++ {
				ff.angles = append(ff.angles, angleTerm{
					a:      nbs[i],
					b:      v,
					c:      nbs[j],
					theta0: idealAngle(m, v),
				})
			}
		}
	}

	for i := 0; i < m.NumBonds(); i++ {
		b := m.Bond(i)
		planar := b.Aromatic || b.Order >= 2
		for _, a := range m.Neighbors(b.A) {
			if a == b.B {
				continue
			}
			for _, d := range m.Neighbors(b.B) {
				if d == b.A || d == a {
					continue
				}
				ff.torsions = append(ff.torsions, torsionTerm{a: a, b: b.A, c: b.B, d: d, planar: planar})
			}
		}
	}

	ff.pairs = nonbondedPairs(m)
	return ff
}

// idealAngle is the equilibrium angle at vertex v for its coordination
// geometry.
func idealAngle(m *mol.Molecule, v int) float64 {
	switch stericClass(m, v) {
	case stericSP:
		return math.Pi
	case stericSP2:
		return 2 * math.Pi / 3
	default:
		return 109.47 * math.Pi / 180
	}
}

// nonbondedPairs lists atom pairs separated by three or more bonds.
func nonbondedPairs(m *mol.Molecule) []pairTerm {
	n := m.NumAtoms()
	near := make([]map[int]bool, n)
	for i := 0; i < n; i++ {
		near[i] = map[int]bool{i: true}
		for _, nb := range m.Neighbors(i) {
			near[i][nb] = true
			for _, nb2 := range m.Neighbors(nb) {
				near[i][nb2] = true
			}
		}
	}

	var pairs []pairTerm
	for i := 0; i < n; i++ {
		ri, _ := periodic.Lookup(m.Atom(i).Element)
		for j := i + 1; j < n; j++ {
			if near[i][j] {
				continue
			}
			rj, _ := periodic.Lookup(m.Atom(j).Element)
			pairs = append(pairs, pairTerm{
				a:     i,
				b:     j,
				sigma: 2.0 * (ri.CovalentRadius + rj.CovalentRadius),
			})
		}
	}
	return pairs
}

// Energy evaluates the force field at the given coordinates.
func (ff *ForceField) Energy(pos []r3.Vec) float64 {
	var e float64

	for _, t := range ff.bonds {
		d := r3.Norm(r3.Sub(pos[t.a], pos[t.b])) - t.r0
		e += kBond * d * d
	}

	for _, t := range ff.angles {
		u := r3.Sub(pos[t.a], pos[t.b])
		v := r3.Sub(pos[t.c], pos[t.b])
		nu, nv := r3.Norm(u), r3.Norm(v)
		if nu < 1e-9 || nv < 1e-9 {
			continue
		}
		cos := r3.Dot(u, v) / (nu * nv)
		cos = math.Max(-1, math.Min(1, cos))
		d := math.Acos(cos) - t.theta0
		e += kAngle * d * d
	}

	for _, t := range ff.torsions {
		phi := Dihedral(pos[t.a], pos[t.b], pos[t.c], pos[t.d])
		if t.planar {
			e += kPlanar * (1 - math.Cos(2*phi))
		} else {
			e += kTorsion * (1 + math.Cos(3*phi))
		}
	}

	for _, t := range ff.pairs {
		r := r3.Norm(r3.Sub(pos[t.a], pos[t.b]))
		if r < 0.1 {
			r = 0.1
		}
		q := t.sigma / r
		q3 := q * q * q
		e += repEpsilon * q3 * q3 * q3 * q3 // (sigma/r)^12
	}

	return e
}

// Relax runs gradient descent with an adaptive step and returns the final
// energy. Coordinates are updated in place.
func (ff *ForceField) Relax(pos []r3.Vec, steps int) float64 {
	e := ff.Energy(pos)
	step := 0.05
	grad := make([]r3.Vec, len(pos))
	trial := make([]r3.Vec, len(pos))

	for s := 0; s < steps; s++ {
		gnorm := ff.gradient(pos, grad)
		if gnorm < 1e-6 {
			break
		}

		scale := step / gnorm
		for i := range pos {
			trial[i] = r3.Sub(pos[i], r3.Scale(scale, grad[i]))
		}

		if et := ff.Energy(trial); et < e {
			copy(pos, trial)
			e = et
			step = math.Min(step*1.2, 0.3)
			continue
		}

		step *= 0.5
		if step < 1e-7 {
			break
		}
	}

	return e
}

// gradient fills g by central differences and returns its norm.
func (ff *ForceField) gradient(pos []r3.Vec, g []r3.Vec) float64 {
	var sq float64
	for i := range pos {
		g[i] = r3.Vec{
			X: ff.partial(pos, i, r3.Vec{X: gradStep}),
			Y: ff.partial(pos, i, r3.Vec{Y: gradStep}),
			Z: ff.partial(pos, i, r3.Vec{Z: gradStep}),
		}
		sq += r3.Norm2(g[i])
	}
	return math.Sqrt(sq)
}

func (ff *ForceField) partial(pos []r3.Vec, i int, h r3.Vec) float64 {
	orig := pos[i]
	pos[i] = r3.Add(orig, h)
	ep := ff.Energy(pos)
	pos[i] = r3.Sub(orig, h)
	em := ff.Energy(pos)
	pos[i] = orig
	return (ep - em) / (2 * gradStep)
}
