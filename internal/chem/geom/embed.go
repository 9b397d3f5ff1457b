// Package geom produces 3D coordinates for a molecular graph: a breadth-first
// initial embedding on ideal bond lengths and angles followed by relaxation
// under a small harmonic force field.
package geom

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/iwatobipen/entry-cli/internal/chem/mol"
	"github.com/iwatobipen/entry-cli/internal/chem/periodic"
)

// ErrEmbed marks failures to produce an initial geometry.
var ErrEmbed = errors.New("embed failed")

// bond length contraction per bond order.
var orderScale = map[int]float64{1: 1.0, 2: 0.87, 3: 0.78}

const aromaticScale = 0.93

// IdealBondLength is the covalent-radii sum scaled for the bond order, in Å.
func IdealBondLength(m *mol.Molecule, b mol.Bond) float64 {
	ea, _ := periodic.Lookup(m.Atom(b.A).Element)
	eb, _ := periodic.Lookup(m.Atom(b.B).Element)
	base := ea.CovalentRadius + eb.CovalentRadius
	if base == 0 {
		base = 1.5
	}
	if b.Aromatic {
		return base * aromaticScale
	}
	return base * orderScale[b.Order]
}

type steric int

const (
	stericSP3 steric = iota
	stericSP2
	stericSP
)

// stericClass guesses the coordination geometry at vertex v from its bonding.
func stericClass(m *mol.Molecule, v int) steric {
	var doubles, triples int
	for _, bi := range m.BondsOf(v) {
		b := m.Bond(bi)
		switch {
		case b.Order == 3:
			triples++
		case b.Order == 2:
			doubles++
		}
	}

	switch {
	case triples > 0 || doubles >= 2:
		return stericSP
	case m.Atom(v).Aromatic || doubles == 1:
		return stericSP2
	default:
		return stericSP3
	}
}

// Unit direction templates per coordination geometry, first slot on +X.
var (
	linearDirs = []r3.Vec{
		{X: 1},
		{X: -1},
	}
	trigonalDirs = []r3.Vec{
		{X: 1},
		{X: -0.5, Y: math.Sqrt(3) / 2},
		{X: -0.5, Y: -math.Sqrt(3) / 2},
	}
	tetrahedralDirs = []r3.Vec{
		{X: 1 / math.Sqrt(3), Y: 1 / math.Sqrt(3), Z: 1 / math.Sqrt(3)},
		{X: 1 / math.Sqrt(3), Y: -1 / math.Sqrt(3), Z: -1 / math.Sqrt(3)},
		{X: -1 / math.Sqrt(3), Y: 1 / math.Sqrt(3), Z: -1 / math.Sqrt(3)},
		{X: -1 / math.Sqrt(3), Y: -1 / math.Sqrt(3), Z: 1 / math.Sqrt(3)},
	}
)

func templateDirs(m *mol.Molecule, v int) []r3.Vec {
	switch stericClass(m, v) {
	case stericSP:
		return linearDirs
	case stericSP2:
		return trigonalDirs
	default:
		return tetrahedralDirs
	}
}

// Embed places every atom of a connected molecule, breadth first from atom 0.
// Each new neighbor lands one ideal bond length away on the local ideal-angle
// frame of its parent (tetrahedral, trigonal or linear); when a reference
// substituent exists across the parent bond the frame is twisted so the first
// placement sits anti to it, giving staggered starting torsions. The result
// is a near-ideal starting geometry meant to be relaxed.
func Embed(m *mol.Molecule, seed int64) ([]r3.Vec, error) {
	n := m.NumAtoms()
	if n == 0 {
		return nil, fmt.Errorf("%w: empty molecule", ErrEmbed)
	}

	rng := rand.New(rand.NewSource(seed))
	pos := make([]r3.Vec, n)
	placed := make([]bool, n)

	placed[0] = true
	queue := []int{0}

	for len(queue) > 0 {
		at := queue[0]
		queue = queue[1:]

		var anchors []r3.Vec
		var anchorIdx []int
		var open []mol.Bond
		for _, bi := range m.BondsOf(at) {
			b := m.Bond(bi)
			to := b.Other(at)
			if placed[to] {
				anchors = append(anchors, r3.Unit(r3.Sub(pos[to], pos[at])))
				anchorIdx = append(anchorIdx, to)
			} else {
				open = append(open, b)
			}
		}
		if len(open) == 0 {
			continue
		}

		// The anti reference is a placed substituent across the parent bond.
		var ref r3.Vec
		hasRef := false
		if len(anchors) == 1 {
			p := anchorIdx[0]
			for _, g := range m.Neighbors(p) {
				if g != at && placed[g] {
					ref = r3.Sub(pos[g], pos[p])
					hasRef = true
					break
				}
			}
		}

		dirs := openDirections(m, at, anchors, ref, hasRef, rng)
		for i, b := range open {
			to := b.Other(at)
			dir := randomUnit(rng)
			if i < len(dirs) {
				dir = dirs[i]
			}
			pos[to] = r3.Add(pos[at], r3.Scale(IdealBondLength(m, b), dir))
			placed[to] = true
			queue = append(queue, to)
		}
	}

	for i, ok := range placed {
		if !ok {
			return nil, fmt.Errorf("%w: atom %d unreachable from atom 0", ErrEmbed, i)
		}
	}
	return pos, nil
}

// openDirections returns unit directions for the unplaced neighbors of at:
// the ideal-angle template aligned to the already occupied directions.
func openDirections(m *mol.Molecule, at int, anchors []r3.Vec, ref r3.Vec, hasRef bool, rng *rand.Rand) []r3.Vec {
	tmpl := templateDirs(m, at)
	if len(anchors) >= len(tmpl) {
		return nil
	}

	dirs := make([]r3.Vec, len(tmpl))
	copy(dirs, tmpl)

	if len(anchors) == 0 {
		// Root atom: orient the frame at random so different seeds give
		// different (rotated) embeddings.
		axis := randomUnit(rng)
		alpha := rng.Float64() * 2 * math.Pi
		rotateAll(dirs, alpha, axis)
		return dirs
	}

	alignFirst(dirs, anchors[0])
	axis := anchors[0]

	switch {
	case len(anchors) >= 2:
		rotateAll(dirs, signedAngle(dirs[1], anchors[1], axis), axis)
	case hasRef:
		rotateAll(dirs, signedAngle(dirs[1], ref, axis)+math.Pi, axis)
	default:
		rotateAll(dirs, rng.Float64()*2*math.Pi, axis)
	}

	return farthestFrom(dirs, anchors, len(tmpl)-len(anchors))
}

// alignFirst rotates the whole template so dirs[0] coincides with to.
func alignFirst(dirs []r3.Vec, to r3.Vec) {
	from := dirs[0]
	cross := r3.Cross(from, to)
	dot := r3.Dot(from, to)

	if r3.Norm(cross) < 1e-9 {
		if dot > 0 {
			return
		}
		rotateAll(dirs, math.Pi, perpendicularTo(from))
		return
	}

	rotateAll(dirs, math.Atan2(r3.Norm(cross), dot), r3.Unit(cross))
}

func rotateAll(dirs []r3.Vec, alpha float64, axis r3.Vec) {
	for i := range dirs {
		dirs[i] = r3.Rotate(dirs[i], alpha, axis)
	}
}

// signedAngle is the azimuth from from to to around axis, in (-π, π].
func signedAngle(from, to, axis r3.Vec) float64 {
	pf := r3.Sub(from, r3.Scale(r3.Dot(axis, from), axis))
	pt := r3.Sub(to, r3.Scale(r3.Dot(axis, to), axis))
	if r3.Norm(pf) < 1e-9 || r3.Norm(pt) < 1e-9 {
		return 0
	}
	return math.Atan2(r3.Dot(axis, r3.Cross(pf, pt)), r3.Dot(pf, pt))
}

// farthestFrom keeps the count template slots best separated from every
// occupied direction, preserving template order among kept slots.
func farthestFrom(dirs []r3.Vec, anchors []r3.Vec, count int) []r3.Vec {
	type slot struct {
		d     r3.Vec
		score float64 // largest dot against any anchor; lower is freer
		idx   int
	}
	slots := make([]slot, 0, len(dirs))
	for i, d := range dirs {
		worst := -1.0
		for _, a := range anchors {
			if dot := r3.Dot(d, a); dot > worst {
				worst = dot
			}
		}
		slots = append(slots, slot{d: d, score: worst, idx: i})
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].score < slots[j].score })
	if count > len(slots) {
		count = len(slots)
	}
	kept := slots[:count]
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].idx < kept[j].idx })

	out := make([]r3.Vec, 0, count)
	for _, s := range kept {
		out = append(out, s.d)
	}
	return out
}

func randomUnit(rng *rand.Rand) r3.Vec {
	for {
		v := r3.Vec{
			X: rng.Float64()*2 - 1,
			Y: rng.Float64()*2 - 1,
			Z: rng.Float64()*2 - 1,
		}
		if n := r3.Norm(v); n > 1e-6 && n <= 1 {
			return r3.Unit(v)
		}
	}
}

// perpendicularTo returns a unit vector orthogonal to v.
func perpendicularTo(v r3.Vec) r3.Vec {
	basis := r3.Vec{X: 1}
	if math.Abs(v.X) > 0.9*r3.Norm(v) {
		basis = r3.Vec{Y: 1}
	}
	return r3.Unit(r3.Cross(v, basis))
}

// Dihedral returns the torsion angle a-b-c-d in radians.
func Dihedral(a, b, c, d r3.Vec) float64 {
	b1 := r3.Sub(b, a)
	b2 := r3.Sub(c, b)
	b3 := r3.Sub(d, c)

	n1 := r3.Cross(b1, b2)
	n2 := r3.Cross(b2, b3)

	x := r3.Dot(n1, n2)
	y := r3.Dot(r3.Cross(n1, r3.Unit(b2)), n2)
	if math.Abs(x) < 1e-12 && math.Abs(y) < 1e-12 {
		return 0
	}
	return math.Atan2(y, x)
}
