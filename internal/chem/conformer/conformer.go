// Package conformer builds conformer ensembles by torsion driving: every
// rotatable bond is spun through staggered offsets, each candidate geometry
// is relaxed, and near-duplicates are pruned by RMSD.
package conformer

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/iwatobipen/entry-cli/internal/chem/geom"
	"github.com/iwatobipen/entry-cli/internal/chem/mol"
)

// Params tunes ensemble generation.
type Params struct {
	// RMSDCutoff is the minimum heavy-atom RMSD (Å) between kept conformers.
	RMSDCutoff float64

	// EnergyWindow keeps only conformers within this much of the lowest
	// energy found.
	EnergyWindow float64

	// MaxConformers caps the ensemble size.
	MaxConformers int

	// OptSteps bounds the relaxation of each candidate.
	OptSteps int

	// Seed drives the initial embedding and candidate sampling.
	Seed int64
}

// Ensemble is a set of conformers of one molecule, sorted by energy.
type Ensemble struct {
	Coords   [][]r3.Vec
	Energies []float64
}

func (e Ensemble) Len() int { return len(e.Coords) }

// Torsion offsets applied per rotatable bond.
var offsets = [...]float64{0, 2 * math.Pi / 3, -2 * math.Pi / 3}

// maxCandidates bounds exhaustive enumeration; beyond it combinations are
// sampled randomly.
const maxCandidates = 729

// Generate embeds the molecule and drives its rotatable bonds to build an
// ensemble. The molecule must carry explicit hydrogens so the relaxation
// sees every steric contact.
func Generate(ctx context.Context, m *mol.Molecule, p Params) (Ensemble, error) {
	base, err := geom.Embed(m, p.Seed)
	if err != nil {
		return Ensemble{}, err
	}

	ff := geom.NewForceField(m)
	baseEnergy := ff.Relax(base, p.OptSteps)

	if err := ctx.Err(); err != nil {
		return Ensemble{}, err
	}

	rot := m.RotatableBondIndices()
	if len(rot) == 0 || p.MaxConformers == 1 {
		return Ensemble{
			Coords:   [][]r3.Vec{base},
			Energies: []float64{baseEnergy},
		}, nil
	}

	sides := make([][]int, len(rot))
	for i, bi := range rot {
		sides[i] = sideAtoms(m, m.Bond(bi))
	}

	type candidate struct {
		pos    []r3.Vec
		energy float64
	}
	cands := []candidate{{pos: base, energy: baseEnergy}}

	for _, combo := range torsionCombos(len(rot), p.Seed) {
		if err := ctx.Err(); err != nil {
			return Ensemble{}, err
		}

		pos := make([]r3.Vec, len(base))
		copy(pos, base)
		for i, oi := range combo {
			if offsets[oi] == 0 {
				continue
			}
			twist(pos, m.Bond(rot[i]), sides[i], offsets[oi])
		}
		e := ff.Relax(pos, p.OptSteps)
		if math.IsNaN(e) || math.IsInf(e, 0) {
			continue
		}
		cands = append(cands, candidate{pos: pos, energy: e})
	}

	sort.Slice(cands, func(i, j int) bool { return cands[i].energy < cands[j].energy })

	heavy := heavyIndices(m)
	lowest := cands[0].energy

	var out Ensemble
	for _, c := range cands {
		if c.energy-lowest > p.EnergyWindow {
			break
		}
		if tooClose(out.Coords, c.pos, heavy, p.RMSDCutoff) {
			continue
		}
		out.Coords = append(out.Coords, c.pos)
		out.Energies = append(out.Energies, c.energy)
		if p.MaxConformers > 0 && len(out.Coords) >= p.MaxConformers {
			break
		}
	}
	return out, nil
}

// torsionCombos enumerates every offset assignment when the space is small
// and samples it otherwise. The zero combo is skipped; the caller already
// holds the base geometry.
func torsionCombos(n int, seed int64) [][]int {
	total := 1
	for i := 0; i < n; i++ {
		total *= len(offsets)
		if total > maxCandidates {
			break
		}
	}

	if total <= maxCandidates {
		combos := make([][]int, 0, total-1)
		combo := make([]int, n)
		for k := 1; k < total; k++ {
			v := k
			for i := 0; i < n; i++ {
				combo[i] = v % len(offsets)
				v /= len(offsets)
			}
			c := make([]int, n)
			copy(c, combo)
			combos = append(combos, c)
		}
		return combos
	}

	rng := rand.New(rand.NewSource(seed))
	combos := make([][]int, 0, maxCandidates)
	for k := 0; k < maxCandidates; k++ {
		c := make([]int, n)
		zero := true
		for i := range c {
			c[i] = rng.Intn(len(offsets))
			if c[i] != 0 {
				zero = false
			}
		}
		if zero {
			continue
		}
		combos = append(combos, c)
	}
	return combos
}

// sideAtoms returns the atoms reachable from b.B without crossing the bond.
// Those are the atoms a twist around the bond moves.
func sideAtoms(m *mol.Molecule, b mol.Bond) []int {
	seen := make([]bool, m.NumAtoms())
	seen[b.A] = true
	seen[b.B] = true

	var side []int
	queue := []int{b.B}
	for len(queue) > 0 {
		at := queue[0]
		queue = queue[1:]
		for _, nb := range m.Neighbors(at) {
			if seen[nb] {
				continue
			}
			seen[nb] = true
			side = append(side, nb)
			queue = append(queue, nb)
		}
	}
	return side
}

// twist rotates the side atoms around the bond axis by alpha radians.
func twist(pos []r3.Vec, b mol.Bond, side []int, alpha float64) {
	axis := r3.Unit(r3.Sub(pos[b.B], pos[b.A]))
	origin := pos[b.A]
	for _, i := range side {
		pos[i] = r3.Add(origin, r3.Rotate(r3.Sub(pos[i], origin), alpha, axis))
	}
}

func heavyIndices(m *mol.Molecule) []int {
	var idx []int
	for i := 0; i < m.NumAtoms(); i++ {
		if m.Atom(i).Element != "H" {
			idx = append(idx, i)
		}
	}
	return idx
}

func tooClose(kept [][]r3.Vec, pos []r3.Vec, heavy []int, cutoff float64) bool {
	if cutoff <= 0 {
		return false
	}
	sub := pick(pos, heavy)
	for _, k := range kept {
		if RMSD(pick(k, heavy), sub) < cutoff {
			return true
		}
	}
	return false
}

func pick(pos []r3.Vec, idx []int) []r3.Vec {
	out := make([]r3.Vec, len(idx))
	for i, j := range idx {
		out[i] = pos[j]
	}
	return out
}
