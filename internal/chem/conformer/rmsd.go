package conformer

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RMSD returns the minimal root-mean-square deviation between two equally
// sized coordinate sets after optimal superposition (Kabsch alignment).
// Atom order must match between the two sets.
func RMSD(p, q []r3.Vec) float64 {
	if len(p) != len(q) || len(p) == 0 {
		return math.NaN()
	}

	pc := centered(p)
	qc := centered(q)

	// Cross-covariance of the centered sets.
	h := mat.NewDense(3, 3, nil)
	for i := range pc {
		a := [3]float64{pc[i].X, pc[i].Y, pc[i].Z}
		b := [3]float64{qc[i].X, qc[i].Y, qc[i].Z}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				h.Set(r, c, h.At(r, c)+a[r]*b[c])
			}
		}
	}

	var svd mat.SVD
	if !svd.Factorize(h, mat.SVDFull) {
		return math.NaN()
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var rot mat.Dense
	rot.Mul(&v, u.T())
	if mat.Det(&rot) < 0 {
		// Reflection fix: flip the axis of the smallest singular value.
		for r := 0; r < 3; r++ {
			v.Set(r, 2, -v.At(r, 2))
		}
		rot.Mul(&v, u.T())
	}

	var sum float64
	for i := range pc {
		r := rotate(&rot, pc[i])
		sum += r3.Norm2(r3.Sub(r, qc[i]))
	}
	return math.Sqrt(sum / float64(len(pc)))
}

func centered(p []r3.Vec) []r3.Vec {
	var c r3.Vec
	for _, v := range p {
		c = r3.Add(c, v)
	}
	c = r3.Scale(1/float64(len(p)), c)

	out := make([]r3.Vec, len(p))
	for i, v := range p {
		out[i] = r3.Sub(v, c)
	}
	return out
}

func rotate(r *mat.Dense, v r3.Vec) r3.Vec {
	return r3.Vec{
		X: r.At(0, 0)*v.X + r.At(0, 1)*v.Y + r.At(0, 2)*v.Z,
		Y: r.At(1, 0)*v.X + r.At(1, 1)*v.Y + r.At(1, 2)*v.Z,
		Z: r.At(2, 0)*v.X + r.At(2, 1)*v.Y + r.At(2, 2)*v.Z,
	}
}
