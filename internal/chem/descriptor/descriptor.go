// Package descriptor computes shape descriptors over 3D coordinate sets.
// Conformer-averaged values come from applying a descriptor to every member
// of an ensemble and taking the mean.
package descriptor

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Glob is the globularity of a coordinate set: the ratio of the smallest to
// the largest eigenvalue of the positional covariance matrix. A sphere-like
// cloud approaches 1, a rod or disc approaches 0. Degenerate inputs (fewer
// than two points, or all points coincident) return -1.
func Glob(pos []r3.Vec) float64 {
	if len(pos) < 2 {
		return -1
	}

	c := centroid(pos)
	var xx, xy, xz, yy, yz, zz float64
	for _, p := range pos {
		d := r3.Sub(p, c)
		xx += d.X * d.X
		xy += d.X * d.Y
		xz += d.X * d.Z
		yy += d.Y * d.Y
		yz += d.Y * d.Z
		zz += d.Z * d.Z
	}
	n := float64(len(pos))
	cov := mat.NewSymDense(3, []float64{
		xx / n, xy / n, xz / n,
		xy / n, yy / n, yz / n,
		xz / n, yz / n, zz / n,
	})

	var eig mat.EigenSym
	if !eig.Factorize(cov, false) {
		return -1
	}
	vals := eig.Values(nil) // ascending
	if vals[2] < 1e-12 {
		return -1
	}
	return vals[0] / vals[2]
}

// PBF is the plane of best fit descriptor: the mean distance of the points
// to their least-squares plane. Planar molecules score near 0. Fewer than
// three points define no plane and return 0.
func PBF(pos []r3.Vec) float64 {
	if len(pos) < 3 {
		return 0
	}

	c := centroid(pos)
	m := mat.NewDense(len(pos), 3, nil)
	for i, p := range pos {
		d := r3.Sub(p, c)
		m.Set(i, 0, d.X)
		m.Set(i, 1, d.Y)
		m.Set(i, 2, d.Z)
	}

	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDThin) {
		return 0
	}
	var v mat.Dense
	svd.VTo(&v)

	// The right singular vector of the smallest singular value is the
	// plane normal.
	normal := r3.Unit(r3.Vec{X: v.At(0, 2), Y: v.At(1, 2), Z: v.At(2, 2)})

	var sum float64
	for _, p := range pos {
		d := r3.Dot(r3.Sub(p, c), normal)
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(len(pos))
}

// Mean averages a descriptor over an ensemble of coordinate sets.
func Mean(coords [][]r3.Vec, f func([]r3.Vec) float64) float64 {
	if len(coords) == 0 {
		return 0
	}
	var sum float64
	for _, pos := range coords {
		sum += f(pos)
	}
	return sum / float64(len(coords))
}

func centroid(pos []r3.Vec) r3.Vec {
	var c r3.Vec
	for _, p := range pos {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(pos)), c)
}
