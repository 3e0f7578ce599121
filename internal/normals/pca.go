package normals

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	powerIterations = 20
	degenerateNorm  = 1e-10
)

// Normal used when a neighbourhood does not span a plane
var fallbackNormal = r3.Vec{X: 0, Y: 0, Z: 1}

// Scatter matrix of the given positions about their centroid. It is not divided by the point count,
// only its eigenvectors are used.
func covariance(neighbors []r3.Vec) *mat.SymDense {
	cov := mat.NewSymDense(3, nil)
	if len(neighbors) == 0 {
		return cov
	}

	var centroid r3.Vec
	for _, p := range neighbors {
		centroid = r3.Add(centroid, p)
	}
	centroid = r3.Scale(1/float64(len(neighbors)), centroid)

	d := mat.NewVecDense(3, nil)
	for _, p := range neighbors {
		q := r3.Sub(p, centroid)
		d.SetVec(0, q.X)
		d.SetVec(1, q.Y)
		d.SetVec(2, q.Z)
		cov.SymRankOne(cov, 1, d)
	}
	return cov
}

// Approximates the dominant eigenvector of a by repeated multiplication starting from start.
// Renormalisation is skipped when the product collapses to zero length.
func powerIteration(a mat.Symmetric, start r3.Vec) *mat.VecDense {
	v := mat.NewVecDense(3, []float64{start.X, start.Y, start.Z})
	next := mat.NewVecDense(3, nil)
	for i := 0; i < powerIterations; i++ {
		next.MulVec(a, v)
		length := math.Sqrt(mat.Dot(next, next))
		if length < degenerateNorm {
			continue
		}
		v.ScaleVec(1/length, next)
	}
	return v
}

func toVec(v *mat.VecDense) r3.Vec {
	return r3.Vec{X: v.AtVec(0), Y: v.AtVec(1), Z: v.AtVec(2)}
}

// Estimates the surface normal of a neighbourhood as the cross product of the two dominant principal
// directions of its covariance. The second direction comes from deflating the first eigenpair.
func NormalFromNeighbors(neighbors []r3.Vec) r3.Vec {
	if len(neighbors) == 0 {
		return fallbackNormal
	}
	cov := covariance(neighbors)

	v1 := powerIteration(cov, r3.Vec{X: 1})
	lambda := mat.Inner(v1, cov, v1)

	deflated := mat.NewSymDense(3, nil)
	deflated.SymRankOne(cov, -lambda, v1)

	start := r3.Vec{X: 1}
	if math.Abs(v1.AtVec(0)) >= 0.9 {
		start = r3.Vec{Y: 1}
	}
	v2 := powerIteration(deflated, start)

	n := r3.Cross(toVec(v1), toVec(v2))
	if r3.Norm(n) < degenerateNorm {
		return fallbackNormal
	}
	return r3.Unit(n)
}
