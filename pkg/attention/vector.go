package attention

import (
	"math"
	"math/rand"
)

// entropyFloor keeps weights away from zero before taking logarithms.
const entropyFloor = 1e-12

// Dot returns the dot product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the Euclidean norm of a vector.
func Norm(v []float64) float64 {
	return math.Sqrt(Dot(v, v))
}

// L2Distance returns the Euclidean distance between two equal-length vectors.
func L2Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Softmax returns the numerically stabilized softmax of x: the maximum is
// subtracted before exponentiating.
func Softmax(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	max := x[0]
	for _, v := range x[1:] {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(x))
	var sum float64
	for i, v := range x {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum + entropyFloor
	}
	return out
}

// Entropy returns the Shannon entropy of a weight distribution, with weights
// clipped away from zero to avoid log of zero.
func Entropy(p []float64) float64 {
	var h float64
	for _, v := range p {
		if v < entropyFloor {
			v = entropyFloor
		}
		if v > 1.0 {
			v = 1.0
		}
		h -= v * math.Log(v)
	}
	return h
}

// MaxWeight returns the largest weight, or zero for an empty distribution.
func MaxWeight(p []float64) float64 {
	var max float64
	for _, v := range p {
		if v > max {
			max = v
		}
	}
	return max
}

// RandomVector draws a vector of standard normal samples from rng.
func RandomVector(rng *rand.Rand, dim int) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	return v
}

// RandomMatrix draws a rows x cols matrix of standard normal samples,
// row-major.
func RandomMatrix(rng *rand.Rand, rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = RandomVector(rng, cols)
	}
	return m
}

// Orthonormalize returns an orthonormal basis spanning the columns of the
// square matrix m, computed with modified Gram-Schmidt (the Q factor of a QR
// decomposition). A column that collapses to numerical zero is replaced by a
// unit basis vector, which cannot happen in practice for Gaussian samples.
func Orthonormalize(m [][]float64) [][]float64 {
	n := len(m)
	// Work on columns.
	q := make([][]float64, n)
	for j := 0; j < n; j++ {
		col := make([]float64, n)
		for i := 0; i < n; i++ {
			col[i] = m[i][j]
		}
		for k := 0; k < j; k++ {
			proj := Dot(q[k], col)
			for i := range col {
				col[i] -= proj * q[k][i]
			}
		}
		norm := Norm(col)
		if norm < entropyFloor {
			col = make([]float64, n)
			col[j] = 1.0
			norm = 1.0
		}
		for i := range col {
			col[i] /= norm
		}
		q[j] = col
	}

	// Back to row-major with q's vectors as columns.
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = q[j][i]
		}
	}
	return out
}

// MatVec multiplies a row-major matrix by a vector.
func MatVec(m [][]float64, v []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = Dot(row, v)
	}
	return out
}
