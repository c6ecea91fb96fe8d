// Package vector holds the pattern embedding table and the similarity math used to search it.
package vector

import (
	"gonum.org/v1/gonum/floats"
)

// CosineSimilarity returns dot(a,b) / (|a|*|b|). It returns 0 when the vectors differ in
// length, are empty, or either has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return cosine(toFloat64(a), toFloat64(b))
}

func cosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(toFloat64(x), 2)
}

func toFloat64(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}
