package core

import "math"

// NormalizeVector scales v to unit length and returns a new slice.
// A zero vector has no direction and comes back as all zeros.
// Every vector entering the index is normalized so that dot-product
// retrieval scores behave as cosine similarity; a single producer
// storing raw vectors would let magnitude outrank direction.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := float32(math.Sqrt(sumSquares))

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}

	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
