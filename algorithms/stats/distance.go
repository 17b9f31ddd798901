package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric selects the local cost used between two feature vectors
type DistanceMetric int

const (
	EuclideanDistance DistanceMetric = iota
	ManhattanDistance
	CosineDistance
)

// DistanceFunction is a function type for computing distance between two vectors
type DistanceFunction func(a, b []float64) float64

// GetDistanceFunction returns the appropriate distance function for the given metric
func GetDistanceFunction(metric DistanceMetric) DistanceFunction {
	switch metric {
	case EuclideanDistance:
		return EuclideanDistanceFunc
	case ManhattanDistance:
		return ManhattanDistanceFunc
	case CosineDistance:
		return CosineDistanceFunc
	default:
		return EuclideanDistanceFunc
	}
}

// EuclideanDistanceFunc calculates Euclidean distance between two points.
// Vectors of unequal length are compared over their common prefix.
func EuclideanDistanceFunc(a, b []float64) float64 {
	a, b = commonPrefix(a, b)
	if len(a) == 0 {
		return 0.0
	}
	return floats.Distance(a, b, 2)
}

// ManhattanDistanceFunc calculates Manhattan (L1) distance between two points
func ManhattanDistanceFunc(a, b []float64) float64 {
	a, b = commonPrefix(a, b)
	if len(a) == 0 {
		return 0.0
	}
	return floats.Distance(a, b, 1)
}

// CosineDistanceFunc calculates cosine distance (1 - cosine similarity)
func CosineDistanceFunc(a, b []float64) float64 {
	a, b = commonPrefix(a, b)

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 1.0
	}

	similarity := floats.Dot(a, b) / (normA * normB)
	return 1.0 - math.Max(-1.0, math.Min(1.0, similarity))
}

func commonPrefix(a, b []float64) ([]float64, []float64) {
	n := min(len(a), len(b))
	return a[:n], b[:n]
}
