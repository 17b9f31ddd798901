package stats

import (
	"fmt"
	"math"
	"slices"
)

// DTWAlignment represents Dynamic Time Warping alignment between two feature
// sequences of possibly different lengths. The cost matrix is allocated per
// call and never retained.
type DTWAlignment struct {
	constraintBand int // Sakoe-Chiba band constraint, <= 0 disables it
	distanceMetric DistanceMetric
}

// DTWResult contains DTW alignment results
type DTWResult struct {
	Distance           float64      `json:"distance"`            // Cumulative DTW cost D[n][m]
	NormalizedDistance float64      `json:"normalized_distance"` // Distance / max(n, m)
	Path               []AlignPoint `json:"path"`                // Optimal alignment path
	QueryLength        int          `json:"query_length"`        // Length of query sequence
	RefLength          int          `json:"ref_length"`          // Length of reference sequence
	Constraint         int          `json:"constraint"`          // Band constraint used
}

// AlignPoint represents a point in the alignment path
type AlignPoint struct {
	QueryIndex int     `json:"query_index"` // Index in query sequence
	RefIndex   int     `json:"ref_index"`   // Index in reference sequence
	Cost       float64 `json:"cost"`        // Local cost at this point
}

// NewDTWAlignment creates a new unconstrained Euclidean DTW alignment
func NewDTWAlignment() *DTWAlignment {
	return &DTWAlignment{
		constraintBand: -1,
		distanceMetric: EuclideanDistance,
	}
}

// NewDTWAlignmentWithParams creates DTW with custom parameters
func NewDTWAlignmentWithParams(constraintBand int, metric DistanceMetric) *DTWAlignment {
	return &DTWAlignment{
		constraintBand: constraintBand,
		distanceMetric: metric,
	}
}

// Align performs DTW alignment between two sequences using
// D[i][j] = cost(i,j) + min(D[i-1][j], D[i][j-1], D[i-1][j-1]) with
// D[0][0] = 0 and every other border cell at +Inf
func (dtw *DTWAlignment) Align(query, reference [][]float64) (*DTWResult, error) {
	if len(query) == 0 || len(reference) == 0 {
		return nil, fmt.Errorf("empty sequences provided")
	}

	queryLen := len(query)
	refLen := len(reference)

	costMatrix := make([][]float64, queryLen+1)
	for i := range costMatrix {
		costMatrix[i] = make([]float64, refLen+1)
		for j := range costMatrix[i] {
			costMatrix[i][j] = math.Inf(1)
		}
	}
	costMatrix[0][0] = 0

	dtw.fillCostMatrix(costMatrix, query, reference)

	finalDistance := costMatrix[queryLen][refLen]
	if math.IsInf(finalDistance, 1) {
		return nil, fmt.Errorf("no alignment path within band %d for lengths %d and %d", dtw.constraintBand, queryLen, refLen)
	}

	return &DTWResult{
		Distance:           finalDistance,
		NormalizedDistance: finalDistance / float64(max(queryLen, refLen)),
		Path:               dtw.backtrack(costMatrix, queryLen, refLen),
		QueryLength:        queryLen,
		RefLength:          refLen,
		Constraint:         dtw.constraintBand,
	}, nil
}

// AlignVectors aligns two 1D feature vectors
func (dtw *DTWAlignment) AlignVectors(query, reference []float64) (*DTWResult, error) {
	query2D := make([][]float64, len(query))
	ref2D := make([][]float64, len(reference))

	for i, v := range query {
		query2D[i] = []float64{v}
	}
	for i, v := range reference {
		ref2D[i] = []float64{v}
	}

	return dtw.Align(query2D, ref2D)
}

func (dtw *DTWAlignment) fillCostMatrix(costMatrix [][]float64, query, reference [][]float64) {
	distanceFunc := GetDistanceFunction(dtw.distanceMetric)

	for i := 1; i <= len(query); i++ {
		for j := 1; j <= len(reference); j++ {
			if dtw.constraintBand > 0 && abs(i-j) > dtw.constraintBand {
				continue
			}

			localDist := distanceFunc(query[i-1], reference[j-1])
			minCost := math.Min(math.Min(costMatrix[i-1][j], costMatrix[i][j-1]), costMatrix[i-1][j-1])
			costMatrix[i][j] = localDist + minCost
		}
	}
}

// backtrack walks the cheapest predecessors from (n, m) back to (1, 1)
func (dtw *DTWAlignment) backtrack(costMatrix [][]float64, queryLen, refLen int) []AlignPoint {
	path := make([]AlignPoint, 0, queryLen+refLen)
	i, j := queryLen, refLen

	for i > 0 && j > 0 {
		path = append(path, AlignPoint{
			QueryIndex: i - 1,
			RefIndex:   j - 1,
			Cost:       costMatrix[i][j] - dtw.predecessorCost(costMatrix, i, j),
		})
		i, j = dtw.findPreviousStep(costMatrix, i, j)
	}

	slices.Reverse(path)
	return path
}

func (dtw *DTWAlignment) predecessorCost(costMatrix [][]float64, i, j int) float64 {
	pi, pj := dtw.findPreviousStep(costMatrix, i, j)
	return costMatrix[pi][pj]
}

// findPreviousStep finds the previous step in backtracking
func (dtw *DTWAlignment) findPreviousStep(costMatrix [][]float64, i, j int) (int, int) {
	costs := []struct {
		cost float64
		i, j int
	}{
		{costMatrix[i-1][j-1], i - 1, j - 1}, // Diagonal
		{costMatrix[i-1][j], i - 1, j},       // Vertical
		{costMatrix[i][j-1], i, j - 1},       // Horizontal
	}

	minIdx := 0
	for idx, c := range costs {
		if c.cost < costs[minIdx].cost {
			minIdx = idx
		}
	}

	return costs[minIdx].i, costs[minIdx].j
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
