package scoring

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
	"github.com/RyanBlaney/sonido-reverso/algorithms/stats"
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/scoring/extractors"
)

// timbreSimilarity aligns the MFCC sequences with DTW and converts the
// length-normalized cost to a similarity. It also returns the normalized
// distance for diagnostics.
func timbreSimilarity(reference, attempt []extractors.FeatureFrame, params config.Presets, curve TimbreCurve) (similarity, distance float64, err error) {
	refVecs := mfccVectors(reference, params.Musical.SkipEnergyCoefficient)
	attVecs := mfccVectors(attempt, params.Musical.SkipEnergyCoefficient)

	minFrames := max(2, params.Musical.MinFrames)
	if len(refVecs) < minFrames || len(attVecs) < minFrames {
		return 0, 0, nil
	}

	dtw := stats.NewDTWAlignmentWithParams(params.Musical.DTWBand, stats.EuclideanDistance)
	result, err := dtw.Align(attVecs, refVecs)
	if err != nil {
		return 0, 0, fmt.Errorf("timbre alignment: %w", err)
	}

	distance = result.NormalizedDistance
	return distanceToSimilarity(distance, params.Scoring.DTWNormalization, curve), distance, nil
}

func distanceToSimilarity(distance, norm float64, curve TimbreCurve) float64 {
	if norm <= 0 {
		return 0
	}
	switch curve {
	case TimbreLinearBudget:
		return common.Clamp01(1 - distance/norm)
	default:
		return common.Clamp01(math.Exp(-distance / norm))
	}
}
