package scoring

import (
	"math"

	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/scoring/extractors"
)

// pitchSimilarity compares frames index by index. Voiced pairs earn banded
// credit on their semitone distance, unvoiced pairs the neutral credit and
// mixed pairs the mismatch credit. Fewer than minFrames pairs yields 0.
func pitchSimilarity(reference, attempt []extractors.FeatureFrame, params config.ScoringParameters, coeffs ModeCoefficients, minFrames int) float64 {
	n := min(len(reference), len(attempt))
	if n < max(2, minFrames) {
		return 0
	}

	total := 0.0
	for i := range n {
		r, a := reference[i], attempt[i]
		switch {
		case r.Voiced() && a.Voiced():
			d := math.Abs(common.HzToSemitones(r.PitchHz, params.ReferenceFrequency) -
				common.HzToSemitones(a.PitchHz, params.ReferenceFrequency))
			if coeffs.FoldOctaves {
				d = common.FoldOctave(d)
			}
			total += bandCredit(d, params, coeffs.PitchDecay)
		case !r.Voiced() && !a.Voiced():
			total += params.UnvoicedCredit
		default:
			total += params.VoicingMismatchCredit
		}
	}

	return common.Clamp01(total / float64(n))
}

// bandCredit is 1 inside the inner band, decays to PitchEdgeCredit at the
// tolerance and is PitchFloor beyond it
func bandCredit(distance float64, params config.ScoringParameters, shape DecayShape) float64 {
	if distance <= params.PitchInnerTolerance {
		return 1
	}
	if distance > params.PitchTolerance {
		return params.PitchFloor
	}

	span := params.PitchTolerance - params.PitchInnerTolerance
	if span <= 0 {
		return params.PitchEdgeCredit
	}
	t := (distance - params.PitchInnerTolerance) / span

	switch shape {
	case DecayExponential:
		return math.Pow(params.PitchEdgeCredit, t)
	default:
		return 1 - (1-params.PitchEdgeCredit)*t
	}
}
