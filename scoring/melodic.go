package scoring

import (
	"math"

	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/scoring/extractors"
)

// complexityBonus rewards matching material that moves: the reference's pitch
// range and mean step, earned only once pitch similarity clears the gate
func complexityBonus(reference []extractors.FeatureFrame, pitchSim float64, params config.MelodicAnalysisParameters, refHz float64) float64 {
	if params.ComplexityBonusMax <= 0 || pitchSim < params.ComplexityPitchGate {
		return 0
	}

	semitones := voicedSemitones(reference, refHz)
	if len(semitones) < 2 {
		return 0
	}

	rangeScore := common.Clamp01(common.Range(semitones) / params.ComplexityRangeNorm)
	transitionScore := common.Clamp01(common.MeanAbsDiff(semitones) / params.ComplexityTransitionNorm)

	return params.ComplexityBonusMax * pitchSim * (rangeScore + transitionScore) / 2
}

// intervalBonus compares each reference pitch step with the attempt's step
// over the same frames. Only steps where all four frames are voiced and the
// reference actually moves are considered.
func intervalBonus(reference, attempt []extractors.FeatureFrame, params config.MelodicAnalysisParameters, refHz float64) float64 {
	if params.IntervalBonusMax <= 0 {
		return 0
	}

	n := min(len(reference), len(attempt))
	total, count := 0.0, 0
	for i := 1; i < n; i++ {
		if !reference[i-1].Voiced() || !reference[i].Voiced() || !attempt[i-1].Voiced() || !attempt[i].Voiced() {
			continue
		}

		refStep := common.HzToSemitones(reference[i].PitchHz, refHz) - common.HzToSemitones(reference[i-1].PitchHz, refHz)
		if math.Abs(refStep) < params.IntervalMinStep {
			continue
		}
		attStep := common.HzToSemitones(attempt[i].PitchHz, refHz) - common.HzToSemitones(attempt[i-1].PitchHz, refHz)

		total += intervalCredit(math.Abs(refStep-attStep), params.IntervalBands)
		count++
	}
	if count == 0 {
		return 0
	}

	return params.IntervalBonusMax * total / float64(count)
}

func intervalCredit(errSemitones float64, bands [4]config.IntervalBand) float64 {
	for _, band := range bands {
		if errSemitones <= band.MaxError {
			return band.Credit
		}
	}
	return 0
}

// harmonicBonus rewards spectral detail: the mean energy of the attempt's
// MFCCs above c0
func harmonicBonus(attempt []extractors.FeatureFrame, params config.MelodicAnalysisParameters) float64 {
	if params.HarmonicBonusMax <= 0 || params.HarmonicEnergyNorm <= 0 {
		return 0
	}

	vectors := mfccVectors(attempt, true)
	if len(vectors) == 0 {
		return 0
	}

	energy := 0.0
	for _, v := range vectors {
		for _, c := range v {
			energy += c * c
		}
	}
	energy /= float64(len(vectors))

	return params.HarmonicBonusMax * common.Clamp01(energy/params.HarmonicEnergyNorm)
}

// varianceMultiplier penalizes a flat attempt at expressive material. It is
// 1 unless the reference varies by more than VariancePenaltyMinReference and
// the attempt's variance falls below VariancePenaltyRatio of it.
func varianceMultiplier(reference, attempt []extractors.FeatureFrame, params config.MelodicAnalysisParameters, refHz float64) float64 {
	refVar := common.Variance(voicedSemitones(reference, refHz))
	attVar := common.Variance(voicedSemitones(attempt, refHz))

	if refVar <= params.VariancePenaltyMinReference || params.VariancePenaltyRatio <= 0 {
		return 1
	}

	expected := params.VariancePenaltyRatio * refVar
	if attVar >= expected {
		return 1
	}
	return math.Max(params.VariancePenaltyFloor, attVar/expected)
}
