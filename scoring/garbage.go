package scoring

import (
	"math"

	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
	"github.com/RyanBlaney/sonido-reverso/logging"
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/scoring/extractors"
)

// Filter names reported in GarbageAnalysis.FailedFilters
const (
	FilterMFCCVariance    = "mfcc_variance"
	FilterMonotone        = "monotone"
	FilterOscillation     = "oscillation"
	FilterSpectralEntropy = "spectral_entropy"
	FilterZeroCrossing    = "zero_crossing_rate"
	FilterSilenceRatio    = "silence_ratio"
)

// GarbageDetector rejects attempts that are not genuine speech or singing.
// Each filter adds its weight to a garbage score; an attempt is garbage only
// when the score clears the threshold and enough filters failed on their own.
type GarbageDetector struct {
	logger logging.Logger
}

// NewGarbageDetector creates a new garbage detector
func NewGarbageDetector() *GarbageDetector {
	return &GarbageDetector{
		logger: logging.WithFields(logging.Fields{
			"component": "garbage_detector",
		}),
	}
}

// Analyze runs every filter over the attempt frames. refHz anchors the
// semitone scale used by the pitch filters.
func (gd *GarbageDetector) Analyze(frames []extractors.FeatureFrame, params config.GarbageDetectionParameters, refHz float64) GarbageAnalysis {
	analysis := GarbageAnalysis{
		FailedFilters: []string{},
		FilterResults: map[string]float64{},
	}
	if !params.Enabled || len(frames) == 0 {
		return analysis
	}

	score := 0.0
	fail := func(name string, weight float64) {
		analysis.FailedFilters = append(analysis.FailedFilters, name)
		score += weight
	}

	// Repetition: timbre that never changes
	mfccVar := mfccVariance(frames)
	analysis.FilterResults[FilterMFCCVariance] = mfccVar
	if mfccVar < params.MFCCVarianceMin {
		fail(FilterMFCCVariance, params.MFCCVarianceWeight)
	}

	// Pitch contour: monotone only counts when little is voiced, so a
	// steadily held sung note is not condemned. Without two voiced frames
	// there is no contour to judge.
	voiced := voicedSemitones(frames, refHz)
	ratio := voicedRatio(frames)
	pitchStd := common.StandardDeviation(voiced)
	analysis.FilterResults["voiced_ratio"] = ratio
	analysis.FilterResults["pitch_std_dev"] = pitchStd
	if len(voiced) >= 2 && pitchStd < params.MonotoneStdDev && ratio < params.MonotoneVoicedRatioMax {
		fail(FilterMonotone, params.MonotoneWeight)
	}

	oscillation := oscillationRate(voiced, params.OscillationMinStep)
	analysis.FilterResults[FilterOscillation] = oscillation
	if oscillation > params.OscillationMax {
		fail(FilterOscillation, params.OscillationWeight)
	}

	// Spectral entropy over the opening frames, gated on voicing for the
	// same reason as the monotone filter
	head := frames[:min(len(frames), params.EntropyFrames)]
	entropy := meanOf(head, func(f extractors.FeatureFrame) float64 { return f.Entropy })
	analysis.FilterResults[FilterSpectralEntropy] = entropy
	if entropy < params.EntropyMin && ratio < params.EntropyVoicedRatioMax {
		fail(FilterSpectralEntropy, params.EntropyWeight)
	}

	// Zero-crossing rate outside the vocal band
	zcr := meanOf(frames, func(f extractors.FeatureFrame) float64 { return f.ZCR })
	analysis.FilterResults[FilterZeroCrossing] = zcr
	if zcr < params.ZCRMin || zcr > params.ZCRMax {
		fail(FilterZeroCrossing, params.ZCRWeight)
	}

	// Real performances breathe; continuous sources do not
	silence := silenceRatio(frames, params.SilenceFrameRMS)
	analysis.FilterResults[FilterSilenceRatio] = silence
	if silence < params.SilenceRatioMin {
		fail(FilterSilenceRatio, params.SilenceWeight)
	}

	// Humming reuses the values above and is never a failed filter
	if mfccVar < params.HummingMFCCVarianceMax && entropy < params.HummingEntropyMax && zcr < params.HummingZCRMax {
		analysis.Humming = true
		score += params.HummingWeight
	}
	analysis.FilterResults["humming"] = boolToFloat(analysis.Humming)
	analysis.FilterResults["garbage_score"] = score

	analysis.IsGarbage = score > params.ScoreThreshold && len(analysis.FailedFilters) >= params.MinFailedFilters
	analysis.Confidence = common.Clamp01(score)

	gd.logger.Debug("Garbage analysis complete", logging.Fields{
		"function":       "Analyze",
		"garbage_score":  score,
		"failed_filters": analysis.FailedFilters,
		"is_garbage":     analysis.IsGarbage,
		"humming":        analysis.Humming,
	})

	return analysis
}

// oscillationRate is the share of direction reversals between consecutive
// pitch steps of at least minStep semitones. Fewer than three such steps
// yields 0.
func oscillationRate(semitones []float64, minStep float64) float64 {
	var directions []float64
	for i := 1; i < len(semitones); i++ {
		step := semitones[i] - semitones[i-1]
		if math.Abs(step) >= minStep {
			directions = append(directions, math.Copysign(1, step))
		}
	}
	if len(directions) < 3 {
		return 0
	}

	reversals := 0
	for i := 1; i < len(directions); i++ {
		if directions[i] != directions[i-1] {
			reversals++
		}
	}
	return float64(reversals) / float64(len(directions)-1)
}

func silenceRatio(frames []extractors.FeatureFrame, threshold float64) float64 {
	if len(frames) == 0 {
		return 0
	}
	silent := 0
	for _, f := range frames {
		if f.Energy < threshold {
			silent++
		}
	}
	return float64(silent) / float64(len(frames))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
