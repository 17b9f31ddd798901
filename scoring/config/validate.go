package config

import (
	"errors"
	"fmt"
)

// Validate checks that p contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(p Presets) error {
	var errs []error
	prefix := fmt.Sprintf("presets[%s/%s]", p.Difficulty, p.Mode)

	if !p.Difficulty.IsValid() {
		errs = append(errs, fmt.Errorf("%s.difficulty %q is invalid; valid values: easy, normal, hard", prefix, p.Difficulty))
	}
	if !p.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("%s.mode %q is invalid; valid values: speech, singing", prefix, p.Mode))
	}

	// Scoring
	s := p.Scoring
	if s.PitchWeight < 0 || s.MFCCWeight < 0 || s.PitchWeight+s.MFCCWeight <= 0 {
		errs = append(errs, fmt.Errorf("%s.scoring weights must be non-negative with a positive sum (pitch %.2f, mfcc %.2f)", prefix, s.PitchWeight, s.MFCCWeight))
	}
	if s.PitchTolerance <= 0 {
		errs = append(errs, fmt.Errorf("%s.scoring.pitch_tolerance must be positive, got %.2f", prefix, s.PitchTolerance))
	}
	if s.PitchInnerTolerance < 0 || s.PitchInnerTolerance > s.PitchTolerance {
		errs = append(errs, fmt.Errorf("%s.scoring.pitch_inner_tolerance %.2f is out of range [0, %.2f]", prefix, s.PitchInnerTolerance, s.PitchTolerance))
	}
	if s.PitchEdgeCredit <= 0 || s.PitchEdgeCredit > 1 {
		errs = append(errs, fmt.Errorf("%s.scoring.pitch_edge_credit %.2f is out of range (0, 1]", prefix, s.PitchEdgeCredit))
	}
	if s.PitchFloor <= 0 || s.PitchFloor > s.PitchEdgeCredit {
		errs = append(errs, fmt.Errorf("%s.scoring.pitch_floor %.2f must be positive and at most pitch_edge_credit", prefix, s.PitchFloor))
	}
	if s.ReferenceFrequency <= 0 {
		errs = append(errs, fmt.Errorf("%s.scoring.reference_frequency must be positive", prefix))
	}
	errs = appendUnit(errs, prefix+".scoring.unvoiced_credit", s.UnvoicedCredit)
	errs = appendUnit(errs, prefix+".scoring.voicing_mismatch_credit", s.VoicingMismatchCredit)
	errs = appendUnit(errs, prefix+".scoring.humming_penalty", s.HummingPenalty)
	if s.DTWNormalization <= 0 {
		errs = append(errs, fmt.Errorf("%s.scoring.dtw_normalization must be positive, got %.2f", prefix, s.DTWNormalization))
	}
	if s.SilenceThreshold < 0 {
		errs = append(errs, fmt.Errorf("%s.scoring.silence_threshold must not be negative", prefix))
	}
	if s.ScoreCurve <= 0 {
		errs = append(errs, fmt.Errorf("%s.scoring.score_curve must be positive, got %.2f", prefix, s.ScoreCurve))
	}
	for _, dir := range []Direction{DirectionForward, DirectionReverse} {
		lo, hi := s.MinMaxFor(dir)
		if lo < 0 || hi <= lo {
			errs = append(errs, fmt.Errorf("%s.scoring %s thresholds need 0 <= min < perfect, got %.2f/%.2f", prefix, dir, lo, hi))
		}
	}
	if s.ConsistencyBonus < 0 || s.ConfidenceBonus < 0 {
		errs = append(errs, fmt.Errorf("%s.scoring bonuses must not be negative", prefix))
	}

	// Content detection
	c := p.Content
	if c.PitchStabilityNorm <= 0 || c.PitchContourNorm <= 0 || c.MFCCSpreadNorm <= 0 {
		errs = append(errs, fmt.Errorf("%s.content normalizers must be positive", prefix))
	}
	errs = appendUnit(errs, prefix+".content.speech_threshold", c.SpeechThreshold)
	errs = appendUnit(errs, prefix+".content.singing_threshold", c.SingingThreshold)
	errs = appendUnit(errs, prefix+".content.fallback_confidence", c.FallbackConfidence)
	if c.MinFrames < 1 {
		errs = append(errs, fmt.Errorf("%s.content.min_frames must be at least 1", prefix))
	}

	// Melodic
	m := p.Melodic
	if m.ComplexityBonusMax < 0 || m.IntervalBonusMax < 0 || m.HarmonicBonusMax < 0 {
		errs = append(errs, fmt.Errorf("%s.melodic bonus caps must not be negative", prefix))
	}
	if m.ComplexityBonusMax > 0 && (m.ComplexityRangeNorm <= 0 || m.ComplexityTransitionNorm <= 0) {
		errs = append(errs, fmt.Errorf("%s.melodic complexity normalizers must be positive", prefix))
	}
	if m.HarmonicBonusMax > 0 && m.HarmonicEnergyNorm <= 0 {
		errs = append(errs, fmt.Errorf("%s.melodic.harmonic_energy_norm must be positive", prefix))
	}
	for i := 1; i < len(m.IntervalBands); i++ {
		if m.IntervalBonusMax > 0 && m.IntervalBands[i].MaxError < m.IntervalBands[i-1].MaxError {
			errs = append(errs, fmt.Errorf("%s.melodic.interval_bands must be sorted by max_error", prefix))
			break
		}
	}
	errs = appendUnit(errs, prefix+".melodic.variance_penalty_floor", m.VariancePenaltyFloor)
	if m.VariancePenaltyRatio <= 0 || m.VariancePenaltyRatio > 1 {
		errs = append(errs, fmt.Errorf("%s.melodic.variance_penalty_ratio %.2f is out of range (0, 1]", prefix, m.VariancePenaltyRatio))
	}

	// Musical
	if p.Musical.MinFrames < 1 {
		errs = append(errs, fmt.Errorf("%s.musical.min_frames must be at least 1", prefix))
	}

	// Audio
	a := p.Audio
	if a.FrameSize < 4 {
		errs = append(errs, fmt.Errorf("%s.audio.frame_size must be at least 4, got %d", prefix, a.FrameSize))
	}
	if a.HopSize <= 0 {
		errs = append(errs, fmt.Errorf("%s.audio.hop_size must be positive, got %d", prefix, a.HopSize))
	}
	if a.OnsetThreshold < 0 || a.OnsetWindowMs < 0 || a.ConfidenceGain < 0 {
		errs = append(errs, fmt.Errorf("%s.audio onset and confidence values must not be negative", prefix))
	}

	// Scaling
	sc := p.Scaling
	if !(sc.IncredibleThreshold <= 100 && sc.IncredibleThreshold > sc.GreatThreshold &&
		sc.GreatThreshold > sc.GoodThreshold && sc.GoodThreshold > sc.FairThreshold && sc.FairThreshold > 0) {
		errs = append(errs, fmt.Errorf("%s.scaling feedback thresholds must be strictly descending within (0, 100]", prefix))
	}
	if sc.GarbageScoreMax < 0 || sc.GarbageScoreMax > 100 {
		errs = append(errs, fmt.Errorf("%s.scaling.garbage_score_max %d is out of range [0, 100]", prefix, sc.GarbageScoreMax))
	}
	if sc.MaxTips < 0 || sc.MaxTips > 3 {
		errs = append(errs, fmt.Errorf("%s.scaling.max_tips %d is out of range [0, 3]", prefix, sc.MaxTips))
	}

	// Garbage
	g := p.Garbage
	if g.MinFailedFilters < 2 {
		errs = append(errs, fmt.Errorf("%s.garbage.min_failed_filters must be at least 2, got %d", prefix, g.MinFailedFilters))
	}
	if g.ZCRMin > g.ZCRMax {
		errs = append(errs, fmt.Errorf("%s.garbage zcr_min %.2f exceeds zcr_max %.2f", prefix, g.ZCRMin, g.ZCRMax))
	}
	if g.EntropyFrames < 1 {
		errs = append(errs, fmt.Errorf("%s.garbage.entropy_frames must be at least 1", prefix))
	}
	weights := []struct {
		name  string
		value float64
	}{
		{"mfcc_variance_weight", g.MFCCVarianceWeight},
		{"monotone_weight", g.MonotoneWeight},
		{"oscillation_weight", g.OscillationWeight},
		{"entropy_weight", g.EntropyWeight},
		{"zcr_weight", g.ZCRWeight},
		{"silence_weight", g.SilenceWeight},
		{"humming_weight", g.HummingWeight},
	}
	for _, w := range weights {
		if w.value < 0 {
			errs = append(errs, fmt.Errorf("%s.garbage.%s must not be negative", prefix, w.name))
		}
	}

	return errors.Join(errs...)
}

func appendUnit(errs []error, name string, v float64) []error {
	if v < 0 || v > 1 {
		return append(errs, fmt.Errorf("%s %.2f is out of range [0, 1]", name, v))
	}
	return errs
}
