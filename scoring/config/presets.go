package config

// Presets is the full tuning bundle for one (Difficulty, VocalMode) pair.
// It holds only values and fixed-size arrays, so a plain assignment copies
// it completely. Once handed to a strategy a bundle is treated as immutable;
// changing difficulty installs a different bundle instead of editing one.
type Presets struct {
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
	Mode       VocalMode  `json:"mode" yaml:"mode"`

	Scoring ScoringParameters           `json:"scoring" yaml:"scoring"`
	Content ContentDetectionParameters  `json:"content" yaml:"content"`
	Melodic MelodicAnalysisParameters   `json:"melodic" yaml:"melodic"`
	Musical MusicalSimilarityParameters `json:"musical" yaml:"musical"`
	Audio   AudioParameters             `json:"audio" yaml:"audio"`
	Scaling ScoreScalingParameters      `json:"scaling" yaml:"scaling"`
	Garbage GarbageDetectionParameters  `json:"garbage" yaml:"garbage"`
}

// ScoringParameters weights and shapes the similarity metrics
type ScoringParameters struct {
	PitchWeight float64 `json:"pitch_weight" yaml:"pitch_weight"`
	MFCCWeight  float64 `json:"mfcc_weight" yaml:"mfcc_weight"`

	// Pitch bands, in semitones
	PitchTolerance      float64 `json:"pitch_tolerance" yaml:"pitch_tolerance"`
	PitchInnerTolerance float64 `json:"pitch_inner_tolerance" yaml:"pitch_inner_tolerance"`
	PitchEdgeCredit     float64 `json:"pitch_edge_credit" yaml:"pitch_edge_credit"` // credit at exactly PitchTolerance
	PitchFloor          float64 `json:"pitch_floor" yaml:"pitch_floor"`             // credit beyond PitchTolerance, never 0
	ReferenceFrequency  float64 `json:"reference_frequency" yaml:"reference_frequency"`

	UnvoicedCredit        float64 `json:"unvoiced_credit" yaml:"unvoiced_credit"`                 // both frames unvoiced
	VoicingMismatchCredit float64 `json:"voicing_mismatch_credit" yaml:"voicing_mismatch_credit"` // exactly one frame voiced

	DTWNormalization float64 `json:"dtw_normalization" yaml:"dtw_normalization"`
	SilenceThreshold float64 `json:"silence_threshold" yaml:"silence_threshold"`
	ScoreCurve       float64 `json:"score_curve" yaml:"score_curve"`

	ForwardMinScore     float64 `json:"forward_min_score" yaml:"forward_min_score"`
	ForwardPerfectScore float64 `json:"forward_perfect_score" yaml:"forward_perfect_score"`
	ReverseMinScore     float64 `json:"reverse_min_score" yaml:"reverse_min_score"`
	ReversePerfectScore float64 `json:"reverse_perfect_score" yaml:"reverse_perfect_score"`

	ConsistencyBonus float64 `json:"consistency_bonus" yaml:"consistency_bonus"`
	ConfidenceBonus  float64 `json:"confidence_bonus" yaml:"confidence_bonus"`

	// Multiplier applied when humming was detected but not rejected
	HummingPenalty float64 `json:"humming_penalty" yaml:"humming_penalty"`
}

// ContentDetectionParameters drives the speech/singing classifier
type ContentDetectionParameters struct {
	PitchStabilityNorm float64 `json:"pitch_stability_norm" yaml:"pitch_stability_norm"` // Hz of std dev that counts as fully unstable
	PitchContourNorm   float64 `json:"pitch_contour_norm" yaml:"pitch_contour_norm"`     // Hz of mean frame-to-frame motion
	MFCCSpreadNorm     float64 `json:"mfcc_spread_norm" yaml:"mfcc_spread_norm"`

	SpeechInstabilityWeight float64 `json:"speech_instability_weight" yaml:"speech_instability_weight"`
	SpeechFlatnessWeight    float64 `json:"speech_flatness_weight" yaml:"speech_flatness_weight"`
	SpeechSpreadWeight      float64 `json:"speech_spread_weight" yaml:"speech_spread_weight"`

	SingingStabilityWeight float64 `json:"singing_stability_weight" yaml:"singing_stability_weight"`
	SingingContourWeight   float64 `json:"singing_contour_weight" yaml:"singing_contour_weight"`
	SingingVoicedWeight    float64 `json:"singing_voiced_weight" yaml:"singing_voiced_weight"`

	SpeechThreshold    float64 `json:"speech_threshold" yaml:"speech_threshold"`
	SingingThreshold   float64 `json:"singing_threshold" yaml:"singing_threshold"`
	FallbackConfidence float64 `json:"fallback_confidence" yaml:"fallback_confidence"`
	MinFrames          int     `json:"min_frames" yaml:"min_frames"`
}

// IntervalBand awards Credit when a melodic interval is off by at most
// MaxError semitones
type IntervalBand struct {
	MaxError float64 `json:"max_error" yaml:"max_error"`
	Credit   float64 `json:"credit" yaml:"credit"`
}

// MelodicAnalysisParameters covers the singing bonuses and the variance penalty
type MelodicAnalysisParameters struct {
	ComplexityBonusMax       float64 `json:"complexity_bonus_max" yaml:"complexity_bonus_max"`
	ComplexityRangeNorm      float64 `json:"complexity_range_norm" yaml:"complexity_range_norm"`           // semitones
	ComplexityTransitionNorm float64 `json:"complexity_transition_norm" yaml:"complexity_transition_norm"` // semitones per frame
	ComplexityPitchGate      float64 `json:"complexity_pitch_gate" yaml:"complexity_pitch_gate"`           // min pitch similarity to earn it

	IntervalBonusMax float64         `json:"interval_bonus_max" yaml:"interval_bonus_max"`
	IntervalBands    [4]IntervalBand `json:"interval_bands" yaml:"interval_bands"`
	IntervalMinStep  float64         `json:"interval_min_step" yaml:"interval_min_step"` // reference steps smaller than this are ignored

	HarmonicBonusMax   float64 `json:"harmonic_bonus_max" yaml:"harmonic_bonus_max"`
	HarmonicEnergyNorm float64 `json:"harmonic_energy_norm" yaml:"harmonic_energy_norm"`

	VariancePenaltyMinReference float64 `json:"variance_penalty_min_reference" yaml:"variance_penalty_min_reference"` // semitones²
	VariancePenaltyRatio        float64 `json:"variance_penalty_ratio" yaml:"variance_penalty_ratio"`
	VariancePenaltyFloor        float64 `json:"variance_penalty_floor" yaml:"variance_penalty_floor"`
}

// MusicalSimilarityParameters controls the timbre alignment
type MusicalSimilarityParameters struct {
	SkipEnergyCoefficient bool `json:"skip_energy_coefficient" yaml:"skip_energy_coefficient"` // drop c0 before DTW
	DTWBand               int  `json:"dtw_band" yaml:"dtw_band"`                               // <= 0 means unconstrained
	MinFrames             int  `json:"min_frames" yaml:"min_frames"`
}

// AudioParameters controls framing and onset alignment
type AudioParameters struct {
	FrameSize      int     `json:"frame_size" yaml:"frame_size"`
	HopSize        int     `json:"hop_size" yaml:"hop_size"`
	OnsetThreshold float64 `json:"onset_threshold" yaml:"onset_threshold"`
	OnsetWindowMs  float64 `json:"onset_window_ms" yaml:"onset_window_ms"` // sustained-RMS window
	ConfidenceGain float64 `json:"confidence_gain" yaml:"confidence_gain"` // attempt RMS multiplier for the confidence bonus
}

// ScoreScalingParameters maps final scores to feedback
type ScoreScalingParameters struct {
	IncredibleThreshold int `json:"incredible_threshold" yaml:"incredible_threshold"`
	GreatThreshold      int `json:"great_threshold" yaml:"great_threshold"`
	GoodThreshold       int `json:"good_threshold" yaml:"good_threshold"`
	FairThreshold       int `json:"fair_threshold" yaml:"fair_threshold"`
	GarbageScoreMax     int `json:"garbage_score_max" yaml:"garbage_score_max"`

	MaxTips      int     `json:"max_tips" yaml:"max_tips"`
	TipThreshold float64 `json:"tip_threshold" yaml:"tip_threshold"` // metric value below which a tip is offered
}

// GarbageDetectionParameters configures the multi-filter garbage detector
type GarbageDetectionParameters struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	MFCCVarianceMin    float64 `json:"mfcc_variance_min" yaml:"mfcc_variance_min"`
	MFCCVarianceWeight float64 `json:"mfcc_variance_weight" yaml:"mfcc_variance_weight"`

	MonotoneStdDev         float64 `json:"monotone_std_dev" yaml:"monotone_std_dev"` // semitones
	MonotoneVoicedRatioMax float64 `json:"monotone_voiced_ratio_max" yaml:"monotone_voiced_ratio_max"`
	MonotoneWeight         float64 `json:"monotone_weight" yaml:"monotone_weight"`

	OscillationMax     float64 `json:"oscillation_max" yaml:"oscillation_max"`
	OscillationMinStep float64 `json:"oscillation_min_step" yaml:"oscillation_min_step"` // semitones
	OscillationWeight  float64 `json:"oscillation_weight" yaml:"oscillation_weight"`

	EntropyFrames         int     `json:"entropy_frames" yaml:"entropy_frames"`
	EntropyMin            float64 `json:"entropy_min" yaml:"entropy_min"`
	EntropyVoicedRatioMax float64 `json:"entropy_voiced_ratio_max" yaml:"entropy_voiced_ratio_max"`
	EntropyWeight         float64 `json:"entropy_weight" yaml:"entropy_weight"`

	ZCRMin    float64 `json:"zcr_min" yaml:"zcr_min"`
	ZCRMax    float64 `json:"zcr_max" yaml:"zcr_max"`
	ZCRWeight float64 `json:"zcr_weight" yaml:"zcr_weight"`

	SilenceFrameRMS float64 `json:"silence_frame_rms" yaml:"silence_frame_rms"`
	SilenceRatioMin float64 `json:"silence_ratio_min" yaml:"silence_ratio_min"`
	SilenceWeight   float64 `json:"silence_weight" yaml:"silence_weight"`

	HummingMFCCVarianceMax float64 `json:"humming_mfcc_variance_max" yaml:"humming_mfcc_variance_max"`
	HummingEntropyMax      float64 `json:"humming_entropy_max" yaml:"humming_entropy_max"`
	HummingZCRMax          float64 `json:"humming_zcr_max" yaml:"humming_zcr_max"`
	HummingWeight          float64 `json:"humming_weight" yaml:"humming_weight"`

	ScoreThreshold   float64 `json:"score_threshold" yaml:"score_threshold"`
	MinFailedFilters int     `json:"min_failed_filters" yaml:"min_failed_filters"`
}

// MinMaxFor returns the scaling thresholds for a challenge direction
func (s ScoringParameters) MinMaxFor(direction Direction) (minScore, perfectScore float64) {
	if direction == DirectionReverse {
		return s.ReverseMinScore, s.ReversePerfectScore
	}
	return s.ForwardMinScore, s.ForwardPerfectScore
}
