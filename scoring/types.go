package scoring

import (
	"errors"

	"github.com/RyanBlaney/sonido-reverso/scoring/config"
)

var (
	// ErrNotInitialized is returned when scoring is requested before presets
	// have been loaded
	ErrNotInitialized = errors.New("scoring strategy not initialized")

	// ErrInvalidInput is returned for requests that cannot be scored at all,
	// such as a non-positive sample rate
	ErrInvalidInput = errors.New("invalid scoring input")
)

// VocalFeatures are aggregate descriptors of a whole attempt, each in [0, 1]
type VocalFeatures struct {
	PitchStability float64 `json:"pitch_stability"`
	PitchContour   float64 `json:"pitch_contour"`
	MFCCSpread     float64 `json:"mfcc_spread"`
	VoicedRatio    float64 `json:"voiced_ratio"`
}

// VocalAnalysis is the classifier's verdict on an attempt
type VocalAnalysis struct {
	Mode       config.VocalMode `json:"mode"`
	Confidence float64          `json:"confidence"`
	Features   VocalFeatures    `json:"features"`
}

// GarbageAnalysis is the detector's verdict on an attempt
type GarbageAnalysis struct {
	IsGarbage     bool               `json:"is_garbage"`
	Confidence    float64            `json:"confidence"`
	FailedFilters []string           `json:"failed_filters"`
	FilterResults map[string]float64 `json:"filter_results"`
	Humming       bool               `json:"humming"`
}

// SimilarityMetrics holds the two similarity components, each in [0, 1]
type SimilarityMetrics struct {
	Pitch float64 `json:"pitch"`
	MFCC  float64 `json:"mfcc"`
}

// ScoringResult is the outcome of scoring one attempt
type ScoringResult struct {
	Score     int               `json:"score"`     // always within [0, 100]
	RawScore  float64           `json:"raw_score"` // before scaling, may exceed 1
	Metrics   SimilarityMetrics `json:"metrics"`
	Feedback  []string          `json:"feedback"`
	IsGarbage bool              `json:"is_garbage"`
}

// Outcome names the path a scoring call took
type Outcome string

const (
	OutcomeScored   Outcome = "scored"
	OutcomeSilent   Outcome = "silent"
	OutcomeTooShort Outcome = "too_short"
	OutcomeGarbage  Outcome = "garbage"
	OutcomeError    Outcome = "error"
)

// Breakdown records every intermediate term of a scoring call
type Breakdown struct {
	Outcome Outcome          `json:"outcome"`
	Mode    config.VocalMode `json:"mode"`

	ReferenceOnset  int `json:"reference_onset"` // samples skipped before alignment
	AttemptOnset    int `json:"attempt_onset"`
	ReferenceFrames int `json:"reference_frames"`
	AttemptFrames   int `json:"attempt_frames"`

	PitchSimilarity  float64 `json:"pitch_similarity"`
	TimbreSimilarity float64 `json:"timbre_similarity"`
	DTWDistance      float64 `json:"dtw_distance"` // normalized cumulative cost
	WeightedScore    float64 `json:"weighted_score"`

	ComplexityBonus    float64 `json:"complexity_bonus"`
	IntervalBonus      float64 `json:"interval_bonus"`
	HarmonicBonus      float64 `json:"harmonic_bonus"`
	VarianceMultiplier float64 `json:"variance_multiplier"`
	ConsistencyTerm    float64 `json:"consistency_term"`
	ConfidenceTerm     float64 `json:"confidence_term"`
	HummingApplied     bool    `json:"humming_applied"`

	Garbage GarbageAnalysis `json:"garbage"`
}

// Evaluation pairs a result with its breakdown
type Evaluation struct {
	Result    ScoringResult `json:"result"`
	Breakdown Breakdown     `json:"breakdown"`
}

// Input is one scoring request as seen by a strategy
type Input struct {
	Reference  []float32        `json:"-"`
	Attempt    []float32        `json:"-"`
	SampleRate int              `json:"sample_rate"`
	Direction  config.Direction `json:"direction"`
}
