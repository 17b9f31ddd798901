package scoring

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
	"github.com/RyanBlaney/sonido-reverso/logging"
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/scoring/extractors"
)

// ScoringStrategy scores an attempt for one vocal mode
type ScoringStrategy interface {
	Mode() config.VocalMode
	Initialize(presets *config.Presets) error
	UpdatePresets(presets *config.Presets) error
	Presets() (*config.Presets, error)
	Ready() <-chan struct{}
	Score(ctx context.Context, in Input) (ScoringResult, error)
	Evaluate(ctx context.Context, in Input) (Evaluation, error)
	EvaluateWith(ctx context.Context, in Input, presets *config.Presets) (Evaluation, error)
}

// Strategy is the single scoring implementation shared by speech and
// singing; ModeCoefficients carries what differs between them. The active
// presets sit behind an atomic pointer and are replaced, never edited.
type Strategy struct {
	coeffs    ModeCoefficients
	extractor extractors.FeatureExtractor
	detector  *GarbageDetector
	logger    logging.Logger

	presets   atomic.Pointer[config.Presets]
	ready     chan struct{}
	readyOnce sync.Once
}

// NewStrategy creates an uninitialized strategy. Scoring is rejected until
// Initialize installs a presets bundle.
func NewStrategy(coeffs ModeCoefficients, extractor extractors.FeatureExtractor) *Strategy {
	return &Strategy{
		coeffs:    coeffs,
		extractor: extractor,
		detector:  NewGarbageDetector(),
		logger: logging.WithFields(logging.Fields{
			"component": "scoring_strategy",
			"mode":      coeffs.Mode,
		}),
		ready: make(chan struct{}),
	}
}

// NewSpeechStrategy creates an uninitialized speech strategy
func NewSpeechStrategy(extractor extractors.FeatureExtractor) *Strategy {
	return NewStrategy(SpeechCoefficients(), extractor)
}

// NewSingingStrategy creates an uninitialized singing strategy
func NewSingingStrategy(extractor extractors.FeatureExtractor) *Strategy {
	return NewStrategy(SingingCoefficients(), extractor)
}

// Mode reports which vocal mode this strategy scores
func (s *Strategy) Mode() config.VocalMode {
	return s.coeffs.Mode
}

// Initialize installs the first presets bundle and signals readiness.
// Calling it again behaves like UpdatePresets.
func (s *Strategy) Initialize(presets *config.Presets) error {
	if err := s.install(presets); err != nil {
		return err
	}
	s.readyOnce.Do(func() { close(s.ready) })

	s.logger.Info("Strategy initialized", logging.Fields{
		"function":   "Initialize",
		"difficulty": presets.Difficulty,
	})
	return nil
}

// UpdatePresets atomically replaces the active bundle. Calls already in
// flight keep the bundle they started with.
func (s *Strategy) UpdatePresets(presets *config.Presets) error {
	if s.presets.Load() == nil {
		return ErrNotInitialized
	}
	if err := s.install(presets); err != nil {
		return err
	}

	s.logger.Info("Presets updated", logging.Fields{
		"function":   "UpdatePresets",
		"difficulty": presets.Difficulty,
	})
	return nil
}

func (s *Strategy) install(presets *config.Presets) error {
	if presets == nil {
		return fmt.Errorf("%w: nil presets", ErrInvalidInput)
	}
	if presets.Mode != s.coeffs.Mode {
		return fmt.Errorf("%w: %s presets given to %s strategy", ErrInvalidInput, presets.Mode, s.coeffs.Mode)
	}
	if err := config.Validate(*presets); err != nil {
		return fmt.Errorf("invalid presets: %w", err)
	}

	// Private copy so later edits by the caller cannot reach scoring
	snapshot := *presets
	s.presets.Store(&snapshot)
	return nil
}

// Presets returns a copy of the active bundle
func (s *Strategy) Presets() (*config.Presets, error) {
	p := s.presets.Load()
	if p == nil {
		return nil, ErrNotInitialized
	}
	cp := *p
	return &cp, nil
}

// Ready is closed once the strategy has presets
func (s *Strategy) Ready() <-chan struct{} {
	return s.ready
}

// Score scores in against the active presets
func (s *Strategy) Score(ctx context.Context, in Input) (ScoringResult, error) {
	eval, err := s.Evaluate(ctx, in)
	if err != nil {
		return ScoringResult{}, err
	}
	return eval.Result, nil
}

// Evaluate scores in against the active presets and returns the breakdown
func (s *Strategy) Evaluate(ctx context.Context, in Input) (Evaluation, error) {
	p := s.presets.Load()
	if p == nil {
		return Evaluation{}, ErrNotInitialized
	}
	return s.evaluate(ctx, in, p)
}

// EvaluateWith scores in against an explicit presets bundle without touching
// the active one. The strategy must still have been initialized.
func (s *Strategy) EvaluateWith(ctx context.Context, in Input, presets *config.Presets) (Evaluation, error) {
	if s.presets.Load() == nil {
		return Evaluation{}, ErrNotInitialized
	}
	if presets == nil {
		return Evaluation{}, fmt.Errorf("%w: nil presets", ErrInvalidInput)
	}
	snapshot := *presets
	return s.evaluate(ctx, in, &snapshot)
}

func (s *Strategy) evaluate(ctx context.Context, in Input, p *config.Presets) (Evaluation, error) {
	if in.SampleRate <= 0 {
		return Evaluation{}, fmt.Errorf("%w: sample rate %d", ErrInvalidInput, in.SampleRate)
	}

	logger := s.logger.WithContext(ctx).WithFields(logging.Fields{
		"function":   "Evaluate",
		"difficulty": p.Difficulty,
		"direction":  in.Direction,
	})

	b := Breakdown{Mode: s.coeffs.Mode, VarianceMultiplier: 1}

	// Silence gate
	attempt := common.ToFloat64(in.Attempt)
	if common.RMS(attempt) < p.Scoring.SilenceThreshold {
		b.Outcome = OutcomeSilent
		logger.Debug("Attempt below silence threshold")
		return Evaluation{
			Result:    ScoringResult{Feedback: silenceFeedback(s.coeffs.Mode)},
			Breakdown: b,
		}, nil
	}

	// Onset alignment
	reference := common.ToFloat64(in.Reference)
	b.ReferenceOnset = findOnset(reference, in.SampleRate, p.Audio.OnsetThreshold, p.Audio.OnsetWindowMs, s.coeffs.Onset)
	b.AttemptOnset = findOnset(attempt, in.SampleRate, p.Audio.OnsetThreshold, p.Audio.OnsetWindowMs, s.coeffs.Onset)

	ref, att, ok := alignSignals(reference, attempt, b.ReferenceOnset, b.AttemptOnset)
	if !ok || len(att) < p.Audio.FrameSize {
		b.Outcome = OutcomeTooShort
		logger.Debug("Aligned overlap shorter than one frame", logging.Fields{
			"overlap":    len(att),
			"frame_size": p.Audio.FrameSize,
		})
		return Evaluation{
			Result:    ScoringResult{Feedback: []string{msgTooShort}},
			Breakdown: b,
		}, nil
	}

	// Per-frame features for both signals
	refFrames, attFrames, err := s.extractBoth(ctx, ref, att, in.SampleRate, p.Audio)
	if err != nil {
		return Evaluation{}, err
	}
	b.ReferenceFrames, b.AttemptFrames = len(refFrames), len(attFrames)

	// Garbage gate
	b.Garbage = s.detector.Analyze(attFrames, p.Garbage, p.Scoring.ReferenceFrequency)
	if b.Garbage.IsGarbage {
		b.Outcome = OutcomeGarbage
		logger.Info("Attempt rejected as garbage", logging.Fields{
			"failed_filters": b.Garbage.FailedFilters,
			"confidence":     b.Garbage.Confidence,
		})
		return Evaluation{
			Result: ScoringResult{
				Score:     max(0, min(100, p.Scaling.GarbageScoreMax)),
				Feedback:  []string{msgGarbage, msgGarbageTip},
				IsGarbage: true,
			},
			Breakdown: b,
		}, nil
	}

	// Pitch and timbre similarity
	b.PitchSimilarity = pitchSimilarity(refFrames, attFrames, p.Scoring, s.coeffs, p.Musical.MinFrames)
	b.TimbreSimilarity, b.DTWDistance, err = timbreSimilarity(refFrames, attFrames, *p, s.coeffs.Timbre)
	if err != nil {
		logger.Warn("Timbre alignment failed, scoring timbre as 0", logging.Fields{"error": err.Error()})
		b.TimbreSimilarity, b.DTWDistance = 0, 0
	}

	// Weighted base
	b.WeightedScore = b.PitchSimilarity*p.Scoring.PitchWeight + b.TimbreSimilarity*p.Scoring.MFCCWeight
	raw := b.WeightedScore

	// Melodic bonuses
	if s.coeffs.MelodicBonuses {
		b.ComplexityBonus = complexityBonus(refFrames, b.PitchSimilarity, p.Melodic, p.Scoring.ReferenceFrequency)
		b.IntervalBonus = intervalBonus(refFrames, attFrames, p.Melodic, p.Scoring.ReferenceFrequency)
		b.HarmonicBonus = harmonicBonus(attFrames, p.Melodic)
		raw += b.ComplexityBonus + b.IntervalBonus + b.HarmonicBonus
	}

	// Flat delivery of expressive material
	b.VarianceMultiplier = varianceMultiplier(refFrames, attFrames, p.Melodic, p.Scoring.ReferenceFrequency)
	raw *= b.VarianceMultiplier

	// Consistency and confidence
	b.ConsistencyTerm = (1 - math.Abs(b.PitchSimilarity-b.TimbreSimilarity)) * p.Scoring.ConsistencyBonus
	b.ConfidenceTerm = min(1, common.RMS(att)*p.Audio.ConfidenceGain) * p.Scoring.ConfidenceBonus
	raw *= 1 + b.ConsistencyTerm + b.ConfidenceTerm

	// Humming that was not rejected outright
	if b.Garbage.Humming {
		b.HummingApplied = true
		raw *= p.Scoring.HummingPenalty
	}

	// Scale and explain
	score := scaleScore(raw, p.Scoring, in.Direction)
	b.Outcome = OutcomeScored

	logger.Debug("Attempt scored", logging.Fields{
		"score":               score,
		"raw_score":           raw,
		"pitch_similarity":    b.PitchSimilarity,
		"timbre_similarity":   b.TimbreSimilarity,
		"variance_multiplier": b.VarianceMultiplier,
	})

	return Evaluation{
		Result: ScoringResult{
			Score:    score,
			RawScore: raw,
			Metrics: SimilarityMetrics{
				Pitch: b.PitchSimilarity,
				MFCC:  b.TimbreSimilarity,
			},
			Feedback: buildFeedback(score, b, *p, s.coeffs),
		},
		Breakdown: b,
	}, nil
}

// extractBoth derives reference and attempt frames concurrently. Each
// goroutine works only on its own slice and result.
func (s *Strategy) extractBoth(ctx context.Context, ref, att []float64, sampleRate int, audio config.AudioParameters) (refFrames, attFrames []extractors.FeatureFrame, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		defer recoverInto(&err, "reference")
		refFrames, err = extractors.ExtractFrames(gctx, s.extractor, ref, sampleRate, audio.FrameSize, audio.HopSize)
		return err
	})
	g.Go(func() (err error) {
		defer recoverInto(&err, "attempt")
		attFrames, err = extractors.ExtractFrames(gctx, s.extractor, att, sampleRate, audio.FrameSize, audio.HopSize)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("feature extraction: %w", err)
	}
	return refFrames, attFrames, nil
}

// recoverInto turns a panic in an extraction goroutine into an error, since
// the caller's recover cannot see it
func recoverInto(err *error, which string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s extraction panicked: %v", which, r)
	}
}
