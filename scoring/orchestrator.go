package scoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
	"github.com/RyanBlaney/sonido-reverso/logging"
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/scoring/extractors"
	"github.com/RyanBlaney/sonido-reverso/store"
)

// PresetSource supplies the persisted difficulty. It is read once by
// Initialize; an error wrapping store.ErrNoDifficulty means nothing has been
// chosen yet.
type PresetSource interface {
	CurrentDifficulty(ctx context.Context) (config.Difficulty, error)
}

// DifficultySink persists a difficulty chosen through SetDifficulty
type DifficultySink interface {
	SaveDifficulty(ctx context.Context, d config.Difficulty) error
}

// Request is one scoring call as seen by the orchestrator
type Request struct {
	Reference  []float32        `json:"-"`
	Attempt    []float32        `json:"-"`
	SampleRate int              `json:"sample_rate"`
	Direction  config.Direction `json:"direction"`

	// Difficulty overrides the active difficulty for this call only
	Difficulty config.Difficulty `json:"difficulty,omitempty"`
}

// Report is a ScoringResult plus how it was reached
type Report struct {
	Result     ScoringResult     `json:"result"`
	Analysis   VocalAnalysis     `json:"analysis"`
	Engine     Engine            `json:"engine"`
	Difficulty config.Difficulty `json:"difficulty"`
	Breakdown  Breakdown         `json:"breakdown"`
	Duration   time.Duration     `json:"duration"`

	// Failure holds the cause when Result is the processing-error fallback
	Failure string `json:"failure,omitempty"`
}

// Orchestrator classifies the attempt, routes it to a strategy and returns
// that strategy's result. It owns no thresholds of its own.
//
// All exported methods are safe for concurrent use.
type Orchestrator struct {
	extractor  extractors.FeatureExtractor
	classifier *VocalModeClassifier
	strategies map[Engine]ScoringStrategy
	presets    *config.PresetStore

	source  PresetSource
	sink    DifficultySink
	metrics *Metrics
	timeout time.Duration
	logger  logging.Logger

	mu         sync.Mutex // serializes Initialize and SetDifficulty
	difficulty atomic.Value
	ready      chan struct{}
	readyOnce  sync.Once
}

// Option configures an [Orchestrator] during construction
type Option func(*Orchestrator)

// WithPresetSource sets where Initialize reads the starting difficulty from.
// Without one the orchestrator starts on normal.
func WithPresetSource(src PresetSource) Option {
	return func(o *Orchestrator) {
		o.source = src
	}
}

// WithDifficultySink sets where SetDifficulty persists its choice
func WithDifficultySink(sink DifficultySink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

// WithPresetStore replaces the built-in presets
func WithPresetStore(s *config.PresetStore) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.presets = s
		}
	}
}

// WithMetrics sets the instruments the orchestrator records to
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithTimeout bounds every scoring call. A call that runs out of time gets
// the processing-error result.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithStrategy replaces the strategy behind an engine
func WithStrategy(engine Engine, s ScoringStrategy) Option {
	return func(o *Orchestrator) {
		o.strategies[engine] = s
	}
}

// NewOrchestrator creates an orchestrator around extractor. It rejects no
// calls but holds them until Initialize completes.
func NewOrchestrator(extractor extractors.FeatureExtractor, opts ...Option) (*Orchestrator, error) {
	if extractor == nil {
		return nil, fmt.Errorf("%w: nil feature extractor", ErrInvalidInput)
	}

	o := &Orchestrator{
		extractor:  extractor,
		classifier: NewVocalModeClassifier(),
		strategies: map[Engine]ScoringStrategy{
			EngineSpeech:  NewSpeechStrategy(extractor),
			EngineSinging: NewSingingStrategy(extractor),
		},
		presets: config.DefaultPresetStore(),
		logger: logging.WithFields(logging.Fields{
			"component": "scoring_orchestrator",
		}),
		ready: make(chan struct{}),
	}
	o.difficulty.Store(config.DifficultyNormal)

	for _, opt := range opts {
		opt(o)
	}

	if o.metrics == nil {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		o.metrics = m
	}

	return o, nil
}

// Initialize reads the starting difficulty, loads both strategies and
// releases any calls waiting in Score
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	difficulty := config.DifficultyNormal
	if o.source != nil {
		d, err := o.source.CurrentDifficulty(ctx)
		switch {
		case errors.Is(err, store.ErrNoDifficulty):
			o.logger.Info("No saved difficulty, starting on normal", logging.Fields{
				"function": "Initialize",
			})
		case err != nil:
			return fmt.Errorf("failed to read difficulty: %w", err)
		case !d.IsValid():
			return fmt.Errorf("%w: saved difficulty %q", config.ErrUnknownPreset, d)
		default:
			difficulty = d
		}
	}

	for engine, strategy := range o.strategies {
		p, err := o.presets.Get(difficulty, strategy.Mode())
		if err != nil {
			return err
		}
		if err := strategy.Initialize(p); err != nil {
			return fmt.Errorf("failed to initialize %s strategy: %w", engine, err)
		}
	}

	o.difficulty.Store(difficulty)
	o.readyOnce.Do(func() { close(o.ready) })

	o.logger.Info("Orchestrator initialized", logging.Fields{
		"function":   "Initialize",
		"difficulty": difficulty,
	})
	return nil
}

// Ready is closed once Initialize has succeeded
func (o *Orchestrator) Ready() <-chan struct{} {
	return o.ready
}

// Difficulty reports the active difficulty
func (o *Orchestrator) Difficulty() config.Difficulty {
	return o.difficulty.Load().(config.Difficulty)
}

// SetDifficulty swaps both strategies onto the presets for d and persists
// the choice. Calls already in flight finish on the presets they started
// with.
func (o *Orchestrator) SetDifficulty(ctx context.Context, d config.Difficulty) error {
	if !d.IsValid() {
		return fmt.Errorf("%w: difficulty %q", config.ErrUnknownPreset, d)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	select {
	case <-o.ready:
	default:
		return ErrNotInitialized
	}

	for engine, strategy := range o.strategies {
		p, err := o.presets.Get(d, strategy.Mode())
		if err != nil {
			return err
		}
		if err := strategy.UpdatePresets(p); err != nil {
			return fmt.Errorf("failed to update %s strategy: %w", engine, err)
		}
	}
	previous := o.Difficulty()
	o.difficulty.Store(d)

	if o.sink != nil {
		if err := o.sink.SaveDifficulty(ctx, d); err != nil {
			return fmt.Errorf("difficulty changed but not saved: %w", err)
		}
	}

	o.logger.Info("Difficulty changed", logging.Fields{
		"function": "SetDifficulty",
		"from":     previous,
		"to":       d,
	})
	return nil
}

// Score returns the result for req. Before Initialize completes it waits,
// giving up with ErrNotInitialized when ctx ends first. Every other failure
// becomes the processing-error result rather than an error.
func (o *Orchestrator) Score(ctx context.Context, req Request) (ScoringResult, error) {
	report, err := o.ScoreDetailed(ctx, req)
	if err != nil {
		return ScoringResult{}, err
	}
	return report.Result, nil
}

// ScoreDetailed is Score with the classification, routing and breakdown
func (o *Orchestrator) ScoreDetailed(ctx context.Context, req Request) (Report, error) {
	select {
	case <-o.ready:
	case <-ctx.Done():
		return Report{}, fmt.Errorf("%w: %w", ErrNotInitialized, ctx.Err())
	}

	start := time.Now()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = o.Difficulty()
	}

	logger := o.logger.WithContext(ctx).WithFields(logging.Fields{
		"function":   "ScoreDetailed",
		"difficulty": difficulty,
		"direction":  req.Direction,
	})

	report, err := o.run(ctx, req, difficulty)
	if err != nil {
		logger.Error(err, "Scoring failed, returning fallback result", logging.Fields{
			"engine": report.Engine,
		})
		report.Result = ScoringResult{Feedback: []string{msgProcessingError}}
		report.Breakdown = Breakdown{Outcome: OutcomeError, Mode: report.Analysis.Mode, VarianceMultiplier: 1}
		report.Failure = err.Error()
		o.metrics.Errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("engine", string(report.Engine)),
		))
	}
	report.Difficulty = difficulty
	report.Duration = time.Since(start)

	o.record(ctx, report)

	logger.Info("Attempt scored", logging.Fields{
		"engine":      report.Engine,
		"mode":        report.Analysis.Mode,
		"confidence":  report.Analysis.Confidence,
		"outcome":     report.Breakdown.Outcome,
		"score":       report.Result.Score,
		"duration_ms": report.Duration.Milliseconds(),
	})

	return report, nil
}

// run does the actual sequencing. Panics anywhere below are turned into an
// error so the caller always gets a well-formed result.
func (o *Orchestrator) run(ctx context.Context, req Request, difficulty config.Difficulty) (report Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()

	if req.SampleRate <= 0 {
		return report, fmt.Errorf("%w: sample rate %d", ErrInvalidInput, req.SampleRate)
	}

	report.Analysis, err = o.classify(ctx, req)
	if err != nil {
		return report, err
	}

	report.Engine = Route(report.Analysis.Mode)
	strategy, ok := o.strategies[report.Engine]
	if !ok {
		return report, fmt.Errorf("no strategy for engine %s", report.Engine)
	}

	presets, err := o.presets.Get(difficulty, strategy.Mode())
	if err != nil {
		return report, err
	}

	eval, err := strategy.EvaluateWith(ctx, Input{
		Reference:  req.Reference,
		Attempt:    req.Attempt,
		SampleRate: req.SampleRate,
		Direction:  req.Direction,
	}, presets)
	if err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	report.Result = eval.Result
	report.Breakdown = eval.Breakdown
	return report, nil
}

// classify runs the mode classifier over the whole attempt, framed with the
// speech presets so the decision does not depend on which engine wins
func (o *Orchestrator) classify(ctx context.Context, req Request) (VocalAnalysis, error) {
	p, err := o.strategies[EngineSpeech].Presets()
	if err != nil {
		return VocalAnalysis{}, err
	}

	frames, err := extractors.ExtractFrames(ctx, o.extractor, common.ToFloat64(req.Attempt),
		req.SampleRate, p.Audio.FrameSize, p.Audio.HopSize)
	if err != nil {
		return VocalAnalysis{}, fmt.Errorf("classification: %w", err)
	}

	return o.classifier.Classify(frames, p.Content), nil
}

func (o *Orchestrator) record(ctx context.Context, r Report) {
	mode := string(r.Analysis.Mode)
	if mode == "" {
		mode = string(config.ModeUnknown)
	}

	o.metrics.Attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", string(r.Breakdown.Outcome)),
	))
	o.metrics.Duration.Record(ctx, r.Duration.Seconds(), metric.WithAttributes(
		attribute.String("engine", string(r.Engine)),
		attribute.String("outcome", string(r.Breakdown.Outcome)),
	))
	o.metrics.Scores.Record(ctx, int64(r.Result.Score), metric.WithAttributes(
		attribute.String("engine", string(r.Engine)),
		attribute.String("difficulty", string(r.Difficulty)),
	))
	if r.Result.IsGarbage {
		o.metrics.GarbageRejections.Add(ctx, 1, metric.WithAttributes(
			attribute.String("engine", string(r.Engine)),
		))
	}
}
