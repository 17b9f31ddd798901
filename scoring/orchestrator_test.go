package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/store"
)

type fakeSettings struct {
	mu      sync.Mutex
	current config.Difficulty
	readErr error
	saved   []config.Difficulty
}

func (f *fakeSettings) CurrentDifficulty(ctx context.Context) (config.Difficulty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", f.readErr
	}
	if f.current == "" {
		return "", fmt.Errorf("settings: %w", store.ErrNoDifficulty)
	}
	return f.current, nil
}

func (f *fakeSettings) SaveDifficulty(ctx context.Context, d config.Difficulty) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = d
	f.saved = append(f.saved, d)
	return nil
}

// panickingStrategy blows up inside scoring
type panickingStrategy struct {
	*Strategy
}

func (p panickingStrategy) EvaluateWith(ctx context.Context, in Input, presets *config.Presets) (Evaluation, error) {
	panic("strategy exploded")
}

// failingStrategy returns an error from scoring
type failingStrategy struct {
	*Strategy
}

func (f failingStrategy) EvaluateWith(ctx context.Context, in Input, presets *config.Presets) (Evaluation, error) {
	return Evaluation{}, errors.New("extractor unavailable")
}

func testMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func counterTotal(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m, ok := findMetric(rm, name)
	if !ok {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: unexpected data type %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func newTestOrchestrator(t *testing.T, ex *stubExtractor, opts ...Option) (*Orchestrator, *sdkmetric.ManualReader) {
	t.Helper()
	m, reader := testMetrics(t)
	opts = append([]Option{WithPresetStore(testPresetStore(t)), WithMetrics(m)}, opts...)
	o, err := NewOrchestrator(ex, opts...)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o, reader
}

// singingRequest is a sustained, steadily rising melody on every frame
func singingRequest() (*stubExtractor, Request) {
	ex := newStubExtractor(
		voicedCode(0, 10, 6, 0, 3, 0),
		voicedCode(1, 10, 0, 6, 0, 3),
		voicedCode(2, 10, 6, 0, 3, 0),
		voicedCode(3, 10, 0, 6, 0, 3),
		voicedCode(4, 10, 6, 0, 3, 0),
	)
	signal := codedSignal(0, 1, 2, 3, 4, 4, 3, 2, 1, 0)
	return ex, Request{Reference: signal, Attempt: signal, SampleRate: testSampleRate, Direction: config.DirectionForward}
}

func TestOrchestratorRoutesSinging(t *testing.T) {
	ex, req := singingRequest()
	o, reader := newTestOrchestrator(t, ex)
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	report, err := o.ScoreDetailed(context.Background(), req)
	if err != nil {
		t.Fatalf("ScoreDetailed: %v", err)
	}

	if report.Analysis.Mode != config.ModeSinging || report.Engine != EngineSinging {
		t.Fatalf("expected singing routing, got %s via %s (features %+v)", report.Analysis.Mode, report.Engine, report.Analysis.Features)
	}
	if report.Breakdown.Mode != config.ModeSinging || report.Breakdown.Outcome != OutcomeScored {
		t.Errorf("unexpected breakdown %+v", report.Breakdown)
	}
	if report.Difficulty != config.DifficultyNormal {
		t.Errorf("expected normal difficulty, got %s", report.Difficulty)
	}
	if report.Result.Score < 90 {
		t.Errorf("expected a near-perfect score for an identical performance, got %d", report.Result.Score)
	}

	rm := collect(t, reader)
	if got := counterTotal(t, rm, "reverso.scoring.attempts"); got != 1 {
		t.Errorf("expected 1 recorded attempt, got %d", got)
	}
	if _, ok := findMetric(rm, "reverso.scoring.duration"); !ok {
		t.Error("duration histogram not recorded")
	}
	if _, ok := findMetric(rm, "reverso.scoring.score"); !ok {
		t.Error("score histogram not recorded")
	}
}

func TestOrchestratorRoutesAmbiguousToSpeech(t *testing.T) {
	// Unvoiced, featureless frames satisfy neither mode
	ex := newStubExtractor(breathCode(5, 1, 1, 1))
	ex.codes[0].energy = 0.1
	signal := codedSignal(repeatCodes(0, 10)...)

	o, _ := newTestOrchestrator(t, ex)
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	report, err := o.ScoreDetailed(context.Background(), Request{Reference: signal, Attempt: signal, SampleRate: testSampleRate})
	if err != nil {
		t.Fatalf("ScoreDetailed: %v", err)
	}
	if report.Analysis.Mode != config.ModeSpeech || report.Engine != EngineSpeech {
		t.Errorf("expected the speech fallback, got %s via %s", report.Analysis.Mode, report.Engine)
	}
	if report.Analysis.Confidence != config.DefaultContentDetectionParameters().FallbackConfidence {
		t.Errorf("expected the fallback confidence, got %f", report.Analysis.Confidence)
	}
}

func TestOrchestratorScoreMatchesStrategy(t *testing.T) {
	ex, req := singingRequest()
	o, _ := newTestOrchestrator(t, ex)
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	result, err := o.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	direct := newReadyStrategy(t, SingingCoefficients(), ex, config.DifficultyNormal)
	want, err := direct.Score(context.Background(), Input{
		Reference:  req.Reference,
		Attempt:    req.Attempt,
		SampleRate: req.SampleRate,
		Direction:  req.Direction,
	})
	if err != nil {
		t.Fatalf("Strategy.Score: %v", err)
	}

	if result.Score != want.Score || result.RawScore != want.RawScore {
		t.Errorf("orchestrator altered the strategy result: %+v vs %+v", result, want)
	}
}

func TestOrchestratorWaitsForInitialize(t *testing.T) {
	ex, req := singingRequest()
	o, _ := newTestOrchestrator(t, ex)

	done := make(chan error, 1)
	go func() {
		_, err := o.Score(context.Background(), req)
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("Score returned before Initialize: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	if err := o.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("queued Score failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("queued Score never completed")
	}
}

func TestOrchestratorRejectsWhenContextEndsFirst(t *testing.T) {
	ex, req := singingRequest()
	o, _ := newTestOrchestrator(t, ex)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Score(ctx, req)
	if !errors.Is(err, ErrNotInitialized) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected ErrNotInitialized wrapping context.Canceled, got %v", err)
	}
}

func TestOrchestratorInitializeDifficulty(t *testing.T) {
	tests := []struct {
		name     string
		settings *fakeSettings
		want     config.Difficulty
		wantErr  bool
	}{
		{"nothing saved", &fakeSettings{}, config.DifficultyNormal, false},
		{"saved hard", &fakeSettings{current: config.DifficultyHard}, config.DifficultyHard, false},
		{"read failure", &fakeSettings{readErr: errors.New("disk gone")}, "", true},
		{"corrupt value", &fakeSettings{current: "nightmare"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, _ := singingRequest()
			o, _ := newTestOrchestrator(t, ex, WithPresetSource(tt.settings))

			err := o.Initialize(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				select {
				case <-o.Ready():
					t.Error("ready after a failed Initialize")
				default:
				}
				return
			}
			if err != nil {
				t.Fatalf("Initialize: %v", err)
			}
			if o.Difficulty() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, o.Difficulty())
			}
			for engine, s := range o.strategies {
				p, err := s.Presets()
				if err != nil {
					t.Fatalf("%s presets: %v", engine, err)
				}
				if p.Difficulty != tt.want {
					t.Errorf("%s strategy on %s, want %s", engine, p.Difficulty, tt.want)
				}
			}
		})
	}
}

func TestOrchestratorSetDifficulty(t *testing.T) {
	settings := &fakeSettings{}
	ex, req := singingRequest()
	o, _ := newTestOrchestrator(t, ex, WithPresetSource(settings), WithDifficultySink(settings))
	ctx := context.Background()

	if err := o.SetDifficulty(ctx, config.DifficultyEasy); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized before Initialize, got %v", err)
	}
	if err := o.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if err := o.SetDifficulty(ctx, config.DifficultyHard); err != nil {
		t.Fatalf("SetDifficulty: %v", err)
	}
	if o.Difficulty() != config.DifficultyHard {
		t.Errorf("expected hard, got %s", o.Difficulty())
	}
	if len(settings.saved) != 1 || settings.saved[0] != config.DifficultyHard {
		t.Errorf("expected hard to be persisted, got %v", settings.saved)
	}

	report, err := o.ScoreDetailed(ctx, req)
	if err != nil {
		t.Fatalf("ScoreDetailed: %v", err)
	}
	if report.Difficulty != config.DifficultyHard {
		t.Errorf("expected the call to run on hard, got %s", report.Difficulty)
	}

	if err := o.SetDifficulty(ctx, config.Difficulty("nightmare")); err == nil {
		t.Error("expected an unknown difficulty to be rejected")
	}
	if o.Difficulty() != config.DifficultyHard {
		t.Errorf("rejected change altered the difficulty to %s", o.Difficulty())
	}
}

func TestOrchestratorRequestDifficultyOverride(t *testing.T) {
	ex, req := singingRequest()
	o, _ := newTestOrchestrator(t, ex)
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	req.Difficulty = config.DifficultyEasy
	report, err := o.ScoreDetailed(context.Background(), req)
	if err != nil {
		t.Fatalf("ScoreDetailed: %v", err)
	}
	if report.Difficulty != config.DifficultyEasy {
		t.Errorf("expected easy for this call, got %s", report.Difficulty)
	}
	if o.Difficulty() != config.DifficultyNormal {
		t.Errorf("per-call override changed the active difficulty to %s", o.Difficulty())
	}
}

func TestOrchestratorFallbacks(t *testing.T) {
	tests := []struct {
		name string
		opts func(ex *stubExtractor) []Option
		req  func(req Request) Request
	}{
		{
			name: "strategy panic",
			opts: func(ex *stubExtractor) []Option {
				return []Option{WithStrategy(EngineSinging, panickingStrategy{NewSingingStrategy(ex)})}
			},
		},
		{
			name: "strategy error",
			opts: func(ex *stubExtractor) []Option {
				return []Option{WithStrategy(EngineSinging, failingStrategy{NewSingingStrategy(ex)})}
			},
		},
		{
			name: "bad sample rate",
			req: func(req Request) Request {
				req.SampleRate = 0
				return req
			},
		},
		{
			name: "unknown difficulty override",
			req: func(req Request) Request {
				req.Difficulty = "nightmare"
				return req
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, req := singingRequest()
			var opts []Option
			if tt.opts != nil {
				opts = tt.opts(ex)
			}
			if tt.req != nil {
				req = tt.req(req)
			}

			o, reader := newTestOrchestrator(t, ex, opts...)
			if err := o.Initialize(context.Background()); err != nil {
				t.Fatalf("Initialize: %v", err)
			}

			report, err := o.ScoreDetailed(context.Background(), req)
			if err != nil {
				t.Fatalf("expected a fallback result, got error %v", err)
			}
			if report.Result.Score != 0 || report.Result.IsGarbage {
				t.Errorf("unexpected fallback result %+v", report.Result)
			}
			if len(report.Result.Feedback) != 1 || !strings.Contains(report.Result.Feedback[0], "processing error") {
				t.Errorf("expected processing-error feedback, got %q", report.Result.Feedback)
			}
			if report.Breakdown.Outcome != OutcomeError || report.Failure == "" {
				t.Errorf("expected an error outcome with a cause, got %s / %q", report.Breakdown.Outcome, report.Failure)
			}

			if got := counterTotal(t, collect(t, reader), "reverso.scoring.errors"); got != 1 {
				t.Errorf("expected 1 recorded error, got %d", got)
			}
		})
	}
}

func TestOrchestratorTimeout(t *testing.T) {
	ex, req := singingRequest()
	ex.delay = 2 * time.Millisecond
	o, _ := newTestOrchestrator(t, ex, WithTimeout(time.Millisecond))
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	report, err := o.ScoreDetailed(context.Background(), req)
	if err != nil {
		t.Fatalf("ScoreDetailed: %v", err)
	}
	if report.Breakdown.Outcome != OutcomeError {
		t.Errorf("expected a timed-out call to fall back, got %s", report.Breakdown.Outcome)
	}
	if !strings.Contains(report.Failure, context.DeadlineExceeded.Error()) {
		t.Errorf("expected a deadline failure, got %q", report.Failure)
	}
}

func TestOrchestratorCountsGarbage(t *testing.T) {
	ex := melodyExtractor()
	o, reader := newTestOrchestrator(t, ex)
	if err := o.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	result, err := o.Score(context.Background(), Request{
		Reference:  codedSignal(0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1),
		Attempt:    codedSignal(repeatCodes(2, 12)...),
		SampleRate: testSampleRate,
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !result.IsGarbage {
		t.Fatalf("expected a garbage verdict, got %+v", result)
	}
	if got := counterTotal(t, collect(t, reader), "reverso.scoring.garbage_rejections"); got != 1 {
		t.Errorf("expected 1 garbage rejection, got %d", got)
	}
}

func TestNewOrchestratorRequiresExtractor(t *testing.T) {
	if _, err := NewOrchestrator(nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
