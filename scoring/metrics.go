package scoring

import (
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all scoring metrics.
const meterName = "github.com/RyanBlaney/sonido-reverso/scoring"

// Metrics holds the OpenTelemetry instruments recorded by the orchestrator.
// All fields are safe for concurrent use.
type Metrics struct {
	// Duration tracks end-to-end scoring latency. Use with attributes:
	//   attribute.String("engine", ...), attribute.String("outcome", ...)
	Duration metric.Float64Histogram

	// Scores tracks the distribution of final 0-100 scores. Use with attributes:
	//   attribute.String("engine", ...), attribute.String("difficulty", ...)
	Scores metric.Int64Histogram

	// Attempts counts scored attempts. Use with attributes:
	//   attribute.String("mode", ...), attribute.String("outcome", ...)
	Attempts metric.Int64Counter

	// GarbageRejections counts attempts rejected by the garbage detector.
	GarbageRejections metric.Int64Counter

	// Errors counts calls that fell back to the processing-error result.
	Errors metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for one
// scoring call, dominated by feature extraction and DTW
var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
}

var scoreBuckets = []float64{
	5, 10, 20, 35, 55, 75, 90, 100,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Duration, err = m.Float64Histogram("reverso.scoring.duration",
		metric.WithDescription("Latency of one scoring call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Scores, err = m.Int64Histogram("reverso.scoring.score",
		metric.WithDescription("Final scores on the 0-100 scale."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Attempts, err = m.Int64Counter("reverso.scoring.attempts",
		metric.WithDescription("Total scoring calls by mode and outcome."),
	); err != nil {
		return nil, err
	}
	if met.GarbageRejections, err = m.Int64Counter("reverso.scoring.garbage_rejections",
		metric.WithDescription("Attempts rejected by the garbage detector."),
	); err != nil {
		return nil, err
	}
	if met.Errors, err = m.Int64Counter("reverso.scoring.errors",
		metric.WithDescription("Scoring calls that returned the processing-error fallback."),
	); err != nil {
		return nil, err
	}

	return met, nil
}
