package tonal

import (
	"fmt"

	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
)

// PitchDetectionResult contains the outcome of analysing one frame
type PitchDetectionResult struct {
	Pitch      float64 `json:"pitch"`      // Best pitch estimate in Hz, 0 when unvoiced
	Confidence float64 `json:"confidence"` // 1 - CMNDF at the chosen lag (0-1)
	Period     float64 `json:"period"`     // Interpolated period in samples
}

// PitchDetectionParams contains parameters for pitch detection
type PitchDetectionParams struct {
	// Frequency range constraints
	MinFreq float64 `json:"min_freq" yaml:"min_freq"` // Minimum frequency (Hz)
	MaxFreq float64 `json:"max_freq" yaml:"max_freq"` // Maximum frequency (Hz)

	YinThreshold float64 `json:"yin_threshold" yaml:"yin_threshold"` // YIN threshold (0.1-0.5)

	// Frames quieter than this RMS are reported unvoiced without analysis
	SilenceRMS float64 `json:"silence_rms" yaml:"silence_rms"`
}

// DefaultPitchDetectionParams covers the human singing and speaking range
func DefaultPitchDetectionParams() PitchDetectionParams {
	return PitchDetectionParams{
		MinFreq:      80.0,   // Low male voice
		MaxFreq:      1000.0, // High female voice
		YinThreshold: 0.15,
		SilenceRMS:   1e-4,
	}
}

// PitchDetector implements the YIN fundamental frequency estimator.
// It keeps no per-frame state and is safe for concurrent use.
//
// Reference: de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental
// frequency estimator for speech and music"
type PitchDetector struct {
	params PitchDetectionParams
}

// NewPitchDetector creates a new pitch detector with default parameters
func NewPitchDetector() *PitchDetector {
	return NewPitchDetectorWithParams(DefaultPitchDetectionParams())
}

// NewPitchDetectorWithParams creates a pitch detector with custom parameters
func NewPitchDetectorWithParams(params PitchDetectionParams) *PitchDetector {
	return &PitchDetector{params: params}
}

// DetectPitch estimates the fundamental frequency of audioFrame
func (pd *PitchDetector) DetectPitch(audioFrame []float64, sampleRate int) (*PitchDetectionResult, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if len(audioFrame) < 4 {
		return nil, fmt.Errorf("audio frame too short: %d samples", len(audioFrame))
	}

	result := &PitchDetectionResult{}
	if common.RMS(audioFrame) < pd.params.SilenceRMS {
		return result, nil
	}

	halfN := len(audioFrame) / 2

	// Only lags that map into [MinFreq, MaxFreq] are candidates
	minTau := 2
	if pd.params.MaxFreq > 0 {
		minTau = max(minTau, int(float64(sampleRate)/pd.params.MaxFreq))
	}
	maxTau := halfN - 1
	if pd.params.MinFreq > 0 {
		maxTau = min(maxTau, int(float64(sampleRate)/pd.params.MinFreq)+1)
	}
	if minTau >= maxTau {
		return result, nil
	}

	cmndf := pd.cumulativeMeanNormalizedDifference(audioFrame, halfN, maxTau+1)

	// First dip below threshold, followed down to its local minimum
	bestTau := -1
	for tau := minTau; tau <= maxTau; tau++ {
		if cmndf[tau] < pd.params.YinThreshold {
			for tau+1 <= maxTau && cmndf[tau+1] < cmndf[tau] {
				tau++
			}
			bestTau = tau
			break
		}
	}

	if bestTau < 0 {
		return result, nil
	}

	period := parabolicInterpolation(cmndf, bestTau)
	if period <= 0 {
		return result, nil
	}
	frequency := float64(sampleRate) / period

	if frequency >= pd.params.MinFreq && frequency <= pd.params.MaxFreq {
		result.Pitch = frequency
		result.Period = period
		result.Confidence = 1.0 - cmndf[bestTau]
	}

	return result, nil
}

// cumulativeMeanNormalizedDifference computes YIN steps 2 and 3 for lags
// [0, limit)
func (pd *PitchDetector) cumulativeMeanNormalizedDifference(frame []float64, window, limit int) []float64 {
	limit = min(limit, window)

	diff := make([]float64, limit)
	for tau := 1; tau < limit; tau++ {
		sum := 0.0
		for j := range window {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}

	cmndf := make([]float64, limit)
	cmndf[0] = 1.0

	runningSum := 0.0
	for tau := 1; tau < limit; tau++ {
		runningSum += diff[tau]
		if runningSum == 0 {
			cmndf[tau] = 1.0
			continue
		}
		cmndf[tau] = diff[tau] / (runningSum / float64(tau))
	}

	return cmndf
}

// parabolicInterpolation refines a minimum location to sub-sample accuracy
func parabolicInterpolation(data []float64, idx int) float64 {
	if idx <= 0 || idx >= len(data)-1 {
		return float64(idx)
	}

	y1 := data[idx-1]
	y2 := data[idx]
	y3 := data[idx+1]

	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2

	if a == 0 {
		return float64(idx)
	}

	return float64(idx) - b/(2*a)
}
