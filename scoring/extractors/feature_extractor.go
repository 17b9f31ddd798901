package extractors

import (
	"fmt"
	"sync"

	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
	"github.com/RyanBlaney/sonido-reverso/algorithms/spectral"
	"github.com/RyanBlaney/sonido-reverso/algorithms/tonal"
	"github.com/RyanBlaney/sonido-reverso/logging"
)

// FeatureExtractor produces per-frame descriptors. Every method works on a
// single frame, keeps no state between calls and must be safe for concurrent
// use.
type FeatureExtractor interface {
	// Pitch returns the fundamental frequency in Hz, 0 when unvoiced
	Pitch(frame []float64, sampleRate int) float64
	MFCC(frame []float64, sampleRate int) ([]float64, error)
	// SpectralEntropy returns normalized spectral entropy in [0, 1]
	SpectralEntropy(frame []float64, sampleRate int) float64
	// ZeroCrossingRate returns the fraction of sign changes in [0, 1]
	ZeroCrossingRate(frame []float64) float64
	RMS(frame []float64) float64
}

// SpectralParams configures the default extractor
type SpectralParams struct {
	NumCoefficients int                        `json:"num_coefficients"`
	NumMelFilters   int                        `json:"num_mel_filters"`
	LifterCoeff     float64                    `json:"lifter_coeff"`
	Pitch           tonal.PitchDetectionParams `json:"pitch"`
}

// DefaultSpectralParams returns 13 MFCCs over 26 mel bands and a YIN
// detector limited to the human voice range
func DefaultSpectralParams() SpectralParams {
	return SpectralParams{
		NumCoefficients: 13,
		NumMelFilters:   26,
		LifterCoeff:     22.0,
		Pitch:           tonal.DefaultPitchDetectionParams(),
	}
}

// SpectralExtractor is the default FeatureExtractor: YIN pitch, MFCC and
// spectral entropy on a Hann-windowed FFT, plus time-domain ZCR and RMS
type SpectralExtractor struct {
	params  SpectralParams
	fft     *spectral.FFT
	pitch   *tonal.PitchDetector
	entropy *spectral.SpectralEntropy
	logger  logging.Logger

	mu    sync.Mutex
	mfccs map[int]*spectral.MFCC // by sample rate
}

// NewSpectralExtractor creates the default extractor with the given parameters
func NewSpectralExtractor(params SpectralParams) *SpectralExtractor {
	return &SpectralExtractor{
		params:  params,
		fft:     spectral.NewFFT(),
		pitch:   tonal.NewPitchDetectorWithParams(params.Pitch),
		entropy: spectral.NewSpectralEntropy(),
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_extractor",
		}),
		mfccs: make(map[int]*spectral.MFCC),
	}
}

// Pitch implements FeatureExtractor
func (e *SpectralExtractor) Pitch(frame []float64, sampleRate int) float64 {
	result, err := e.pitch.DetectPitch(frame, sampleRate)
	if err != nil {
		e.logger.Debug("Pitch detection skipped frame", logging.Fields{
			"function":    "Pitch",
			"frame_size":  len(frame),
			"sample_rate": sampleRate,
			"error":       err.Error(),
		})
		return 0
	}
	return result.Pitch
}

// MFCC implements FeatureExtractor
func (e *SpectralExtractor) MFCC(frame []float64, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if len(frame) < 2 {
		return nil, fmt.Errorf("frame too short for MFCC: %d samples", len(frame))
	}

	coeffs, err := e.mfccFor(sampleRate).Compute(e.fft.MagnitudeSpectrum(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to compute MFCC: %w", err)
	}
	return coeffs, nil
}

// SpectralEntropy implements FeatureExtractor
func (e *SpectralExtractor) SpectralEntropy(frame []float64, sampleRate int) float64 {
	return e.entropy.Compute(e.fft.MagnitudeSpectrum(frame))
}

// ZeroCrossingRate implements FeatureExtractor
func (e *SpectralExtractor) ZeroCrossingRate(frame []float64) float64 {
	return spectral.ComputeNormalizedZCR(frame)
}

// RMS implements FeatureExtractor
func (e *SpectralExtractor) RMS(frame []float64) float64 {
	return common.RMS(frame)
}

func (e *SpectralExtractor) mfccFor(sampleRate int) *spectral.MFCC {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.mfccs[sampleRate]
	if !ok {
		m = spectral.NewMFCCWithParams(sampleRate, spectral.MFCCParams{
			NumCoefficients: e.params.NumCoefficients,
			NumMelFilters:   e.params.NumMelFilters,
			UseLiftering:    e.params.LifterCoeff > 0,
			LifterCoeff:     e.params.LifterCoeff,
		})
		e.mfccs[sampleRate] = m
	}
	return m
}
