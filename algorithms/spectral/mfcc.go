package spectral

import (
	"fmt"
	"math"
	"sync"
)

// MFCC computes Mel-Frequency Cepstral Coefficients from magnitude spectra.
// Filter banks are built lazily per FFT size and cached, so one MFCC value
// can be shared by concurrent callers.
type MFCC struct {
	numCoefficients int
	numMelFilters   int
	sampleRate      int
	lowFreq         float64
	highFreq        float64
	useLiftering    bool
	lifterCoeff     float64

	melScale  *MelScale
	dctMatrix [][]float64

	mu          sync.Mutex
	filterBanks map[int][][]float64
}

// MFCCParams contains parameters for MFCC computation
type MFCCParams struct {
	NumCoefficients int     `json:"num_coefficients"` // Number of MFCC coefficients (default: 13)
	NumMelFilters   int     `json:"num_mel_filters"`  // Number of mel filter bank filters (default: 26)
	LowFreq         float64 `json:"low_freq"`         // Low frequency bound (default: 0)
	HighFreq        float64 `json:"high_freq"`        // High frequency bound (default: sampleRate/2)
	UseLiftering    bool    `json:"use_liftering"`    // Apply liftering (default: true)
	LifterCoeff     float64 `json:"lifter_coeff"`     // Liftering coefficient (default: 22)
}

// NewMFCC creates a new MFCC computer with default parameters
func NewMFCC(sampleRate, numCoefficients int) *MFCC {
	return NewMFCCWithParams(sampleRate, MFCCParams{
		NumCoefficients: numCoefficients,
		NumMelFilters:   26,
		HighFreq:        float64(sampleRate) / 2.0,
		UseLiftering:    true,
		LifterCoeff:     22.0,
	})
}

// NewMFCCWithParams creates a new MFCC computer with custom parameters
func NewMFCCWithParams(sampleRate int, params MFCCParams) *MFCC {
	if params.NumCoefficients <= 0 {
		params.NumCoefficients = 13
	}
	if params.NumMelFilters <= 0 {
		params.NumMelFilters = 26
	}
	if params.HighFreq <= 0 {
		params.HighFreq = float64(sampleRate) / 2.0
	}
	if params.LifterCoeff <= 0 {
		params.LifterCoeff = 22.0
	}

	mfcc := &MFCC{
		numCoefficients: params.NumCoefficients,
		numMelFilters:   params.NumMelFilters,
		sampleRate:      sampleRate,
		lowFreq:         params.LowFreq,
		highFreq:        params.HighFreq,
		useLiftering:    params.UseLiftering,
		lifterCoeff:     params.LifterCoeff,
		melScale:        NewMelScale(),
		filterBanks:     make(map[int][][]float64),
	}
	mfcc.createDCTMatrix()

	return mfcc
}

// Compute calculates MFCC coefficients from a magnitude spectrum of
// fftSize/2+1 bins
func (mfcc *MFCC) Compute(magnitudeSpectrum []float64) ([]float64, error) {
	if len(magnitudeSpectrum) < 2 {
		return nil, fmt.Errorf("magnitude spectrum too short: %d bins", len(magnitudeSpectrum))
	}

	filterBank, err := mfcc.filterBankFor((len(magnitudeSpectrum) - 1) * 2)
	if err != nil {
		return nil, err
	}

	powerSpectrum := make([]float64, len(magnitudeSpectrum))
	for i, mag := range magnitudeSpectrum {
		powerSpectrum[i] = mag * mag
	}

	melSpectrum := mfcc.melScale.ApplyFilterBank(powerSpectrum, filterBank)

	// Floor avoids log(0) on silent bands
	logMelSpectrum := make([]float64, len(melSpectrum))
	for i, mel := range melSpectrum {
		logMelSpectrum[i] = math.Log(math.Max(mel, 1e-10))
	}

	coeffs := mfcc.applyDCT(logMelSpectrum)
	if mfcc.useLiftering {
		coeffs = mfcc.applyLiftering(coeffs)
	}

	return coeffs, nil
}

// NumCoefficients reports how many coefficients Compute returns
func (mfcc *MFCC) NumCoefficients() int {
	return mfcc.numCoefficients
}

func (mfcc *MFCC) filterBankFor(fftSize int) ([][]float64, error) {
	mfcc.mu.Lock()
	defer mfcc.mu.Unlock()

	if bank, ok := mfcc.filterBanks[fftSize]; ok {
		return bank, nil
	}

	highFreq := math.Min(mfcc.highFreq, float64(mfcc.sampleRate)/2.0)
	bank := mfcc.melScale.CreateMelFilterBank(mfcc.numMelFilters, fftSize, mfcc.sampleRate, mfcc.lowFreq, highFreq)
	if len(bank) == 0 {
		return nil, fmt.Errorf("failed to create mel filter bank for FFT size %d", fftSize)
	}
	mfcc.filterBanks[fftSize] = bank

	return bank, nil
}

// createDCTMatrix creates the orthonormal DCT-II matrix
func (mfcc *MFCC) createDCTMatrix() {
	mfcc.dctMatrix = make([][]float64, mfcc.numCoefficients)

	for k := range mfcc.numCoefficients {
		mfcc.dctMatrix[k] = make([]float64, mfcc.numMelFilters)

		scale := math.Sqrt(2.0 / float64(mfcc.numMelFilters))
		if k == 0 {
			scale = math.Sqrt(1.0 / float64(mfcc.numMelFilters))
		}

		for n := range mfcc.numMelFilters {
			mfcc.dctMatrix[k][n] = scale * math.Cos(math.Pi*float64(k)*(float64(n)+0.5)/float64(mfcc.numMelFilters))
		}
	}
}

func (mfcc *MFCC) applyDCT(logMelSpectrum []float64) []float64 {
	coeffs := make([]float64, mfcc.numCoefficients)

	for k := range mfcc.numCoefficients {
		sum := 0.0
		for n := 0; n < len(logMelSpectrum) && n < len(mfcc.dctMatrix[k]); n++ {
			sum += logMelSpectrum[n] * mfcc.dctMatrix[k][n]
		}
		coeffs[k] = sum
	}

	return coeffs
}

// applyLiftering applies sinusoidal liftering; C0 is left untouched
func (mfcc *MFCC) applyLiftering(coeffs []float64) []float64 {
	liftered := make([]float64, len(coeffs))
	liftered[0] = coeffs[0]

	for i := 1; i < len(coeffs); i++ {
		lifter := 1.0 + (mfcc.lifterCoeff/2.0)*math.Sin(math.Pi*float64(i)/mfcc.lifterCoeff)
		liftered[i] = coeffs[i] * lifter
	}

	return liftered
}
