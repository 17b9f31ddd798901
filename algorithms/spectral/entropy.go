package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SpectralEntropy measures how evenly power is spread across frequency bins.
// Pure tones sit near 0, broadband noise near 1.
type SpectralEntropy struct {
	minPower float64 // Total power below this is treated as silence
}

// NewSpectralEntropy creates a new spectral entropy calculator
func NewSpectralEntropy() *SpectralEntropy {
	return &SpectralEntropy{
		minPower: 1e-12,
	}
}

// Compute returns the Shannon entropy of the normalized power spectrum
// divided by log(bins), so the result lies in [0, 1]
func (se *SpectralEntropy) Compute(magnitudeSpectrum []float64) float64 {
	if len(magnitudeSpectrum) < 2 {
		return 0.0
	}

	power := make([]float64, len(magnitudeSpectrum))
	for i, mag := range magnitudeSpectrum {
		power[i] = mag * mag
	}

	total := floats.Sum(power)
	if total <= se.minPower {
		return 0.0
	}
	floats.Scale(1.0/total, power)

	// H(X) = -∑ p(x) * log(p(x)), zero-probability bins contribute nothing
	entropy := stat.Entropy(power)

	return math.Min(1.0, entropy/math.Log(float64(len(power))))
}
