package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
)

// FFT provides windowed Fast Fourier Transform helpers on top of mjibson/go-dsp.
// It is stateless and safe for concurrent use.
type FFT struct {
	// Zero-pad frames up to the next power of two before transforming
	padToPowerOfTwo bool
}

// NewFFT creates a new FFT calculator that pads to a power of two
func NewFFT() *FFT {
	return &FFT{padToPowerOfTwo: true}
}

// Compute computes the Fast Fourier Transform of a real signal
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// mjibson/go-dsp handles all sizes, including non-power-of-2
	return fft.FFTReal(x)
}

// MagnitudeSpectrum applies a Hann window to a copy of frame and returns the
// magnitudes of the non-negative frequency bins (N/2+1 values, N being the
// possibly padded transform size).
func (f *FFT) MagnitudeSpectrum(frame []float64) []float64 {
	if len(frame) == 0 {
		return []float64{}
	}

	size := len(frame)
	if f.padToPowerOfTwo {
		size = common.NextPowerOfTwo(size)
	}

	buf := make([]float64, size)
	copy(buf, frame)
	if len(frame) > 1 {
		window.Apply(buf[:len(frame)], window.Hann)
	}

	spectrum := f.Compute(buf)
	bins := size/2 + 1
	magnitudes := make([]float64, bins)
	for i := range bins {
		magnitudes[i] = cmplx.Abs(spectrum[i])
	}

	return magnitudes
}

// TransformSize reports the FFT length MagnitudeSpectrum uses for frameSize
func (f *FFT) TransformSize(frameSize int) int {
	if f.padToPowerOfTwo {
		return common.NextPowerOfTwo(frameSize)
	}
	return frameSize
}
