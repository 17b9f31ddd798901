package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions shared by the feature and scoring code, using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return math.Sqrt(Variance(data))
}

// Range returns max-min of data, or 0 for an empty slice
func Range(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Max(data) - floats.Min(data)
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Sqrt(floats.Dot(data, data) / float64(len(data)))
}

// MeanAbsDiff is the mean absolute difference between consecutive values.
// Fewer than two values yields 0.
func MeanAbsDiff(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	sum := 0.0
	for i := 1; i < len(data); i++ {
		sum += math.Abs(data[i] - data[i-1])
	}
	return sum / float64(len(data)-1)
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Clamp01 constrains a value to [0, 1]
func Clamp01(value float64) float64 {
	return Clamp(value, 0, 1)
}

// HzToSemitones converts a frequency to semitones above (or below) refHz.
// Non-positive inputs map to 0.
func HzToSemitones(hz, refHz float64) float64 {
	if hz <= 0 || refHz <= 0 {
		return 0.0
	}
	return 12.0 * math.Log2(hz/refHz)
}

// SemitonesToHz is the inverse of HzToSemitones
func SemitonesToHz(semitones, refHz float64) float64 {
	return refHz * math.Pow(2, semitones/12.0)
}

// FoldOctave maps a semitone distance onto [0, 6] so that notes an octave
// (or several) apart compare as equal.
func FoldOctave(distance float64) float64 {
	d := math.Mod(math.Abs(distance), 12.0)
	if d > 6.0 {
		d = 12.0 - d
	}
	return d
}

// ToFloat64 widens a float32 PCM buffer
func ToFloat64(pcm []float32) []float64 {
	out := make([]float64, len(pcm))
	for i, v := range pcm {
		out[i] = float64(v)
	}
	return out
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
