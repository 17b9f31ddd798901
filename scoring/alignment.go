package scoring

import (
	"math"

	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
)

// findOnset returns the index where the performance starts, or -1 if the
// signal never gets loud enough
func findOnset(signal []float64, sampleRate int, threshold, windowMs float64, mode OnsetMode) int {
	switch mode {
	case OnsetSustained:
		return sustainedOnset(signal, sampleRate, threshold, windowMs)
	default:
		return amplitudeOnset(signal, threshold)
	}
}

func amplitudeOnset(signal []float64, threshold float64) int {
	for i, v := range signal {
		if math.Abs(v) > threshold {
			return i
		}
	}
	return -1
}

// sustainedOnset finds the first window of windowMs whose RMS exceeds
// threshold, so isolated clicks do not start the performance
func sustainedOnset(signal []float64, sampleRate int, threshold, windowMs float64) int {
	window := int(windowMs * float64(sampleRate) / 1000.0)
	if window <= 1 || len(signal) < window {
		if common.RMS(signal) > threshold {
			return amplitudeOnset(signal, threshold)
		}
		return -1
	}

	step := max(1, window/4)
	for start := 0; start+window <= len(signal); start += step {
		if common.RMS(signal[start:start+window]) > threshold {
			return start
		}
	}
	return -1
}

// alignSignals trims both signals to their onsets and then to the length
// they share. ok is false when either never starts.
func alignSignals(reference, attempt []float64, refOnset, attOnset int) (ref, att []float64, ok bool) {
	if refOnset < 0 || attOnset < 0 {
		return nil, nil, false
	}

	ref = reference[refOnset:]
	att = attempt[attOnset:]
	overlap := min(len(ref), len(att))
	if overlap == 0 {
		return nil, nil, false
	}
	return ref[:overlap], att[:overlap], true
}
