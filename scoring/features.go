package scoring

import (
	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
	"github.com/RyanBlaney/sonido-reverso/scoring/extractors"
)

// voicedHz returns the pitch of every voiced frame, in order
func voicedHz(frames []extractors.FeatureFrame) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		if f.Voiced() {
			out = append(out, f.PitchHz)
		}
	}
	return out
}

// voicedSemitones returns voiced pitches in semitones relative to refHz
func voicedSemitones(frames []extractors.FeatureFrame, refHz float64) []float64 {
	hz := voicedHz(frames)
	for i, v := range hz {
		hz[i] = common.HzToSemitones(v, refHz)
	}
	return hz
}

func voicedRatio(frames []extractors.FeatureFrame) float64 {
	if len(frames) == 0 {
		return 0
	}
	voiced := 0
	for _, f := range frames {
		if f.Voiced() {
			voiced++
		}
	}
	return float64(voiced) / float64(len(frames))
}

// mfccVectors collects the frames that have MFCCs, optionally without c0
func mfccVectors(frames []extractors.FeatureFrame, skipEnergy bool) [][]float64 {
	out := make([][]float64, 0, len(frames))
	for _, f := range frames {
		if len(f.MFCC) == 0 {
			continue
		}
		if skipEnergy {
			if len(f.MFCC) < 2 {
				continue
			}
			out = append(out, f.MFCC[1:])
			continue
		}
		out = append(out, f.MFCC)
	}
	return out
}

// mfccVariance is the across-frame variance of each coefficient above c0,
// averaged over coefficients. Fewer than two usable frames yields 0.
func mfccVariance(frames []extractors.FeatureFrame) float64 {
	vectors := mfccVectors(frames, true)
	if len(vectors) < 2 {
		return 0
	}

	dims := len(vectors[0])
	for _, v := range vectors {
		dims = min(dims, len(v))
	}
	if dims == 0 {
		return 0
	}

	column := make([]float64, len(vectors))
	total := 0.0
	for k := range dims {
		for i, v := range vectors {
			column[i] = v[k]
		}
		total += common.Variance(column)
	}
	return total / float64(dims)
}

func meanOf(frames []extractors.FeatureFrame, value func(extractors.FeatureFrame) float64) float64 {
	if len(frames) == 0 {
		return 0
	}
	values := make([]float64, len(frames))
	for i, f := range frames {
		values[i] = value(f)
	}
	return common.Mean(values)
}
