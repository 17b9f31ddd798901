package extractors

import (
	"context"
	"fmt"
)

// FeatureFrame holds the descriptors of one analysis frame. It is built once
// by ExtractFrames and not modified afterwards.
type FeatureFrame struct {
	PitchHz float64   `json:"pitch_hz"` // 0 = unvoiced
	MFCC    []float64 `json:"mfcc"`     // nil when MFCC extraction failed for this frame
	Energy  float64   `json:"energy"`   // frame RMS
	Entropy float64   `json:"entropy"`
	ZCR     float64   `json:"zcr"`
}

// Voiced reports whether a pitch was found in the frame
func (f FeatureFrame) Voiced() bool {
	return f.PitchHz > 0
}

// FrameCount returns how many full frames fit in n samples
func FrameCount(n, frameSize, hopSize int) int {
	if frameSize <= 0 || hopSize <= 0 || n < frameSize {
		return 0
	}
	return (n-frameSize)/hopSize + 1
}

// ExtractFrames slices pcm into frameSize windows every hopSize samples and
// describes each with ex. A trailing partial frame is dropped, and a frame
// whose MFCC cannot be computed keeps MFCC == nil rather than failing the
// whole sequence. Only invalid framing or a cancelled ctx return an error.
func ExtractFrames(ctx context.Context, ex FeatureExtractor, pcm []float64, sampleRate, frameSize, hopSize int) ([]FeatureFrame, error) {
	if frameSize <= 0 || hopSize <= 0 {
		return nil, fmt.Errorf("invalid framing: frame %d, hop %d", frameSize, hopSize)
	}

	count := FrameCount(len(pcm), frameSize, hopSize)
	frames := make([]FeatureFrame, 0, count)

	for i := range count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := i * hopSize
		frame := pcm[start : start+frameSize]

		ff := FeatureFrame{
			PitchHz: ex.Pitch(frame, sampleRate),
			Energy:  ex.RMS(frame),
			Entropy: ex.SpectralEntropy(frame, sampleRate),
			ZCR:     ex.ZeroCrossingRate(frame),
		}
		if ff.PitchHz < 0 {
			ff.PitchHz = 0
		}
		if mfcc, err := ex.MFCC(frame, sampleRate); err == nil {
			ff.MFCC = mfcc
		}

		frames = append(frames, ff)
	}

	return frames, nil
}
