package scoring

import (
	"testing"

	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/scoring/extractors"
)

func TestClassifySinging(t *testing.T) {
	var frames []extractors.FeatureFrame
	for i := range 8 {
		frames = append(frames, frame(220+10*float64(i), 5, 1, 1))
	}

	analysis := NewVocalModeClassifier().Classify(frames, config.DefaultContentDetectionParameters())

	if analysis.Mode != config.ModeSinging {
		t.Fatalf("expected singing, got %s (features %+v)", analysis.Mode, analysis.Features)
	}
	if analysis.Confidence <= 0.5 || analysis.Confidence > 1 {
		t.Errorf("unexpected confidence %f", analysis.Confidence)
	}
	if analysis.Features.VoicedRatio != 1 {
		t.Errorf("expected voiced ratio 1, got %f", analysis.Features.VoicedRatio)
	}
}

func TestClassifySpeech(t *testing.T) {
	// Erratic pitch on a few voiced frames, wide timbre movement
	hz := []float64{100, 0, 0, 250, 0, 0, 120, 0, 0, 0}
	frames := make([]extractors.FeatureFrame, len(hz))
	for i, h := range hz {
		if i%2 == 0 {
			frames[i] = frame(h, 0, 30, -30)
		} else {
			frames[i] = frame(h, 0, -30, 30)
		}
	}

	analysis := NewVocalModeClassifier().Classify(frames, config.DefaultContentDetectionParameters())

	if analysis.Mode != config.ModeSpeech {
		t.Fatalf("expected speech, got %s (features %+v)", analysis.Mode, analysis.Features)
	}
	if analysis.Confidence <= 0.45 {
		t.Errorf("expected a confident speech verdict, got %f", analysis.Confidence)
	}
	if analysis.Features.MFCCSpread != 1 {
		t.Errorf("expected saturated MFCC spread, got %f", analysis.Features.MFCCSpread)
	}
}

func TestClassifyFallsBackToSpeech(t *testing.T) {
	params := config.DefaultContentDetectionParameters()
	unvoiced := make([]extractors.FeatureFrame, 10)
	for i := range unvoiced {
		unvoiced[i] = frame(0, 1, 1, 1)
	}

	tests := []struct {
		name   string
		frames []extractors.FeatureFrame
	}{
		{"no frames", nil},
		{"too few frames", semitoneFrames(0, 7)},
		{"nothing clears a threshold", unvoiced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := NewVocalModeClassifier().Classify(tt.frames, params)
			if analysis.Mode != config.ModeSpeech {
				t.Errorf("expected speech fallback, got %s", analysis.Mode)
			}
			if analysis.Confidence != params.FallbackConfidence {
				t.Errorf("expected fallback confidence %f, got %f", params.FallbackConfidence, analysis.Confidence)
			}
		})
	}
}

func TestExtractVocalFeaturesBounds(t *testing.T) {
	params := config.DefaultContentDetectionParameters()
	frames := []extractors.FeatureFrame{
		frame(80, 100, -100), frame(1000, -100, 100), frame(0, 0, 0), frame(90, 50, 50),
	}

	f := ExtractVocalFeatures(frames, params)
	for name, v := range map[string]float64{
		"pitch_stability": f.PitchStability,
		"pitch_contour":   f.PitchContour,
		"mfcc_spread":     f.MFCCSpread,
		"voiced_ratio":    f.VoicedRatio,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %f, want within [0, 1]", name, v)
		}
	}
	if f.VoicedRatio != 0.75 {
		t.Errorf("expected voiced ratio 0.75, got %f", f.VoicedRatio)
	}
}
