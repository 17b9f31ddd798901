package scoring

import (
	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
	"github.com/RyanBlaney/sonido-reverso/logging"
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/scoring/extractors"
)

// VocalModeClassifier decides whether an attempt was spoken or sung
type VocalModeClassifier struct {
	logger logging.Logger
}

// NewVocalModeClassifier creates a new classifier
func NewVocalModeClassifier() *VocalModeClassifier {
	return &VocalModeClassifier{
		logger: logging.WithFields(logging.Fields{
			"component": "vocal_mode_classifier",
		}),
	}
}

// Classify derives VocalFeatures from the attempt's frames and picks a mode.
// When neither score clears its threshold, or there are too few frames, the
// attempt is treated as speech with the fallback confidence.
func (c *VocalModeClassifier) Classify(frames []extractors.FeatureFrame, params config.ContentDetectionParameters) VocalAnalysis {
	features := ExtractVocalFeatures(frames, params)

	if len(frames) < params.MinFrames {
		return VocalAnalysis{
			Mode:       config.ModeSpeech,
			Confidence: params.FallbackConfidence,
			Features:   features,
		}
	}

	speechScore := params.SpeechInstabilityWeight*(1-features.PitchStability) +
		params.SpeechFlatnessWeight*(1-features.PitchContour) +
		params.SpeechSpreadWeight*features.MFCCSpread
	singingScore := params.SingingStabilityWeight*features.PitchStability +
		params.SingingContourWeight*features.PitchContour +
		params.SingingVoicedWeight*features.VoicedRatio

	speechOK := speechScore > params.SpeechThreshold
	singingOK := singingScore > params.SingingThreshold

	analysis := VocalAnalysis{Features: features}
	switch {
	case speechOK && singingOK:
		if singingScore > speechScore {
			analysis.Mode, analysis.Confidence = config.ModeSinging, singingScore
		} else {
			analysis.Mode, analysis.Confidence = config.ModeSpeech, speechScore
		}
	case singingOK:
		analysis.Mode, analysis.Confidence = config.ModeSinging, singingScore
	case speechOK:
		analysis.Mode, analysis.Confidence = config.ModeSpeech, speechScore
	default:
		analysis.Mode, analysis.Confidence = config.ModeSpeech, params.FallbackConfidence
	}
	analysis.Confidence = common.Clamp01(analysis.Confidence)

	c.logger.Debug("Attempt classified", logging.Fields{
		"function":      "Classify",
		"mode":          analysis.Mode,
		"confidence":    analysis.Confidence,
		"speech_score":  speechScore,
		"singing_score": singingScore,
		"voiced_ratio":  features.VoicedRatio,
	})

	return analysis
}

// ExtractVocalFeatures computes the normalized aggregate descriptors the
// classifier works on
func ExtractVocalFeatures(frames []extractors.FeatureFrame, params config.ContentDetectionParameters) VocalFeatures {
	voiced := voicedHz(frames)

	return VocalFeatures{
		PitchStability: 1 - common.Clamp01(common.StandardDeviation(voiced)/params.PitchStabilityNorm),
		PitchContour:   common.Clamp01(common.MeanAbsDiff(voiced) / params.PitchContourNorm),
		MFCCSpread:     common.Clamp01(mfccVariance(frames) / params.MFCCSpreadNorm),
		VoicedRatio:    voicedRatio(frames),
	}
}
