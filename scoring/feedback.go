package scoring

import (
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
)

// Fixed messages for the early exits
const (
	msgTooShort        = "Your attempt was too short to compare. Try recording a little longer."
	msgGarbage         = "That didn't sound like speech or singing."
	msgGarbageTip      = "Try performing the clip instead of making noise into the microphone."
	msgProcessingError = "Something went wrong while scoring (processing error). Please try again."
)

func silenceFeedback(mode config.VocalMode) []string {
	if mode == config.ModeSinging {
		return []string{"We couldn't hear you. Please sing louder."}
	}
	return []string{"We couldn't hear you. Please speak louder."}
}

func headline(score int, scaling config.ScoreScalingParameters) string {
	switch {
	case score >= scaling.IncredibleThreshold:
		return "Incredible! That was a near-perfect match."
	case score >= scaling.GreatThreshold:
		return "Great job! Very close to the original."
	case score >= scaling.GoodThreshold:
		return "Good effort! You're getting there."
	case score >= scaling.FairThreshold:
		return "Not bad! Keep practicing."
	default:
		return "Keep trying! Listen to the clip again and give it another go."
	}
}

// buildFeedback returns the headline followed by up to MaxTips tips, weakest
// area first
func buildFeedback(score int, b Breakdown, p config.Presets, coeffs ModeCoefficients) []string {
	feedback := []string{headline(score, p.Scaling)}
	if score >= p.Scaling.IncredibleThreshold {
		return feedback
	}

	singing := coeffs.Mode == config.ModeSinging
	threshold := p.Scaling.TipThreshold

	var tips []string
	pitchTip := "Match the rise and fall of the speaker's voice more closely."
	timbreTip := "Focus on pronouncing each sound clearly."
	if singing {
		pitchTip = "Try to follow the melody more closely."
		timbreTip = "Shape your vowels like the original singer."
	}

	pitchWeak := b.PitchSimilarity < threshold
	timbreWeak := b.TimbreSimilarity < threshold
	if b.PitchSimilarity <= b.TimbreSimilarity {
		if pitchWeak {
			tips = append(tips, pitchTip)
		}
		if timbreWeak {
			tips = append(tips, timbreTip)
		}
	} else {
		if timbreWeak {
			tips = append(tips, timbreTip)
		}
		if pitchWeak {
			tips = append(tips, pitchTip)
		}
	}

	if b.VarianceMultiplier < 1 {
		tips = append(tips, "Add more expression. The original moves around more than you did.")
	}
	if coeffs.MelodicBonuses && p.Melodic.IntervalBonusMax > 0 && b.IntervalBonus < p.Melodic.IntervalBonusMax/2 {
		tips = append(tips, "Pay attention to the jumps between notes.")
	}
	if b.HummingApplied {
		if singing {
			tips = append(tips, "Sing the words instead of humming them.")
		} else {
			tips = append(tips, "Say the words out loud instead of humming.")
		}
	}

	if len(tips) > p.Scaling.MaxTips {
		tips = tips[:p.Scaling.MaxTips]
	}
	return append(feedback, tips...)
}
