package scoring

import (
	"math"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-reverso/scoring/config"
)

func TestScaleScore(t *testing.T) {
	params := config.DefaultPresets(config.DifficultyNormal, config.ModeSinging).Scoring

	tests := []struct {
		name      string
		raw       float64
		direction config.Direction
		want      int
	}{
		{"below min", 0.1, config.DirectionForward, 0},
		{"at min", 0.30, config.DirectionForward, 0},
		{"at perfect", 0.85, config.DirectionForward, 100},
		{"bonus overflow", 1.7, config.DirectionForward, 100},
		{"negative", -3, config.DirectionForward, 0},
		{"midpoint curved", 0.575, config.DirectionForward, 59},
		{"reverse is stricter", 0.85, config.DirectionReverse, 93},
		{"nan", math.NaN(), config.DirectionForward, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scaleScore(tt.raw, params, tt.direction); got != tt.want {
				t.Errorf("scaleScore(%f, %s) = %d, want %d", tt.raw, tt.direction, got, tt.want)
			}
		})
	}
}

func TestScaleScoreAlwaysInRange(t *testing.T) {
	for _, d := range config.Difficulties {
		for _, m := range config.ScoredModes {
			params := config.DefaultPresets(d, m).Scoring
			for raw := -1.0; raw <= 3.0; raw += 0.01 {
				for _, dir := range []config.Direction{config.DirectionForward, config.DirectionReverse} {
					if got := scaleScore(raw, params, dir); got < 0 || got > 100 {
						t.Fatalf("%s/%s: scaleScore(%f) = %d", d, m, raw, got)
					}
				}
			}
		}
	}
}

func TestEasierCurveIsMoreGenerous(t *testing.T) {
	easy := config.DefaultPresets(config.DifficultyEasy, config.ModeSpeech).Scoring
	hard := config.DefaultPresets(config.DifficultyHard, config.ModeSpeech).Scoring

	if scaleScore(0.6, easy, config.DirectionForward) <= scaleScore(0.6, hard, config.DirectionForward) {
		t.Error("expected easy to score the same raw value higher than hard")
	}
}

func TestBuildFeedback(t *testing.T) {
	p := config.DefaultPresets(config.DifficultyNormal, config.ModeSinging)
	singing := SingingCoefficients()

	t.Run("incredible has no tips", func(t *testing.T) {
		fb := buildFeedback(95, Breakdown{PitchSimilarity: 0.1, TimbreSimilarity: 0.1, VarianceMultiplier: 1}, p, singing)
		if len(fb) != 1 || !strings.HasPrefix(fb[0], "Incredible") {
			t.Errorf("unexpected feedback %q", fb)
		}
	})

	t.Run("weakest area first", func(t *testing.T) {
		b := Breakdown{PitchSimilarity: 0.2, TimbreSimilarity: 0.5, VarianceMultiplier: 1, IntervalBonus: p.Melodic.IntervalBonusMax}
		fb := buildFeedback(20, b, p, singing)
		if len(fb) != 3 {
			t.Fatalf("expected headline and two tips, got %q", fb)
		}
		if !strings.Contains(fb[1], "melody") || !strings.Contains(fb[2], "vowels") {
			t.Errorf("expected pitch tip before timbre tip, got %q", fb[1:])
		}
	})

	t.Run("tips are capped", func(t *testing.T) {
		b := Breakdown{PitchSimilarity: 0.1, TimbreSimilarity: 0.2, VarianceMultiplier: 0.5, HummingApplied: true}
		fb := buildFeedback(10, b, p, singing)
		if len(fb) != 1+p.Scaling.MaxTips {
			t.Errorf("expected %d tips, got %q", p.Scaling.MaxTips, fb)
		}
	})

	t.Run("speech wording", func(t *testing.T) {
		speech := config.DefaultPresets(config.DifficultyNormal, config.ModeSpeech)
		fb := buildFeedback(40, Breakdown{PitchSimilarity: 0.9, TimbreSimilarity: 0.3, VarianceMultiplier: 1}, speech, SpeechCoefficients())
		if len(fb) != 2 || !strings.Contains(fb[1], "pronouncing") {
			t.Errorf("unexpected feedback %q", fb)
		}
	})
}

func TestHeadlineBands(t *testing.T) {
	scaling := config.DefaultScoreScalingParameters()

	tests := []struct {
		score  int
		prefix string
	}{
		{100, "Incredible"},
		{scaling.IncredibleThreshold, "Incredible"},
		{scaling.GreatThreshold, "Great"},
		{scaling.GoodThreshold, "Good"},
		{scaling.FairThreshold, "Not bad"},
		{0, "Keep trying"},
	}

	for _, tt := range tests {
		if got := headline(tt.score, scaling); !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("headline(%d) = %q, want prefix %q", tt.score, got, tt.prefix)
		}
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		mode config.VocalMode
		want Engine
	}{
		{config.ModeSpeech, EngineSpeech},
		{config.ModeSinging, EngineSinging},
		{config.ModeUnknown, EngineSpeech},
		{config.VocalMode(""), EngineSpeech},
	}

	for _, tt := range tests {
		if got := Route(tt.mode); got != tt.want {
			t.Errorf("Route(%q) = %s, want %s", tt.mode, got, tt.want)
		}
	}
}
