package scoring

import (
	"math"

	"github.com/RyanBlaney/sonido-reverso/scoring/config"
)

// scaleScore maps a raw score onto 0-100 using the direction's min and
// perfect thresholds and the difficulty's curve. Higher curves are more
// generous.
func scaleScore(raw float64, params config.ScoringParameters, direction config.Direction) int {
	lo, hi := params.MinMaxFor(direction)
	if hi <= lo {
		return 0
	}

	norm := (raw - lo) / (hi - lo)
	switch {
	case math.IsNaN(norm) || norm <= 0:
		return 0
	case norm >= 1:
		return 100
	}

	curve := params.ScoreCurve
	if curve <= 0 {
		curve = 1
	}
	score := int(math.Round(math.Pow(norm, 1/curve) * 100))
	return max(0, min(100, score))
}
