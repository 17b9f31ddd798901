package scoring

import "github.com/RyanBlaney/sonido-reverso/scoring/config"

// DecayShape is how pitch credit falls off between the inner band and the
// tolerance edge
type DecayShape int

const (
	DecayLinear DecayShape = iota
	DecayExponential
)

// TimbreCurve converts a normalized DTW distance into a similarity
type TimbreCurve int

const (
	// TimbreExponential is exp(-d / norm)
	TimbreExponential TimbreCurve = iota
	// TimbreLinearBudget is 1 - d / norm
	TimbreLinearBudget
)

// OnsetMode picks how the start of a performance is located
type OnsetMode int

const (
	// OnsetAmplitude is the first sample above the onset threshold
	OnsetAmplitude OnsetMode = iota
	// OnsetSustained is the first short window whose RMS exceeds the threshold
	OnsetSustained
)

// ModeCoefficients holds the structural differences between the speech and
// singing strategies. Numeric tuning lives in config.Presets.
type ModeCoefficients struct {
	Mode           config.VocalMode
	PitchDecay     DecayShape
	Timbre         TimbreCurve
	Onset          OnsetMode
	MelodicBonuses bool
	FoldOctaves    bool
}

// SpeechCoefficients is tuned for spoken delivery: linear pitch decay, a
// linear timbre budget and amplitude onsets
func SpeechCoefficients() ModeCoefficients {
	return ModeCoefficients{
		Mode:        config.ModeSpeech,
		PitchDecay:  DecayLinear,
		Timbre:      TimbreLinearBudget,
		Onset:       OnsetAmplitude,
		FoldOctaves: true,
	}
}

// SingingCoefficients adds the melodic bonuses, decays pitch credit
// exponentially and waits for a sustained onset
func SingingCoefficients() ModeCoefficients {
	return ModeCoefficients{
		Mode:           config.ModeSinging,
		PitchDecay:     DecayExponential,
		Timbre:         TimbreExponential,
		Onset:          OnsetSustained,
		MelodicBonuses: true,
		FoldOctaves:    true,
	}
}
