package config

// DefaultPresets returns the built-in bundle for a difficulty and mode.
// The values are empirically tuned; every one of them can be overridden
// from a presets file. Unknown difficulties fall back to normal and any
// mode other than singing gets the speech bundle.
func DefaultPresets(difficulty Difficulty, mode VocalMode) Presets {
	if !difficulty.IsValid() {
		difficulty = DifficultyNormal
	}
	if mode != ModeSinging {
		mode = ModeSpeech
	}

	p := Presets{
		Difficulty: difficulty,
		Mode:       mode,
		Content:    DefaultContentDetectionParameters(),
		Audio:      DefaultAudioParameters(),
		Scaling:    DefaultScoreScalingParameters(),
		Garbage:    DefaultGarbageDetectionParameters(),
		Musical: MusicalSimilarityParameters{
			SkipEnergyCoefficient: true,
			DTWBand:               0,
			MinFrames:             2,
		},
	}

	switch mode {
	case ModeSinging:
		p.Scoring = singingScoring(difficulty)
		p.Melodic = singingMelodic(difficulty)
	default:
		p.Scoring = speechScoring(difficulty)
		p.Melodic = speechMelodic()
	}

	switch difficulty {
	case DifficultyEasy:
		p.Scoring.SilenceThreshold = 0.008
		p.Scoring.ScoreCurve = 1.6
		p.Garbage.ScoreThreshold = 0.65
	case DifficultyHard:
		p.Scoring.SilenceThreshold = 0.012
		p.Scoring.ScoreCurve = 1.0
		p.Garbage.ScoreThreshold = 0.6
	default:
		p.Scoring.SilenceThreshold = 0.01
		p.Scoring.ScoreCurve = 1.3
		p.Garbage.ScoreThreshold = 0.6
	}

	return p
}

func singingScoring(difficulty Difficulty) ScoringParameters {
	s := ScoringParameters{
		PitchWeight:           0.65,
		MFCCWeight:            0.35,
		PitchEdgeCredit:       0.4,
		PitchFloor:            0.05,
		ReferenceFrequency:    440.0,
		UnvoicedCredit:        0.5,
		VoicingMismatchCredit: 0.0,
		DTWNormalization:      60.0,
		ConsistencyBonus:      0.05,
		ConfidenceBonus:       0.03,
		HummingPenalty:        0.7,
	}

	switch difficulty {
	case DifficultyEasy:
		s.PitchTolerance, s.PitchInnerTolerance = 3.0, 1.0
		s.ForwardMinScore, s.ForwardPerfectScore = 0.25, 0.80
		s.ReverseMinScore, s.ReversePerfectScore = 0.30, 0.85
	case DifficultyHard:
		s.PitchTolerance, s.PitchInnerTolerance = 1.0, 0.25
		s.ForwardMinScore, s.ForwardPerfectScore = 0.35, 0.90
		s.ReverseMinScore, s.ReversePerfectScore = 0.40, 0.95
	default:
		s.PitchTolerance, s.PitchInnerTolerance = 2.0, 0.5
		s.ForwardMinScore, s.ForwardPerfectScore = 0.30, 0.85
		s.ReverseMinScore, s.ReversePerfectScore = 0.35, 0.90
	}

	return s
}

func speechScoring(difficulty Difficulty) ScoringParameters {
	s := ScoringParameters{
		PitchWeight:           0.35,
		MFCCWeight:            0.65,
		PitchEdgeCredit:       0.5,
		PitchFloor:            0.1,
		ReferenceFrequency:    440.0,
		UnvoicedCredit:        0.8,
		VoicingMismatchCredit: 0.2,
		DTWNormalization:      120.0,
		ConsistencyBonus:      0.05,
		ConfidenceBonus:       0.03,
		HummingPenalty:        0.85,
	}

	switch difficulty {
	case DifficultyEasy:
		s.PitchTolerance, s.PitchInnerTolerance = 4.0, 1.5
		s.ForwardMinScore, s.ForwardPerfectScore = 0.25, 0.80
		s.ReverseMinScore, s.ReversePerfectScore = 0.30, 0.85
	case DifficultyHard:
		s.PitchTolerance, s.PitchInnerTolerance = 2.0, 0.5
		s.ForwardMinScore, s.ForwardPerfectScore = 0.35, 0.90
		s.ReverseMinScore, s.ReversePerfectScore = 0.40, 0.95
	default:
		s.PitchTolerance, s.PitchInnerTolerance = 3.0, 1.0
		s.ForwardMinScore, s.ForwardPerfectScore = 0.30, 0.85
		s.ReverseMinScore, s.ReversePerfectScore = 0.35, 0.90
	}

	return s
}

func singingMelodic(difficulty Difficulty) MelodicAnalysisParameters {
	m := MelodicAnalysisParameters{
		ComplexityBonusMax:       0.10,
		ComplexityRangeNorm:      12.0,
		ComplexityTransitionNorm: 2.0,
		ComplexityPitchGate:      0.5,
		IntervalBonusMax:         0.08,
		IntervalBands: [4]IntervalBand{
			{MaxError: 0.5, Credit: 1.0},
			{MaxError: 1.0, Credit: 0.8},
			{MaxError: 2.0, Credit: 0.5},
			{MaxError: 3.0, Credit: 0.2},
		},
		IntervalMinStep:             0.5,
		HarmonicBonusMax:            0.05,
		HarmonicEnergyNorm:          400.0,
		VariancePenaltyMinReference: 2.0,
		VariancePenaltyRatio:        0.3,
		VariancePenaltyFloor:        0.5,
	}

	if difficulty == DifficultyHard {
		m.ComplexityPitchGate = 0.6
	}

	return m
}

// Speech carries no melodic bonuses; only the variance penalty applies
func speechMelodic() MelodicAnalysisParameters {
	return MelodicAnalysisParameters{
		VariancePenaltyMinReference: 4.0,
		VariancePenaltyRatio:        0.2,
		VariancePenaltyFloor:        0.7,
	}
}

// DefaultContentDetectionParameters returns the classifier constants
func DefaultContentDetectionParameters() ContentDetectionParameters {
	return ContentDetectionParameters{
		PitchStabilityNorm:      50.0,
		PitchContourNorm:        15.0,
		MFCCSpreadNorm:          350.0,
		SpeechInstabilityWeight: 0.4,
		SpeechFlatnessWeight:    0.3,
		SpeechSpreadWeight:      0.1,
		SingingStabilityWeight:  0.2,
		SingingContourWeight:    0.3,
		SingingVoicedWeight:     0.5,
		SpeechThreshold:         0.45,
		SingingThreshold:        0.5,
		FallbackConfidence:      0.25,
		MinFrames:               3,
	}
}

// DefaultAudioParameters returns the framing shared by both modes
func DefaultAudioParameters() AudioParameters {
	return AudioParameters{
		FrameSize:      2048,
		HopSize:        512,
		OnsetThreshold: 0.02,
		OnsetWindowMs:  20.0,
		ConfidenceGain: 10.0,
	}
}

// DefaultScoreScalingParameters returns the feedback bands
func DefaultScoreScalingParameters() ScoreScalingParameters {
	return ScoreScalingParameters{
		IncredibleThreshold: 90,
		GreatThreshold:      75,
		GoodThreshold:       55,
		FairThreshold:       35,
		GarbageScoreMax:     5,
		MaxTips:             3,
		TipThreshold:        0.6,
	}
}

// DefaultGarbageDetectionParameters returns the detector thresholds and weights
func DefaultGarbageDetectionParameters() GarbageDetectionParameters {
	return GarbageDetectionParameters{
		Enabled: true,

		MFCCVarianceMin:    5.0,
		MFCCVarianceWeight: 0.25,

		MonotoneStdDev:         0.5,
		MonotoneVoicedRatioMax: 0.35,
		MonotoneWeight:         0.25,

		OscillationMax:     0.6,
		OscillationMinStep: 0.5,
		OscillationWeight:  0.15,

		EntropyFrames:         10,
		EntropyMin:            0.35,
		EntropyVoicedRatioMax: 0.35,
		EntropyWeight:         0.20,

		ZCRMin:    0.02,
		ZCRMax:    0.35,
		ZCRWeight: 0.15,

		SilenceFrameRMS: 0.01,
		SilenceRatioMin: 0.05,
		SilenceWeight:   0.15,

		HummingMFCCVarianceMax: 15.0,
		HummingEntropyMax:      0.45,
		HummingZCRMax:          0.05,
		HummingWeight:          0.10,

		ScoreThreshold:   0.6,
		MinFailedFilters: 2,
	}
}
