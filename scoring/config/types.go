package config

import (
	"fmt"
	"strings"
)

// Difficulty selects which preset family is active
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every difficulty in ascending order
var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard}

// IsValid reports whether d is one of the known difficulties
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty maps a case-insensitive name to a Difficulty
func ParseDifficulty(name string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(name)))
	if !d.IsValid() {
		return "", fmt.Errorf("unknown difficulty %q; valid values: easy, normal, hard", name)
	}
	return d, nil
}

// VocalMode is how an attempt was delivered
type VocalMode string

const (
	ModeSpeech  VocalMode = "speech"
	ModeSinging VocalMode = "singing"
	ModeUnknown VocalMode = "unknown"
)

// ScoredModes lists the modes that carry their own preset bundle
var ScoredModes = []VocalMode{ModeSpeech, ModeSinging}

// IsValid reports whether m is a mode with its own presets
func (m VocalMode) IsValid() bool {
	return m == ModeSpeech || m == ModeSinging
}

// Direction is whether the challenge plays the reference forwards or reversed
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
)

// ParseDirection maps a case-insensitive name to a Direction
func ParseDirection(name string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(name))); d {
	case DirectionForward, DirectionReverse:
		return d, nil
	default:
		return "", fmt.Errorf("unknown direction %q; valid values: forward, reverse", name)
	}
}
