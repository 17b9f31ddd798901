package config

import (
	"errors"
	"fmt"
)

// ErrUnknownPreset is returned when no bundle exists for a difficulty/mode pair
var ErrUnknownPreset = errors.New("unknown preset")

type presetKey struct {
	difficulty Difficulty
	mode       VocalMode
}

// PresetStore holds one validated bundle per (Difficulty, VocalMode).
// The store never changes after construction, so it can be shared freely.
type PresetStore struct {
	presets map[presetKey]Presets
}

// NewPresetStore builds a store from the built-in defaults, replacing any
// pair for which an override is given. Every resulting bundle is validated.
func NewPresetStore(overrides ...Presets) (*PresetStore, error) {
	store := &PresetStore{presets: make(map[presetKey]Presets, len(Difficulties)*len(ScoredModes))}

	for _, d := range Difficulties {
		for _, m := range ScoredModes {
			store.presets[presetKey{d, m}] = DefaultPresets(d, m)
		}
	}

	var errs []error
	for _, p := range overrides {
		if !p.Difficulty.IsValid() || !p.Mode.IsValid() {
			errs = append(errs, fmt.Errorf("%w: %s/%s", ErrUnknownPreset, p.Difficulty, p.Mode))
			continue
		}
		store.presets[presetKey{p.Difficulty, p.Mode}] = p
	}
	for _, p := range store.All() {
		if err := Validate(p); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return store, nil
}

// DefaultPresetStore returns a store holding only the built-in defaults
func DefaultPresetStore() *PresetStore {
	store, err := NewPresetStore()
	if err != nil {
		panic(fmt.Sprintf("built-in presets are invalid: %v", err))
	}
	return store
}

// Get returns a private copy of the bundle for difficulty and mode
func (s *PresetStore) Get(difficulty Difficulty, mode VocalMode) (*Presets, error) {
	p, ok := s.presets[presetKey{difficulty, mode}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownPreset, difficulty, mode)
	}
	return &p, nil
}

// All returns every bundle ordered by difficulty, then mode
func (s *PresetStore) All() []Presets {
	out := make([]Presets, 0, len(s.presets))
	for _, d := range Difficulties {
		for _, m := range ScoredModes {
			if p, ok := s.presets[presetKey{d, m}]; ok {
				out = append(out, p)
			}
		}
	}
	return out
}
