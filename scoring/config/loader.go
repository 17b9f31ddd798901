package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// overrideFile is the on-disk layout of a presets file:
//
//	presets:
//	  normal:
//	    singing:
//	      scoring:
//	        pitch_tolerance: 2.5
//
// Each leaf bundle only needs the fields it changes; everything else keeps
// the built-in default for that pair.
type overrideFile struct {
	Presets map[Difficulty]map[VocalMode]yaml.Node `yaml:"presets"`
}

// LoadPresets reads the YAML presets file at path and returns a validated
// [PresetStore]. It is a convenience wrapper around [LoadPresetsFromReader].
func LoadPresets(path string) (*PresetStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	store, err := LoadPresetsFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return store, nil
}

// LoadPresetsFromReader decodes preset overrides from r, layers them over the
// defaults and validates the result. An empty document yields the defaults.
func LoadPresetsFromReader(r io.Reader) (*PresetStore, error) {
	var file overrideFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	var (
		overrides []Presets
		errs      []error
	)
	for difficulty, modes := range file.Presets {
		if !difficulty.IsValid() {
			errs = append(errs, fmt.Errorf("presets.%s: %w", difficulty, ErrUnknownPreset))
			continue
		}
		for mode, node := range modes {
			if !mode.IsValid() {
				errs = append(errs, fmt.Errorf("presets.%s.%s: %w", difficulty, mode, ErrUnknownPreset))
				continue
			}

			p := DefaultPresets(difficulty, mode)
			if err := decodeBundle(&node, &p); err != nil {
				errs = append(errs, fmt.Errorf("presets.%s.%s: %w", difficulty, mode, err))
				continue
			}
			// The map keys own the identity of a bundle
			p.Difficulty, p.Mode = difficulty, mode
			overrides = append(overrides, p)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return NewPresetStore(overrides...)
}

// decodeBundle decodes one bundle node onto p, rejecting unknown keys at any
// depth. yaml.Node.Decode does not honour KnownFields, so the node is
// re-encoded and run through a strict decoder.
func decodeBundle(node *yaml.Node, p *Presets) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// WritePresets encodes every bundle in store as YAML, in the same layout
// [LoadPresetsFromReader] accepts
func WritePresets(w io.Writer, store *PresetStore) error {
	out := make(map[Difficulty]map[VocalMode]Presets)
	for _, p := range store.All() {
		if out[p.Difficulty] == nil {
			out[p.Difficulty] = make(map[VocalMode]Presets)
		}
		out[p.Difficulty][p.Mode] = p
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"presets": out}); err != nil {
		return fmt.Errorf("config: encode yaml: %w", err)
	}
	return enc.Close()
}
