package main

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-reverso/logging"
	"github.com/RyanBlaney/sonido-reverso/scoring"
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/scoring/extractors"
	"github.com/RyanBlaney/sonido-reverso/store"
)

// env is what a command needs to score or inspect settings
type env struct {
	store        *store.SQLiteStore
	presets      *config.PresetStore
	orchestrator *scoring.Orchestrator
}

func (e *env) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// loadPresets returns the presets file layered over the defaults, or just
// the defaults when no file is given
func loadPresets(g *Globals) (*config.PresetStore, error) {
	if g.PresetFile == "" {
		return config.DefaultPresetStore(), nil
	}
	return config.LoadPresets(g.PresetFile)
}

// openEnv opens the database and brings up an initialized orchestrator whose
// difficulty is read from and saved to that database
func openEnv(ctx context.Context, g *Globals, timeout time.Duration) (*env, error) {
	presets, err := loadPresets(g)
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLiteStore(g.DB)
	if err != nil {
		return nil, err
	}
	e := &env{store: st, presets: presets}

	orch, err := scoring.NewOrchestrator(
		extractors.NewSpectralExtractor(extractors.DefaultSpectralParams()),
		scoring.WithPresetStore(presets),
		scoring.WithPresetSource(st),
		scoring.WithDifficultySink(st),
		scoring.WithTimeout(timeout),
	)
	if err != nil {
		e.Close()
		return nil, err
	}
	if err := orch.Initialize(ctx); err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to initialize scoring: %w", err)
	}
	e.orchestrator = orch

	logging.Debug("Environment ready", logging.Fields{
		"db":         g.DB,
		"presets":    g.PresetFile,
		"difficulty": orch.Difficulty(),
	})
	return e, nil
}
