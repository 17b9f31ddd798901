package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/RyanBlaney/sonido-reverso/logging"
	"github.com/RyanBlaney/sonido-reverso/scoring"
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/store"
	"github.com/RyanBlaney/sonido-reverso/transcode"
)

// ScoreCmd scores one attempt against a reference
type ScoreCmd struct {
	Reference string `arg:"" type:"existingfile" help:"Reference WAV clip"`
	Attempt   string `arg:"" type:"existingfile" help:"Recorded attempt WAV"`

	Direction      string        `short:"d" default:"forward" enum:"forward,reverse" help:"Challenge direction (forward, reverse)"`
	Difficulty     string        `help:"Score at this difficulty instead of the saved one"`
	ReverseAttempt bool          `name:"reverse-attempt" help:"Reverse the attempt before scoring"`
	DCCutoff       float64       `name:"dc-cutoff" default:"20" help:"High-pass cutoff in Hz for removing DC offset, 0 to disable"`
	Timeout        time.Duration `default:"10s" help:"Give up on a single scoring call after this long"`
	NoHistory      bool          `name:"no-history" help:"Do not record the attempt"`
	JSON           bool          `name:"json" help:"Print the full report as JSON"`
}

func (c *ScoreCmd) Run(ctx context.Context, g *Globals) error {
	direction, err := config.ParseDirection(c.Direction)
	if err != nil {
		return err
	}
	var override config.Difficulty
	if c.Difficulty != "" {
		if override, err = config.ParseDifficulty(c.Difficulty); err != nil {
			return err
		}
	}

	referenceCfg := transcode.DefaultDecoderConfig()
	referenceCfg.DCCutoff = c.DCCutoff
	reference, err := transcode.NewDecoder(referenceCfg).DecodeFile(c.Reference)
	if err != nil {
		return fmt.Errorf("failed to decode reference: %w", err)
	}

	attemptCfg := transcode.DefaultDecoderConfig()
	attemptCfg.TargetSampleRate = reference.SampleRate
	attemptCfg.DCCutoff = c.DCCutoff
	attempt, err := transcode.NewDecoder(attemptCfg).DecodeFile(c.Attempt)
	if err != nil {
		return fmt.Errorf("failed to decode attempt: %w", err)
	}
	if c.ReverseAttempt {
		attempt.Reverse()
	}

	e, err := openEnv(ctx, g, c.Timeout)
	if err != nil {
		return err
	}
	defer e.Close()

	report, err := e.orchestrator.ScoreDetailed(ctx, scoring.Request{
		Reference:  reference.PCM,
		Attempt:    attempt.PCM,
		SampleRate: reference.SampleRate,
		Direction:  direction,
		Difficulty: override,
	})
	if err != nil {
		return err
	}

	if !c.NoHistory {
		id, err := e.store.RecordAttempt(ctx, store.Attempt{
			Difficulty: report.Difficulty,
			Direction:  direction,
			Mode:       report.Analysis.Mode,
			Outcome:    string(report.Breakdown.Outcome),
			Score:      report.Result.Score,
			RawScore:   report.Result.RawScore,
			IsGarbage:  report.Result.IsGarbage,
		})
		if err != nil {
			logging.Error(err, "Failed to record attempt")
		} else {
			logging.Debug("Attempt recorded", logging.Fields{"id": id})
		}
	}

	if c.JSON {
		return writeJSON(report)
	}
	printReport(report, reference, attempt)
	return nil
}

// DifficultyCmd reads or changes the saved difficulty
type DifficultyCmd struct {
	Get DifficultyGetCmd `cmd:"" default:"1" help:"Show the saved difficulty"`
	Set DifficultySetCmd `cmd:"" help:"Change the saved difficulty"`
}

type DifficultyGetCmd struct{}

func (c *DifficultyGetCmd) Run(ctx context.Context, g *Globals) error {
	e, err := openEnv(ctx, g, 0)
	if err != nil {
		return err
	}
	defer e.Close()

	printDifficulty(e.orchestrator.Difficulty())
	return nil
}

type DifficultySetCmd struct {
	Level string `arg:"" enum:"easy,normal,hard" help:"New difficulty (easy, normal, hard)"`
}

func (c *DifficultySetCmd) Run(ctx context.Context, g *Globals) error {
	d, err := config.ParseDifficulty(c.Level)
	if err != nil {
		return err
	}

	e, err := openEnv(ctx, g, 0)
	if err != nil {
		return err
	}
	defer e.Close()

	previous := e.orchestrator.Difficulty()
	if err := e.orchestrator.SetDifficulty(ctx, d); err != nil {
		return err
	}
	printDifficultyChange(previous, d)
	return nil
}

// HistoryCmd lists recent attempts, newest first
type HistoryCmd struct {
	Limit int  `short:"n" default:"10" help:"Number of attempts to show"`
	JSON  bool `name:"json" help:"Print the attempts as JSON"`
}

func (c *HistoryCmd) Run(ctx context.Context, g *Globals) error {
	st, err := store.NewSQLiteStore(g.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	attempts, err := st.RecentAttempts(ctx, c.Limit)
	if err != nil {
		return err
	}

	if c.JSON {
		return writeJSON(attempts)
	}
	printHistory(attempts)
	return nil
}

// PresetsCmd dumps every effective bundle in the presets file format
type PresetsCmd struct{}

func (c *PresetsCmd) Run(g *Globals) error {
	presets, err := loadPresets(g)
	if err != nil {
		return err
	}
	return config.WritePresets(os.Stdout, presets)
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
