package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/RyanBlaney/sonido-reverso/logging"
)

var version = "dev"

// Globals are the flags shared by every command
type Globals struct {
	DB         string           `name:"db" type:"path" default:"reverso.db" env:"REVERSO_DB" help:"SQLite file holding the difficulty and attempt history"`
	PresetFile string           `name:"preset-file" type:"path" env:"REVERSO_PRESETS" help:"YAML file overriding the built-in presets"`
	LogLevel   string           `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	Debug      bool             `help:"Shorthand for --log-level=debug"`
	NoColor    bool             `name:"no-color" help:"Disable colored output"`
	Version    kong.VersionFlag `short:"v" help:"Show version information"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Score      ScoreCmd      `cmd:"" help:"Score a recorded attempt against a reference clip"`
	Difficulty DifficultyCmd `cmd:"" help:"Show or change the saved difficulty"`
	History    HistoryCmd    `cmd:"" help:"List recently scored attempts"`
	Presets    PresetsCmd    `cmd:"" help:"Print the effective presets as YAML"`
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("reverso"),
		kong.Description("Score reverse singing and speaking attempts against a reference clip."),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
	)

	configureLogging(&cli.Globals)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(&cli.Globals); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func configureLogging(g *Globals) {
	if g.NoColor {
		logging.DisableColors()
		disableOutputColors()
	}

	level, ok := logging.ParseLevel(g.LogLevel)
	if g.Debug {
		level, ok = logging.DebugLevel, true
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown log level %q, using warn\n", g.LogLevel)
		level = logging.WarnLevel
	}
	logging.SetLevel(level)
}
