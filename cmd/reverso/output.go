package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/RyanBlaney/sonido-reverso/scoring"
	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/store"
	"github.com/RyanBlaney/sonido-reverso/transcode"
)

var (
	bold   = color.New(color.Bold)
	faint  = color.New(color.Faint)
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

func disableOutputColors() {
	color.NoColor = true
}

func printError(err error) {
	red.Fprint(os.Stderr, "error: ")
	fmt.Fprintln(os.Stderr, err)
}

// scoreColor picks the color for a 0-100 score using the default bands
func scoreColor(score int) *color.Color {
	bands := config.DefaultScoreScalingParameters()
	switch {
	case score >= bands.GreatThreshold:
		return green
	case score >= bands.FairThreshold:
		return yellow
	default:
		return red
	}
}

func printReport(r scoring.Report, reference, attempt *transcode.AudioData) {
	res := r.Result
	bd := r.Breakdown

	fmt.Print("Score: ")
	scoreColor(res.Score).Printf("%d", res.Score)
	faint.Printf("  (raw %.3f)\n", res.RawScore)

	if len(res.Feedback) > 0 {
		bold.Println(res.Feedback[0])
		for _, tip := range res.Feedback[1:] {
			fmt.Printf("  - %s\n", tip)
		}
	}
	fmt.Println()

	row := func(label, format string, args ...any) {
		cyan.Printf("  %-12s", label)
		fmt.Printf(format+"\n", args...)
	}

	row("Mode", "%s (confidence %.2f)", r.Analysis.Mode, r.Analysis.Confidence)
	row("Engine", "%s", r.Engine)
	row("Difficulty", "%s", r.Difficulty)
	row("Outcome", "%s", bd.Outcome)
	row("Audio", "reference %.2fs, attempt %.2fs at %d Hz",
		reference.Duration.Seconds(), attempt.Duration.Seconds(), reference.SampleRate)

	switch bd.Outcome {
	case scoring.OutcomeScored:
		row("Pitch", "%.3f", res.Metrics.Pitch)
		row("Timbre", "%.3f (DTW %.2f)", res.Metrics.MFCC, bd.DTWDistance)
		row("Frames", "%d reference, %d attempt", bd.ReferenceFrames, bd.AttemptFrames)
		if bd.ComplexityBonus+bd.IntervalBonus+bd.HarmonicBonus > 0 {
			row("Bonuses", "complexity %.3f, interval %.3f, harmonic %.3f",
				bd.ComplexityBonus, bd.IntervalBonus, bd.HarmonicBonus)
		}
		if bd.VarianceMultiplier < 1 {
			row("Variance", "x%.3f", bd.VarianceMultiplier)
		}
		if bd.HummingApplied {
			yellow.Println("  Humming detected, score reduced")
		}
	case scoring.OutcomeGarbage:
		row("Filters", "%s", strings.Join(bd.Garbage.FailedFilters, ", "))
		row("Confidence", "%.2f", bd.Garbage.Confidence)
	case scoring.OutcomeError:
		row("Failure", "%s", r.Failure)
	}

	faint.Printf("\n  scored in %s\n", r.Duration.Round(100*time.Microsecond))
}

func printDifficulty(d config.Difficulty) {
	fmt.Print("Difficulty: ")
	bold.Println(d)
}

func printDifficultyChange(from, to config.Difficulty) {
	if from == to {
		fmt.Print("Difficulty unchanged: ")
		bold.Println(to)
		return
	}
	fmt.Printf("Difficulty changed from %s to ", from)
	green.Println(to)
}

func printHistory(attempts []store.Attempt) {
	if len(attempts) == 0 {
		faint.Println("No attempts recorded yet")
		return
	}

	bold.Printf("%-5s %-19s %-7s %-8s %-8s %-10s %5s\n",
		"ID", "When", "Level", "Dir", "Mode", "Outcome", "Score")
	for _, a := range attempts {
		fmt.Printf("%-5d %-19s %-7s %-8s %-8s %-10s ",
			a.ID, a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			a.Difficulty, a.Direction, a.Mode, a.Outcome)
		scoreColor(a.Score).Printf("%5d\n", a.Score)
	}
}
