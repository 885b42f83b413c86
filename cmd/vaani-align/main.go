package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/vaani-labs/vaani-core/internal/align"
	"github.com/vaani-labs/vaani-core/internal/audiofeat"
	"github.com/vaani-labs/vaani-core/internal/config"
)

var version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "expected 'align', 'explain' or 'version'")
		os.Exit(2)
	}

	switch os.Args[1] {
	case "align":
		if err := runAlign(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "explain":
		if err := runExplain(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
}

func runAlign(args []string) error {
	var (
		configPath string
		audioPath  string
		text       string
		language   string
	)
	cmd := flag.NewFlagSet("align", flag.ExitOnError)
	cmd.StringVar(&configPath, "config", "", "Path to configuration file (defaults apply when empty)")
	cmd.StringVar(&audioPath, "audio", "", "Path to the recorded clip")
	cmd.StringVar(&text, "text", "", "Target text spoken in the clip")
	cmd.StringVar(&language, "language", "en", "Language code (en, hi, kn)")
	cmd.Parse(args)

	if audioPath == "" {
		return fmt.Errorf("-audio is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	track, decision, err := engine.Align(context.Background(), audioPath, text, language)
	if err != nil {
		for _, line := range decision.Rationale {
			fmt.Fprintln(os.Stderr, line)
		}
		return err
	}

	out := struct {
		Duration  float64  `json:"duration"`
		Strategy  string   `json:"strategy"`
		Tier      string   `json:"tier"`
		Rationale []string `json:"rationale"`
		Cues      []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Shape string  `json:"shape"`
		} `json:"cues"`
	}{
		Duration:  track.Duration,
		Strategy:  string(decision.Category),
		Tier:      string(decision.ChosenMode),
		Rationale: decision.Rationale,
	}
	for _, cue := range track.Cues {
		out.Cues = append(out.Cues, struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Shape string  `json:"shape"`
		}{cue.Start, cue.End, cue.Shape.String()})
	}
	return printJSON(out)
}

func runExplain(args []string) error {
	var (
		text     string
		language string
	)
	cmd := flag.NewFlagSet("explain", flag.ExitOnError)
	cmd.StringVar(&text, "text", "", "Target text to classify")
	cmd.StringVar(&language, "language", "en", "Language code (en, hi, kn)")
	cmd.Parse(args)

	cfg := config.Default()
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	decision := engine.Explain(text, language)

	tiers := make([]string, 0, len(decision.Tiers))
	for _, tier := range decision.Tiers {
		tiers = append(tiers, string(tier))
	}
	return printJSON(map[string]any{
		"category":        string(decision.Category),
		"language":        string(decision.Language),
		"tiers":           tiers,
		"accuracy_band":   decision.AccuracyBand,
		"normalized_hint": decision.NormalizedHint,
		"rationale":       decision.Rationale,
	})
}

func buildEngine(cfg config.Config) (*align.Engine, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	runner, err := align.NewExecRunner(cfg.Aligner, logger)
	if err != nil {
		return nil, err
	}
	converter, err := align.NewConverter(cfg.Aligner, logger)
	if err != nil {
		return nil, err
	}
	analyzer := audiofeat.NewAnalyzer(cfg.Audio.HopMS, logger)
	refiner := align.NewRefiner(cfg.Refine, logger)
	return align.NewEngine(runner, converter, analyzer, refiner, cfg.Engine, logger), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
