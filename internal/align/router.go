package align

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vaani-labs/vaani-core/internal/audiofeat"
	"github.com/vaani-labs/vaani-core/internal/config"
	"github.com/vaani-labs/vaani-core/internal/translit"
)

// Engine is the alignment entry point. It owns no per-request state; every
// call is independent and may run concurrently with any other.
type Engine struct {
	runner    Runner
	converter *Converter
	analyzer  *audiofeat.Analyzer
	refiner   *Refiner
	cfg       config.EngineConfig
	log       *slog.Logger
}

func NewEngine(runner Runner, converter *Converter, analyzer *audiofeat.Analyzer, refiner *Refiner, cfg config.EngineConfig, log *slog.Logger) *Engine {
	return &Engine{
		runner:    runner,
		converter: converter,
		analyzer:  analyzer,
		refiner:   refiner,
		cfg:       cfg,
		log:       log.With(slog.String("component", "engine")),
	}
}

// Explain reports the routing decision for a text without touching audio.
func (e *Engine) Explain(text, language string) StrategyDecision {
	lang := e.parseLanguage(language)
	return Route(InputDescriptor{Text: text, Language: lang})
}

// Align runs the full pipeline: convert, analyze, invoke the tool with tier
// degradation, refine. The decision is returned alongside the track so
// callers can log the rationale even on failure.
func (e *Engine) Align(ctx context.Context, audioPath, text, language string) (Track, StrategyDecision, error) {
	lang := e.parseLanguage(language)
	input := InputDescriptor{AudioPath: audioPath, Text: text, Language: lang}
	decision := Route(input)

	wavPath, cleanup, err := e.converter.EnsureWAV(ctx, audioPath)
	if err != nil {
		return Track{}, decision, err
	}
	defer cleanup()

	feats := e.analyzer.Analyze(wavPath)
	profile := profileFor(decision.Category)

	var attempts []RecognizerMode
	var tierErrs []error
	for _, mode := range decision.Tiers {
		attempts = append(attempts, mode)
		raw, err := e.runner.Invoke(ctx, wavPath, mode, hintFor(mode, input, decision))
		if err != nil {
			decision.Rationale = append(decision.Rationale,
				fmt.Sprintf("recognizer %s failed: %v", mode, err))
			tierErrs = append(tierErrs, err)
			e.log.Warn("recognizer tier failed, degrading",
				slog.String("recognizer", string(mode)),
				slog.String("error", err.Error()))
			continue
		}
		track, err := e.refiner.Refine(raw, feats, profile)
		if err != nil {
			decision.Rationale = append(decision.Rationale,
				fmt.Sprintf("recognizer %s output unusable: %v", mode, err))
			tierErrs = append(tierErrs, err)
			continue
		}
		decision.ChosenMode = mode
		decision.Rationale = append(decision.Rationale,
			fmt.Sprintf("recognizer %s succeeded with %d cues", mode, len(track.Cues)))
		return track, decision, nil
	}

	if e.cfg.AllowPhonemeFallback {
		duration := feats.Duration
		if duration > 0 {
			raw := phonemeFallback(decision.NormalizedHint, lang, duration)
			track, err := e.refiner.Refine(raw, feats, profile)
			if err == nil {
				decision.ChosenMode = ModePhonemeTable
				decision.Rationale = append(decision.Rationale,
					"all recognizer tiers failed: synthesized phoneme-table fallback track")
				return track, decision, nil
			}
		}
	}

	return Track{}, decision, &AllTiersExhaustedError{Attempts: attempts, Errs: tierErrs}
}

func hintFor(mode RecognizerMode, input InputDescriptor, decision StrategyDecision) string {
	switch mode {
	case ModeDictionary:
		return input.Text
	case ModePhonetic:
		return decision.NormalizedHint
	default:
		return ""
	}
}

func (e *Engine) parseLanguage(code string) translit.Language {
	if code == "" {
		code = e.cfg.DefaultLanguage
	}
	return translit.Parse(code)
}
