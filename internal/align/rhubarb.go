package align

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"
	"github.com/vaani-labs/vaani-core/internal/config"
	"github.com/vaani-labs/vaani-core/internal/viseme"
)

// RawResult is the tool's output before refinement.
type RawResult struct {
	Duration float64
	Cues     []MouthCue
}

// Runner abstracts the external forced-alignment tool so the refiner and
// router can be tested against canned output.
type Runner interface {
	Invoke(ctx context.Context, audioPath string, mode RecognizerMode, hint string) (RawResult, error)
}

type execRunner struct {
	cmd            []string
	extendedShapes string
	workDir        string
	timeout        time.Duration
	log            *slog.Logger
}

// NewExecRunner builds a Runner that spawns the configured tool binary.
func NewExecRunner(cfg config.AlignerConfig, log *slog.Logger) (Runner, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse aligner command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("aligner command is empty")
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &execRunner{
		cmd:            args,
		extendedShapes: cfg.ExtendedShapes,
		workDir:        cfg.WorkDir,
		timeout:        timeout,
		log:            log.With(slog.String("component", "aligner")),
	}, nil
}

func (r *execRunner) Invoke(ctx context.Context, audioPath string, mode RecognizerMode, hint string) (RawResult, error) {
	dir := r.workDir
	if dir == "" {
		dir = os.TempDir()
	}
	outPath := filepath.Join(dir, fmt.Sprintf("vaani_cues_%s.json", uuid.NewString()))
	defer os.Remove(outPath)

	args := append([]string{}, r.cmd[1:]...)
	args = append(args, "-f", "json", audioPath, "-o", outPath)
	if r.extendedShapes != "" {
		args = append(args, "--extendedShapes", r.extendedShapes)
	}
	switch mode {
	case ModeDictionary:
		args = append(args, "--recognizer", "pocketSphinx")
	case ModePhonetic, ModeAudioOnly:
		args = append(args, "--recognizer", "phonetic")
	default:
		return RawResult{}, &ToolInvocationError{Mode: mode, Err: fmt.Errorf("unknown recognizer mode %q", mode)}
	}
	useHint := mode != ModeAudioOnly && strings.TrimSpace(hint) != ""
	if useHint {
		args = append(args, "--dialogFile", "-")
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	command := exec.CommandContext(runCtx, r.cmd[0], args...)
	if useHint {
		command.Stdin = strings.NewReader(hint + "\n")
	}
	var stderr bytes.Buffer
	command.Stderr = &stderr

	start := time.Now()
	err := command.Run()
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", r.timeout, runCtx.Err())
		}
		return RawResult{}, &ToolInvocationError{Mode: mode, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	r.log.Debug("alignment tool finished",
		slog.String("recognizer", string(mode)),
		slog.Duration("elapsed", time.Since(start)))

	data, err := os.ReadFile(outPath)
	if err != nil {
		return RawResult{}, &ToolOutputParseError{Detail: "output file missing", Err: err}
	}
	return parseToolOutput(data)
}

type toolDocument struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	MouthCues []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Value string  `json:"value"`
	} `json:"mouthCues"`
}

// parseToolOutput decodes the tool's JSON document. Any schema deviation,
// including shape codes outside the known alphabet, is a parse failure.
func parseToolOutput(data []byte) (RawResult, error) {
	var doc toolDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return RawResult{}, &ToolOutputParseError{Detail: "malformed json", Err: err}
	}
	if doc.Metadata.Duration <= 0 {
		return RawResult{}, &ToolOutputParseError{Detail: fmt.Sprintf("non-positive duration %v", doc.Metadata.Duration)}
	}
	result := RawResult{Duration: doc.Metadata.Duration}
	for i, cue := range doc.MouthCues {
		shape, ok := viseme.FromToolCode(cue.Value)
		if !ok {
			return RawResult{}, &ToolOutputParseError{Detail: fmt.Sprintf("cue %d has unknown shape code %q", i, cue.Value)}
		}
		if cue.End < cue.Start {
			return RawResult{}, &ToolOutputParseError{Detail: fmt.Sprintf("cue %d ends before it starts [%v, %v]", i, cue.Start, cue.End)}
		}
		result.Cues = append(result.Cues, MouthCue{Start: cue.Start, End: cue.End, Shape: shape})
	}
	return result, nil
}
