package align

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"
	"github.com/vaani-labs/vaani-core/internal/config"
)

// Converter normalizes input audio containers to uncompressed WAV, which is
// the only container the alignment tool accepts.
type Converter struct {
	ffmpeg  []string
	workDir string
	log     *slog.Logger
}

func NewConverter(cfg config.AlignerConfig, log *slog.Logger) (*Converter, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.FFmpegCommand)
	if err != nil {
		return nil, fmt.Errorf("parse ffmpeg command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("ffmpeg command is empty")
	}
	return &Converter{
		ffmpeg:  args,
		workDir: cfg.WorkDir,
		log:     log.With(slog.String("component", "converter")),
	}, nil
}

// EnsureWAV returns a path to a WAV rendition of the input. WAV inputs pass
// through untouched with a no-op cleanup; anything else is transcoded to a
// temp file the caller must release via cleanup. Failures are AudioReadError.
func (c *Converter) EnsureWAV(ctx context.Context, path string) (string, func(), error) {
	noop := func() {}
	info, err := os.Stat(path)
	if err != nil {
		return "", noop, &AudioReadError{Path: path, Err: err}
	}
	if info.Size() == 0 {
		return "", noop, &AudioReadError{Path: path, Err: fmt.Errorf("file is empty")}
	}
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return path, noop, nil
	}

	dir := c.workDir
	if dir == "" {
		dir = os.TempDir()
	}
	outPath := filepath.Join(dir, fmt.Sprintf("vaani_audio_%s.wav", uuid.NewString()))
	cleanup := func() { os.Remove(outPath) }

	args := append([]string{}, c.ffmpeg[1:]...)
	args = append(args, "-y", "-i", path, "-ar", "16000", "-ac", "1", "-sample_fmt", "s16", outPath)

	command := exec.CommandContext(ctx, c.ffmpeg[0], args...)
	var stderr bytes.Buffer
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		cleanup()
		return "", noop, &AudioReadError{Path: path, Err: fmt.Errorf("transcode failed: %w: %s", err, strings.TrimSpace(stderr.String()))}
	}
	c.log.Debug("transcoded audio to wav", slog.String("input", path), slog.String("output", outPath))
	return outPath, cleanup, nil
}
