package align

import (
	"io"
	"log/slog"
	"testing"

	"github.com/vaani-labs/vaani-core/internal/audiofeat"
	"github.com/vaani-labs/vaani-core/internal/config"
	"github.com/vaani-labs/vaani-core/internal/viseme"
)

func newTestRefiner(cfg config.RefineConfig) *Refiner {
	return NewRefiner(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func defaultRefineConfig() config.RefineConfig {
	return config.RefineConfig{SilencePercentile: 0.18, SnapToleranceMS: 60, MinCueMS: 40}
}

func flatEnergy(duration, value float64) []audiofeat.FramePoint {
	var frames []audiofeat.FramePoint
	for t := 0.0; t < duration; t += 0.01 {
		frames = append(frames, audiofeat.FramePoint{Time: t, Value: value})
	}
	return frames
}

func TestRefineBoundaryClosure(t *testing.T) {
	r := newTestRefiner(defaultRefineConfig())
	raw := RawResult{
		Duration: 0.8,
		Cues:     []MouthCue{{Start: 0.1, End: 0.5, Shape: viseme.WideOpen}},
	}
	track, err := r.Refine(raw, audiofeat.Features{Duration: 0.8}, profileSingleWord)
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if err := track.Validate(); err != nil {
		t.Fatalf("refined track invalid: %v", err)
	}
	if len(track.Cues) != 3 {
		t.Fatalf("expected 3 cues after padding, got %d: %v", len(track.Cues), track.Cues)
	}
	if track.Cues[0].Shape != viseme.Rest || track.Cues[2].Shape != viseme.Rest {
		t.Fatalf("expected rest padding at both ends, got %v", track.Cues)
	}
}

func TestRefineBridgesInteriorGaps(t *testing.T) {
	r := newTestRefiner(defaultRefineConfig())
	raw := RawResult{
		Duration: 1.0,
		Cues: []MouthCue{
			{Start: 0.1, End: 0.3, Shape: viseme.WideOpen},
			{Start: 0.5, End: 0.7, Shape: viseme.SlightOpen},
		},
	}
	track, err := r.Refine(raw, audiofeat.Features{Duration: 1.0}, profileSingleWord)
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if err := track.Validate(); err != nil {
		t.Fatalf("refined track invalid: %v", err)
	}
	if len(track.Cues) != 5 {
		t.Fatalf("expected 5 cues, got %d: %v", len(track.Cues), track.Cues)
	}
	if track.Cues[2].Shape != viseme.Rest {
		t.Fatalf("expected rest bridging the gap, got %v", track.Cues[2])
	}
}

func TestRefineMergesShortCuesIntoSuccessor(t *testing.T) {
	cfg := defaultRefineConfig()
	cfg.MinCueMS = 30
	r := newTestRefiner(cfg)
	raw := RawResult{
		Duration: 1.0,
		Cues: []MouthCue{
			{Start: 0, End: 0.5, Shape: viseme.SlightOpen},
			{Start: 0.5, End: 0.52, Shape: viseme.LipsTogether},
			{Start: 0.52, End: 0.545, Shape: viseme.TeethTogether},
			{Start: 0.545, End: 1.0, Shape: viseme.SlightOpen},
		},
	}
	track, err := r.Refine(raw, audiofeat.Features{Duration: 1.0}, profileSingleWord)
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if err := track.Validate(); err != nil {
		t.Fatalf("refined track invalid: %v", err)
	}
	if len(track.Cues) != 3 {
		t.Fatalf("expected 3 cues after merge, got %d: %v", len(track.Cues), track.Cues)
	}
	merged := track.Cues[1]
	if merged.Shape != viseme.TeethTogether {
		t.Fatalf("later shape should win the merge, got %v", merged.Shape)
	}
	if merged.Start != 0.5 || merged.End != 0.545 {
		t.Fatalf("merged cue spans [%v, %v], want [0.5, 0.545]", merged.Start, merged.End)
	}
}

func TestRefineSilentClipCollapsesToRest(t *testing.T) {
	r := newTestRefiner(defaultRefineConfig())
	feats := audiofeat.Features{
		Duration: 1.0,
		Energy:   flatEnergy(1.0, 0),
	}
	raw := RawResult{
		Duration: 1.0,
		Cues: []MouthCue{
			{Start: 0, End: 0.4, Shape: viseme.WideOpen},
			{Start: 0.4, End: 1.0, Shape: viseme.SlightOpen},
		},
	}
	track, err := r.Refine(raw, feats, profileSingleWord)
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if len(track.Cues) != 1 {
		t.Fatalf("expected a single rest cue, got %v", track.Cues)
	}
	cue := track.Cues[0]
	if cue.Start != 0 || cue.End != 1.0 || cue.Shape != viseme.Rest {
		t.Fatalf("expected {0, 1.0, rest}, got %+v", cue)
	}
}

func TestRefineSnapsToOnsets(t *testing.T) {
	r := newTestRefiner(defaultRefineConfig())
	feats := audiofeat.Features{
		Duration: 1.0,
		Onsets:   []float64{0.48},
	}
	raw := RawResult{
		Duration: 1.0,
		Cues: []MouthCue{
			{Start: 0, End: 0.5, Shape: viseme.LipsTogether},
			{Start: 0.5, End: 1.0, Shape: viseme.WideOpen},
		},
	}
	track, err := r.Refine(raw, feats, profileSingleWord)
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if err := track.Validate(); err != nil {
		t.Fatalf("refined track invalid: %v", err)
	}
	if track.Cues[0].End != 0.48 || track.Cues[1].Start != 0.48 {
		t.Fatalf("boundary should snap to onset 0.48, got %v / %v", track.Cues[0].End, track.Cues[1].Start)
	}
}

func TestRefineIgnoresDistantOnsets(t *testing.T) {
	r := newTestRefiner(defaultRefineConfig())
	feats := audiofeat.Features{
		Duration: 1.0,
		Onsets:   []float64{0.2},
	}
	raw := RawResult{
		Duration: 1.0,
		Cues: []MouthCue{
			{Start: 0, End: 0.5, Shape: viseme.LipsTogether},
			{Start: 0.5, End: 1.0, Shape: viseme.WideOpen},
		},
	}
	track, err := r.Refine(raw, feats, profileSingleWord)
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if track.Cues[1].Start != 0.5 {
		t.Fatalf("onset 300ms away must not move the boundary, got %v", track.Cues[1].Start)
	}
}

func TestRefineEmptyCuesBecomeRestTrack(t *testing.T) {
	r := newTestRefiner(defaultRefineConfig())
	track, err := r.Refine(RawResult{Duration: 0.6}, audiofeat.Features{Duration: 0.6}, profileSingleWord)
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if len(track.Cues) != 1 || track.Cues[0].Shape != viseme.Rest {
		t.Fatalf("expected single rest cue, got %v", track.Cues)
	}
}

func TestRefineNoDurationFails(t *testing.T) {
	r := newTestRefiner(defaultRefineConfig())
	if _, err := r.Refine(RawResult{}, audiofeat.Features{}, profileSingleWord); err == nil {
		t.Fatal("expected error when no duration is available")
	}
}
