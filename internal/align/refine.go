package align

import (
	"log/slog"

	"github.com/vaani-labs/vaani-core/internal/audiofeat"
	"github.com/vaani-labs/vaani-core/internal/config"
	"github.com/vaani-labs/vaani-core/internal/viseme"
)

// Profile scales the refiner's thresholds per strategy. Scales apply to the
// configured base values.
type Profile struct {
	Label      string
	SnapScale  float64
	MergeScale float64
}

// Refiner cross-validates raw tool cues against independently computed audio
// features and cleans the track up for playback.
type Refiner struct {
	cfg config.RefineConfig
	log *slog.Logger
}

func NewRefiner(cfg config.RefineConfig, log *slog.Logger) *Refiner {
	return &Refiner{cfg: cfg, log: log.With(slog.String("component", "refiner"))}
}

// Refine runs, in order: silence forcing, same-shape coalescing, onset
// snapping, short-cue merging, and boundary closure. The returned track
// always satisfies Track.Validate.
func (r *Refiner) Refine(raw RawResult, feats audiofeat.Features, profile Profile) (Track, error) {
	duration := feats.Duration
	if duration <= 0 {
		duration = raw.Duration
	}
	if duration <= 0 {
		return Track{}, &ToolOutputParseError{Detail: "no usable clip duration"}
	}

	cues := clampCues(raw.Cues, duration)
	cues = r.forceSilence(cues, feats)
	cues = coalesce(cues)
	cues = r.snapOnsets(cues, feats, profile.SnapScale)
	cues = r.mergeShort(cues, profile.MergeScale)
	cues = closeBoundaries(cues, duration)
	cues = coalesce(cues)

	track := Track{Duration: duration, Cues: cues}
	if err := track.Validate(); err != nil {
		return Track{}, &ToolOutputParseError{Detail: "refined track invalid", Err: err}
	}
	return track, nil
}

// clampCues drops cues outside [0, duration], clips stragglers at the edges,
// and resolves overlaps in favor of the earlier cue.
func clampCues(cues []MouthCue, duration float64) []MouthCue {
	var out []MouthCue
	for _, cue := range cues {
		if cue.Start >= duration || cue.End <= 0 {
			continue
		}
		if cue.Start < 0 {
			cue.Start = 0
		}
		if cue.End > duration {
			cue.End = duration
		}
		if n := len(out); n > 0 && cue.Start < out[n-1].End {
			cue.Start = out[n-1].End
		}
		if cue.End > cue.Start {
			out = append(out, cue)
		}
	}
	return out
}

// forceSilence overrides cues whose mean energy falls at or below the clip's
// silence threshold with the rest shape.
func (r *Refiner) forceSilence(cues []MouthCue, feats audiofeat.Features) []MouthCue {
	if len(feats.Energy) == 0 {
		return cues
	}
	threshold := feats.EnergyPercentile(r.cfg.SilencePercentile)
	for i, cue := range cues {
		if cue.Shape == viseme.Rest {
			continue
		}
		if feats.MeanEnergy(cue.Start, cue.End) <= threshold {
			cues[i].Shape = viseme.Rest
		}
	}
	return cues
}

// coalesce merges runs of adjacent cues sharing one shape.
func coalesce(cues []MouthCue) []MouthCue {
	if len(cues) < 2 {
		return cues
	}
	out := cues[:1]
	for _, cue := range cues[1:] {
		last := &out[len(out)-1]
		if cue.Shape == last.Shape && cue.Start == last.End {
			last.End = cue.End
			continue
		}
		out = append(out, cue)
	}
	return out
}

// snapOnsets moves interior cue boundaries onto nearby detected onsets.
func (r *Refiner) snapOnsets(cues []MouthCue, feats audiofeat.Features, scale float64) []MouthCue {
	if len(feats.Onsets) == 0 || scale <= 0 {
		return cues
	}
	tolerance := float64(r.cfg.SnapToleranceMS) / 1000 * scale
	for i := 1; i < len(cues); i++ {
		onset, ok := feats.NearestOnset(cues[i].Start)
		if !ok {
			continue
		}
		delta := onset - cues[i].Start
		if delta < -tolerance || delta > tolerance {
			continue
		}
		// moving the boundary must not collapse either neighbor
		if onset <= cues[i-1].Start || onset >= cues[i].End {
			continue
		}
		cues[i-1].End = onset
		cues[i].Start = onset
	}
	return cues
}

// mergeShort absorbs sub-threshold cues into their successor; the successor's
// shape wins. A trailing short cue folds back into its predecessor instead.
func (r *Refiner) mergeShort(cues []MouthCue, scale float64) []MouthCue {
	if scale <= 0 {
		scale = 1
	}
	minDur := float64(r.cfg.MinCueMS) / 1000 * scale
	if minDur <= 0 || len(cues) < 2 {
		return cues
	}
	var out []MouthCue
	for i := 0; i < len(cues); i++ {
		cue := cues[i]
		for cue.Duration() < minDur && i+1 < len(cues) {
			next := cues[i+1]
			next.Start = cue.Start
			cue = next
			i++
		}
		out = append(out, cue)
	}
	// trailing cue can still be short when nothing follows it
	if n := len(out); n >= 2 && out[n-1].Duration() < minDur {
		out[n-2].End = out[n-1].End
		out = out[:n-1]
	}
	return out
}

// closeBoundaries pads the track with rest cues so it spans exactly
// [0, duration].
func closeBoundaries(cues []MouthCue, duration float64) []MouthCue {
	if len(cues) == 0 {
		return []MouthCue{{Start: 0, End: duration, Shape: viseme.Rest}}
	}
	if cues[0].Start > 0 {
		cues = append([]MouthCue{{Start: 0, End: cues[0].Start, Shape: viseme.Rest}}, cues...)
	}
	// interior gaps come from clamping; bridge them with rest
	for i := 1; i < len(cues); i++ {
		if cues[i].Start > cues[i-1].End {
			gap := MouthCue{Start: cues[i-1].End, End: cues[i].Start, Shape: viseme.Rest}
			cues = append(cues[:i], append([]MouthCue{gap}, cues[i:]...)...)
			i++
		}
	}
	if last := cues[len(cues)-1].End; last < duration {
		cues = append(cues, MouthCue{Start: last, End: duration, Shape: viseme.Rest})
	}
	return cues
}
