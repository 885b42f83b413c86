package align

import (
	"fmt"
	"strings"

	"github.com/vaani-labs/vaani-core/internal/translit"
	"github.com/vaani-labs/vaani-core/internal/viseme"
)

// MouthCue is one viseme interval: the mouth holds Shape from Start to End,
// in seconds from clip start.
type MouthCue struct {
	Start float64
	End   float64
	Shape viseme.Shape
}

func (c MouthCue) Duration() float64 { return c.End - c.Start }

// Track is a refined viseme track covering one clip.
type Track struct {
	Duration float64
	Cues     []MouthCue
}

// Validate checks the track invariants: cues are sorted, strictly positive in
// length, contiguous, and span exactly [0, Duration].
func (t Track) Validate() error {
	if t.Duration <= 0 {
		return fmt.Errorf("track duration must be positive, got %v", t.Duration)
	}
	if len(t.Cues) == 0 {
		return fmt.Errorf("track has no cues")
	}
	if t.Cues[0].Start != 0 {
		return fmt.Errorf("first cue starts at %v, want 0", t.Cues[0].Start)
	}
	for i, cue := range t.Cues {
		if cue.End <= cue.Start {
			return fmt.Errorf("cue %d has non-positive span [%v, %v]", i, cue.Start, cue.End)
		}
		if i > 0 && cue.Start != t.Cues[i-1].End {
			return fmt.Errorf("cue %d starts at %v, previous ends at %v", i, cue.Start, t.Cues[i-1].End)
		}
	}
	if last := t.Cues[len(t.Cues)-1].End; last != t.Duration {
		return fmt.Errorf("last cue ends at %v, want duration %v", last, t.Duration)
	}
	return nil
}

// InputDescriptor identifies one alignment request.
type InputDescriptor struct {
	AudioPath string
	Text      string
	Language  translit.Language
}

// WordCount counts whitespace-delimited words in the raw text.
func (in InputDescriptor) WordCount() int {
	return len(strings.Fields(in.Text))
}

// Category buckets inputs by utterance length.
type Category string

const (
	CategorySingleWord    Category = "single-word"
	CategoryShortPhrase   Category = "short-phrase"
	CategoryLongUtterance Category = "long-utterance"
)

// RecognizerMode is one configuration tier of the external alignment tool.
type RecognizerMode string

const (
	// ModeDictionary uses the tool's dictionary-trained recognizer with the
	// raw text as a dialog hint. English only.
	ModeDictionary RecognizerMode = "pocketSphinx"
	// ModePhonetic uses the generic phonetic recognizer with normalized
	// (romanized) text as a dialog hint.
	ModePhonetic RecognizerMode = "phonetic"
	// ModeAudioOnly runs the phonetic recognizer without any text hint.
	ModeAudioOnly RecognizerMode = "audioOnly"
	// ModePhonemeTable marks a track synthesized from the viseme vocabulary
	// tables after every real tier failed. Never part of a routing plan.
	ModePhonemeTable RecognizerMode = "phonemeTable"
)

// StrategyDecision reports which pipeline an input will take. It is computed
// purely from the text and language and is never persisted as engine state.
type StrategyDecision struct {
	Category       Category
	Language       translit.Language
	Tiers          []RecognizerMode
	ChosenMode     RecognizerMode
	AccuracyBand   string
	Rationale      []string
	NormalizedHint string
}
