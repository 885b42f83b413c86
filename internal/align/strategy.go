package align

import (
	"fmt"

	"github.com/vaani-labs/vaani-core/internal/translit"
)

// Refinement profiles per strategy. Short phrases are the dominant utterance
// length for articulation exercises, so they get the most aggressive
// refinement.
var (
	profileSingleWord    = Profile{Label: "single-word", SnapScale: 1.0, MergeScale: 1.0}
	profileShortPhrase   = Profile{Label: "short-phrase", SnapScale: 1.25, MergeScale: 1.25}
	profileLongUtterance = Profile{Label: "long-utterance", SnapScale: 0.75, MergeScale: 1.0}
)

func profileFor(category Category) Profile {
	switch category {
	case CategorySingleWord:
		return profileSingleWord
	case CategoryShortPhrase:
		return profileShortPhrase
	default:
		return profileLongUtterance
	}
}

// Classify buckets text by whitespace-delimited word count: 1 word is
// single-word, 2 through 4 is short-phrase, 5 or more is long-utterance.
func Classify(in InputDescriptor) Category {
	switch n := in.WordCount(); {
	case n <= 1:
		return CategorySingleWord
	case n <= 4:
		return CategoryShortPhrase
	default:
		return CategoryLongUtterance
	}
}

// Route computes the strategy decision for an input. Pure: no audio is
// touched and no state is kept.
func Route(in InputDescriptor) StrategyDecision {
	category := Classify(in)
	normalized := translit.Normalize(in.Text, in.Language)

	decision := StrategyDecision{
		Category:       category,
		Language:       in.Language,
		NormalizedHint: normalized,
	}

	if translit.LatinScript(in.Language) {
		decision.Tiers = []RecognizerMode{ModeDictionary, ModePhonetic, ModeAudioOnly}
		decision.AccuracyBand = "high"
		decision.Rationale = append(decision.Rationale,
			fmt.Sprintf("language %s uses Latin script: dictionary-trained recognizer preferred", in.Language),
			fmt.Sprintf("classified as %s (%d words)", category, in.WordCount()))
	} else {
		decision.Tiers = []RecognizerMode{ModePhonetic, ModeAudioOnly}
		decision.AccuracyBand = "medium"
		decision.Rationale = append(decision.Rationale,
			fmt.Sprintf("language %s has no recognizer dictionary: phonetic mode with romanized hint", in.Language),
			fmt.Sprintf("classified as %s (%d words)", category, in.WordCount()))
	}
	if category == CategoryShortPhrase {
		decision.Rationale = append(decision.Rationale,
			"short phrases get the most refinement effort")
	}
	decision.ChosenMode = decision.Tiers[0]
	return decision
}
