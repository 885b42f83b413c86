package align

import (
	"github.com/vaani-labs/vaani-core/internal/translit"
	"github.com/vaani-labs/vaani-core/internal/viseme"
)

// phonemeFallback synthesizes raw cues straight from the viseme vocabulary
// tables when no recognizer tier produced any. Each phoneme gets its nominal
// duration, scaled so the whole sequence fills the clip.
func phonemeFallback(normalized string, lang translit.Language, duration float64) RawResult {
	phonemes := viseme.Phonemize(normalized, lang)
	if len(phonemes) == 0 || duration <= 0 {
		return RawResult{Duration: duration}
	}

	total := 0.0
	for _, p := range phonemes {
		total += viseme.NominalDuration(p)
	}
	scale := duration / total

	result := RawResult{Duration: duration}
	at := 0.0
	for i, p := range phonemes {
		end := at + viseme.NominalDuration(p)*scale
		if i == len(phonemes)-1 {
			end = duration
		}
		result.Cues = append(result.Cues, MouthCue{
			Start: at,
			End:   end,
			Shape: viseme.Lookup(p, lang),
		})
		at = end
	}
	return result
}
