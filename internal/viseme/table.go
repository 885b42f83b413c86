package viseme

import (
	"strings"

	"github.com/vaani-labs/vaani-core/internal/translit"
)

// englishTable maps IPA phoneme symbols to shapes.
var englishTable = map[string]Shape{
	// consonants
	"p": LipsTogether, "b": LipsTogether, "m": LipsTogether,
	"f": TeethOnLip, "v": TeethOnLip,
	"θ": TongueVisible, "ð": TongueVisible,
	"t": TongueVisible, "d": TongueVisible,
	"s": TeethTogether, "z": TeethTogether,
	"n": TongueUp, "ŋ": SlightOpen,
	"k": SlightOpen, "g": SlightOpen, "h": SlightOpen,
	"tʃ": RoundedForward, "dʒ": RoundedForward, "ʃ": RoundedForward, "ʒ": RoundedForward,
	"r": RoundedOpen, "l": TongueUp,
	"w": RoundedForward, "j": SlightOpen,
	// vowels
	"æ": WideOpen, "ɑ": WideOpen, "a": WideOpen, "ʌ": WideOpen,
	"e": RoundedOpen, "ɛ": RoundedOpen, "eɪ": RoundedOpen,
	"i": SlightOpen, "ɪ": SlightOpen, "iː": SlightOpen,
	"o": RoundedOpen, "ɔ": RoundedOpen, "oʊ": RoundedOpen,
	"u": RoundedForward, "ʊ": RoundedForward, "uː": RoundedForward,
	"ə": SlightOpen,
	"aɪ": WideOpen, "aʊ": WideOpen, "ɔɪ": RoundedOpen,
}

// indicTable maps romanized phonemes shared by Hindi and Kannada to shapes.
// Aspirated stops collapse onto their plain counterparts visually.
var indicTable = map[string]Shape{
	"k": SlightOpen, "kh": SlightOpen, "g": SlightOpen, "gh": SlightOpen, "ng": SlightOpen,
	"ch": RoundedForward, "chh": RoundedForward, "j": RoundedForward, "jh": RoundedForward, "ny": TongueUp,
	"t": TongueVisible, "th": TongueVisible, "d": TongueVisible, "dh": TongueVisible,
	"p": LipsTogether, "ph": LipsTogether, "b": LipsTogether, "bh": LipsTogether, "m": LipsTogether,
	"n": TongueUp, "y": SlightOpen, "r": RoundedOpen, "l": TongueUp,
	"v": TeethOnLip, "w": RoundedForward, "f": TeethOnLip, "z": TeethTogether,
	"sh": RoundedForward, "s": TeethTogether, "h": SlightOpen,
	"a": WideOpen, "aa": WideOpen,
	"i": SlightOpen, "ee": SlightOpen,
	"u": RoundedForward, "oo": RoundedForward,
	"e": RoundedOpen, "ae": RoundedOpen, "ai": RoundedOpen,
	"o": RoundedOpen, "oa": RoundedOpen, "au": RoundedOpen,
}

var vowelPhonemes = map[string]bool{
	"a": true, "aa": true, "æ": true, "ɑ": true, "ʌ": true,
	"e": true, "ae": true, "ɛ": true, "eɪ": true, "ə": true,
	"i": true, "ee": true, "ɪ": true, "iː": true,
	"o": true, "oa": true, "ɔ": true, "oʊ": true,
	"u": true, "oo": true, "ʊ": true, "uː": true,
	"ai": true, "au": true, "aɪ": true, "aʊ": true, "ɔɪ": true,
}

const (
	// Nominal cue lengths for phoneme-table fallback tracks, in seconds.
	vowelDuration     = 0.15
	consonantDuration = 0.10
)

// Lookup resolves a phoneme symbol to its mouth shape for the language.
// Unknown phonemes fall back to SlightOpen, which reads as neutral speech.
func Lookup(phoneme string, lang translit.Language) Shape {
	table := indicTable
	if translit.LatinScript(lang) {
		table = englishTable
	}
	if s, ok := table[phoneme]; ok {
		return s
	}
	return SlightOpen
}

// IsVowel reports whether the phoneme symbol denotes a vowel.
func IsVowel(phoneme string) bool {
	return vowelPhonemes[phoneme]
}

// NominalDuration returns the fixed cue length used when synthesizing a
// track directly from phonemes without audio alignment.
func NominalDuration(phoneme string) float64 {
	if IsVowel(phoneme) {
		return vowelDuration
	}
	return consonantDuration
}

// englishSpelling maps common English spelling digraphs onto IPA symbols.
var englishSpelling = map[string]string{
	"th": "θ",
	"sh": "ʃ",
	"ch": "tʃ",
	"ng": "ŋ",
	"ph": "f",
	"ee": "iː",
	"oo": "uː",
}

// digraphs tried before single letters when phonemizing romanized text,
// longest first so "chh" wins over "ch".
var digraphs = []string{
	"chh", "thh", "dhh", "shh",
	"aa", "ee", "oo", "ae", "ai", "au", "oa",
	"kh", "gh", "ng", "ch", "jh", "ny", "th", "dh",
	"ph", "bh", "sh", "ruu", "ru",
}

// Phonemize splits Latin (or romanized) text into phoneme symbols via greedy
// longest-match against the static tables. It is an approximation used only
// for the phoneme fallback path; forced alignment remains the primary source
// of timing.
func Phonemize(latinText string, lang translit.Language) []string {
	text := strings.ToLower(strings.TrimSpace(latinText))
	table := indicTable
	if translit.LatinScript(lang) {
		table = englishTable
	}

	var phonemes []string
	for i := 0; i < len(text); {
		matched := false
		for _, dg := range digraphs {
			if strings.HasPrefix(text[i:], dg) {
				symbol := dg
				if translit.LatinScript(lang) {
					if ipa, ok := englishSpelling[dg]; ok {
						symbol = ipa
					}
				}
				if _, ok := table[symbol]; ok || vowelPhonemes[symbol] {
					phonemes = append(phonemes, symbol)
					i += len(dg)
					matched = true
					break
				}
			}
		}
		if matched {
			continue
		}
		c := string(text[i])
		i++
		if _, ok := table[c]; ok {
			phonemes = append(phonemes, c)
			continue
		}
		// Spelling approximations for letters without a direct entry.
		switch c {
		case "c", "q", "x":
			phonemes = append(phonemes, "k")
		}
		// Spaces, punctuation and anything else contribute no phoneme.
	}
	return phonemes
}
