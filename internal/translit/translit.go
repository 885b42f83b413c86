// Package translit provides deterministic romanization of Indic scripts.
//
// The external alignment tool's phonetic recognizer only understands Latin
// input, so Devanagari and Kannada text is transliterated character by
// character into a Latin pronunciation approximation before being handed to
// the tool as dialog hint text.
package translit

import "strings"

// Language identifies one of the supported language codes.
type Language string

const (
	LangEnglish Language = "en"
	LangHindi   Language = "hi"
	LangKannada Language = "kn"
)

// Parse maps a raw language code onto a supported Language. Unrecognized
// codes fall back to English so that alignment still proceeds with the
// Latin-script code path.
func Parse(code string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(code))) {
	case LangHindi:
		return LangHindi
	case LangKannada:
		return LangKannada
	default:
		return LangEnglish
	}
}

// LatinScript reports whether the language is written in Latin script and
// therefore needs no romanization.
func LatinScript(lang Language) bool {
	switch lang {
	case LangHindi, LangKannada:
		return false
	default:
		return true
	}
}

// script bundles the per-language character tables. Consonant entries carry
// their inherent vowel ("ka"); a following dependent vowel sign replaces it
// and the virama suppresses it entirely.
type script struct {
	vowels     map[rune]string
	consonants map[rune]string
	vowelSigns map[rune]string
	special    map[rune]string
	virama     rune
}

// Normalize converts text in the given language to a Latin phonetic
// approximation. For Latin-script languages it is the identity function.
// Unrecognized characters pass through unchanged so punctuation and unknown
// symbols never block alignment.
func Normalize(text string, lang Language) string {
	switch lang {
	case LangHindi:
		return devanagariScript.romanize(text)
	case LangKannada:
		return kannadaScript.romanize(text)
	default:
		return text
	}
}

func (s *script) romanize(text string) string {
	runes := []rune(strings.TrimSpace(text))
	var out strings.Builder
	out.Grow(len(runes) * 2)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if v, ok := s.vowels[r]; ok {
			out.WriteString(v)
			continue
		}

		if base, ok := s.consonants[r]; ok {
			if i+1 < len(runes) {
				next := runes[i+1]
				if sign, ok := s.vowelSigns[next]; ok {
					if next == s.virama {
						out.WriteString(strings.TrimSuffix(base, "a"))
					} else {
						out.WriteString(strings.TrimSuffix(base, "a") + sign)
					}
					i++
					continue
				}
				if sp, ok := s.special[next]; ok {
					out.WriteString(base + sp)
					i++
					continue
				}
			}
			// No sign follows, keep the inherent vowel.
			out.WriteString(base)
			continue
		}

		if sp, ok := s.special[r]; ok {
			out.WriteString(sp)
			continue
		}
		if sign, ok := s.vowelSigns[r]; ok {
			// Orphan vowel sign without a preceding consonant.
			out.WriteString(sign)
			continue
		}

		out.WriteRune(r)
	}
	return out.String()
}
