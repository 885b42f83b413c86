package align

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vaani-labs/vaani-core/internal/translit"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		text string
		want Category
	}{
		{"ball", CategorySingleWord},
		{"red ball", CategoryShortPhrase},
		{"throw the red ball", CategoryShortPhrase},
		{"please throw the red ball", CategoryLongUtterance},
		{"", CategorySingleWord},
	}
	for _, tc := range cases {
		got := Classify(InputDescriptor{Text: tc.text, Language: translit.LangEnglish})
		if got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.text, tc.want, got)
		}
	}
}

func TestRouteEnglishPrefersDictionary(t *testing.T) {
	decision := Route(InputDescriptor{Text: "ball", Language: translit.LangEnglish})
	if decision.Category != CategorySingleWord {
		t.Fatalf("expected single-word, got %s", decision.Category)
	}
	want := []RecognizerMode{ModeDictionary, ModePhonetic, ModeAudioOnly}
	if !reflect.DeepEqual(decision.Tiers, want) {
		t.Fatalf("expected tiers %v, got %v", want, decision.Tiers)
	}
	if decision.AccuracyBand != "high" {
		t.Fatalf("expected high accuracy band, got %q", decision.AccuracyBand)
	}
}

func TestRouteHindiPhraseUsesPhoneticWithRomanizedHint(t *testing.T) {
	decision := Route(InputDescriptor{Text: "नमस्ते मेरा दोस्त", Language: translit.LangHindi})
	if decision.Category != CategoryShortPhrase {
		t.Fatalf("expected short-phrase, got %s", decision.Category)
	}
	want := []RecognizerMode{ModePhonetic, ModeAudioOnly}
	if !reflect.DeepEqual(decision.Tiers, want) {
		t.Fatalf("expected tiers %v, got %v", want, decision.Tiers)
	}
	if decision.NormalizedHint == "" {
		t.Fatal("expected non-empty romanized hint")
	}
	for _, r := range decision.NormalizedHint {
		if r >= 0x0900 && r <= 0x097F {
			t.Fatalf("hint still contains Devanagari: %q", decision.NormalizedHint)
		}
	}
}

func TestRouteIsPureAndTotal(t *testing.T) {
	in := InputDescriptor{Text: "ಒಂದು ಎರಡು ಮೂರು", Language: translit.LangKannada}
	first := Route(in)
	second := Route(in)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("route is not deterministic: %v vs %v", first, second)
	}
	if len(first.Tiers) == 0 {
		t.Fatal("every input must select at least one tier")
	}
}

func TestRouteShortPhraseRationaleMentionsRefinement(t *testing.T) {
	decision := Route(InputDescriptor{Text: "red ball now", Language: translit.LangEnglish})
	joined := strings.Join(decision.Rationale, "\n")
	if !strings.Contains(joined, "refinement") {
		t.Fatalf("expected refinement note in rationale, got %q", joined)
	}
}

func TestProfileForCategory(t *testing.T) {
	if p := profileFor(CategoryShortPhrase); p.SnapScale <= profileFor(CategorySingleWord).SnapScale {
		t.Fatal("short-phrase profile should refine hardest")
	}
	if p := profileFor(CategoryLongUtterance); p.Label != "long-utterance" {
		t.Fatalf("unexpected profile %q", p.Label)
	}
}
