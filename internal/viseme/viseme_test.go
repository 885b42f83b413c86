package viseme

import (
	"testing"

	"github.com/vaani-labs/vaani-core/internal/translit"
)

func TestFromToolCode(t *testing.T) {
	cases := map[string]Shape{
		"A": LipsTogether,
		"B": TeethTogether,
		"C": SlightOpen,
		"D": WideOpen,
		"E": RoundedOpen,
		"F": RoundedForward,
		"G": TeethOnLip,
		"H": TongueUp,
		"X": Rest,
	}
	for code, want := range cases {
		got, ok := FromToolCode(code)
		if !ok {
			t.Fatalf("FromToolCode(%q) not found", code)
		}
		if got != want {
			t.Fatalf("FromToolCode(%q) = %v, want %v", code, got, want)
		}
	}
	if _, ok := FromToolCode("Z"); ok {
		t.Fatal("expected unknown code to be rejected")
	}
}

func TestShapeRoundTripText(t *testing.T) {
	for s := Rest; s < numShapes; s++ {
		data, err := s.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", s, err)
		}
		var back Shape
		if err := back.UnmarshalText(data); err != nil {
			t.Fatalf("unmarshal %q: %v", data, err)
		}
		if back != s {
			t.Fatalf("round trip mismatch: %v != %v", back, s)
		}
	}
	var s Shape
	if err := s.UnmarshalText([]byte("grimace")); err == nil {
		t.Fatal("expected error for unknown shape name")
	}
}

func TestDescribeCoversAllShapes(t *testing.T) {
	seen := map[string]bool{}
	for s := Rest; s < numShapes; s++ {
		d := s.Describe()
		if d == "" || d == "unknown mouth shape" {
			t.Fatalf("shape %v lacks a description", s)
		}
		if seen[d] {
			t.Fatalf("duplicate description %q", d)
		}
		seen[d] = true
	}
}

func TestLookup(t *testing.T) {
	if got := Lookup("m", translit.LangEnglish); got != LipsTogether {
		t.Fatalf("english m = %v, want lips-together", got)
	}
	if got := Lookup("bh", translit.LangHindi); got != LipsTogether {
		t.Fatalf("hindi bh = %v, want lips-together", got)
	}
	if got := Lookup("sh", translit.LangKannada); got != RoundedForward {
		t.Fatalf("kannada sh = %v, want rounded-forward", got)
	}
	// Unknown phoneme falls back to a neutral shape instead of erroring.
	if got := Lookup("zzz", translit.LangEnglish); got != SlightOpen {
		t.Fatalf("unknown phoneme = %v, want slight-open", got)
	}
}

func TestNominalDuration(t *testing.T) {
	if NominalDuration("aa") <= NominalDuration("k") {
		t.Fatal("vowel cues should outlast consonant cues")
	}
}

func TestPhonemizeHindiRomanized(t *testing.T) {
	got := Phonemize("namasthe", translit.LangHindi)
	want := []string{"n", "a", "m", "a", "s", "th", "e"}
	if len(got) != len(want) {
		t.Fatalf("Phonemize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Phonemize = %v, want %v", got, want)
		}
	}
}

func TestPhonemizeEnglishDigraphs(t *testing.T) {
	got := Phonemize("thank", translit.LangEnglish)
	if len(got) == 0 || got[0] != "θ" {
		t.Fatalf("expected leading θ for 'thank', got %v", got)
	}
}

func TestPhonemizeSkipsPunctuation(t *testing.T) {
	got := Phonemize("ma, ma!", translit.LangHindi)
	for _, p := range got {
		if p == "," || p == "!" || p == " " {
			t.Fatalf("punctuation leaked into phonemes: %v", got)
		}
	}
}
