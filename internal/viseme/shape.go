// Package viseme defines the closed vocabulary of mouth shapes shared by all
// alignment strategies, the mapping from the external tool's shape alphabet,
// and static phoneme lookup tables for the supported languages.
package viseme

import "fmt"

// Shape is one of the ten mouth-shape categories. Phonemes map many-to-one
// onto this set; the tables are static data, not mutable state.
type Shape uint8

const (
	Rest           Shape = iota // mouth closed, at rest
	LipsTogether                // P, B, M
	TeethTogether               // S, Z, clenched teeth
	TongueVisible               // T, D, TH, tongue between or behind teeth
	WideOpen                    // AA, AE
	RoundedOpen                 // AO, ER, R
	SlightOpen                  // EH, schwa, K, G
	TeethOnLip                  // F, V
	TongueUp                    // L, N, tongue to roof
	RoundedForward              // UW, OW, W, pursed lips

	numShapes
)

var shapeNames = [numShapes]string{
	"rest",
	"lips-together",
	"teeth-together",
	"tongue-visible",
	"wide-open",
	"rounded-open",
	"slight-open",
	"teeth-on-lip",
	"tongue-up",
	"rounded-forward",
}

var shapeDescriptions = [numShapes]string{
	"mouth closed in a relaxed resting position",
	"lips pressed together for bilabial consonants",
	"teeth nearly closed with lips parted",
	"tongue visible between or just behind the teeth",
	"jaw dropped, mouth wide open",
	"mouth open with slightly rounded lips",
	"mouth slightly open in a neutral position",
	"upper teeth touching the lower lip",
	"tongue raised to the roof of the mouth",
	"lips rounded and pushed forward",
}

func (s Shape) String() string {
	if s >= numShapes {
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
	return shapeNames[s]
}

// Describe returns the human-readable description of the mouth position.
func (s Shape) Describe() string {
	if s >= numShapes {
		return "unknown mouth shape"
	}
	return shapeDescriptions[s]
}

// MarshalText implements encoding.TextMarshaler so tracks serialize with the
// category name instead of a bare integer.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(data []byte) error {
	name := string(data)
	for i, n := range shapeNames {
		if n == name {
			*s = Shape(i)
			return nil
		}
	}
	return fmt.Errorf("unknown viseme shape %q", name)
}

// toolCodes maps the external tool's single-letter shape alphabet onto the
// vocabulary. TongueVisible has no tool letter; it only arises from phoneme
// table lookups.
var toolCodes = map[string]Shape{
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

// FromToolCode translates a shape code emitted by the alignment tool.
func FromToolCode(code string) (Shape, bool) {
	s, ok := toolCodes[code]
	return s, ok
}
