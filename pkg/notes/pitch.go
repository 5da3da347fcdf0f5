// ABOUTME: Pitch classes and note spellings
// ABOUTME: Maps the 17 accepted spellings onto the 12 chromatic pitch classes
package notes

// PitchClass is one of the 12 chromatic pitches, numbered from C.
type PitchClass int

const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// PitchClasses is the number of semitones in an octave
const PitchClasses = 12

// Octave range covered by the reference table (scientific pitch notation)
const (
	MinOctave = 0
	MaxOctave = 8
)

var pitchNames = [PitchClasses]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// String returns the sharp spelling of the pitch class
func (p PitchClass) String() string {
	if p < 0 || p >= PitchClasses {
		return "?"
	}
	return pitchNames[p]
}

// spellings lists every accepted note name in chromatic order.
// Enharmonic pairs are adjacent, sharp first.
var spellings = []string{
	"C", "C#", "Db", "D", "D#", "Eb", "E", "F", "F#", "Gb",
	"G", "G#", "Ab", "A", "A#", "Bb", "B",
}

var spellingClass = map[string]PitchClass{
	"C":  C,
	"C#": CSharp,
	"Db": CSharp,
	"D":  D,
	"D#": DSharp,
	"Eb": DSharp,
	"E":  E,
	"F":  F,
	"F#": FSharp,
	"Gb": FSharp,
	"G":  G,
	"G#": GSharp,
	"Ab": GSharp,
	"A":  A,
	"A#": ASharp,
	"Bb": ASharp,
	"B":  B,
}

// Spellings returns the accepted note names in chromatic order
func Spellings() []string {
	out := make([]string, len(spellings))
	copy(out, spellings)
	return out
}

// PitchClassOf resolves a spelling to its pitch class
func PitchClassOf(note string) (PitchClass, bool) {
	p, ok := spellingClass[note]
	return p, ok
}

// SemitonesFromA returns the offset of a note above A within the A-rooted
// cycle: A=0, A#/Bb=1, B=2, C=3 ... G#/Ab=11.
func SemitonesFromA(note string) (int, bool) {
	p, ok := spellingClass[note]
	if !ok {
		return 0, false
	}
	return (int(p) - int(A) + PitchClasses) % PitchClasses, true
}

// Enharmonics returns every spelling of the same pitch, including note itself.
// Returns nil for unknown spellings.
func Enharmonics(note string) []string {
	p, ok := spellingClass[note]
	if !ok {
		return nil
	}
	var out []string
	for _, s := range spellings {
		if spellingClass[s] == p {
			out = append(out, s)
		}
	}
	return out
}
