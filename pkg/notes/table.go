// ABOUTME: Static reference frequency table
// ABOUTME: Frequencies in Hz for 17 spellings across octaves 0-8
package notes

// octaveRow holds one spelling's frequencies indexed by octave
type octaveRow [MaxOctave - MinOctave + 1]float64

// table is the reference frequency table, values rounded to 0.01 Hz.
// Enharmonic spellings carry identical rows.
var table = map[string]octaveRow{
	"C":  {16.35, 32.70, 65.41, 130.81, 261.63, 523.25, 1046.50, 2093.00, 4186.01},
	"C#": {17.32, 34.65, 69.30, 138.59, 277.18, 554.37, 1108.73, 2217.46, 4434.92},
	"Db": {17.32, 34.65, 69.30, 138.59, 277.18, 554.37, 1108.73, 2217.46, 4434.92},
	"D":  {18.35, 36.71, 73.42, 146.83, 293.66, 587.33, 1174.66, 2349.32, 4698.63},
	"D#": {19.45, 38.89, 77.78, 155.56, 311.13, 622.25, 1244.51, 2489.02, 4978.03},
	"Eb": {19.45, 38.89, 77.78, 155.56, 311.13, 622.25, 1244.51, 2489.02, 4978.03},
	"E":  {20.60, 41.20, 82.41, 164.81, 329.63, 659.25, 1318.51, 2637.02, 5274.04},
	"F":  {21.83, 43.65, 87.31, 174.61, 349.23, 698.46, 1396.91, 2793.83, 5587.65},
	"F#": {23.12, 46.25, 92.50, 185.00, 369.99, 739.99, 1479.98, 2959.96, 5919.91},
	"Gb": {23.12, 46.25, 92.50, 185.00, 369.99, 739.99, 1479.98, 2959.96, 5919.91},
	"G":  {24.50, 49.00, 98.00, 196.00, 392.00, 783.99, 1567.98, 3135.96, 6271.93},
	"G#": {25.96, 51.91, 103.83, 207.65, 415.30, 830.61, 1661.22, 3322.44, 6644.88},
	"Ab": {25.96, 51.91, 103.83, 207.65, 415.30, 830.61, 1661.22, 3322.44, 6644.88},
	"A":  {27.50, 55.00, 110.00, 220.00, 440.00, 880.00, 1760.00, 3520.00, 7040.00},
	"A#": {29.14, 58.27, 116.54, 233.08, 466.16, 932.33, 1864.66, 3729.31, 7458.62},
	"Bb": {29.14, 58.27, 116.54, 233.08, 466.16, 932.33, 1864.66, 3729.31, 7458.62},
	"B":  {30.87, 61.74, 123.47, 246.94, 493.88, 987.77, 1975.53, 3951.07, 7902.13},
}

// Reference pitches, as listed in the table
const (
	MiddleC  = 261.63 // C4
	ConcertA = 440.00 // A4
)

// Entry is a single (note, octave) -> frequency association
type Entry struct {
	Note      string  `json:"note"`
	Octave    int     `json:"octave"`
	Frequency float64 `json:"frequency"`
}

// Lookup returns the table frequency for a note and octave.
// ok is false when the spelling is unknown or the octave is outside the table.
func Lookup(note string, octave int) (hz float64, ok bool) {
	row, found := table[note]
	if !found || octave < MinOctave || octave > MaxOctave {
		return 0, false
	}
	return row[octave-MinOctave], true
}

// Entries flattens the table in chromatic order, octave-major per spelling
func Entries() []Entry {
	out := make([]Entry, 0, len(spellings)*(MaxOctave-MinOctave+1))
	for _, note := range spellings {
		row := table[note]
		for i, hz := range row {
			out = append(out, Entry{Note: note, Octave: MinOctave + i, Frequency: hz})
		}
	}
	return out
}
