// ABOUTME: Equal-temperament frequency calculator
// ABOUTME: Derives note frequencies from A4 = 440 Hz without the table
package notes

import "math"

const (
	// ReferenceHz is the tuning reference, A4
	ReferenceHz = 440.0
	// ReferenceOctave is the octave containing the reference A
	ReferenceOctave = 4
)

// Calculate returns the equal-tempered frequency of a note, rounded to 0.01 Hz.
// ok is false for unknown spellings. Any octave is accepted.
func Calculate(note string, octave int) (hz float64, ok bool) {
	n, ok := SemitonesFromReference(note, octave)
	if !ok {
		return 0, false
	}
	return round2(ReferenceHz * math.Pow(2, float64(n)/PitchClasses)), true
}

// SemitonesFromReference returns the signed distance in semitones from A4.
//
// Octave numbers change at C, so C..G# lie below the A of their own octave:
// C4 is 9 semitones under A4, not 3 above it.
func SemitonesFromReference(note string, octave int) (int, bool) {
	p, ok := PitchClassOf(note)
	if !ok {
		return 0, false
	}
	return (octave-ReferenceOctave)*PitchClasses + int(p) - int(A), true
}

// round2 rounds to two decimal places, half away from zero
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
