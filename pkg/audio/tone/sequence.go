// ABOUTME: Note sequences for batch playback
// ABOUTME: Builds waves for note/octave grids, collecting unresolved pairs
package tone

import "github.com/Resonate-Protocol/tonetable/pkg/notes"

// CMajor is the C major scale spelling list
var CMajor = []string{"C", "D", "E", "F", "G", "A", "B"}

// Sequence builds waves for every note in each octave, octave-major.
// Pairs missing from the table are skipped and returned as errors.
func Sequence(names []string, octaves []int, amplitude float64) ([]Wave, []error) {
	var waves []Wave
	var missing []error
	for _, octave := range octaves {
		for _, note := range names {
			w, err := NewWave(note, octave, amplitude)
			if err != nil {
				missing = append(missing, err)
				continue
			}
			waves = append(waves, w)
		}
	}
	return waves, missing
}

// OctaveRange returns [lo, hi] inclusive
func OctaveRange(lo, hi int) []int {
	if hi < lo {
		return nil
	}
	out := make([]int, 0, hi-lo+1)
	for o := lo; o <= hi; o++ {
		out = append(out, o)
	}
	return out
}

// AllNotes returns every spelling for the given octaves
func AllNotes(octaves []int, amplitude float64) ([]Wave, []error) {
	return Sequence(notes.Spellings(), octaves, amplitude)
}
