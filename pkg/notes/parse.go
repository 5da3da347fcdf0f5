// ABOUTME: Scientific pitch name parsing
// ABOUTME: Splits names like "C#4" into spelling and octave
package notes

import (
	"fmt"
	"strconv"
)

// Parse splits a scientific pitch name such as "A4", "C#0" or "Bb7" into
// its spelling and octave. The spelling must be one of Spellings().
// Octaves outside the table are accepted here; Lookup reports them.
func Parse(name string) (note string, octave int, err error) {
	split := len(name)
	for split > 0 && isDigit(name[split-1]) {
		split--
	}
	// Allow a leading minus for sub-contra octaves
	if split > 0 && split < len(name) && name[split-1] == '-' {
		split--
	}
	if split == 0 || split == len(name) {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	note = name[:split]
	if _, ok := spellingClass[note]; !ok {
		return "", 0, fmt.Errorf("%w: unknown spelling %q", ErrInvalidName, note)
	}

	octave, err = strconv.Atoi(name[split:])
	if err != nil {
		return "", 0, fmt.Errorf("%w: bad octave in %q", ErrInvalidName, name)
	}
	return note, octave, nil
}

// Name formats a spelling and octave as a scientific pitch name
func Name(note string, octave int) string {
	return note + strconv.Itoa(octave)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
