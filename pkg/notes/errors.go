// ABOUTME: Error values for note resolution
// ABOUTME: Sentinels and the NotFoundError carrying the unresolved pair
package notes

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a note/octave pair absent from the table
	ErrNotFound = errors.New("note not found")
	// ErrInvalidName reports a malformed scientific pitch name
	ErrInvalidName = errors.New("invalid note name")
)

// NotFoundError names the pair that could not be resolved
type NotFoundError struct {
	Note   string
	Octave int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("note %s%d not found", e.Note, e.Octave)
}

// Unwrap lets errors.Is match ErrNotFound
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Frequency is Lookup with an error for callers that propagate failures
func Frequency(note string, octave int) (float64, error) {
	hz, ok := Lookup(note, octave)
	if !ok {
		return 0, &NotFoundError{Note: note, Octave: octave}
	}
	return hz, nil
}
