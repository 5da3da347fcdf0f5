// ABOUTME: Tests for scientific pitch name parsing
// ABOUTME: Valid names, accidentals, negative octaves and malformed input
package notes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input      string
		wantNote   string
		wantOctave int
		wantErr    bool
	}{
		{"A4", "A", 4, false},
		{"C#0", "C#", 0, false},
		{"Bb7", "Bb", 7, false},
		{"G#-1", "G#", -1, false},
		{"C10", "C", 10, false},
		{"H4", "", 0, true},
		{"c4", "", 0, true},
		{"C#", "", 0, true},
		{"4", "", 0, true},
		{"", "", 0, true},
		{"C--1", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			note, octave, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidName))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantNote, note)
			assert.Equal(t, tt.wantOctave, octave)
		})
	}
}

func TestNameRoundTrip(t *testing.T) {
	for _, note := range Spellings() {
		got, octave, err := Parse(Name(note, 3))
		assert.NoError(t, err)
		assert.Equal(t, note, got)
		assert.Equal(t, 3, octave)
	}
}
