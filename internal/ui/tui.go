// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the note browser
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/tonetable/pkg/notes"
)

// NewModel creates a new TUI model with the cursor on A4
func NewModel(controls Controls) Model {
	octaves := make([]int, 0, notes.MaxOctave-notes.MinOctave+1)
	for o := notes.MinOctave; o <= notes.MaxOctave; o++ {
		octaves = append(octaves, o)
	}

	m := Model{
		controls: controls,
		rows:     notes.Spellings(),
		octaves:  octaves,
		volume:   100,
	}
	for i, s := range m.rows {
		if s == "A" {
			m.row = i
		}
	}
	m.col = 4 - notes.MinOctave
	return m
}

// Run starts the TUI and blocks until the user quits
func Run(controls Controls) error {
	_, err := tea.NewProgram(NewModel(controls), tea.WithAltScreen()).Run()
	return err
}
