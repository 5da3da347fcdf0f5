// ABOUTME: Bubbletea model for the note browser TUI
// ABOUTME: Grid of spellings by octave with playback, mode and volume controls
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Resonate-Protocol/tonetable/pkg/notes"
)

// PlayFunc plays a note; it runs off the UI goroutine
type PlayFunc func(note string, octave int) error

// VolumeFunc receives volume changes
type VolumeFunc func(volume int, muted bool)

// Controls connects the model to playback
type Controls struct {
	Play   PlayFunc
	Volume VolumeFunc
}

// PlayedMsg reports a finished playback
type PlayedMsg struct {
	Note   string
	Octave int
	Err    error
}

// Model represents the TUI state
type Model struct {
	controls Controls

	rows    []string // spellings
	octaves []int

	row, col   int
	calculated bool

	playing bool
	status  string

	volume int
	muted  bool

	width  int
	height int
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	cellStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case PlayedMsg:
		m.playing = false
		if msg.Err != nil {
			m.status = fmt.Sprintf("Error playing %s: %v", notes.Name(msg.Note, msg.Octave), msg.Err)
		} else {
			m.status = fmt.Sprintf("Played %s", notes.Name(msg.Note, msg.Octave))
		}
	}

	return m, nil
}

// Selected returns the note and octave under the cursor
func (m Model) Selected() (string, int) {
	return m.rows[m.row], m.octaves[m.col]
}

// frequency returns the displayed value for a cell
func (m Model) frequency(note string, octave int) (float64, bool) {
	if m.calculated {
		return notes.Calculate(note, octave)
	}
	return notes.Lookup(note, octave)
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	mode := "table"
	if m.calculated {
		mode = "calculated"
	}
	b.WriteString(titleStyle.Render("Note Frequencies"))
	b.WriteString(headerStyle.Render(fmt.Sprintf("  [%s]", mode)))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-4s", "")))
	for _, o := range m.octaves {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%9d", o)))
	}
	b.WriteString("\n")

	for r, note := range m.rows {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-4s", note)))
		for c, octave := range m.octaves {
			text := "        -"
			if hz, ok := m.frequency(note, octave); ok {
				text = fmt.Sprintf("%9.2f", hz)
			}
			if r == m.row && c == m.col {
				b.WriteString(selectedStyle.Render(text))
			} else {
				b.WriteString(cellStyle.Render(text))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderSelection())
	b.WriteString(m.renderControls())
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("←/→/↑/↓:Move  enter:Play  v:Table/Calc  +/-:Volume  m:Mute  q:Quit"))
	b.WriteString("\n")

	return b.String()
}

// renderSelection describes the selected note in both sources
func (m Model) renderSelection() string {
	note, octave := m.Selected()
	table, _ := notes.Lookup(note, octave)
	calc, _ := notes.Calculate(note, octave)

	line := fmt.Sprintf("%s  table %.2f Hz  calculated %.2f Hz", notes.Name(note, octave), table, calc)
	if table != calc {
		line += fmt.Sprintf("  (Δ %+.2f)", calc-table)
	}
	if enh := notes.Enharmonics(note); len(enh) > 1 {
		line += "  " + strings.Join(enh, "/")
	}
	return line + "\n"
}

// renderControls renders volume status
func (m Model) renderControls() string {
	muteText := ""
	if m.muted {
		muteText = " (muted)"
	}
	return fmt.Sprintf("Volume: [%s] %d%%%s\n", renderBar(m.volume, 100, 10), m.volume, muteText)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(m.rows)-1 {
			m.row++
		}
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
	case "right", "l":
		if m.col < len(m.octaves)-1 {
			m.col++
		}
	case "v":
		m.calculated = !m.calculated
	case "+", "=":
		m.volume = min(m.volume+5, 100)
		m.notifyVolume()
	case "-":
		m.volume = max(m.volume-5, 0)
		m.notifyVolume()
	case "m":
		m.muted = !m.muted
		m.notifyVolume()
	case "enter", " ":
		return m.play()
	}

	return m, nil
}

// play starts playback of the selected note unless one is already playing
func (m Model) play() (tea.Model, tea.Cmd) {
	if m.playing || m.controls.Play == nil {
		return m, nil
	}
	note, octave := m.Selected()
	m.playing = true
	m.status = fmt.Sprintf("Playing %s...", notes.Name(note, octave))

	playFn := m.controls.Play
	return m, func() tea.Msg {
		return PlayedMsg{Note: note, Octave: octave, Err: playFn(note, octave)}
	}
}

func (m Model) notifyVolume() {
	if m.controls.Volume != nil {
		m.controls.Volume(m.volume, m.muted)
	}
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
