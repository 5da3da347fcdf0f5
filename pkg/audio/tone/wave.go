// ABOUTME: Sine and sweep generators
// ABOUTME: Evaluates amplitude * sin(2*pi*f*t) for notes and raw frequencies
package tone

import (
	"fmt"
	"math"
	"time"

	"github.com/Resonate-Protocol/tonetable/pkg/notes"
)

// Generator yields a sample value for time t in seconds
type Generator interface {
	At(t float64) float64
}

// Wave is a pure sine tone
type Wave struct {
	Note      string // empty for raw-frequency tones
	Octave    int
	Frequency float64
	Amplitude float64
}

// NewWave builds a sine for a note, taking its frequency from the table.
// The error wraps notes.ErrNotFound and names the pair.
func NewWave(note string, octave int, amplitude float64) (Wave, error) {
	hz, err := notes.Frequency(note, octave)
	if err != nil {
		return Wave{}, fmt.Errorf("build wave: %w", err)
	}
	return Wave{Note: note, Octave: octave, Frequency: hz, Amplitude: amplitude}, nil
}

// NewFrequencyWave builds a sine at an arbitrary frequency
func NewFrequencyWave(hz, amplitude float64) Wave {
	return Wave{Frequency: hz, Amplitude: amplitude}
}

// Name returns the scientific pitch name, or the frequency for raw tones
func (w Wave) Name() string {
	if w.Note == "" {
		return fmt.Sprintf("%.2fHz", w.Frequency)
	}
	return notes.Name(w.Note, w.Octave)
}

// At evaluates the sine at time t
func (w Wave) At(t float64) float64 {
	return w.Amplitude * math.Sin(2*math.Pi*w.Frequency*t)
}

// Samples renders d of the wave starting at t=0
func (w Wave) Samples(sampleRate int, d time.Duration) []float64 {
	return Render(w, sampleRate, 0, d)
}

// Range renders the wave over [start, stop)
func (w Wave) Range(sampleRate int, start, stop time.Duration) []float64 {
	if stop <= start {
		return nil
	}
	return Render(w, sampleRate, start, stop-start)
}

// Sweep is a sine whose frequency wobbles around Base:
// f(t) = Base * (1 + sin(2*pi*Base/880*t)).
type Sweep struct {
	Base      float64
	Amplitude float64
}

// Frequency returns the instantaneous frequency at time t
func (s Sweep) Frequency(t float64) float64 {
	return s.Base * (1 + math.Sin(2*math.Pi*s.Base/880*t))
}

// At evaluates the sweep at time t
func (s Sweep) At(t float64) float64 {
	return s.Amplitude * math.Sin(2*math.Pi*s.Frequency(t)*t)
}

// Render evaluates g at n = sampleRate*d points spaced 1/sampleRate apart,
// beginning at start. The stop point is excluded.
func Render(g Generator, sampleRate int, start, d time.Duration) []float64 {
	n := int(float64(sampleRate) * d.Seconds())
	if n <= 0 {
		return nil
	}
	buf := make([]float64, n)
	t0 := start.Seconds()
	rate := float64(sampleRate)
	for i := range buf {
		buf[i] = g.At(t0 + float64(i)/rate)
	}
	return buf
}
