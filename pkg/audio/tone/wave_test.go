// ABOUTME: Tests for tone generators
// ABOUTME: Wave construction, sample rendering and the sweep formula
package tone

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Resonate-Protocol/tonetable/pkg/notes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWave(t *testing.T) {
	w, err := NewWave("A", 4, 0.3)
	require.NoError(t, err)
	assert.Equal(t, 440.0, w.Frequency)
	assert.Equal(t, 0.3, w.Amplitude)
	assert.Equal(t, "A4", w.Name())
}

func TestNewWaveNotFound(t *testing.T) {
	_, err := NewWave("H", 4, 0.3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, notes.ErrNotFound))
	assert.Contains(t, err.Error(), "H4")

	_, err = NewWave("C", 9, 0.3)
	assert.True(t, errors.Is(err, notes.ErrNotFound))
}

func TestWaveSamples(t *testing.T) {
	w := NewFrequencyWave(440, 0.3)
	samples := w.Samples(44100, time.Second)
	require.Len(t, samples, 44100)

	assert.Equal(t, 0.0, samples[0])
	for i, s := range samples {
		if math.Abs(s) > 0.3+1e-12 {
			t.Fatalf("sample %d = %f exceeds amplitude", i, s)
		}
	}

	// Quarter period of 440 Hz at 44.1 kHz lands near the peak
	peak := 0.0
	for _, s := range samples[:101] {
		peak = math.Max(peak, s)
	}
	assert.InDelta(t, 0.3, peak, 0.001)
}

func TestWaveRangeContinuesSamples(t *testing.T) {
	w := NewFrequencyWave(261.63, 0.5)
	full := w.Samples(8000, time.Second)
	part := w.Range(8000, 250*time.Millisecond, 500*time.Millisecond)

	require.Len(t, part, 2000)
	for i := range part {
		assert.InDelta(t, full[2000+i], part[i], 1e-9)
	}

	assert.Nil(t, w.Range(8000, time.Second, time.Second))
}

func TestRenderEmpty(t *testing.T) {
	assert.Nil(t, Render(NewFrequencyWave(440, 1), 44100, 0, 0))
}

func TestSweepFrequency(t *testing.T) {
	s := Sweep{Base: 440, Amplitude: 0.3}
	assert.InDelta(t, 440, s.Frequency(0), 1e-9)
	// Quarter of the 2 s modulation period: sin = 1
	assert.InDelta(t, 880, s.Frequency(0.5), 1e-9)
	assert.InDelta(t, 0, s.Frequency(1.5), 1e-9)

	samples := Render(s, 44100, 0, 100*time.Millisecond)
	require.Len(t, samples, 4410)
	for _, v := range samples {
		assert.LessOrEqual(t, math.Abs(v), 0.3+1e-12)
	}
}

func TestWaveNameRawFrequency(t *testing.T) {
	assert.Equal(t, "440.00Hz", NewFrequencyWave(440, 1).Name())
}
