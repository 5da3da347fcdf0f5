// ABOUTME: Beep speaker audio output implementation
// ABOUTME: Plays each written buffer through gopxl/beep and waits for it to finish
package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog/log"

	"github.com/Resonate-Protocol/tonetable/pkg/audio"
)

// speakerBuffer is the speaker's internal buffer length
const speakerBuffer = 100 * time.Millisecond

// Beep output backed by the beep speaker package
type Beep struct {
	volume

	mu       sync.Mutex
	rate     beep.SampleRate
	channels int
	ready    bool
}

// NewBeep creates a new Beep output
func NewBeep() *Beep {
	return &Beep{volume: newVolume()}
}

// Open initializes the speaker
func (b *Beep) Open(sampleRate, channels int) error {
	if channels < 1 || channels > 2 {
		return fmt.Errorf("beep output supports 1 or 2 channels, got %d", channels)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ready {
		return nil
	}

	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, rate.N(speakerBuffer)); err != nil {
		return fmt.Errorf("failed to init speaker: %w", err)
	}

	b.rate = rate
	b.channels = channels
	b.ready = true

	log.Debug().Int("sample_rate", sampleRate).Int("channels", channels).Msg("beep output initialized")
	return nil
}

// Write plays samples and blocks until the speaker has consumed them
func (b *Beep) Write(samples []int32) error {
	b.mu.Lock()
	ready, channels := b.ready, b.channels
	b.mu.Unlock()
	if !ready {
		return ErrNotOpen
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(newFrameStreamer(b.apply(samples), channels), beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}

// Close stops the speaker
func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ready {
		speaker.Clear()
		speaker.Close()
		b.ready = false
	}
	return nil
}

// frameStreamer exposes interleaved 24-bit samples as a beep stereo stream
type frameStreamer struct {
	frames [][2]float64
	pos    int
}

func newFrameStreamer(samples []int32, channels int) *frameStreamer {
	n := len(samples) / channels
	frames := make([][2]float64, n)
	for i := 0; i < n; i++ {
		left := audio.SampleToFloat(samples[i*channels])
		right := left
		if channels == 2 {
			right = audio.SampleToFloat(samples[i*channels+1])
		}
		frames[i] = [2]float64{left, right}
	}
	return &frameStreamer{frames: frames}
}

// Stream implements beep.Streamer
func (s *frameStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}
	n := copy(samples, s.frames[s.pos:])
	s.pos += n
	return n, true
}

// Err implements beep.Streamer
func (s *frameStreamer) Err() error {
	return nil
}
