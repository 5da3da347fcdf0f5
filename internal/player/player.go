// ABOUTME: Tone playback orchestration
// ABOUTME: Streams generated notes, scales, beeps and sweeps to an audio output
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Resonate-Protocol/tonetable/pkg/audio"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/output"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/tone"
	"github.com/Resonate-Protocol/tonetable/pkg/notes"
)

// Defaults for the test beep
const (
	BeepFrequency = 440.0
	BeepDuration  = 3 * time.Second
)

// Config holds playback settings
type Config struct {
	SampleRate   int
	Channels     int
	Amplitude    float64
	NoteDuration time.Duration
	Gap          time.Duration // silence written after each note
	ChunkFrames  int
}

// DefaultConfig returns one second notes at 44.1kHz mono
func DefaultConfig() Config {
	return Config{
		SampleRate:   audio.DefaultSampleRate,
		Channels:     audio.DefaultChannels,
		Amplitude:    audio.DefaultAmplitude,
		NoteDuration: time.Second,
		ChunkFrames:  2048,
	}
}

// Player writes tones to an output one at a time
type Player struct {
	out output.Output
	cfg Config

	mu     sync.Mutex
	opened bool
	played int
}

// New creates a player; zero config fields take their defaults
func New(out output.Output, cfg Config) *Player {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = def.Channels
	}
	if cfg.Amplitude <= 0 {
		cfg.Amplitude = def.Amplitude
	}
	if cfg.NoteDuration <= 0 {
		cfg.NoteDuration = def.NoteDuration
	}
	if cfg.ChunkFrames <= 0 {
		cfg.ChunkFrames = def.ChunkFrames
	}
	return &Player{out: out, cfg: cfg}
}

// Config returns the effective settings
func (p *Player) Config() Config {
	return p.cfg
}

// Format returns the PCM format written to the output
func (p *Player) Format() audio.Format {
	return audio.Format{
		Codec:      "pcm",
		SampleRate: p.cfg.SampleRate,
		Channels:   p.cfg.Channels,
		BitDepth:   audio.DefaultBitDepth,
	}
}

// Played returns how many tones finished playing
func (p *Player) Played() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

// PlayNote plays one note from the table, blocking until it has been heard
func (p *Player) PlayNote(ctx context.Context, note string, octave int, d time.Duration) error {
	w, err := tone.NewWave(note, octave, p.cfg.Amplitude)
	if err != nil {
		log.Warn().Str("note", note).Int("octave", octave).Msg("note not in frequency table")
		return err
	}
	return p.Play(ctx, w, d)
}

// PlayAll plays every spelling for each octave in order
func (p *Player) PlayAll(ctx context.Context, octaves []int) error {
	waves, missing := tone.AllNotes(octaves, p.cfg.Amplitude)
	return p.playSequence(ctx, waves, missing)
}

// PlayScale plays the named notes at one octave
func (p *Player) PlayScale(ctx context.Context, names []string, octave int) error {
	waves, missing := tone.Sequence(names, []int{octave}, p.cfg.Amplitude)
	return p.playSequence(ctx, waves, missing)
}

// PlayBeep plays a raw tone; zero values mean 440Hz for 3s
func (p *Player) PlayBeep(ctx context.Context, hz float64, d time.Duration) error {
	if hz <= 0 {
		hz = BeepFrequency
	}
	if d <= 0 {
		d = BeepDuration
	}
	return p.Play(ctx, tone.NewFrequencyWave(hz, p.cfg.Amplitude), d)
}

// PlaySweep plays a frequency-modulated tone around hz
func (p *Player) PlaySweep(ctx context.Context, hz float64, d time.Duration) error {
	if hz <= 0 {
		hz = BeepFrequency
	}
	if d <= 0 {
		d = BeepDuration
	}
	return p.Play(ctx, tone.Sweep{Base: hz, Amplitude: p.cfg.Amplitude}, d)
}

// playSequence plays waves in order; unresolved pairs are logged and
// reported together once the rest have played
func (p *Player) playSequence(ctx context.Context, waves []tone.Wave, missing []error) error {
	for _, err := range missing {
		var nf *notes.NotFoundError
		if errors.As(err, &nf) {
			log.Warn().Str("note", nf.Note).Int("octave", nf.Octave).Msg("skipping note not in frequency table")
		}
	}

	for _, w := range waves {
		if err := p.Play(ctx, w, p.cfg.NoteDuration); err != nil {
			return err
		}
	}

	return errors.Join(missing...)
}

// Play streams g for d. A non-positive d uses the configured note duration.
func (p *Player) Play(ctx context.Context, g tone.Generator, d time.Duration) error {
	if d <= 0 {
		d = p.cfg.NoteDuration
	}
	if err := p.open(); err != nil {
		return err
	}

	logTone(g, d)

	src := tone.NewSource(g, p.Format(), d)
	defer src.Close()

	buf := make([]int32, p.cfg.ChunkFrames*p.cfg.Channels)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := src.Read(buf)
		if n > 0 {
			if werr := p.out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write tone: %w", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tone: %w", err)
		}
	}

	if err := p.writeGap(ctx); err != nil {
		return err
	}

	if dr, ok := p.out.(output.Drainer); ok {
		if err := dr.Drain(); err != nil {
			return fmt.Errorf("drain output: %w", err)
		}
	}

	p.mu.Lock()
	p.played++
	p.mu.Unlock()
	return nil
}

// Render returns the samples Play would write for g
func (p *Player) Render(g tone.Generator, d time.Duration) ([]int32, error) {
	if d <= 0 {
		d = p.cfg.NoteDuration
	}
	src := tone.NewSource(g, p.Format(), d)
	defer src.Close()
	return tone.ReadAll(src, p.cfg.ChunkFrames)
}

// Close releases the output
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.opened {
		return nil
	}
	p.opened = false
	return p.out.Close()
}

func (p *Player) open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.opened {
		return nil
	}
	if err := p.out.Open(p.cfg.SampleRate, p.cfg.Channels); err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	p.opened = true
	return nil
}

func (p *Player) writeGap(ctx context.Context) error {
	if p.cfg.Gap <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	silence := make([]int32, p.Format().SamplesFor(p.cfg.Gap))
	if err := p.out.Write(silence); err != nil {
		return fmt.Errorf("write gap: %w", err)
	}
	return nil
}

func logTone(g tone.Generator, d time.Duration) {
	ev := log.Info().Dur("duration", d)
	switch t := g.(type) {
	case tone.Wave:
		ev.Str("tone", t.Name()).Float64("frequency", t.Frequency)
	case tone.Sweep:
		ev.Str("tone", "sweep").Float64("frequency", t.Base)
	}
	ev.Msg("playing")
}
