// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams 16-bit PCM through a persistent oto player with software volume
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog/log"

	"github.com/Resonate-Protocol/tonetable/pkg/audio"
)

// drainPoll is how often Drain checks the player buffer
const drainPoll = 10 * time.Millisecond

// Oto output implementation using oto library
type Oto struct {
	volume

	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	sampleRate int
	channels   int
	ready      bool
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{volume: newVolume()}
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	// If already initialized with same format, reuse the existing context
	if o.otoCtx != nil && o.sampleRate == sampleRate && o.channels == channels {
		if !o.ready {
			o.startPlayer()
		}
		return nil
	}

	// oto allows one context per process, so a format change keeps the old one
	if o.otoCtx != nil {
		log.Warn().
			Int("old_rate", o.sampleRate).
			Int("new_rate", sampleRate).
			Msg("format change ignored, oto does not support reinitialization")
		if !o.ready {
			o.startPlayer()
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels
	o.startPlayer()

	log.Debug().Int("sample_rate", sampleRate).Int("channels", channels).Msg("oto output initialized")

	return nil
}

// startPlayer creates the pipe and the persistent player reading from it
func (o *Oto) startPlayer() {
	if err := o.otoCtx.Resume(); err != nil {
		log.Warn().Err(err).Msg("oto resume failed")
	}
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()
	o.ready = true
}

// Write outputs audio samples (blocks until the player has taken them)
func (o *Oto) Write(samples []int32) error {
	o.mu.Lock()
	ready, w := o.ready, o.pipeWriter
	o.mu.Unlock()
	if !ready {
		return ErrNotOpen
	}

	if _, err := w.Write(encodeInt16LE(o.apply(samples))); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}

	return nil
}

// Drain waits until the player's internal buffer is empty
func (o *Oto) Drain() error {
	o.mu.Lock()
	player := o.player
	o.mu.Unlock()
	if player == nil {
		return ErrNotOpen
	}
	for player.BufferedSize() > 0 {
		time.Sleep(drainPoll)
	}
	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			return fmt.Errorf("suspend oto context: %w", err)
		}
	}
	o.ready = false
	return nil
}

// encodeInt16LE converts 24-bit samples to the byte layout oto expects
func encodeInt16LE(samples []int32) []byte {
	output := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(audio.SampleToInt16(s)))
	}
	return output
}
