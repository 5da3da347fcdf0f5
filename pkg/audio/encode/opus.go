// ABOUTME: Opus audio encoder
// ABOUTME: Encodes fixed 20ms frames of int32 samples to Opus packets
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/tonetable/pkg/audio"
	"github.com/rs/zerolog/log"
	"gopkg.in/hraban/opus.v2"
)

// OpusFrameDuration is the packet length used for every Opus stream, in ms
const OpusFrameDuration = 20

// maxOpusPacket is the largest packet libopus will produce
const maxOpusPacket = 4000

// OpusEncoder encodes Opus audio
type OpusEncoder struct {
	encoder   *opus.Encoder
	channels  int
	frameSize int // samples per channel per frame
	pcm       []int16
}

// NewOpus creates an Opus encoder. Opus only runs at 8, 12, 16, 24 or 48 kHz.
func NewOpus(format audio.Format) (*OpusEncoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus encoder: %s", format.Codec)
	}
	if !OpusSampleRate(format.SampleRate) {
		return nil, fmt.Errorf("unsupported sample rate for opus: %d", format.SampleRate)
	}

	encoder, err := opus.NewEncoder(format.SampleRate, format.Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	// 64 kbps per channel is plenty for a single sine
	if err := encoder.SetBitrate(64000 * format.Channels); err != nil {
		log.Warn().Err(err).Msg("failed to set opus bitrate")
	}

	frameSize := format.SampleRate * OpusFrameDuration / 1000

	return &OpusEncoder{
		encoder:   encoder,
		channels:  format.Channels,
		frameSize: frameSize,
		pcm:       make([]int16, frameSize*format.Channels),
	}, nil
}

// Encode converts exactly one frame of samples to an Opus packet.
// A short final frame is zero-padded.
func (e *OpusEncoder) Encode(samples []int32) ([]byte, error) {
	if len(samples) > len(e.pcm) {
		return nil, fmt.Errorf("opus frame too long: %d samples (max %d)", len(samples), len(e.pcm))
	}

	for i := range e.pcm {
		if i < len(samples) {
			e.pcm[i] = audio.SampleToInt16(samples[i])
		} else {
			e.pcm[i] = 0
		}
	}

	data := make([]byte, maxOpusPacket)
	n, err := e.encoder.Encode(e.pcm, data)
	if err != nil {
		return nil, fmt.Errorf("opus encode error: %w", err)
	}

	return data[:n], nil
}

// ChunkSamples is one 20ms frame across all channels
func (e *OpusEncoder) ChunkSamples() int { return e.frameSize * e.channels }

// Close releases resources
func (e *OpusEncoder) Close() error {
	return nil
}

// OpusSampleRate reports whether libopus accepts the rate
func OpusSampleRate(rate int) bool {
	switch rate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	}
	return false
}
