// ABOUTME: Tone rendering into encoded wire chunks
// ABOUTME: Generates, resamples and frames a tone for one codec
package server

import (
	"fmt"
	"io"
	"time"

	"github.com/Resonate-Protocol/tonetable/pkg/audio"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/encode"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/resample"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/tone"
)

const (
	// ChunkDurationMs is the PCM chunk length
	ChunkDurationMs = 20

	// OpusSampleRate is the rate tones are resampled to for Opus clients
	OpusSampleRate = 48000
)

// wireFormat returns the stream format for a negotiated codec. PCM keeps the
// generation rate; Opus moves to 48kHz unless libopus accepts the rate as is.
func wireFormat(codec string, genRate int) audio.Format {
	f := audio.Format{
		Codec:      "pcm",
		SampleRate: genRate,
		Channels:   audio.DefaultChannels,
		BitDepth:   audio.DefaultBitDepth,
	}
	if codec == "opus" {
		f.Codec = "opus"
		if !encode.OpusSampleRate(genRate) {
			f.SampleRate = OpusSampleRate
		}
	}
	return f
}

// streamTone renders g for d at genRate and emits chunks encoded for wire.
// It returns the number of chunks emitted.
func streamTone(g tone.Generator, d time.Duration, genRate int, wire audio.Format, enc encode.Encoder, emit func(seq uint64, data []byte) error) (int, error) {
	genFormat := wire
	genFormat.SampleRate = genRate
	src := tone.NewSource(g, genFormat, d)
	defer src.Close()

	var rs *resample.Resampler
	if genRate != wire.SampleRate {
		rs = resample.New(genRate, wire.SampleRate, wire.Channels)
	}

	chunk := enc.ChunkSamples()
	if chunk == 0 {
		chunk = wire.SampleRate * ChunkDurationMs / 1000 * wire.Channels
	}

	var seq uint64
	flush := func(samples []int32) error {
		data, err := enc.Encode(samples)
		if err != nil {
			return fmt.Errorf("encode chunk %d: %w", seq, err)
		}
		if err := emit(seq, data); err != nil {
			return err
		}
		seq++
		return nil
	}

	in := make([]int32, chunk)
	var out []int32
	if rs != nil {
		out = make([]int32, rs.OutputSamplesNeeded(len(in)))
	}
	pending := make([]int32, 0, 2*chunk)

	for {
		n, err := src.Read(in)
		if n > 0 {
			if rs != nil {
				m := rs.Resample(in[:n], out)
				pending = append(pending, out[:m]...)
			} else {
				pending = append(pending, in[:n]...)
			}
			for len(pending) >= chunk {
				if ferr := flush(pending[:chunk]); ferr != nil {
					return int(seq), ferr
				}
				pending = append(pending[:0], pending[chunk:]...)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return int(seq), fmt.Errorf("read tone: %w", err)
		}
	}

	if len(pending) > 0 {
		if err := flush(pending); err != nil {
			return int(seq), err
		}
	}
	return int(seq), nil
}
