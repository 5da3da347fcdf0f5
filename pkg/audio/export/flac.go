// ABOUTME: FLAC writer and reader
// ABOUTME: Encodes 24-bit samples as 16-bit verbatim FLAC frames using mewkiz/flac
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/Resonate-Protocol/tonetable/pkg/audio"
)

// BlockSize is the number of frames per FLAC block
const BlockSize = 4096

// flacBitDepth is the only depth written
const flacBitDepth = 16

// WriteFLAC encodes interleaved samples to w
func WriteFLAC(w io.Writer, samples []int32, format audio.Format) error {
	channels, err := flacChannels(format.Channels)
	if err != nil {
		return err
	}
	if format.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", format.SampleRate)
	}
	if len(samples)%format.Channels != 0 {
		return fmt.Errorf("sample count %d not divisible by %d channels", len(samples), format.Channels)
	}

	total := len(samples) / format.Channels
	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  BlockSize,
		SampleRate:    uint32(format.SampleRate),
		NChannels:     uint8(format.Channels),
		BitsPerSample: flacBitDepth,
		NSamples:      uint64(total),
	}

	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return fmt.Errorf("create flac encoder: %w", err)
	}

	for num, start := 0, 0; start < total; num, start = num+1, start+BlockSize {
		end := start + BlockSize
		if end > total {
			end = total
		}
		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(end - start),
				SampleRate:        uint32(format.SampleRate),
				Channels:          channels,
				BitsPerSample:     flacBitDepth,
				Num:               uint64(num),
			},
			Subframes: make([]*frame.Subframe, format.Channels),
		}
		for ch := 0; ch < format.Channels; ch++ {
			block := make([]int32, end-start)
			for i := range block {
				block[i] = int32(audio.SampleToInt16(samples[(start+i)*format.Channels+ch]))
			}
			f.Subframes[ch] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   block,
				NSamples:  len(block),
			}
		}
		if err := enc.WriteFrame(f); err != nil {
			enc.Close()
			return fmt.Errorf("write flac frame %d: %w", num, err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("close flac encoder: %w", err)
	}
	return nil
}

// ReadFLAC decodes a FLAC stream into interleaved 24-bit samples
func ReadFLAC(r io.Reader) ([]int32, audio.Format, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("open flac stream: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	format := audio.Format{
		Codec:      "flac",
		SampleRate: int(info.SampleRate),
		Channels:   int(info.NChannels),
		BitDepth:   int(info.BitsPerSample),
	}

	var samples []int32
	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, format, fmt.Errorf("parse flac frame: %w", err)
		}
		for i := 0; i < int(f.BlockSize); i++ {
			for ch := range f.Subframes {
				samples = append(samples, widen(f.Subframes[ch].Samples[i], format.BitDepth))
			}
		}
	}
	return samples, format, nil
}

// widen left-justifies a sample of the given depth into 24 bits
func widen(s int32, depth int) int32 {
	switch {
	case depth < 24:
		return s << (24 - depth)
	case depth > 24:
		return s >> (depth - 24)
	default:
		return s
	}
}

func flacChannels(n int) (frame.Channels, error) {
	switch n {
	case 1:
		return frame.ChannelsMono, nil
	case 2:
		return frame.ChannelsLR, nil
	default:
		return 0, fmt.Errorf("flac export supports 1 or 2 channels, got %d", n)
	}
}
