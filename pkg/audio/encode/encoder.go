// ABOUTME: Encoder interface definition
// ABOUTME: Common interface and codec dispatch for audio encoders
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/tonetable/pkg/audio"
)

// Encoder encodes PCM int32 samples to a wire format
type Encoder interface {
	// Encode converts one chunk of PCM samples to encoded audio data
	Encode(samples []int32) ([]byte, error)

	// ChunkSamples is the interleaved sample count each Encode call expects,
	// or 0 when any length is accepted
	ChunkSamples() int

	// Close releases encoder resources
	Close() error
}

// New returns the encoder for format.Codec
func New(format audio.Format) (Encoder, error) {
	switch format.Codec {
	case "pcm":
		enc, err := NewPCM(format)
		if err != nil {
			return nil, err
		}
		return enc, nil
	case "opus":
		enc, err := NewOpus(format)
		if err != nil {
			return nil, err
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("unsupported codec: %q (supported: pcm, opus)", format.Codec)
	}
}
