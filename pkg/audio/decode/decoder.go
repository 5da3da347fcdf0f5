// ABOUTME: Decoder interface definition
// ABOUTME: Common interface and codec dispatch for audio decoders
package decode

import (
	"fmt"

	"github.com/Resonate-Protocol/tonetable/pkg/audio"
)

// Decoder decodes encoded chunks to PCM int32 samples
type Decoder interface {
	// Decode converts encoded audio data to PCM samples
	Decode(data []byte) ([]int32, error)

	// Close releases decoder resources
	Close() error
}

// New returns the decoder for format.Codec
func New(format audio.Format) (Decoder, error) {
	switch format.Codec {
	case "pcm":
		dec, err := NewPCM(format)
		if err != nil {
			return nil, err
		}
		return dec, nil
	case "opus":
		dec, err := NewOpus(format)
		if err != nil {
			return nil, err
		}
		return dec, nil
	default:
		return nil, fmt.Errorf("unsupported codec: %q (supported: pcm, opus)", format.Codec)
	}
}
