// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends and backend selection
package output

import (
	"errors"
	"fmt"
)

// ErrNotOpen is returned when writing to an output that was never opened
var ErrNotOpen = errors.New("output not initialized")

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write outputs audio samples (blocks until written)
	Write(samples []int32) error

	// Close releases output resources
	Close() error
}

// Drainer is implemented by outputs that buffer internally. Drain blocks
// until everything written so far has been heard.
type Drainer interface {
	Drain() error
}

// VolumeController is implemented by outputs with software volume
type VolumeController interface {
	SetVolume(volume int)
	SetMuted(muted bool)
	GetVolume() int
	IsMuted() bool
}

// Backend names accepted by New
const (
	BackendOto  = "oto"
	BackendBeep = "beep"
	BackendNull = "null"
)

// New returns the output for a backend name
func New(backend string) (Output, error) {
	switch backend {
	case BackendOto, "":
		return NewOto(), nil
	case BackendBeep:
		return NewBeep(), nil
	case BackendNull:
		return NewRecorder(), nil
	default:
		return nil, fmt.Errorf("unknown output backend %q (supported: oto, beep, null)", backend)
	}
}
