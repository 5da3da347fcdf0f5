// ABOUTME: Streaming PCM source over a generator
// ABOUTME: Produces interleaved 24-bit samples until the duration runs out
package tone

import (
	"io"
	"sync"
	"time"

	"github.com/Resonate-Protocol/tonetable/pkg/audio"
)

// Source provides PCM samples
type Source interface {
	// Read fills samples with interleaved PCM (24-bit range) and returns the count.
	// io.EOF marks the end of a finite source.
	Read(samples []int32) (int, error)
	SampleRate() int
	Channels() int
	Close() error
}

// GeneratorSource streams a Generator as PCM
type GeneratorSource struct {
	gen    Generator
	format audio.Format

	frameIndex  uint64
	totalFrames uint64 // 0 = endless
	closed      bool
	mu          sync.Mutex
}

// NewSource streams g in the given format for d. A zero d streams forever.
func NewSource(g Generator, format audio.Format, d time.Duration) *GeneratorSource {
	if format.Channels <= 0 {
		format.Channels = audio.DefaultChannels
	}
	if format.SampleRate <= 0 {
		format.SampleRate = audio.DefaultSampleRate
	}
	return &GeneratorSource{
		gen:         g,
		format:      format,
		totalFrames: uint64(float64(format.SampleRate) * d.Seconds()),
	}
}

func (s *GeneratorSource) Read(samples []int32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, io.ErrClosedPipe
	}

	channels := s.format.Channels
	frames := uint64(len(samples) / channels)
	if s.totalFrames > 0 {
		remaining := s.totalFrames - s.frameIndex
		if remaining == 0 {
			return 0, io.EOF
		}
		if frames > remaining {
			frames = remaining
		}
	}

	rate := float64(s.format.SampleRate)
	for i := uint64(0); i < frames; i++ {
		t := float64(s.frameIndex+i) / rate
		v := audio.SampleFromFloat(s.gen.At(t))
		for ch := 0; ch < channels; ch++ {
			samples[int(i)*channels+ch] = v
		}
	}
	s.frameIndex += frames

	return int(frames) * channels, nil
}

// Format returns the stream format
func (s *GeneratorSource) Format() audio.Format { return s.format }

func (s *GeneratorSource) SampleRate() int { return s.format.SampleRate }
func (s *GeneratorSource) Channels() int   { return s.format.Channels }

// Close stops the stream; further reads fail
func (s *GeneratorSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ReadAll drains a finite source into one buffer
func ReadAll(src Source, chunk int) ([]int32, error) {
	if chunk <= 0 {
		chunk = 4096
	}
	var out []int32
	buf := make([]int32, chunk*src.Channels())
	for {
		n, err := src.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
