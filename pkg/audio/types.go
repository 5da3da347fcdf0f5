// ABOUTME: Audio type definitions
// ABOUTME: Defines formats, sample buffers and sample conversions
package audio

import "time"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23

	// DefaultSampleRate matches the rate tones are synthesised at
	DefaultSampleRate = 44100
	// DefaultChannels is mono; tones are single-voice
	DefaultChannels = 1
	// DefaultBitDepth is what every output backend can play
	DefaultBitDepth = 16
	// DefaultAmplitude keeps a sine tone at a comfortable level
	DefaultAmplitude = 0.3
)

// Format describes a PCM stream
type Format struct {
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bit_depth"`
}

// DefaultFormat returns 16-bit mono PCM at the default sample rate
func DefaultFormat() Format {
	return Format{
		Codec:      "pcm",
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		BitDepth:   DefaultBitDepth,
	}
}

// Frames converts a sample count into frames for this format
func (f Format) Frames(samples int) int {
	if f.Channels <= 0 {
		return 0
	}
	return samples / f.Channels
}

// Duration returns the playing time of the given number of interleaved samples
func (f Format) Duration(samples int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(f.Frames(samples)) * time.Second / time.Duration(f.SampleRate)
}

// SamplesFor returns the interleaved sample count covering d
func (f Format) SamplesFor(d time.Duration) int {
	frames := int(d.Seconds() * float64(f.SampleRate))
	return frames * f.Channels
}

// Buffer holds interleaved PCM in 24-bit range
type Buffer struct {
	Seq     uint64  // Chunk sequence number within a tone
	Samples []int32 // int32 carries both 16-bit and 24-bit content
	Format  Format
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// SampleFromFloat scales a float sample in [-1, 1] to 24-bit range, clipping
// anything outside.
func SampleFromFloat(x float64) int32 {
	if x >= 1 {
		return Max24Bit
	}
	if x <= -1 {
		return -Max24Bit
	}
	return int32(x * Max24Bit)
}

// SampleToFloat maps a 24-bit sample back to [-1, 1]
func SampleToFloat(sample int32) float64 {
	return float64(sample) / Max24Bit
}

// FloatsToSamples converts a float buffer to 24-bit samples
func FloatsToSamples(in []float64) []int32 {
	out := make([]int32, len(in))
	for i, x := range in {
		out[i] = SampleFromFloat(x)
	}
	return out
}

// Interleave duplicates a mono buffer across channels
func Interleave(mono []int32, channels int) []int32 {
	if channels <= 1 {
		return mono
	}
	out := make([]int32, len(mono)*channels)
	for i, s := range mono {
		for ch := 0; ch < channels; ch++ {
			out[i*channels+ch] = s
		}
	}
	return out
}
