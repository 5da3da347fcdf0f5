// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the PCM types shared by tone synthesis, encoding and
// playback.
//
// Samples are carried as int32 in 24-bit range throughout:
//   - Format: codec, sample rate, channels, bit depth
//   - Buffer: a sequenced chunk of interleaved samples
//
// Conversion helpers cover 16-bit, packed 24-bit and float samples.
//
// Example:
//
//	format := audio.DefaultFormat() // 44.1 kHz mono 16-bit PCM
//	samples := audio.FloatsToSamples(wave)
//	d := format.Duration(len(samples))
package audio
