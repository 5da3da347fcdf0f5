// ABOUTME: Audio encoder package for encoding PCM to various formats
// ABOUTME: Provides Encoder interface and implementations for PCM, Opus
// Package encode provides audio encoders for the tone stream codecs.
//
// Supports: PCM (16-bit and 24-bit), Opus (20ms frames)
//
// All encoders accept int32 samples in 24-bit range. Encoders that need a
// fixed chunk length report it through ChunkSamples.
//
// Example:
//
//	enc, err := encode.New(format)
//	data, err := enc.Encode(samples)
package encode
