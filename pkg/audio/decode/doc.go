// ABOUTME: Audio decoder package for tone stream codecs
// ABOUTME: Provides Decoder interface and implementations for PCM, Opus
// Package decode turns tone stream chunks back into PCM.
//
// Supports: PCM (16-bit and 24-bit), Opus
//
// All decoders output int32 samples in 24-bit range, the same
// representation tone sources produce.
//
// Example:
//
//	dec, err := decode.New(format)
//	samples, err := dec.Decode(chunk)
package decode
