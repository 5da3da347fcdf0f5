// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Output interface with oto, beep and in-memory backends
// Package output provides audio playback interfaces.
//
// Backends are selected by name with New: "oto" (default), "beep" or
// "null" (an in-memory Recorder).
//
// Example:
//
//	out, err := output.New("oto")
//	err = out.Open(44100, 1)
//	err = out.Write(samples)
package output
