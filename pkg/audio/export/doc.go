// ABOUTME: Audio export package
// ABOUTME: Writes rendered tones to FLAC files
// Package export writes rendered samples to lossless files.
//
// Example:
//
//	f, _ := os.Create("a4.flac")
//	err := export.WriteFLAC(f, samples, audio.DefaultFormat())
package export
