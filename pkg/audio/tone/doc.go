// ABOUTME: Tone synthesis package
// ABOUTME: Sine waves for notes, frequency sweeps and streaming sources
// Package tone synthesises test tones for musical notes.
//
// A Wave is a sine at a note's table frequency:
//
//	w, err := tone.NewWave("C", 4, audio.DefaultAmplitude)
//	samples := w.Samples(audio.DefaultSampleRate, time.Second)
//
// Generators can also be streamed as interleaved 24-bit PCM through a Source,
// which is what the players and the tone server consume:
//
//	src := tone.NewSource(w, audio.DefaultFormat(), 2*time.Second)
//	n, err := src.Read(buf)
package tone
