// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts streamed audio between sample rates
// Package resample provides sample rate conversion for chunked streams.
//
// The resampler keeps the last frame of each chunk, so interpolation
// continues across chunk boundaries without clicks or dropped frames.
//
// Example:
//
//	r := resample.New(44100, 48000, 1)
//	out := make([]int32, r.OutputSamplesNeeded(len(in)))
//	n := r.Resample(in, out)
package resample
