// ABOUTME: In-memory audio output
// ABOUTME: Captures written samples for tests, dry runs and file export
package output

import "sync"

// Recorder keeps every written sample in memory instead of playing it
type Recorder struct {
	mu         sync.Mutex
	samples    []int32
	writes     int
	sampleRate int
	channels   int
	open       bool
}

// NewRecorder creates a new Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Open records the stream format
func (r *Recorder) Open(sampleRate, channels int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sampleRate = sampleRate
	r.channels = channels
	r.open = true
	return nil
}

// Write appends samples
func (r *Recorder) Write(samples []int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return ErrNotOpen
	}
	r.samples = append(r.samples, samples...)
	r.writes++
	return nil
}

// Close marks the recorder closed; captured samples stay readable
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.open = false
	r.mu.Unlock()
	return nil
}

// Samples returns a copy of everything written so far
func (r *Recorder) Samples() []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int32, len(r.samples))
	copy(out, r.samples)
	return out
}

// Writes returns the number of Write calls
func (r *Recorder) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// Format returns the rate and channel count passed to Open
func (r *Recorder) Format() (sampleRate, channels int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sampleRate, r.channels
}

// Reset discards captured samples
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.samples = nil
	r.writes = 0
	r.mu.Unlock()
}
