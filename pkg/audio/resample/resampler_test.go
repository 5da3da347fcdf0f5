// ABOUTME: Tests for audio resampler
// ABOUTME: Tests interpolation, chunk continuity and buffer sizing
package resample

import (
	"testing"
)

func TestNew(t *testing.T) {
	r := New(44100, 48000, 2)

	if r.InputRate() != 44100 {
		t.Errorf("expected inputRate 44100, got %d", r.InputRate())
	}
	if r.OutputRate() != 48000 {
		t.Errorf("expected outputRate 48000, got %d", r.OutputRate())
	}
	if r.channels != 2 {
		t.Errorf("expected channels 2, got %d", r.channels)
	}

	if New(44100, 48000, 0).channels != 1 {
		t.Error("expected zero channels to default to mono")
	}
}

func TestResampleUpsampling(t *testing.T) {
	r := New(44100, 48000, 1)

	input := make([]int32, 441)
	for i := range input {
		input[i] = int32(i * 100)
	}

	output := make([]int32, r.OutputSamplesNeeded(len(input)))
	n := r.Resample(input, output)

	// 440 intervals of input span ~478.9 output frames
	if n < 475 || n > 481 {
		t.Errorf("expected ~479 samples, got %d", n)
	}

	for i := 1; i < n; i++ {
		if output[i] <= output[i-1] {
			t.Fatalf("ramp not increasing at %d: %d <= %d", i, output[i], output[i-1])
		}
	}
}

func TestResampleSameRateIsIdentity(t *testing.T) {
	r := New(48000, 48000, 1)

	first := []int32{0, 10, 20, 30}
	second := []int32{40, 50, 60, 70}

	out := make([]int32, 16)
	n := r.Resample(first, out)
	got := append([]int32{}, out[:n]...)
	n = r.Resample(second, out)
	got = append(got, out[:n]...)

	want := []int32{0, 10, 20, 30, 40, 50, 60}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestResampleChunkContinuity(t *testing.T) {
	// One long ramp split into chunks must resample like the whole ramp
	input := make([]int32, 4410)
	for i := range input {
		input[i] = int32(i * 64)
	}

	whole := New(44100, 48000, 1)
	wholeOut := make([]int32, whole.OutputSamplesNeeded(len(input)))
	nWhole := whole.Resample(input, wholeOut)

	chunked := New(44100, 48000, 1)
	var chunkedOut []int32
	for start := 0; start < len(input); start += 441 {
		chunk := input[start : start+441]
		out := make([]int32, chunked.OutputSamplesNeeded(len(chunk)))
		n := chunked.Resample(chunk, out)
		chunkedOut = append(chunkedOut, out[:n]...)
	}

	if diff := abs(len(chunkedOut) - nWhole); diff > 1 {
		t.Fatalf("chunked produced %d samples, whole produced %d", len(chunkedOut), nWhole)
	}
	for i := 0; i < len(chunkedOut) && i < nWhole; i++ {
		if d := abs(int(chunkedOut[i]) - int(wholeOut[i])); d > 1 {
			t.Fatalf("sample %d: chunked %d, whole %d", i, chunkedOut[i], wholeOut[i])
		}
	}
}

func TestResampleStereo(t *testing.T) {
	r := New(44100, 48000, 2)

	input := make([]int32, 20)
	for i := 0; i < 10; i++ {
		input[i*2] = 1000
		input[i*2+1] = -1000
	}

	output := make([]int32, r.OutputSamplesNeeded(len(input)))
	n := r.Resample(input, output)
	if n == 0 {
		t.Fatal("resampler produced no output")
	}

	for i := 0; i < n/2; i++ {
		if output[i*2] != 1000 || output[i*2+1] != -1000 {
			t.Fatalf("frame %d: got L=%d R=%d", i, output[i*2], output[i*2+1])
		}
	}
}

func TestResampleDownsampling(t *testing.T) {
	r := New(192000, 48000, 1)

	input := make([]int32, 400)
	for i := range input {
		input[i] = int32(i * 10)
	}

	output := make([]int32, r.OutputSamplesNeeded(len(input)))
	n := r.Resample(input, output)
	if n < 99 || n > 101 {
		t.Errorf("expected ~100 samples, got %d", n)
	}
}

func TestResampleEmptyInput(t *testing.T) {
	r := New(44100, 48000, 2)
	if n := r.Resample(nil, make([]int32, 100)); n != 0 {
		t.Errorf("expected 0 samples from empty input, got %d", n)
	}
}

func TestReset(t *testing.T) {
	r := New(48000, 48000, 1)
	out := make([]int32, 8)
	r.Resample([]int32{5, 6}, out)
	r.Reset()

	n := r.Resample([]int32{1, 2}, out)
	if n != 1 || out[0] != 1 {
		t.Errorf("expected fresh start after reset, got n=%d out=%v", n, out[:n])
	}
}

func TestInputSamplesNeeded(t *testing.T) {
	r := New(44100, 48000, 2)
	if got := r.InputSamplesNeeded(1920); got < 1760 || got > 1766 {
		t.Errorf("unexpected input estimate %d", got)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
