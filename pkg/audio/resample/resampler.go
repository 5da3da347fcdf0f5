// ABOUTME: Linear resampler for converting audio sample rates
// ABOUTME: Interpolates across chunk boundaries so streamed tones stay continuous
package resample

// Resampler performs linear interpolation between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64 // input frames advanced per output frame
	position   float64 // read position; frame 0 is lastFrame once primed
	lastFrame  []int32 // final input frame of the previous chunk
	primed     bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	if channels <= 0 {
		channels = 1
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		lastFrame:  make([]int32, channels),
	}
}

// Resample converts interleaved input at inputRate into output at outputRate
// and returns the number of samples written. Size output with
// OutputSamplesNeeded; input that does not fit is dropped.
func (r *Resampler) Resample(input []int32, output []int32) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}

	offset := 0
	if r.primed {
		offset = 1
	}
	total := inputFrames + offset
	sample := func(frame, ch int) int32 {
		if frame < offset {
			return r.lastFrame[ch]
		}
		return input[(frame-offset)*r.channels+ch]
	}

	outputFrames := len(output) / r.channels
	outIdx := 0
	for outIdx < outputFrames {
		idx := int(r.position)
		if idx+1 >= total {
			break
		}
		frac := r.position - float64(idx)

		for ch := 0; ch < r.channels; ch++ {
			s1 := float64(sample(idx, ch))
			s2 := float64(sample(idx+1, ch))
			output[outIdx*r.channels+ch] = int32(s1*(1.0-frac) + s2*frac)
		}

		outIdx++
		r.position += r.ratio
	}

	// The last input frame becomes frame 0 of the next chunk
	r.position -= float64(total - 1)
	if r.position < 0 {
		r.position = 0
	}
	copy(r.lastFrame, input[(inputFrames-1)*r.channels:inputFrames*r.channels])
	r.primed = true

	return outIdx * r.channels
}

// Reset forgets chunk history
func (r *Resampler) Reset() {
	r.position = 0
	r.primed = false
	for i := range r.lastFrame {
		r.lastFrame[i] = 0
	}
}

// OutputSamplesNeeded returns an output size large enough for inputSamples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples/r.channels + 1
	outputFrames := int(float64(inputFrames)/r.ratio) + 1
	return outputFrames * r.channels
}

// InputSamplesNeeded estimates the input required to produce outputSamples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames)*r.ratio) + 1
	return inputFrames * r.channels
}

// InputRate returns the source sample rate
func (r *Resampler) InputRate() int { return r.inputRate }

// OutputRate returns the target sample rate
func (r *Resampler) OutputRate() int { return r.outputRate }
