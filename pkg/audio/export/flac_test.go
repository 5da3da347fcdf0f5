// ABOUTME: Tests for FLAC export
// ABOUTME: Writes rendered tones and reads them back through the decoder
package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Resonate-Protocol/tonetable/pkg/audio"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/tone"
)

func TestWriteFLACRoundTrip(t *testing.T) {
	wave, err := tone.NewWave("A", 4, audio.DefaultAmplitude)
	require.NoError(t, err)

	format := audio.DefaultFormat()
	samples := audio.FloatsToSamples(wave.Samples(format.SampleRate, 250*time.Millisecond))
	require.Greater(t, len(samples), BlockSize, "tone should span several blocks")

	var buf bytes.Buffer
	require.NoError(t, WriteFLAC(&buf, samples, format))

	decoded, got, err := ReadFLAC(&buf)
	require.NoError(t, err)
	assert.Equal(t, format.SampleRate, got.SampleRate)
	assert.Equal(t, 1, got.Channels)
	assert.Equal(t, 16, got.BitDepth)
	require.Len(t, decoded, len(samples))

	for i, s := range samples {
		want := audio.SampleFromInt16(audio.SampleToInt16(s))
		if decoded[i] != want {
			t.Fatalf("sample %d: got %d, want %d", i, decoded[i], want)
		}
	}
}

func TestWriteFLACStereo(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16}
	samples := []int32{256, -256, 512, -512, 768, -768}

	var buf bytes.Buffer
	require.NoError(t, WriteFLAC(&buf, samples, format))

	decoded, got, err := ReadFLAC(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Channels)
	assert.Equal(t, samples, decoded)
}

func TestWriteFLACRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	format := audio.DefaultFormat()

	format.Channels = 3
	assert.Error(t, WriteFLAC(&buf, []int32{1, 2, 3}, format))

	format.Channels = 2
	assert.Error(t, WriteFLAC(&buf, []int32{1, 2, 3}, format))

	format.SampleRate = 0
	assert.Error(t, WriteFLAC(&buf, []int32{1, 2}, format))
}

func TestReadFLACGarbage(t *testing.T) {
	_, _, err := ReadFLAC(bytes.NewReader([]byte("not a flac stream")))
	assert.Error(t, err)
}

func TestWiden(t *testing.T) {
	assert.Equal(t, int32(256), widen(1, 16))
	assert.Equal(t, int32(1), widen(1, 24))
	assert.Equal(t, int32(1), widen(256, 32))
}
