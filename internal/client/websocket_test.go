// ABOUTME: Tests for WebSocket client implementation
// ABOUTME: Exercises handshake and tone requests against a real tone server
package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Resonate-Protocol/tonetable/internal/protocol"
	"github.com/Resonate-Protocol/tonetable/internal/server"
	"github.com/Resonate-Protocol/tonetable/pkg/notes"
)

func startServer(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(server.New(server.Config{Name: "test-server"}).Handler())
	t.Cleanup(ts.Close)
	return strings.TrimPrefix(ts.URL, "http://")
}

func connect(t *testing.T, cfg Config) *Client {
	t.Helper()
	c := NewClient(cfg)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{ServerAddr: "localhost:8927"})

	assert.Equal(t, "localhost:8927", c.config.ServerAddr)
	assert.Equal(t, "/tones", c.config.Path)
	assert.NotEmpty(t, c.config.ClientID)
	assert.Equal(t, []string{"pcm"}, c.config.Codecs)
}

func TestRequestBeforeConnect(t *testing.T) {
	_, err := NewClient(Config{}).RequestTone(context.Background(), protocol.ToneRequest{Note: "A", Octave: 4})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestHandshake(t *testing.T) {
	c := connect(t, Config{ServerAddr: startServer(t), Codecs: []string{"opus", "pcm"}})

	assert.Equal(t, "test-server", c.ServerHello().Name)
	assert.Equal(t, "opus", c.Codec())
}

func TestRequestTonePCM(t *testing.T) {
	c := connect(t, Config{ServerAddr: startServer(t)})

	tone, err := c.RequestTone(context.Background(), protocol.ToneRequest{Note: "A", Octave: 4, DurationMs: 100})
	require.NoError(t, err)

	assert.Equal(t, 440.0, tone.Start.Frequency)
	assert.Equal(t, 5, tone.Chunks)
	assert.Len(t, tone.Samples, 4410)
	assert.Zero(t, tone.Samples[0])
	assert.Greater(t, tone.Samples[1], int32(0))
}

func TestRequestToneOpus(t *testing.T) {
	c := connect(t, Config{ServerAddr: startServer(t), Codecs: []string{"opus"}})

	tone, err := c.RequestTone(context.Background(), protocol.ToneRequest{Note: "C", Octave: 4, DurationMs: 100})
	require.NoError(t, err)

	assert.Equal(t, "opus", tone.Format.Codec)
	assert.Equal(t, 48000, tone.Format.SampleRate)
	assert.Len(t, tone.Samples, 4800)
}

func TestRequestToneNotFound(t *testing.T) {
	c := connect(t, Config{ServerAddr: startServer(t)})

	_, err := c.RequestTone(context.Background(), protocol.ToneRequest{Note: "H", Octave: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, notes.ErrNotFound)

	var toneErr *ToneError
	require.ErrorAs(t, err, &toneErr)
	assert.Equal(t, "H", toneErr.Note)

	// Still usable afterwards
	tone, err := c.RequestTone(context.Background(), protocol.ToneRequest{Note: "Bb", Octave: 3, DurationMs: 20})
	require.NoError(t, err)
	assert.Equal(t, 233.08, tone.Start.Frequency)
}

func TestRequestToneCancelled(t *testing.T) {
	c := connect(t, Config{ServerAddr: startServer(t)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.RequestTone(ctx, protocol.ToneRequest{Note: "A", Octave: 4, DurationMs: 5000})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDuplicateClientID(t *testing.T) {
	addr := startServer(t)
	connect(t, Config{ServerAddr: addr, ClientID: "dup"})

	c := NewClient(Config{ServerAddr: addr, ClientID: "dup"})
	err := c.Connect(context.Background())
	require.Error(t, err)

	var toneErr *ToneError
	require.ErrorAs(t, err, &toneErr)
	assert.Equal(t, protocol.ErrorDuplicateClientID, toneErr.ToneError.Error)
}

func TestConnectRefused(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Error(t, NewClient(Config{ServerAddr: "127.0.0.1:1"}).Connect(ctx))
}

func TestToneErrorMessage(t *testing.T) {
	err := &ToneError{protocol.ToneError{Error: protocol.ErrorBadRequest, Message: "too long"}}
	assert.Equal(t, "server error bad_request: too long", err.Error())
	assert.NotErrorIs(t, err, notes.ErrNotFound)
}
