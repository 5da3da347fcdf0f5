// ABOUTME: Tests for the tone server HTTP API and WebSocket protocol
// ABOUTME: Runs the router under httptest and speaks the protocol as a client
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Resonate-Protocol/tonetable/internal/protocol"
	"github.com/Resonate-Protocol/tonetable/pkg/notes"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{Name: "test", AllowedOrigins: []string{"http://localhost:3000"}})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestNewDefaults(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, DefaultPort, s.config.Port)
	assert.Equal(t, "tonetable", s.config.Name)
	assert.Equal(t, 44100, s.config.SampleRate)
	assert.Equal(t, time.Second, s.config.ToneDuration)
	assert.NotEmpty(t, s.ID())
}

func TestHealth(t *testing.T) {
	s, ts := newTestServer(t)

	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, s.ID(), body["server_id"])
}

func TestNotesEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	var entries []notes.Entry
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/notes", &entries))
	assert.Len(t, entries, 17*9)
	assert.Equal(t, notes.Entry{Note: "C", Octave: 0, Frequency: 16.35}, entries[0])
}

func TestFrequencyEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		status int
		hz     float64
		code   string
	}{
		{"table", "note=A&octave=4", http.StatusOK, 440.00, ""},
		{"calculated", "note=C&octave=4&method=calculated", http.StatusOK, 261.63, ""},
		{"sharp", "note=C%23&octave=4", http.StatusOK, 277.18, ""},
		{"unknown note", "note=H&octave=4", http.StatusNotFound, 0, protocol.ErrorNotFound},
		{"octave out of range", "note=C&octave=9", http.StatusNotFound, 0, protocol.ErrorNotFound},
		{"missing octave", "note=C", http.StatusBadRequest, 0, protocol.ErrorBadRequest},
		{"bad method", "note=C&octave=4&method=guess", http.StatusBadRequest, 0, protocol.ErrorBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.status == http.StatusOK {
				var body FrequencyResponse
				require.Equal(t, tt.status, getJSON(t, ts.URL+"/api/frequency?"+tt.query, &body))
				assert.Equal(t, tt.hz, body.Frequency)
				return
			}
			var body ErrorResponse
			require.Equal(t, tt.status, getJSON(t, ts.URL+"/api/frequency?"+tt.query, &body))
			assert.Equal(t, tt.code, body.Error)
		})
	}
}

func TestVerifyEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	var body VerifyResponse
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/verify", &body))
	assert.Equal(t, 153, body.Entries)
	assert.Equal(t, notes.Tolerance, body.Tolerance)
	assert.Empty(t, body.Mismatches)
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/notes", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

// wsClient is a minimal protocol speaker for tests
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server, id string, codecs ...string) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/tones"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	c := &wsClient{t: t, conn: conn}
	c.send(protocol.TypeClientHello, protocol.ClientHello{
		ClientID:        id,
		Name:            "tester",
		Version:         protocol.Version,
		SupportedCodecs: codecs,
	})
	return c
}

func (c *wsClient) send(msgType string, payload interface{}) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(protocol.Message{Type: msgType, Payload: payload}))
}

// next reads one frame; binary frames return type "binary"
func (c *wsClient) next() (string, interface{}, []byte) {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	kind, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	if kind == websocket.BinaryMessage {
		return "binary", nil, data
	}
	var msg protocol.Message
	require.NoError(c.t, json.Unmarshal(data, &msg))
	return msg.Type, msg.Payload, nil
}

func (c *wsClient) expect(msgType string, v interface{}) {
	c.t.Helper()
	typ, payload, _ := c.next()
	require.Equal(c.t, msgType, typ)
	if v != nil {
		require.NoError(c.t, protocol.DecodePayload(payload, v))
	}
}

// collect reads chunks until tone/end
func (c *wsClient) collect() ([][]byte, protocol.ToneEnd) {
	c.t.Helper()
	var chunks [][]byte
	for {
		typ, payload, data := c.next()
		switch typ {
		case "binary":
			seq, body, err := protocol.ParseAudioChunk(data)
			require.NoError(c.t, err)
			require.Equal(c.t, uint64(len(chunks)), seq, "chunks arrive in order")
			chunks = append(chunks, body)
		case protocol.TypeToneEnd:
			var end protocol.ToneEnd
			require.NoError(c.t, protocol.DecodePayload(payload, &end))
			return chunks, end
		default:
			c.t.Fatalf("unexpected message %s", typ)
		}
	}
}

func TestToneRequestPCM(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts, "client-pcm", "flac", "pcm")

	var hello protocol.ServerHello
	c.expect(protocol.TypeServerHello, &hello)
	assert.Equal(t, "pcm", hello.Codec)

	c.send(protocol.TypeToneRequest, protocol.ToneRequest{Note: "A", Octave: 4, DurationMs: 100})

	var start protocol.ToneStart
	c.expect(protocol.TypeToneStart, &start)
	assert.Equal(t, 440.0, start.Frequency)
	assert.Equal(t, "pcm", start.Codec)
	assert.Equal(t, 44100, start.SampleRate)
	assert.Equal(t, 100, start.DurationMs)

	chunks, end := c.collect()
	assert.Equal(t, 5, end.Chunks)
	require.Len(t, chunks, 5)

	total := 0
	for _, ch := range chunks {
		total += len(ch)
	}
	assert.Equal(t, 4410*2, total, "100ms of 16-bit mono")
}

func TestToneRequestOpus(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts, "client-opus", "opus")

	var hello protocol.ServerHello
	c.expect(protocol.TypeServerHello, &hello)
	require.Equal(t, "opus", hello.Codec)

	c.send(protocol.TypeToneRequest, protocol.ToneRequest{Note: "E", Octave: 5, DurationMs: 100})

	var start protocol.ToneStart
	c.expect(protocol.TypeToneStart, &start)
	assert.Equal(t, OpusSampleRate, start.SampleRate)

	chunks, end := c.collect()
	assert.Equal(t, 5, end.Chunks, "100ms at 20ms per frame")
	assert.Len(t, chunks, end.Chunks)
}

func TestToneRequestCalculated(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts, "client-calc", "pcm")
	c.expect(protocol.TypeServerHello, nil)

	c.send(protocol.TypeToneRequest, protocol.ToneRequest{Note: "D", Octave: 8, DurationMs: 20, Method: protocol.MethodCalculated})

	var start protocol.ToneStart
	c.expect(protocol.TypeToneStart, &start)
	assert.Equal(t, 4698.64, start.Frequency)
	c.collect()
}

func TestToneRequestNotFound(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts, "client-missing", "pcm")
	c.expect(protocol.TypeServerHello, nil)

	c.send(protocol.TypeToneRequest, protocol.ToneRequest{Note: "H", Octave: 4})

	var toneErr protocol.ToneError
	c.expect(protocol.TypeToneError, &toneErr)
	assert.Equal(t, protocol.ErrorNotFound, toneErr.Error)
	assert.Equal(t, "H", toneErr.Note)
	assert.Equal(t, 4, toneErr.Octave)

	// The connection stays usable
	c.send(protocol.TypeToneRequest, protocol.ToneRequest{Note: "C", Octave: 4, DurationMs: 20})
	c.expect(protocol.TypeToneStart, nil)
	_, end := c.collect()
	assert.Equal(t, 1, end.Chunks)
}

func TestToneRequestTooLong(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts, "client-long", "pcm")
	c.expect(protocol.TypeServerHello, nil)

	c.send(protocol.TypeToneRequest, protocol.ToneRequest{Note: "C", Octave: 4, DurationMs: 60000})

	var toneErr protocol.ToneError
	c.expect(protocol.TypeToneError, &toneErr)
	assert.Equal(t, protocol.ErrorBadRequest, toneErr.Error)
}

func TestDuplicateClientRejected(t *testing.T) {
	_, ts := newTestServer(t)
	first := dial(t, ts, "same-id", "pcm")
	first.expect(protocol.TypeServerHello, nil)

	second := dial(t, ts, "same-id", "pcm")
	var serverErr protocol.ToneError
	second.expect(protocol.TypeServerError, &serverErr)
	assert.Equal(t, protocol.ErrorDuplicateClientID, serverErr.Error)
}

func TestHandshakeRequiresHello(t *testing.T) {
	_, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/tones"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(protocol.Message{Type: protocol.TypeToneRequest, Payload: protocol.ToneRequest{Note: "A", Octave: 4}}))

	c := &wsClient{t: t, conn: conn}
	c.expect(protocol.TypeServerError, nil)
}

func TestCheckOrigin(t *testing.T) {
	s := New(Config{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodGet, "/tones", nil)
	assert.True(t, s.checkOrigin(req), "non-browser clients send no Origin")

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, s.checkOrigin(req))
}

func TestNegotiateCodec(t *testing.T) {
	assert.Equal(t, "pcm", negotiateCodec(nil))
	assert.Equal(t, "opus", negotiateCodec([]string{"flac", "opus", "pcm"}))
	assert.Equal(t, "pcm", negotiateCodec([]string{"mp3"}))
}
