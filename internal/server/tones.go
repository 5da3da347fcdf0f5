// ABOUTME: WebSocket tone streaming
// ABOUTME: Handles the client handshake, tone requests and the per-client writer
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Resonate-Protocol/tonetable/internal/protocol"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/encode"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/tone"
	"github.com/Resonate-Protocol/tonetable/pkg/notes"
)

const (
	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
	sendBuffer    = 100
)

// errClientGone is returned when a client disconnects mid-stream
var errClientGone = errors.New("client disconnected")

// Client represents a connected client
type Client struct {
	ID    string
	Name  string
	Conn  *websocket.Conn
	Codec string // negotiated: "pcm" or "opus"

	State  string // "idle" or "streaming"
	Served int

	// Output channel for messages
	sendChan chan interface{}
	// closed when the writer exits
	gone     chan struct{}
	goneOnce sync.Once

	mu sync.RWMutex
}

func (c *Client) setState(state string) {
	c.mu.Lock()
	c.State = state
	if state == "idle" {
		c.Served++
	}
	c.mu.Unlock()
}

func (c *Client) markGone() {
	c.goneOnce.Do(func() { close(c.gone) })
}

// handleWebSocket upgrades /tones connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.shuttingDown() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	log.Debug().Str("remote", r.RemoteAddr).Msg("new WebSocket connection")
	s.handleConnection(conn)
}

// handleConnection manages a client connection
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	hello, err := readHello(conn)
	if err != nil {
		log.Warn().Err(err).Msg("handshake failed")
		writeDirect(conn, protocol.TypeServerError, protocol.ToneError{Error: protocol.ErrorBadRequest, Message: err.Error()})
		return
	}

	client := &Client{
		ID:       hello.ClientID,
		Name:     hello.Name,
		Conn:     conn,
		Codec:    negotiateCodec(hello.SupportedCodecs),
		State:    "idle",
		sendChan: make(chan interface{}, sendBuffer),
		gone:     make(chan struct{}),
	}

	// Check for duplicate client ID and register atomically
	s.clientsMu.Lock()
	if existing, exists := s.clients[client.ID]; exists {
		s.clientsMu.Unlock()
		log.Warn().Str("client_id", client.ID).Str("name", existing.Name).Msg("rejecting duplicate client ID")
		writeDirect(conn, protocol.TypeServerError, protocol.ToneError{
			Error:   protocol.ErrorDuplicateClientID,
			Message: "Client ID already connected",
		})
		return
	}
	s.clients[client.ID] = client
	s.clientsMu.Unlock()

	log.Info().Str("client", client.Name).Str("id", client.ID).Str("codec", client.Codec).Msg("client connected")
	s.updateTUI()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		s.clientsMu.Unlock()
		close(client.sendChan)
		log.Info().Str("client", client.Name).Msg("client disconnected")
		s.updateTUI()
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	if err := s.sendMessage(client, protocol.TypeServerHello, protocol.ServerHello{
		ServerID: s.serverID,
		Name:     s.config.Name,
		Version:  protocol.Version,
		Codec:    client.Codec,
	}); err != nil {
		log.Warn().Err(err).Msg("error sending server hello")
		return
	}

	// Requests are served in order; a client hears one tone at a time
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("client", client.Name).Msg("WebSocket error")
			}
			return
		}

		if err := s.handleClientMessage(client, data); errors.Is(err, errClientGone) {
			return
		}
	}
}

// readHello waits for and validates client/hello
func readHello(conn *websocket.Conn) (*protocol.ClientHello, error) {
	conn.SetReadDeadline(time.Now().Add(writeDeadline))
	defer conn.SetReadDeadline(time.Time{})

	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read hello: %w", err)
	}

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	if msg.Type != protocol.TypeClientHello {
		return nil, fmt.Errorf("expected %s, got %s", protocol.TypeClientHello, msg.Type)
	}

	var hello protocol.ClientHello
	if err := protocol.DecodePayload(msg.Payload, &hello); err != nil {
		return nil, err
	}
	if hello.ClientID == "" {
		return nil, errors.New("client hello missing client_id")
	}
	if hello.Name == "" {
		return nil, errors.New("client hello missing name")
	}
	return &hello, nil
}

// negotiateCodec picks the client's first codec the server can encode
func negotiateCodec(supported []string) string {
	for _, c := range supported {
		if c == "pcm" || c == "opus" {
			return c
		}
	}
	return "pcm"
}

// clientWriter sends messages to the client
func (s *Server) clientWriter(client *Client) {
	defer client.markGone()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.sendChan:
			if !ok {
				return
			}

			client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			switch v := msg.(type) {
			case []byte:
				if err := client.Conn.WriteMessage(websocket.BinaryMessage, v); err != nil {
					log.Warn().Err(err).Msg("error writing binary message")
					return
				}
			default:
				if err := client.Conn.WriteJSON(v); err != nil {
					log.Warn().Err(err).Msg("error writing text message")
					return
				}
			}

		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

// handleClientMessage processes messages from clients
func (s *Server) handleClientMessage(client *Client, data []byte) error {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn().Err(err).Msg("error unmarshaling message")
		return s.sendMessage(client, protocol.TypeToneError, protocol.ToneError{Error: protocol.ErrorBadRequest, Message: "malformed message"})
	}

	switch msg.Type {
	case protocol.TypeToneRequest:
		var req protocol.ToneRequest
		if err := protocol.DecodePayload(msg.Payload, &req); err != nil {
			return s.sendMessage(client, protocol.TypeToneError, protocol.ToneError{Error: protocol.ErrorBadRequest, Message: err.Error()})
		}
		return s.serveTone(client, req)
	default:
		log.Debug().Str("type", msg.Type).Msg("unknown message type")
		return nil
	}
}

// serveTone resolves a request and streams it to the client
func (s *Server) serveTone(client *Client, req protocol.ToneRequest) error {
	toneErr := func(code, message string) error {
		return s.sendMessage(client, protocol.TypeToneError, protocol.ToneError{
			Error:   code,
			Message: message,
			Note:    req.Note,
			Octave:  req.Octave,
		})
	}

	hz, ok, valid := resolve(req.Note, req.Octave, req.Method)
	if !valid {
		return toneErr(protocol.ErrorBadRequest, "method must be table or calculated")
	}
	if !ok {
		log.Info().Str("note", req.Note).Int("octave", req.Octave).Msg("requested note not in table")
		return toneErr(protocol.ErrorNotFound, (&notes.NotFoundError{Note: req.Note, Octave: req.Octave}).Error())
	}

	d := time.Duration(req.DurationMs) * time.Millisecond
	if d <= 0 {
		d = s.config.ToneDuration
	}
	if d > s.config.MaxDuration {
		return toneErr(protocol.ErrorBadRequest, fmt.Sprintf("duration exceeds %v", s.config.MaxDuration))
	}

	wire := wireFormat(client.Codec, s.config.SampleRate)
	wave := tone.Wave{Note: req.Note, Octave: req.Octave, Frequency: hz, Amplitude: s.config.Amplitude}

	client.setState("streaming")
	defer client.setState("idle")

	if err := s.sendMessage(client, protocol.TypeToneStart, protocol.ToneStart{
		Note:       req.Note,
		Octave:     req.Octave,
		Frequency:  hz,
		Codec:      wire.Codec,
		SampleRate: wire.SampleRate,
		Channels:   wire.Channels,
		BitDepth:   wire.BitDepth,
		DurationMs: int(d / time.Millisecond),
	}); err != nil {
		return err
	}

	enc, err := encode.New(wire)
	if err != nil {
		log.Error().Err(err).Str("codec", wire.Codec).Msg("failed to create encoder")
		return toneErr(protocol.ErrorInternal, "encoder unavailable")
	}
	defer enc.Close()

	chunks, err := streamTone(wave, d, s.config.SampleRate, wire, enc, func(seq uint64, data []byte) error {
		return s.sendBinary(client, protocol.CreateAudioChunk(seq, data))
	})
	if err != nil {
		if errors.Is(err, errClientGone) {
			return err
		}
		log.Error().Err(err).Msg("tone stream failed")
		return toneErr(protocol.ErrorInternal, err.Error())
	}

	s.recordTone(wave.Name())
	log.Info().
		Str("client", client.Name).
		Str("note", req.Note).
		Int("octave", req.Octave).
		Float64("frequency", hz).
		Int("chunks", chunks).
		Msg("tone served")

	return s.sendMessage(client, protocol.TypeToneEnd, protocol.ToneEnd{Note: req.Note, Octave: req.Octave, Chunks: chunks})
}

// sendMessage queues a JSON message, waiting while the writer catches up
func (s *Server) sendMessage(client *Client, msgType string, payload interface{}) error {
	return s.enqueue(client, protocol.Message{Type: msgType, Payload: payload})
}

// sendBinary queues binary data
func (s *Server) sendBinary(client *Client, data []byte) error {
	return s.enqueue(client, data)
}

func (s *Server) enqueue(client *Client, v interface{}) error {
	select {
	case client.sendChan <- v:
		return nil
	case <-client.gone:
		return errClientGone
	}
}

// writeDirect sends one JSON message before the writer goroutine exists
func writeDirect(conn *websocket.Conn, msgType string, payload interface{}) {
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteJSON(protocol.Message{Type: msgType, Payload: payload}); err != nil {
		log.Debug().Err(err).Msg("error writing direct message")
	}
}
