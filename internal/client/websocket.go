// ABOUTME: WebSocket client for the tone service
// ABOUTME: Handles connection, handshake and synchronous tone requests
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Resonate-Protocol/tonetable/internal/discovery"
	"github.com/Resonate-Protocol/tonetable/internal/protocol"
	"github.com/Resonate-Protocol/tonetable/internal/version"
	"github.com/Resonate-Protocol/tonetable/pkg/audio"
	"github.com/Resonate-Protocol/tonetable/pkg/audio/decode"
	"github.com/Resonate-Protocol/tonetable/pkg/notes"
)

const handshakeTimeout = 5 * time.Second

// ErrNotConnected is returned by requests made before Connect
var ErrNotConnected = errors.New("client not connected")

// Config holds client configuration
type Config struct {
	ServerAddr string
	Path       string
	ClientID   string
	Name       string
	Codecs     []string // in preference order
}

// Client represents a WebSocket client
type Client struct {
	config Config
	conn   *websocket.Conn
	hello  protocol.ServerHello

	// one request at a time
	mu sync.Mutex
}

// Tone is a decoded tone received from the server
type Tone struct {
	Start   protocol.ToneStart
	Format  audio.Format
	Samples []int32
	Chunks  int
}

// ToneError is a tone/error reply from the server
type ToneError struct {
	protocol.ToneError
}

func (e *ToneError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %s: %s", e.ToneError.Error, e.Message)
	}
	return "server error " + e.ToneError.Error
}

// Unwrap maps not_found onto notes.ErrNotFound
func (e *ToneError) Unwrap() error {
	if e.ToneError.Error == protocol.ErrorNotFound {
		return notes.ErrNotFound
	}
	return nil
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.Path == "" {
		config.Path = discovery.DefaultPath
	}
	if config.ClientID == "" {
		config.ClientID = uuid.New().String()
	}
	if config.Name == "" {
		config.Name = version.Product
	}
	if len(config.Codecs) == 0 {
		config.Codecs = []string{"pcm"}
	}
	return &Client{config: config}
}

// Connect establishes the WebSocket connection and performs the handshake
func (c *Client) Connect(ctx context.Context) error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: c.config.Path}
	log.Debug().Str("url", u.String()).Msg("connecting")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	c.conn = conn

	if err := c.handshake(); err != nil {
		conn.Close()
		c.conn = nil
		return fmt.Errorf("handshake failed: %w", err)
	}

	log.Info().Str("server", c.hello.Name).Str("codec", c.hello.Codec).Msg("connected to tone server")
	return nil
}

// handshake performs the protocol handshake
func (c *Client) handshake() error {
	hello := protocol.ClientHello{
		ClientID:        c.config.ClientID,
		Name:            c.config.Name,
		Version:         protocol.Version,
		SupportedCodecs: c.config.Codecs,
		DeviceInfo: &protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	}
	if err := c.send(protocol.TypeClientHello, hello); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer c.conn.SetReadDeadline(time.Time{})

	msg, err := c.readJSON()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	switch msg.Type {
	case protocol.TypeServerHello:
		return protocol.DecodePayload(msg.Payload, &c.hello)
	case protocol.TypeServerError:
		var serverErr protocol.ToneError
		if err := protocol.DecodePayload(msg.Payload, &serverErr); err != nil {
			return err
		}
		return &ToneError{serverErr}
	default:
		return fmt.Errorf("expected server/hello, got %s", msg.Type)
	}
}

// ServerHello returns the server's handshake reply
func (c *Client) ServerHello() protocol.ServerHello {
	return c.hello
}

// Codec returns the negotiated codec
func (c *Client) Codec() string {
	return c.hello.Codec
}

// RequestTone asks for a tone and blocks until it has fully arrived
func (c *Client) RequestTone(ctx context.Context, req protocol.ToneRequest) (*Tone, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	// Unblock reads when ctx ends
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer func() {
		if stop() {
			return
		}
		c.conn.SetReadDeadline(time.Time{})
	}()

	if err := c.send(protocol.TypeToneRequest, req); err != nil {
		return nil, fmt.Errorf("send tone request: %w", err)
	}

	result, err := c.receiveTone()
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return result, err
}

// receiveTone reads tone/start, the audio chunks and tone/end
func (c *Client) receiveTone() (*Tone, error) {
	var result *Tone
	var dec decode.Decoder
	defer func() {
		if dec != nil {
			dec.Close()
		}
	}()

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}

		if kind == websocket.BinaryMessage {
			if result == nil {
				return nil, errors.New("audio chunk before tone/start")
			}
			seq, payload, err := protocol.ParseAudioChunk(data)
			if err != nil {
				return nil, err
			}
			if seq != uint64(result.Chunks) {
				return nil, fmt.Errorf("chunk %d out of order, expected %d", seq, result.Chunks)
			}
			samples, err := dec.Decode(payload)
			if err != nil {
				return nil, fmt.Errorf("decode chunk %d: %w", seq, err)
			}
			result.Samples = append(result.Samples, samples...)
			result.Chunks++
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}

		switch msg.Type {
		case protocol.TypeToneStart:
			var start protocol.ToneStart
			if err := protocol.DecodePayload(msg.Payload, &start); err != nil {
				return nil, err
			}
			format := audio.Format{
				Codec:      start.Codec,
				SampleRate: start.SampleRate,
				Channels:   start.Channels,
				BitDepth:   start.BitDepth,
			}
			d, err := decode.New(format)
			if err != nil {
				return nil, fmt.Errorf("create decoder: %w", err)
			}
			dec = d
			result = &Tone{Start: start, Format: format}

		case protocol.TypeToneEnd:
			if result == nil {
				return nil, errors.New("tone/end before tone/start")
			}
			var end protocol.ToneEnd
			if err := protocol.DecodePayload(msg.Payload, &end); err != nil {
				return nil, err
			}
			if end.Chunks != result.Chunks {
				return nil, fmt.Errorf("received %d chunks, server sent %d", result.Chunks, end.Chunks)
			}
			trim(result)
			return result, nil

		case protocol.TypeToneError:
			var toneErr protocol.ToneError
			if err := protocol.DecodePayload(msg.Payload, &toneErr); err != nil {
				return nil, err
			}
			return nil, &ToneError{toneErr}

		default:
			log.Debug().Str("type", msg.Type).Msg("ignoring message")
		}
	}
}

// trim drops codec padding beyond the announced duration
func trim(t *Tone) {
	want := t.Format.SamplesFor(time.Duration(t.Start.DurationMs) * time.Millisecond)
	if want > 0 && len(t.Samples) > want {
		t.Samples = t.Samples[:want]
	}
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) send(msgType string, payload interface{}) error {
	return c.conn.WriteJSON(protocol.Message{Type: msgType, Payload: payload})
}

func (c *Client) readJSON() (protocol.Message, error) {
	var msg protocol.Message
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("unmarshal message: %w", err)
	}
	return msg, nil
}
