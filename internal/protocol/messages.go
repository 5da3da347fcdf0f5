// ABOUTME: Tone service message type definitions
// ABOUTME: Defines structs for the JSON messages exchanged over the /tones WebSocket
package protocol

import (
	"encoding/json"
	"fmt"
)

// Version is the protocol version sent in hello messages
const Version = 1

// Message types
const (
	TypeClientHello = "client/hello"
	TypeServerHello = "server/hello"
	TypeServerError = "server/error"
	TypeToneRequest = "tone/request"
	TypeToneStart   = "tone/start"
	TypeToneEnd     = "tone/end"
	TypeToneError   = "tone/error"
)

// Error codes carried in ToneError and server/error
const (
	ErrorNotFound          = "not_found"
	ErrorBadRequest        = "bad_request"
	ErrorDuplicateClientID = "duplicate_client_id"
	ErrorInternal          = "internal"
)

// Frequency resolution methods
const (
	MethodTable      = "table"
	MethodCalculated = "calculated"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// DecodePayload re-decodes a generically unmarshaled payload into v
func DecodePayload(payload interface{}, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID        string      `json:"client_id"`
	Name            string      `json:"name"`
	Version         int         `json:"version"`
	SupportedCodecs []string    `json:"supported_codecs"`
	DeviceInfo      *DeviceInfo `json:"device_info,omitempty"`
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
	Codec    string `json:"codec"` // negotiated codec for this client
}

// ToneRequest asks the server to stream one note
type ToneRequest struct {
	Note       string `json:"note"`
	Octave     int    `json:"octave"`
	DurationMs int    `json:"duration_ms"`
	Method     string `json:"method,omitempty"` // "table" (default) or "calculated"
}

// ToneStart describes the stream that follows
type ToneStart struct {
	Note       string  `json:"note"`
	Octave     int     `json:"octave"`
	Frequency  float64 `json:"frequency"`
	Codec      string  `json:"codec"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	BitDepth   int     `json:"bit_depth"`
	DurationMs int     `json:"duration_ms"`
}

// ToneEnd closes a tone stream
type ToneEnd struct {
	Note   string `json:"note"`
	Octave int    `json:"octave"`
	Chunks int    `json:"chunks"`
}

// ToneError reports a request the server could not serve
type ToneError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Note    string `json:"note,omitempty"`
	Octave  int    `json:"octave,omitempty"`
}
