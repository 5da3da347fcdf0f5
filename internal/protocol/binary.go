// ABOUTME: Binary audio chunk framing
// ABOUTME: Encodes and parses [type:1][seq:8][data:N] WebSocket frames
package protocol

import (
	"encoding/binary"
	"fmt"
)

// AudioChunkMessageType tags binary audio frames
const AudioChunkMessageType = 1

// chunkHeaderSize is the type byte plus the sequence number
const chunkHeaderSize = 9

// CreateAudioChunk creates a binary audio chunk message
func CreateAudioChunk(seq uint64, audioData []byte) []byte {
	chunk := make([]byte, chunkHeaderSize+len(audioData))
	chunk[0] = AudioChunkMessageType
	binary.BigEndian.PutUint64(chunk[1:9], seq)
	copy(chunk[9:], audioData)
	return chunk
}

// ParseAudioChunk splits a binary frame into its sequence number and payload
func ParseAudioChunk(data []byte) (uint64, []byte, error) {
	if len(data) < chunkHeaderSize {
		return 0, nil, fmt.Errorf("audio chunk too short: %d bytes", len(data))
	}
	if data[0] != AudioChunkMessageType {
		return 0, nil, fmt.Errorf("unexpected binary message type %d", data[0])
	}
	return binary.BigEndian.Uint64(data[1:9]), data[9:], nil
}
