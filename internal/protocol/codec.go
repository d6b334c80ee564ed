package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/tchat/internal/common"
)

const (
	// MaxMessageSize caps the serialized payload of a single frame.
	MaxMessageSize = 64 * 1024

	// LengthPrefixSize is the size of the big-endian length prefix.
	LengthPrefixSize = 4
)

// Encode serializes the message and prepends the 4-byte big-endian length
// prefix. A payload over MaxMessageSize fails before any frame bytes are
// produced.
func (m Message) Encode() ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}

	if len(payload) > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", common.ErrMessageTooLarge, len(payload), MaxMessageSize)
	}

	frame := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[LengthPrefixSize:], payload)
	return frame, nil
}

// Decode parses one frame payload (without the length prefix).
func Decode(payload []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", common.ErrDecodingFailed, err)
	}
	return m, nil
}

// Extract scans an accumulating receive buffer for one complete frame.
//
// It returns (nil, 0, nil) while the buffer holds less than a whole frame,
// so callers keep appending reads and retrying. On success it returns the
// payload slice and the total number of bytes consumed (prefix + payload);
// the caller advances its buffer by consumed. A declared length above
// MaxMessageSize is a protocol violation and fails immediately, before any
// unbounded buffering can happen.
//
// The returned payload aliases buf and is only valid until the buffer is
// modified.
func Extract(buf []byte) (payload []byte, consumed int, err error) {
	if len(buf) < LengthPrefixSize {
		return nil, 0, nil
	}

	length := binary.BigEndian.Uint32(buf)
	if length > MaxMessageSize {
		return nil, 0, fmt.Errorf("%w: declared length %d (max %d)", common.ErrMessageTooLarge, length, MaxMessageSize)
	}

	total := LengthPrefixSize + int(length)
	if len(buf) < total {
		return nil, 0, nil
	}

	return buf[LengthPrefixSize:total], total, nil
}
