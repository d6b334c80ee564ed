package protocol

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/tchat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEncode(t *testing.T, m Message) []byte {
	t.Helper()
	frame, err := m.Encode()
	require.NoError(t, err)
	return frame
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{name: "chat", msg: Chat("alice", "hello there")},
		{name: "join without content", msg: Join("bob")},
		{name: "error without username", msg: Error("something broke")},
		{name: "ping with no optionals", msg: Ping()},
		{name: "auth required flag", msg: AuthRequired(true)},
		{name: "authenticated with token", msg: Authenticated("alice", "deadbeef")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame := mustEncode(t, tc.msg)

			payload, consumed, err := Extract(frame)
			require.NoError(t, err)
			assert.Equal(t, len(frame), consumed)

			got, err := Decode(payload)
			require.NoError(t, err)

			assert.Equal(t, tc.msg.Type, got.Type)
			assert.Equal(t, tc.msg.Username, got.Username)
			assert.Equal(t, tc.msg.Content, got.Content)
			assert.True(t, tc.msg.Timestamp.Equal(got.Timestamp), "timestamp must survive the round trip")
		})
	}
}

func TestEncode_FrameLayout(t *testing.T) {
	frame := mustEncode(t, Chat("alice", "hi"))

	declared := binary.BigEndian.Uint32(frame[:LengthPrefixSize])
	assert.Equal(t, len(frame)-LengthPrefixSize, int(declared))
}

func TestEncode_OversizedPayloadFails(t *testing.T) {
	m := Chat("alice", strings.Repeat("x", MaxMessageSize+1))

	frame, err := m.Encode()
	assert.ErrorIs(t, err, common.ErrMessageTooLarge)
	assert.Nil(t, frame, "no bytes may be produced for an oversized message")
}

func TestExtract(t *testing.T) {
	frame := mustEncode(t, Chat("alice", "hello"))

	t.Run("short buffer not yet available", func(t *testing.T) {
		payload, consumed, err := Extract(frame[:2])
		require.NoError(t, err)
		assert.Nil(t, payload)
		assert.Zero(t, consumed)
	})

	t.Run("prefix only not yet available", func(t *testing.T) {
		payload, consumed, err := Extract(frame[:LengthPrefixSize+3])
		require.NoError(t, err)
		assert.Nil(t, payload)
		assert.Zero(t, consumed)
	})

	t.Run("exactly one frame", func(t *testing.T) {
		payload, consumed, err := Extract(frame)
		require.NoError(t, err)
		assert.Equal(t, LengthPrefixSize+len(payload), consumed)
		assert.Equal(t, len(frame), consumed)
	})

	t.Run("pipelined frames consume only the first", func(t *testing.T) {
		second := mustEncode(t, Chat("bob", "again"))
		buf := append(append([]byte{}, frame...), second...)

		payload, consumed, err := Extract(buf)
		require.NoError(t, err)
		assert.Equal(t, len(frame), consumed)

		first, err := Decode(payload)
		require.NoError(t, err)
		assert.Equal(t, "alice", first.Username)

		payload, consumed, err = Extract(buf[consumed:])
		require.NoError(t, err)
		assert.Equal(t, len(second), consumed)

		next, err := Decode(payload)
		require.NoError(t, err)
		assert.Equal(t, "bob", next.Username)
	})

	t.Run("declared length over maximum is rejected", func(t *testing.T) {
		buf := make([]byte, LengthPrefixSize)
		binary.BigEndian.PutUint32(buf, MaxMessageSize+1)

		_, _, err := Extract(buf)
		assert.ErrorIs(t, err, common.ErrMessageTooLarge)
	})
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.ErrorIs(t, err, common.ErrDecodingFailed)
}

func TestCredentials(t *testing.T) {
	m, err := Register("alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, TypeRegister, m.Type)

	c, err := ParseCredentials(m.Content)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Username: "alice", Password: "password123"}, c)

	_, err = ParseCredentials("not-json")
	assert.True(t, errors.Is(err, common.ErrInvalidMessage))
}

func TestAuthRequiredFlag(t *testing.T) {
	assert.Equal(t, "true", AuthRequired(true).Content)
	assert.Equal(t, "false", AuthRequired(false).Content)
}
