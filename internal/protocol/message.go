// Package protocol defines the tchat wire protocol: the message vocabulary
// shared by client and server, and the length-prefixed framing that carries
// it over a TCP stream. Both peers depend on this package and nothing else
// about each other.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tchat/internal/common"
)

// Type tags a Message. The numeric values are part of the wire contract and
// must not be renumbered.
type Type uint8

const (
	TypeJoin          Type = 1
	TypeLeave         Type = 2
	TypeChat          Type = 3
	TypeUserJoined    Type = 4
	TypeUserLeft      Type = 5
	TypeError         Type = 6
	TypePing          Type = 7
	TypePong          Type = 8
	TypeRegister      Type = 10
	TypeLogin         Type = 11
	TypeAuthenticated Type = 12
	TypeAuthFailed    Type = 13
	TypeRateLimited   Type = 14
	TypeAuthRequired  Type = 15
)

// Message is the unit of wire exchange. Username and Content are optional
// and omitted from the encoding when empty. Timestamp records creation time
// and is informational only; ordering is defined by the byte stream.
type Message struct {
	Type      Type      `json:"type"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New builds a Message of the given type stamped with the current UTC time.
func New(t Type, username, content string) Message {
	return Message{Type: t, Username: username, Content: content, Timestamp: time.Now().UTC()}
}

func Join(username string) Message  { return New(TypeJoin, username, "") }
func Leave(username string) Message { return New(TypeLeave, username, "") }

func Chat(username, content string) Message { return New(TypeChat, username, content) }

func UserJoined(username string) Message { return New(TypeUserJoined, username, "") }
func UserLeft(username string) Message   { return New(TypeUserLeft, username, "") }

func Error(reason string) Message { return New(TypeError, "", reason) }

func Ping() Message { return New(TypePing, "", "") }
func Pong() Message { return New(TypePong, "", "") }

func RateLimited() Message { return New(TypeRateLimited, "", "") }

// AuthRequired announces whether the server demands the auth handshake.
// The flag rides in Content as "true" or "false".
func AuthRequired(required bool) Message {
	content := "false"
	if required {
		content = "true"
	}
	return New(TypeAuthRequired, "", content)
}

// Authenticated confirms a successful register/login, echoing the account
// username and carrying the issued token in Content.
func Authenticated(username, token string) Message {
	return New(TypeAuthenticated, username, token)
}

func AuthFailed(reason string) Message { return New(TypeAuthFailed, "", reason) }

// Credentials is the payload of register/login frames, serialized as JSON
// into the Content field.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register builds a register frame carrying the credentials pair.
func Register(username, password string) (Message, error) {
	return credentialsMessage(TypeRegister, username, password)
}

// Login builds a login frame carrying the credentials pair.
func Login(username, password string) (Message, error) {
	return credentialsMessage(TypeLogin, username, password)
}

func credentialsMessage(t Type, username, password string) (Message, error) {
	b, err := json.Marshal(Credentials{Username: username, Password: password})
	if err != nil {
		return Message{}, err
	}
	return New(t, "", string(b)), nil
}

// ParseCredentials decodes the credentials payload of a register/login
// frame. A malformed payload is a protocol-level error, not a disconnect.
func ParseCredentials(content string) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal([]byte(content), &c); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", common.ErrInvalidMessage, err)
	}
	return c, nil
}
