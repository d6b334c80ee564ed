package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/tchat/internal/common"
	"github.com/dmitrijs2005/tchat/internal/protocol"
)

const readChunkSize = 4096

// Handler runs the protocol state machine for one accepted connection:
// optional auth handshake, then username registration, then the chat loop.
// It owns its private receive buffer; the only shared state it touches is
// reached through the server it was handed at construction.
type Handler struct {
	conn   net.Conn
	server *Server
	userID string

	username string
	token    string
	buf      []byte

	sendMu sync.Mutex
}

func NewHandler(conn net.Conn, server *Server, userID string) *Handler {
	return &Handler{conn: conn, server: server, userID: userID}
}

// Run drives the state machine to completion. It always closes the
// connection on the way out; the caller is responsible for deregistration
// (a no-op when the handler never reached the active state).
func (h *Handler) Run(ctx context.Context) error {
	defer h.conn.Close()

	if err := h.Send(protocol.AuthRequired(h.server.cfg.RequireAuth)); err != nil {
		return err
	}

	if h.server.cfg.RequireAuth {
		if err := h.handleAuthentication(ctx); err != nil {
			return err
		}
	}

	if err := h.Send(protocol.New(protocol.TypeChat, "", "Welcome to tchat! Please enter your username: ")); err != nil {
		return err
	}

	if err := h.registerUsername(); err != nil {
		return err
	}

	return h.chatLoop()
}

// Close tears down the underlying connection, aborting any pending read.
func (h *Handler) Close() {
	h.conn.Close()
}

// handleAuthentication loops until a register or login succeeds. Malformed
// credentials, failed auth, and unexpected frame types each earn an
// authFailed reply and another try; only disconnection ends the loop early.
func (h *Handler) handleAuthentication(ctx context.Context) error {
	for {
		msg, err := h.readMessage()
		if err != nil {
			if errors.Is(err, common.ErrDecodingFailed) {
				if err := h.Send(protocol.AuthFailed("invalid credentials format")); err != nil {
					return err
				}
				continue
			}
			return err
		}

		switch msg.Type {
		case protocol.TypeRegister, protocol.TypeLogin:
			creds, err := protocol.ParseCredentials(msg.Content)
			if err != nil {
				if err := h.Send(protocol.AuthFailed("invalid credentials format")); err != nil {
					return err
				}
				continue
			}

			token, err := h.authenticate(ctx, msg.Type, creds)
			if err != nil {
				if err := h.Send(protocol.AuthFailed(reason(err))); err != nil {
					return err
				}
				continue
			}

			h.token = token
			return h.Send(protocol.Authenticated(creds.Username, token))

		default:
			if err := h.Send(protocol.AuthFailed("please login or register first")); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) authenticate(ctx context.Context, t protocol.Type, creds protocol.Credentials) (string, error) {
	if t == protocol.TypeRegister {
		if err := h.server.validator.ValidateUsername(creds.Username); err != nil {
			return "", err
		}
		if err := h.server.validator.ValidatePassword(creds.Password); err != nil {
			return "", err
		}
		token, err := h.server.auth.Register(ctx, creds.Username, creds.Password)
		if err != nil {
			return "", err
		}
		return token.Token, nil
	}

	token, err := h.server.auth.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return "", err
	}
	return token.Token, nil
}

// registerUsername reads the desired chat name, validates it, and claims it
// in the registry. Every failure here fails the whole handler: no user was
// admitted yet, so teardown is silent apart from a best-effort error frame.
func (h *Handler) registerUsername() error {
	msg, err := h.readMessage()
	if err != nil {
		return err
	}

	username := h.server.validator.Sanitize(msg.Content)
	if username == "" {
		return fmt.Errorf("%w: empty username", common.ErrInvalidMessage)
	}

	if err := h.server.validator.ValidateUsername(username); err != nil {
		_ = h.Send(protocol.Error(reason(err)))
		return err
	}

	user := &User{ID: h.userID, Username: username, ConnectedAt: time.Now()}
	if err := h.server.RegisterUser(user, h); err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			_ = h.Send(protocol.Error(fmt.Sprintf("Username '%s' is already taken", username)))
		} else {
			_ = h.Send(protocol.Error(reason(err)))
		}
		return err
	}
	h.username = username

	return h.Send(protocol.New(protocol.TypeChat, "", fmt.Sprintf("You are now connected as '%s'. Start chatting!\n", username)))
}

// chatLoop relays frames until the peer goes away. Content failures and
// rate-limit denials drop the single message and notify the sender; they
// never end the connection.
func (h *Handler) chatLoop() error {
	for {
		msg, err := h.readMessage()
		if err != nil {
			if errors.Is(err, common.ErrDecodingFailed) {
				if err := h.Send(protocol.Error("invalid message format")); err != nil {
					return err
				}
				continue
			}
			if errors.Is(err, common.ErrDisconnected) {
				return nil
			}
			return err
		}

		if msg.Type == protocol.TypePing {
			if err := h.Send(protocol.Pong()); err != nil {
				return err
			}
			continue
		}

		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}

		if err := h.server.validator.ValidateMessage(content); err != nil {
			if err := h.Send(protocol.Error(reason(err))); err != nil {
				return err
			}
			continue
		}

		if !h.server.limiter.CheckLimit(h.userID) {
			if err := h.Send(protocol.RateLimited()); err != nil {
				return err
			}
			continue
		}

		h.server.Broadcast(protocol.Chat(h.username, content), h.userID)
	}
}

// Send encodes and transmits one message to this connection.
func (h *Handler) Send(msg protocol.Message) error {
	frame, err := msg.Encode()
	if err != nil {
		return err
	}
	return h.SendFrame(frame)
}

// SendFrame writes a pre-encoded frame. Writes are serialized per
// connection and bounded by the configured write timeout so one stuck peer
// cannot pin a broadcast forever.
func (h *Handler) SendFrame(frame []byte) error {
	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	if h.server.cfg.WriteTimeout > 0 {
		_ = h.conn.SetWriteDeadline(time.Now().Add(h.server.cfg.WriteTimeout))
	}

	if _, err := h.conn.Write(frame); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

// readMessage blocks until one whole frame is buffered and decodes it.
// Each read is bounded by the connection timeout during the handshake and
// by the read timeout once the user is active; a peer that stays silent
// past the bound is treated as disconnected. EOF and closed-connection
// reads surface as common.ErrDisconnected; framing violations (oversized
// declared length) and decode failures keep their own sentinels.
func (h *Handler) readMessage() (protocol.Message, error) {
	for {
		payload, consumed, err := protocol.Extract(h.buf)
		if err != nil {
			return protocol.Message{}, err
		}
		if payload != nil {
			msg, err := protocol.Decode(payload)
			h.buf = h.buf[consumed:]
			if err != nil {
				return protocol.Message{}, err
			}
			return msg, nil
		}

		timeout := h.server.cfg.ReadTimeout
		if h.username == "" {
			timeout = h.server.cfg.ConnectionTimeout
		}
		if timeout > 0 {
			_ = h.conn.SetReadDeadline(time.Now().Add(timeout))
		}

		chunk := make([]byte, readChunkSize)
		n, err := h.conn.Read(chunk)
		if n > 0 {
			h.buf = append(h.buf, chunk[:n]...)
			continue
		}
		if err != nil {
			return protocol.Message{}, fmt.Errorf("%w: %v", common.ErrDisconnected, err)
		}
	}
}

// reason strips the sentinel prefix from validation errors so the client
// sees only the human-readable part.
func reason(err error) string {
	msg := err.Error()
	if prefix := common.ErrValidation.Error() + ": "; strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return msg
}
