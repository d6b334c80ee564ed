// Package client implements the interactive terminal client: it dials the
// server, walks the auth and username handshake, then relays lines between
// stdin and the chat.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/dmitrijs2005/tchat/internal/client/config"
	"github.com/dmitrijs2005/tchat/internal/common"
	"github.com/dmitrijs2005/tchat/internal/logging"
	"github.com/dmitrijs2005/tchat/internal/protocol"
)

const readChunkSize = 4096

type Client struct {
	cfg *config.Config
	log logging.Logger

	conn net.Conn
	buf  []byte

	username string
	token    string

	in  *bufio.Reader
	out io.Writer

	// readPassword is a test seam over term.ReadPassword.
	readPassword func(fd int) ([]byte, error)

	sendMu sync.Mutex
	done   chan struct{}
}

func New(cfg *config.Config, log logging.Logger) *Client {
	return &Client{
		cfg:          cfg,
		log:          log.With("module", "client"),
		in:           bufio.NewReader(os.Stdin),
		out:          os.Stdout,
		readPassword: term.ReadPassword,
		done:         make(chan struct{}),
	}
}

// Run connects, completes the handshake, and chats until the user quits or
// the server goes away.
func (c *Client) Run(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	if err := c.connect(ctx); err != nil {
		return err
	}
	defer c.conn.Close()

	unhook := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer unhook()

	required, err := c.readMessage()
	if err != nil {
		return err
	}
	if required.Type != protocol.TypeAuthRequired {
		return fmt.Errorf("%w: expected auth announcement, got type %d", common.ErrInvalidMessage, required.Type)
	}

	if required.Content == "true" {
		if err := c.authenticate(); err != nil {
			return err
		}
	}

	if err := c.chooseUsername(); err != nil {
		return err
	}

	go c.receiveLoop(ctx)
	go c.keepaliveLoop(ctx)

	return c.inputLoop()
}

// connect dials the server, retrying a few times so a race with a server
// still binding its socket does not kill the session.
func (c *Client) connect(ctx context.Context) error {
	addr := c.cfg.Addr()

	var lastErr error
	for attempt := 0; attempt <= c.cfg.ReconnectAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.ReconnectDelay):
			}
		}

		conn, err := net.DialTimeout("tcp", addr, c.cfg.ConnectTimeout)
		if err == nil {
			c.conn = conn
			fmt.Fprintf(c.out, "Connected to %s\n", addr)
			return nil
		}
		lastErr = err
	}

	return fmt.Errorf("connecting to %s: %w", addr, lastErr)
}

// authenticate walks the register/login dialogue until the server accepts.
func (c *Client) authenticate() error {
	fmt.Fprintln(c.out, "This server requires authentication.")

	for {
		choice, err := c.prompt("Register or login? (r/l): ")
		if err != nil {
			return err
		}

		username, err := c.prompt("Username: ")
		if err != nil {
			return err
		}

		fmt.Fprint(c.out, "Password: ")
		password, err := c.readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		var msg protocol.Message
		if strings.HasPrefix(strings.ToLower(choice), "r") {
			msg, err = protocol.Register(username, string(password))
		} else {
			msg, err = protocol.Login(username, string(password))
		}
		if err != nil {
			return err
		}

		if err := c.send(msg); err != nil {
			return err
		}

		reply, err := c.readMessage()
		if err != nil {
			return err
		}

		switch reply.Type {
		case protocol.TypeAuthenticated:
			c.username = reply.Username
			c.token = reply.Content
			fmt.Fprintf(c.out, "Authenticated as %s\n", reply.Username)
			return nil
		case protocol.TypeAuthFailed:
			fmt.Fprintf(c.out, "Authentication failed: %s\n", reply.Content)
		default:
			return fmt.Errorf("%w: unexpected reply type %d", common.ErrInvalidMessage, reply.Type)
		}
	}
}

// chooseUsername relays the server's username prompt and answers it.
func (c *Client) chooseUsername() error {
	welcome, err := c.readMessage()
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, welcome.Content)

	name, err := c.prompt("")
	if err != nil {
		return err
	}

	return c.send(protocol.New(protocol.TypeChat, "", name))
}

// receiveLoop prints everything the server pushes until the connection dies.
func (c *Client) receiveLoop(ctx context.Context) {
	defer close(c.done)

	for {
		msg, err := c.readMessage()
		if err != nil {
			if !errors.Is(err, common.ErrDisconnected) {
				c.log.Debug(ctx, "receive failed", "error", err)
			}
			return
		}

		if line := formatMessage(msg); line != "" {
			fmt.Fprintln(c.out, line)
		}
	}
}

func (c *Client) keepaliveLoop(ctx context.Context) {
	if c.cfg.KeepaliveInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.cfg.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.send(protocol.Ping()); err != nil {
				return
			}
		}
	}
}

// inputLoop forwards stdin lines as chat messages. /quit and /exit end the
// session; a closed done channel means the server went away first.
func (c *Client) inputLoop() error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := c.in.ReadString('\n')
			if err != nil {
				return
			}
			lines <- strings.TrimSpace(line)
		}
	}()

	for {
		select {
		case <-c.done:
			fmt.Fprintln(c.out, "Disconnected from server.")
			return common.ErrDisconnected
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line == "/quit" || line == "/exit" {
				fmt.Fprintln(c.out, "Goodbye!")
				return nil
			}
			if line == "" {
				continue
			}
			if err := c.send(protocol.Chat(c.username, line)); err != nil {
				fmt.Fprintln(c.out, "Disconnected from server.")
				return err
			}
		}
	}
}

func (c *Client) prompt(label string) (string, error) {
	if label != "" {
		fmt.Fprint(c.out, label)
	}
	line, err := c.in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (c *Client) send(msg protocol.Message) error {
	frame, err := msg.Encode()
	if err != nil {
		return err
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDisconnected, err)
	}
	return nil
}

func (c *Client) readMessage() (protocol.Message, error) {
	for {
		payload, consumed, err := protocol.Extract(c.buf)
		if err != nil {
			return protocol.Message{}, err
		}
		if payload != nil {
			msg, err := protocol.Decode(payload)
			c.buf = c.buf[consumed:]
			if err != nil {
				return protocol.Message{}, err
			}
			return msg, nil
		}

		chunk := make([]byte, readChunkSize)
		n, err := c.conn.Read(chunk)
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
			continue
		}
		if err != nil {
			return protocol.Message{}, fmt.Errorf("%w: %v", common.ErrDisconnected, err)
		}
	}
}

// formatMessage renders one server frame as a terminal line. An empty
// result means the frame is not user-visible.
func formatMessage(msg protocol.Message) string {
	switch msg.Type {
	case protocol.TypeChat:
		if msg.Username == "" {
			return strings.TrimRight(msg.Content, "\n")
		}
		return fmt.Sprintf("[%s]: %s", msg.Username, msg.Content)
	case protocol.TypeUserJoined:
		return fmt.Sprintf("* %s joined the chat", msg.Username)
	case protocol.TypeUserLeft:
		return fmt.Sprintf("* %s left the chat", msg.Username)
	case protocol.TypeError:
		return fmt.Sprintf("Error: %s", msg.Content)
	case protocol.TypeRateLimited:
		return "Rate limit exceeded, please slow down."
	default:
		return ""
	}
}
