// Package server implements the tchat server: the listener and accept loop,
// the registry of connected users, broadcast fan-out, and the per-connection
// protocol handler.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/tchat/internal/common"
	"github.com/dmitrijs2005/tchat/internal/logging"
	"github.com/dmitrijs2005/tchat/internal/protocol"
	"github.com/dmitrijs2005/tchat/internal/ratelimit"
	"github.com/dmitrijs2005/tchat/internal/server/accounts"
	"github.com/dmitrijs2005/tchat/internal/server/config"
	"github.com/dmitrijs2005/tchat/internal/validation"
	"github.com/google/uuid"
)

const cleanupInterval = time.Minute

// Server owns the authoritative map of connected users and their handlers.
// All registry mutations are serialized behind mu; broadcasts read a
// snapshot and dispatch concurrently.
type Server struct {
	cfg         *config.Config
	log         logging.Logger
	auth        *accounts.Service
	validator   *validation.Validator
	limiter     *ratelimit.Limiter
	connLimiter *ratelimit.ConnLimiter

	mu       sync.RWMutex
	users    map[string]*User
	handlers map[string]*Handler
	listener net.Listener
	cancel   context.CancelFunc
	stopped  bool

	active   atomic.Int32
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewServer wires a server from its shared components. The auth service may
// be backed by any accounts.Repository; the server does not care which.
func NewServer(cfg *config.Config, log logging.Logger, auth *accounts.Service) *Server {
	return &Server{
		cfg:         cfg,
		log:         log.With("module", "server"),
		auth:        auth,
		validator:   validation.New(validation.DefaultConfig()),
		limiter:     ratelimit.NewLimiter(ratelimit.Config{Burst: cfg.MessageBurst, RefillRate: cfg.MessageRate}),
		connLimiter: ratelimit.NewConnLimiter(),
		users:       make(map[string]*User),
		handlers:    make(map[string]*Handler),
	}
}

// Run binds the listener and accepts connections until ctx is cancelled or
// Stop is called. Bind/listen failures are returned to the caller and are
// fatal; per-connection failures are logged and isolated.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.cancel = cancel
	s.mu.Unlock()

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	// Stop may have raced the bind; do not start accepting after it ran.
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		listener.Close()
		return nil
	}
	s.listener = listener
	s.mu.Unlock()

	go s.cleanupLoop(ctx)
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.log.Info(ctx, "listening", "addr", listener.Addr().String(), "auth", s.cfg.RequireAuth)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Warn(ctx, "accept failed", "error", err)
			continue
		}

		if !s.connLimiter.CheckConnection(remoteIP(conn)) {
			s.log.Warn(ctx, "connection attempts throttled", "remote", conn.RemoteAddr().String())
			conn.Close()
			continue
		}

		// Gate before a handler exists or a user id is allocated.
		if int(s.active.Load()) >= s.cfg.MaxConnections {
			s.log.Warn(ctx, "max connections reached, rejecting", "remote", conn.RemoteAddr().String())
			conn.Close()
			continue
		}

		s.active.Add(1)
		s.wg.Add(1)
		go s.serveConn(ctx, conn)
	}

	s.wg.Wait()
	s.log.Info(ctx, "server stopped")
	return nil
}

// Addr returns the bound listener address, or "" before Run has bound it.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// UserCount reports how many users are currently registered.
func (s *Server) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer s.active.Add(-1)

	userID := uuid.NewString()
	handler := NewHandler(conn, s, userID)

	// Stopping the server tears the read loop down by closing the socket.
	unhook := context.AfterFunc(ctx, func() { conn.Close() })
	defer unhook()

	if err := handler.Run(ctx); err != nil {
		s.log.Debug(ctx, "connection ended with error", "user_id", userID, "error", err)
	}

	s.RemoveConnection(userID)
	s.limiter.Reset(userID)
}

// RegisterUser admits a user into the registry. The username must be unique
// (case-sensitive) among currently connected users; on success everyone else
// is told about the join.
func (s *Server) RegisterUser(user *User, handler *Handler) error {
	s.mu.Lock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			s.mu.Unlock()
			return fmt.Errorf("%w: %q", common.ErrDuplicateUsername, user.Username)
		}
	}
	s.users[user.ID] = user
	s.handlers[user.ID] = handler
	s.mu.Unlock()

	s.log.Info(context.Background(), "user joined", "username", user.Username, "user_id", user.ID)

	s.Broadcast(protocol.UserJoined(user.Username), user.ID)
	return nil
}

// Broadcast delivers one message to every registered handler except the
// excluded one. Dispatch is concurrent; a peer that fails to take the frame
// is skipped, its own handler will notice and clean up.
func (s *Server) Broadcast(msg protocol.Message, excludeUserID string) {
	frame, err := msg.Encode()
	if err != nil {
		s.log.Error(context.Background(), "broadcast encode failed", "error", err)
		return
	}

	s.mu.RLock()
	targets := make([]*Handler, 0, len(s.handlers))
	for id, h := range s.handlers {
		if id == excludeUserID {
			continue
		}
		targets = append(targets, h)
	}
	s.mu.RUnlock()

	var wg sync.WaitGroup
	for _, h := range targets {
		wg.Add(1)
		go func(h *Handler) {
			defer wg.Done()
			_ = h.SendFrame(frame)
		}(h)
	}
	wg.Wait()
}

// RemoveConnection deregisters the user and tells the remainder. Unknown
// ids are a no-op, so it is safe to call from every teardown path.
func (s *Server) RemoveConnection(userID string) {
	s.mu.Lock()
	user, ok := s.users[userID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.users, userID)
	delete(s.handlers, userID)
	s.mu.Unlock()

	s.log.Info(context.Background(), "user left", "username", user.Username, "user_id", userID)

	s.Broadcast(protocol.UserLeft(user.Username), userID)
}

// Stop closes the listener, deregisters every connected user (each with its
// leave broadcast), and closes their sockets. Safe to call concurrently
// with in-flight accepts, more than once, and even before Run has bound
// the listener, in which case Run returns without serving.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		cancel := s.cancel
		listener := s.listener
		ids := make([]string, 0, len(s.users))
		for id := range s.users {
			ids = append(ids, id)
		}
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if listener != nil {
			listener.Close()
		}

		for _, id := range ids {
			s.mu.RLock()
			handler := s.handlers[id]
			s.mu.RUnlock()

			s.RemoveConnection(id)
			if handler != nil {
				handler.Close()
			}
		}
	})
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Cleanup()
			s.connLimiter.Cleanup()
		}
	}
}

func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
