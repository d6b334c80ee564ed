// Package accounts owns the durable-for-process-lifetime account set and the
// live auth tokens, independent of any specific connection.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/tchat/internal/common"
)

// DefaultTokenTTL is the fixed lifetime of issued auth tokens.
const DefaultTokenTTL = 24 * time.Hour

// Service implements register/login/validate/logout on top of a Repository.
// Accounts live in the repository; tokens always live in memory here.
type Service struct {
	repo     Repository
	pepper   string
	tokenTTL time.Duration

	mu     sync.Mutex
	tokens map[string]*AuthToken

	// now is a test seam for expiry checks.
	now func() time.Time
}

func NewService(repo Repository, pepper string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{
		repo:     repo,
		pepper:   pepper,
		tokenTTL: tokenTTL,
		tokens:   make(map[string]*AuthToken),
		now:      time.Now,
	}
}

// Register creates an account and returns a fresh token for it. A taken
// username fails with common.ErrDuplicateUsername.
func (s *Service) Register(ctx context.Context, username, password string) (*AuthToken, error) {
	account := &UserAccount{
		Username:     username,
		PasswordHash: HashPassword(password, s.pepper),
	}

	account, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return nil, common.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	return s.mintToken(account.ID)
}

// Login verifies the password against the stored digest and mints a new
// token. Unknown usernames and wrong passwords both fail with
// common.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, username, password string) (*AuthToken, error) {
	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	if !VerifyPassword(password, s.pepper, account.PasswordHash) {
		return nil, common.ErrUnauthorized
	}

	return s.mintToken(account.ID)
}

// ValidateToken resolves a token to its account id. Unknown and expired
// tokens report false; the check has no side effects.
func (s *Service) ValidateToken(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok || s.now().After(t.ExpiresAt) {
		return "", false
	}
	return t.UserID, true
}

// Logout discards the token. Unknown tokens are a no-op.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

func (s *Service) mintToken(userID string) (*AuthToken, error) {
	value, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	token := &AuthToken{
		Token:     value,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}

	s.mu.Lock()
	s.tokens[token.Token] = token
	s.mu.Unlock()

	return token, nil
}
