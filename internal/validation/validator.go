// Package validation holds the pure input checks that gate usernames, chat
// content, and passwords before they reach shared server state.
package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/tchat/internal/common"
)

// Config bounds the validators. Zero values are not usable; call
// DefaultConfig and override as needed.
type Config struct {
	MinUsernameLength int
	MaxUsernameLength int
	MaxMessageLength  int
	MinPasswordLength int
	MaxPasswordLength int
}

func DefaultConfig() Config {
	return Config{
		MinUsernameLength: 3,
		MaxUsernameLength: 20,
		MaxMessageLength:  2000,
		MinPasswordLength: 6,
		MaxPasswordLength: 128,
	}
}

// Validator applies Config-bound checks. All methods are side-effect free.
type Validator struct {
	cfg Config
}

func New(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateUsername checks length bounds, the allowed alphabet (letters,
// digits, underscore, hyphen) and that the name starts with a letter or
// digit. Failures wrap common.ErrValidation with a reason fit for sending
// back to the client.
func (v *Validator) ValidateUsername(username string) error {
	n := len([]rune(username))
	if n < v.cfg.MinUsernameLength {
		return fmt.Errorf("%w: username must be at least %d characters", common.ErrValidation, v.cfg.MinUsernameLength)
	}
	if n > v.cfg.MaxUsernameLength {
		return fmt.Errorf("%w: username must be at most %d characters", common.ErrValidation, v.cfg.MaxUsernameLength)
	}

	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return fmt.Errorf("%w: username can only contain letters, numbers, underscore, and hyphen", common.ErrValidation)
		}
	}

	first := []rune(username)[0]
	if !unicode.IsLetter(first) && !unicode.IsDigit(first) {
		return fmt.Errorf("%w: username must start with a letter or number", common.ErrValidation)
	}

	return nil
}

// ValidateMessage checks content length and rejects raw control characters
// other than newline and tab.
func (v *Validator) ValidateMessage(content string) error {
	if n := len([]rune(content)); n > v.cfg.MaxMessageLength {
		return fmt.Errorf("%w: message is %d characters (max %d)", common.ErrValidation, n, v.cfg.MaxMessageLength)
	}

	for _, r := range content {
		if r < 32 && r != '\n' && r != '\t' {
			return fmt.Errorf("%w: message contains control characters", common.ErrValidation)
		}
	}

	return nil
}

// ValidatePassword checks only length bounds; any byte content is allowed.
func (v *Validator) ValidatePassword(password string) error {
	n := len([]rune(password))
	if n < v.cfg.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, v.cfg.MinPasswordLength)
	}
	if n > v.cfg.MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d characters", common.ErrValidation, v.cfg.MaxPasswordLength)
	}
	return nil
}

// Sanitize strips the control characters ValidateMessage would reject and
// trims surrounding whitespace. It never fails; use it for best-effort
// cleanup, not as a gate.
func (v *Validator) Sanitize(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)

	return strings.TrimSpace(cleaned)
}
