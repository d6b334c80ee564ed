package accounts

import "time"

// UserAccount is the persisted identity behind password auth. Accounts are
// created on registration and never mutated or deleted.
type UserAccount struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// AuthToken is an ephemeral proof of authentication. Several live tokens may
// exist for one account; expiry is checked lazily on validation.
type AuthToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
