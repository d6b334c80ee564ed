package accounts

import "context"

// Repository stores user accounts. Implementations must make the duplicate
// check in Create atomic: two concurrent creates for one username may not
// both succeed.
type Repository interface {
	// Create persists a new account and fills in its ID and CreatedAt.
	// It returns common.ErrDuplicateUsername if the username is taken.
	Create(ctx context.Context, account *UserAccount) (*UserAccount, error)

	// GetByUsername returns common.ErrNotFound for unknown usernames.
	GetByUsername(ctx context.Context, username string) (*UserAccount, error)
}
