package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/tchat/internal/common"
	"github.com/google/uuid"
)

// InMemoryRepository keeps accounts for the lifetime of the process. It is
// the default backend; state is lost on shutdown.
type InMemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]*UserAccount
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{accounts: make(map[string]*UserAccount)}
}

func (r *InMemoryRepository) Create(ctx context.Context, account *UserAccount) (*UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Username]; exists {
		return nil, common.ErrDuplicateUsername
	}

	stored := *account
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	r.accounts[account.Username] = &stored

	result := stored
	return &result, nil
}

func (r *InMemoryRepository) GetByUsername(ctx context.Context, username string) (*UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[username]
	if !ok {
		return nil, common.ErrNotFound
	}

	result := *account
	return &result, nil
}
