package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/google/uuid"
)

// AccountRepository хранилище учетных записей
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	// Create сохраняет аккаунт; занятый username -> *domain.DuplicateError
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
}

// InMemoryAccountRepository аккаунты в памяти
type InMemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{accounts: make(map[string]domain.Account)}
}

func (r *InMemoryAccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[username]
	if !ok {
		return nil, nil
	}
	a.Roles = slices.Clone(a.Roles)
	return &a, nil
}

func (r *InMemoryAccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Username]; exists {
		return domain.Account{}, domain.NewDuplicateError("account", "username", account.Username)
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now().UTC()
	account.Roles = slices.Clone(account.Roles)
	r.accounts[account.Username] = account

	return account, nil
}
