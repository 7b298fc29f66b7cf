package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"xvo/internal/models"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountRepository persists accounts as a JSON document, same single-writer
// discipline as the message store. Lookups that find nothing return a nil
// account and a nil error.
type AccountRepository struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

func NewAccountRepository(path string, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{path: path, logger: logger}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.load() {
		if a.ID == id {
			account := a
			return &account, nil
		}
	}
	return nil, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.load() {
		if a.Username == username {
			account := a
			return &account, nil
		}
	}
	return nil, nil
}

func (r *AccountRepository) Create(ctx context.Context, account models.Account) (models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := r.load()

	account.ID = 1
	for _, a := range accounts {
		if a.ID >= account.ID {
			account.ID = a.ID + 1
		}
	}

	accounts = append(accounts, account)
	if err := writeDocument(r.path, accounts); err != nil {
		return models.Account{}, fmt.Errorf("persist accounts: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) Update(ctx context.Context, account models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := r.load()
	for i, a := range accounts {
		if a.ID == account.ID {
			accounts[i] = account
			if err := writeDocument(r.path, accounts); err != nil {
				return fmt.Errorf("persist accounts: %w", err)
			}
			return nil
		}
	}
	return ErrAccountNotFound
}

func (r *AccountRepository) load() []models.Account {
	var accounts []models.Account
	if err := readDocument(r.path, &accounts); err != nil {
		r.logger.Warn("account store unreadable, treating as empty", "path", r.path, "error", err)
		return nil
	}
	return accounts
}
