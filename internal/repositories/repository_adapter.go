package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"xvo/app/config"
	"xvo/internal/ports"
)

type RepositoryAdapter struct {
	Messages ports.IMessageStore
	Accounts *AccountRepository
	Posts    *PostRepository

	sqlite *SQLiteMessageRepository
}

func NewRepositoryAdapter(cfg config.StorageConfig, logger *slog.Logger) (*RepositoryAdapter, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	adapter := &RepositoryAdapter{
		Accounts: NewAccountRepository(filepath.Join(cfg.DataDir, "accounts.json"), logger),
		Posts:    NewPostRepository(filepath.Join(cfg.DataDir, "posts.json"), logger),
	}

	switch cfg.Driver {
	case "json", "":
		adapter.Messages = NewMessageRepository(filepath.Join(cfg.DataDir, "messages.json"), logger)
	case "sqlite":
		sqlite, err := NewSQLiteMessageRepository(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		adapter.sqlite = sqlite
		adapter.Messages = sqlite
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	logger.Info("storage initialized", "driver", cfg.Driver, "dataDir", cfg.DataDir)
	return adapter, nil
}

func (r *RepositoryAdapter) HealthCheck(ctx context.Context) error {
	if r.sqlite != nil {
		return r.sqlite.Ping(ctx)
	}
	return nil
}

func (r *RepositoryAdapter) Close(logger *slog.Logger) error {
	if r.sqlite != nil {
		if err := r.sqlite.Close(); err != nil {
			logger.Error("failed to close sqlite store", "error", err)
			return err
		}
	}
	return nil
}
