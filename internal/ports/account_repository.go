package ports

import (
	"context"

	"xvo/internal/models"
)

type IAccountRepository interface {
	IAccountReader
	IAccountWriter
}

type IAccountReader interface {
	GetByID(ctx context.Context, id int) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
}

type IAccountWriter interface {
	Create(ctx context.Context, account models.Account) (models.Account, error)
	Update(ctx context.Context, account models.Account) error
}
