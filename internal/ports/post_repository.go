package ports

import (
	"context"

	"xvo/internal/models"
)

type IPostRepository interface {
	Append(ctx context.Context, post models.Post) (models.Post, error)
	All(ctx context.Context) ([]models.Post, error)
	RemoveByID(ctx context.Context, id int) (bool, error)
}
