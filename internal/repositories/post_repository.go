package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"xvo/internal/models"
)

type PostRepository struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

func NewPostRepository(path string, logger *slog.Logger) *PostRepository {
	return &PostRepository{path: path, logger: logger}
}

func (r *PostRepository) Append(ctx context.Context, post models.Post) (models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts := r.load()

	post.ID = 1
	for _, p := range posts {
		if p.ID >= post.ID {
			post.ID = p.ID + 1
		}
	}
	if post.Likes == nil {
		post.Likes = []int{}
	}

	posts = append(posts, post)
	if err := writeDocument(r.path, posts); err != nil {
		return models.Post{}, fmt.Errorf("persist posts: %w", err)
	}
	return post, nil
}

func (r *PostRepository) All(ctx context.Context) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(), nil
}

func (r *PostRepository) RemoveByID(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts := r.load()
	kept := posts[:0]
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(posts) {
		return false, nil
	}

	if err := writeDocument(r.path, kept); err != nil {
		return false, fmt.Errorf("persist posts: %w", err)
	}
	return true, nil
}

func (r *PostRepository) load() []models.Post {
	var posts []models.Post
	if err := readDocument(r.path, &posts); err != nil {
		r.logger.Warn("post store unreadable, treating as empty", "path", r.path, "error", err)
		return nil
	}
	return posts
}
