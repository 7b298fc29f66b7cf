package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"xvo/internal/models"
	"xvo/internal/ports"
)

var ErrPostNotFound = errors.New("post not found")

// CooldownError carries how long the user must wait before posting again.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d seconds before posting again", int(e.Remaining.Seconds()+0.999))
}

// postCooldown is a per-user variant of the request rate limiter: one post
// per window, tracked in memory only.
type postCooldown struct {
	mu       sync.Mutex
	lastPost map[int]time.Time
	window   time.Duration
	now      func() time.Time
}

func newPostCooldown(window time.Duration) *postCooldown {
	return &postCooldown{
		lastPost: make(map[int]time.Time),
		window:   window,
		now:      time.Now,
	}
}

// remaining returns how long until userID may post again, zero if allowed.
func (c *postCooldown) remaining(userID int) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.lastPost[userID]
	if !ok {
		return 0
	}
	elapsed := c.now().Sub(last)
	if elapsed >= c.window {
		return 0
	}
	return c.window - elapsed
}

func (c *postCooldown) touch(userID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPost[userID] = c.now()
}

type PostService struct {
	posts    ports.IPostRepository
	accounts ports.IAccountReader
	cooldown *postCooldown
	logger   *slog.Logger
}

func NewPostService(posts ports.IPostRepository, accounts ports.IAccountReader, cooldownWindow time.Duration, logger *slog.Logger) *PostService {
	return &PostService{
		posts:    posts,
		accounts: accounts,
		cooldown: newPostCooldown(cooldownWindow),
		logger:   logger,
	}
}

func (s *PostService) Create(ctx context.Context, userID int, text string, callerID int) (models.Post, error) {
	if callerID == 0 || callerID != userID {
		return models.Post{}, ErrUnauthorized
	}
	if text == "" {
		return models.Post{}, ErrInvalidInput
	}

	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return models.Post{}, fmt.Errorf("check author: %w", err)
	}
	if account != nil && account.IsSuspended {
		s.logger.Warn("post rejected: author suspended", "userID", userID)
		return models.Post{}, ErrSenderSuspended
	}

	if remaining := s.cooldown.remaining(userID); remaining > 0 {
		s.logger.Debug("post rejected: cooldown", "userID", userID, "remaining", remaining)
		return models.Post{}, &CooldownError{Remaining: remaining}
	}

	post, err := s.posts.Append(ctx, models.Post{
		UserID:    userID,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		s.logger.Error("failed to store post", "userID", userID, "error", err)
		return models.Post{}, err
	}

	s.cooldown.touch(userID)
	s.logger.Info("post created", "id", post.ID, "userID", userID)
	return post, nil
}

func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Timestamp > posts[j].Timestamp
	})
	return posts, nil
}

// Delete removes a post. The author or an admin may delete.
func (s *PostService) Delete(ctx context.Context, id, callerID int) error {
	if callerID == 0 {
		return ErrUnauthorized
	}

	posts, err := s.posts.All(ctx)
	if err != nil {
		return err
	}

	var target *models.Post
	for i := range posts {
		if posts[i].ID == id {
			target = &posts[i]
			break
		}
	}
	if target == nil {
		return ErrPostNotFound
	}

	if target.UserID != callerID {
		caller, err := s.accounts.GetByID(ctx, callerID)
		if err != nil {
			return fmt.Errorf("check caller: %w", err)
		}
		if caller == nil || !caller.IsAdmin {
			return ErrUnauthorized
		}
	}

	if _, err := s.posts.RemoveByID(ctx, id); err != nil {
		s.logger.Error("failed to delete post", "id", id, "error", err)
		return err
	}

	s.logger.Info("post deleted", "id", id, "callerID", callerID)
	return nil
}
