package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"xvo/internal/models"
	"xvo/internal/ports"
)

var (
	ErrUsernameTaken      = errors.New("this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAdminOnly          = errors.New("admin only")
	ErrAccountNotFound    = errors.New("account not found")
)

// AuthService owns account registration, login and the signed session tokens
// that carry the caller's verified identity. The token's uid claim is what
// the access guard trusts; the legacy x-user-id header is accepted only when
// the deployment explicitly allows it.
type AuthService struct {
	accounts ports.IAccountRepository
	hasher   IHasher
	jwtKey   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewAuthService(accounts ports.IAccountRepository, hasher IHasher, jwtKey []byte, tokenTTL time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		jwtKey:   jwtKey,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

func (s *AuthService) Register(ctx context.Context, name, username, password string) (models.Account, error) {
	if name == "" || username == "" || password == "" {
		s.logger.Warn("missing required fields in registration")
		return models.Account{}, ErrInvalidInput
	}

	existing, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return models.Account{}, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		s.logger.Warn("username already exists", "username", username)
		return models.Account{}, ErrUsernameTaken
	}

	hashed, err := s.hasher.GenerateFromPassword([]byte(password), s.hasher.DefaultCost())
	if err != nil {
		s.logger.Error("password hashing failed", "error", err)
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accounts.Create(ctx, models.Account{
		Name:        name,
		Username:    username,
		Password:    string(hashed),
		DisplayName: name,
		Avatar:      models.DefaultAvatarURL,
		LastOnline:  time.Now().UnixMilli(),
	})
	if err != nil {
		s.logger.Error("account creation failed", "error", err)
		return models.Account{}, err
	}

	s.logger.Info("account registered", "id", account.ID, "username", username)
	return account.Sanitized(), nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (models.Account, string, error) {
	if username == "" || password == "" {
		return models.Account{}, "", ErrInvalidCredentials
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return models.Account{}, "", fmt.Errorf("look up account: %w", err)
	}
	if account == nil {
		s.logger.Warn("login failed: unknown username", "username", username)
		return models.Account{}, "", ErrInvalidCredentials
	}

	if err := s.hasher.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		s.logger.Warn("login failed: wrong password", "username", username)
		return models.Account{}, "", ErrInvalidCredentials
	}

	account.LastOnline = time.Now().UnixMilli()
	if err := s.accounts.Update(ctx, *account); err != nil {
		s.logger.Warn("failed to update last online", "username", username, "error", err)
	}

	token, err := s.IssueToken(account.ID)
	if err != nil {
		s.logger.Error("token generation failed", "error", err)
		return models.Account{}, "", errors.New("authentication failed")
	}

	s.logger.Info("login successful", "id", account.ID, "username", username)
	return account.Sanitized(), token, nil
}

func (s *AuthService) IssueToken(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": userID,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.jwtKey)
}

// ValidateToken returns the user id the token was issued for.
func (s *AuthService) ValidateToken(tokenString string) (int, error) {
	if tokenString == "" {
		return 0, errors.New("token is required")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtKey, nil
	})
	if err != nil {
		s.logger.Warn("token parsing failed", "error", err)
		return 0, errors.New("invalid token")
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}

	uid, ok := claims["uid"].(float64)
	if !ok || uid <= 0 {
		return 0, errors.New("uid missing in token")
	}

	return int(uid), nil
}

// SetSuspended toggles the suspension flag on an account. Admin callers only.
func (s *AuthService) SetSuspended(ctx context.Context, adminID, userID int, suspended bool) error {
	admin, err := s.accounts.GetByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("look up admin: %w", err)
	}
	if admin == nil || !admin.IsAdmin {
		s.logger.Warn("suspension change rejected: not an admin", "callerID", adminID)
		return ErrAdminOnly
	}

	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("look up account: %w", err)
	}
	if account == nil {
		return ErrAccountNotFound
	}

	account.IsSuspended = suspended
	if err := s.accounts.Update(ctx, *account); err != nil {
		s.logger.Error("failed to update suspension", "userID", userID, "error", err)
		return err
	}

	s.logger.Info("suspension updated", "userID", userID, "suspended", suspended, "adminID", adminID)
	return nil
}
