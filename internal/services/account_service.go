package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/imageboard/backend/internal/models"
	"github.com/anonto42/imageboard/backend/internal/repositories"
	"github.com/anonto42/imageboard/backend/pkg/password"
)

// ErrInvalidCredentials is returned when the username is unknown or the password is wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AccountService registers and authenticates users.
type AccountService struct {
	users  repositories.UserRepository
	hasher password.Hasher
}

// NewAccountService creates a new AccountService.
func NewAccountService(users repositories.UserRepository, hasher password.Hasher) *AccountService {
	return &AccountService{users: users, hasher: hasher}
}

// Register creates an account, hashing its password. A taken username yields
// repositories.ErrConflict.
func (s *AccountService) Register(ctx context.Context, username, plaintext string, isAdmin bool) (*models.User, error) {
	digest, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Password: digest,
		IsAdmin:  isAdmin,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a user's credentials. A corrupt stored digest is
// reported as password.ErrMalformedDigest rather than as bad credentials.
func (s *AccountService) Authenticate(ctx context.Context, username, plaintext string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(plaintext, user.Password)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", user.ID, err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin creates an administrator named username unless that user
// already exists. It reports whether a user was created.
func (s *AccountService) EnsureAdmin(ctx context.Context, username, plaintext string) (bool, error) {
	if username == "" || plaintext == "" {
		return false, errors.New("admin username and password are required")
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}

	if _, err := s.Register(ctx, username, plaintext, true); err != nil {
		// Another instance seeded it first.
		if errors.Is(err, repositories.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
