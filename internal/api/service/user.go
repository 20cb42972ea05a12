package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/afterlove/couplet/internal/api/domain"
	"github.com/afterlove/couplet/internal/api/store"
	"github.com/afterlove/couplet/pkg/cryptox"
	"github.com/afterlove/couplet/pkg/idx"
	"github.com/afterlove/couplet/pkg/slogx"
)

// ErrWeakPassword reports a password below the minimum length.
var ErrWeakPassword = errors.New("password is too short")

// MinPasswordLength applies to every user-chosen password.
const MinPasswordLength = 6

// UserService covers the admin-style user CRUD. Self-service registration
// lives in AuthService; users created here get a random placeholder
// credential and must have their password set before they can log in.
type UserService struct {
	Store  store.Store
	Hasher HashVerifier
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// CreateUser inserts a user with an unguessable placeholder credential.
func (s *UserService) CreateUser(ctx context.Context, email, name string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	email = NormalizeEmail(email)
	if email == "" {
		return domain.User{}, ErrInvalidAuthRequest
	}

	placeholder, err := cryptox.GeneratePassword()
	if err != nil {
		return domain.User{}, err
	}
	passwordHash, err := s.Hasher.Hash(placeholder)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("user created by admin", slog.String("user_id", user.ID))
	return user, nil
}

// UpdateUser applies a partial update; nil fields are untouched.
func (s *UserService) UpdateUser(ctx context.Context, userID string, name, email *string) (domain.User, error) {
	if email != nil {
		normalized := NormalizeEmail(*email)
		email = &normalized
	}

	if err := s.Store.Users().UpdateUser(ctx, userID, name, email); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, userID)
}

func (s *UserService) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	log := slogx.FromContext(ctx)

	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	passwordHash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, passwordHash); err != nil {
		return err
	}

	log.Info("password updated", slog.String("user_id", userID))
	return nil
}

// DeleteUser removes the user and returns the deleted record.
func (s *UserService) DeleteUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
