package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/cmd/api/auth"
	"yt-summary/models"
	"yt-summary/repositories"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 255
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Register creates an account. Emails are compared case-insensitively.
func (s *UserService) Register(ctx context.Context, email, password, confirmation string) (*models.User, error) {
	const op = "UserService.Register"

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, newError(op, KindInvalidInput, "Email is required", nil)
	}
	if err := validatePassword(op, password, confirmation); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, newError(op, KindInvalidInput, "Email already registered", nil)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(op, KindDatabase, MsgDatabase, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, newError(op, KindInternal, MsgInternal, err)
	}

	user, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(op, KindInvalidInput, "Email already registered", err)
		}
		return nil, newError(op, KindDatabase, MsgDatabase, err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword, confirmation string) error {
	const op = "UserService.ChangePassword"

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(user.PasswordHash, oldPassword); err != nil {
		return newError(op, KindInvalidInput, "Invalid password", err)
	}
	if err := validatePassword(op, newPassword, confirmation); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return newError(op, KindInternal, MsgInternal, err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return newError(op, KindDatabase, MsgDatabase, err)
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	const op = "UserService.Get"

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(op, KindNotFound, "User not found", err)
		}
		return nil, newError(op, KindDatabase, MsgDatabase, err)
	}
	return user, nil
}

func validatePassword(op, password, confirmation string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength || n > maxPasswordLength {
		return newError(op, KindInvalidInput, "Password must be between 8 and 255 characters", nil)
	}
	if password != confirmation {
		return newError(op, KindInvalidInput, "Passwords do not match", nil)
	}
	return nil
}
