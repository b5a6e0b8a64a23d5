package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/cmd/api/auth"
	"yt-summary/repositories"
)

type AuthService struct {
	users      UserStore
	jwtManager *auth.JWTManager
}

func NewAuthService(users UserStore, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{users: users, jwtManager: jwtManager}
}

// Login checks the credentials and issues an access token.
// Unknown email and wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "AuthService.Login"

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", newError(op, KindUnauthorized, MsgBadCredentials, err)
		}
		return "", newError(op, KindDatabase, MsgDatabase, err)
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return "", newError(op, KindUnauthorized, MsgBadCredentials, err)
	}

	token, err := s.jwtManager.Sign(user.ID.Hex())
	if err != nil {
		return "", newError(op, KindInternal, MsgInternal, err)
	}
	return token, nil
}

// Authenticate resolves an access token to the user id it was issued for.
func (s *AuthService) Authenticate(token string) (primitive.ObjectID, error) {
	const op = "AuthService.Authenticate"

	sub, err := s.jwtManager.Parse(token)
	if err != nil {
		return primitive.NilObjectID, newError(op, KindUnauthorized, "Could not validate credentials", err)
	}
	id, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return primitive.NilObjectID, newError(op, KindUnauthorized, "Could not validate credentials", err)
	}
	return id, nil
}
