package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/cmd/api/auth"
	"yt-summary/cmd/api/services"
	"yt-summary/cmd/api/services/servicetest"
)

func TestRegisterValidation(t *testing.T) {
	testCases := []struct {
		name         string
		email        string
		password     string
		confirmation string
		wantMessage  string
	}{
		{name: "missing email", email: " ", password: "password1", confirmation: "password1", wantMessage: "Email is required"},
		{name: "short password", email: "a@example.com", password: "short", confirmation: "short", wantMessage: "Password must be between 8 and 255 characters"},
		{name: "mismatch", email: "a@example.com", password: "password1", confirmation: "password2", wantMessage: "Passwords do not match"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := services.NewUserService(servicetest.NewDB().Users())

			_, err := svc.Register(context.Background(), testCase.email, testCase.password, testCase.confirmation)
			requireKind(t, err, services.KindInvalidInput)

			var se *services.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, testCase.wantMessage, se.Message)
		})
	}
}

func TestRegisterAndDuplicateEmail(t *testing.T) {
	db := servicetest.NewDB()
	svc := services.NewUserService(db.Users())
	ctx := context.Background()

	user, err := svc.Register(ctx, "Someone@Example.com", "password1", "password1")
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", user.Email)
	assert.NoError(t, auth.CheckPassword(user.PasswordHash, "password1"))

	_, err = svc.Register(ctx, "someone@example.com", "password2", "password2")
	requireKind(t, err, services.KindInvalidInput)

	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Email already registered", se.Message)
}

func TestChangePassword(t *testing.T) {
	db := servicetest.NewDB()
	svc := services.NewUserService(db.Users())
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@example.com", "password1", "password1")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong-password", "password2", "password2")
	requireKind(t, err, services.KindInvalidInput)

	err = svc.ChangePassword(ctx, user.ID, "password1", "password2", "password3")
	requireKind(t, err, services.KindInvalidInput)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "password1", "password2", "password2"))

	updated, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(updated.PasswordHash, "password2"))

	_, err = svc.Get(ctx, primitive.NewObjectID())
	requireKind(t, err, services.KindNotFound)
}

func TestLoginAndAuthenticate(t *testing.T) {
	db := servicetest.NewDB()
	users := services.NewUserService(db.Users())
	authSvc := services.NewAuthService(db.Users(), auth.NewJWTManager("test-secret", "test", time.Hour))
	ctx := context.Background()

	user, err := users.Register(ctx, "a@example.com", "password1", "password1")
	require.NoError(t, err)

	token, err := authSvc.Login(ctx, "A@example.com", "password1")
	require.NoError(t, err)

	id, err := authSvc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = authSvc.Login(ctx, "a@example.com", "wrong-password")
	requireKind(t, err, services.KindUnauthorized)

	_, err = authSvc.Login(ctx, "nobody@example.com", "password1")
	requireKind(t, err, services.KindUnauthorized)

	_, err = authSvc.Authenticate("garbage")
	requireKind(t, err, services.KindUnauthorized)
}
