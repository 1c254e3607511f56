package auth

import (
	"context"
	"testing"

	"payslip-agent-backend/dao"
	"payslip-agent-backend/model"
	"payslip-agent-backend/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) {
	t.Helper()
	prev := dao.Default
	dao.Default = dao.NewMemoryStore()
	t.Cleanup(func() { dao.Default = prev })
}

func TestUserRegisterAndLogin(t *testing.T) {
	setupStore(t)
	ctx := context.Background()

	user, err := UserRegister(ctx, request.UserRegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
		Name:     "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, model.DefaultAvatar, user.Avatar)
	// 密码只存哈希
	assert.NotEqual(t, "secret123", user.Password)

	logged, err := UserLogin(ctx, request.UserLoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, user.Email, logged.Email)
}

func TestUserRegisterDuplicateEmail(t *testing.T) {
	setupStore(t)
	ctx := context.Background()

	_, err := UserRegister(ctx, request.UserRegisterRequest{
		Email: "alice@example.com", Password: "secret123", Name: "Alice",
	})
	require.NoError(t, err)

	_, err = UserRegister(ctx, request.UserRegisterRequest{
		Email: "alice@example.com", Password: "other456", Name: "Imposter",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserLoginWrongPassword(t *testing.T) {
	setupStore(t)
	ctx := context.Background()

	_, err := UserRegister(ctx, request.UserRegisterRequest{
		Email: "alice@example.com", Password: "secret123", Name: "Alice",
	})
	require.NoError(t, err)

	_, err = UserLogin(ctx, request.UserLoginRequest{
		Email: "alice@example.com", Password: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserLoginUnknownEmail(t *testing.T) {
	setupStore(t)

	_, err := UserLogin(context.Background(), request.UserLoginRequest{
		Email: "nobody@example.com", Password: "secret123",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
