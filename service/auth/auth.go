package auth

import (
	"context"
	"errors"
	"fmt"

	"payslip-agent-backend/dao"
	"payslip-agent-backend/model"
	"payslip-agent-backend/request"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func UserRegister(ctx context.Context, req request.UserRegisterRequest) (*model.User, error) {
	existing, err := dao.Default.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &model.User{
		Email:    req.Email,
		Password: string(hash),
		Name:     req.Name,
		Avatar:   model.DefaultAvatar,
	}
	if err := dao.Default.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func UserLogin(ctx context.Context, req request.UserLoginRequest) (*model.User, error) {
	user, err := dao.Default.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
