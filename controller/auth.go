package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"payslip-agent-backend/middleware"
	"payslip-agent-backend/request"
	"payslip-agent-backend/response"
	"payslip-agent-backend/service/auth"

	"github.com/gin-gonic/gin"
)

func UserRegister(c *gin.Context) {
	var req request.UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	user, err := auth.UserRegister(c.Request.Context(), req)
	if err != nil {
		slog.Error(ErrUserRegister.Error(), "email", req.Email, "err", err)
		status := http.StatusInternalServerError
		msg := ErrUserRegister.Error()
		if errors.Is(err, auth.ErrEmailTaken) {
			status = http.StatusConflict
			msg = auth.ErrEmailTaken.Error()
		}
		c.AbortWithStatusJSON(status, response.Response{
			Msg: msg,
		})
		return
	}

	token, err := middleware.GenerateToken(user.Email)
	if err != nil {
		slog.Error(ErrGenerateToken.Error(), "email", user.Email, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGenerateToken.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: response.UserAuthResponse{
			Email:  user.Email,
			Name:   user.Name,
			Avatar: user.Avatar,
			Token:  token,
		},
	})
}

func UserLogin(c *gin.Context) {
	var req request.UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	user, err := auth.UserLogin(c.Request.Context(), req)
	if err != nil {
		slog.Error(ErrUserLogin.Error(),
			"email", req.Email,
			"err", err,
		)
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		c.AbortWithStatusJSON(status, response.Response{
			Msg: ErrUserLogin.Error(),
		})
		return
	}

	token, err := middleware.GenerateToken(user.Email)
	if err != nil {
		slog.Error(ErrGenerateToken.Error(),
			"email", user.Email,
			"err", err,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGenerateToken.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.UserAuthResponse{
			Email:  user.Email,
			Name:   user.Name,
			Avatar: user.Avatar,
			Token:  token,
		},
	})
}
