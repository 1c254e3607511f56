package controller

import (
	"log/slog"
	"net/http"

	"payslip-agent-backend/dao"
	"payslip-agent-backend/model"
	"payslip-agent-backend/request"
	"payslip-agent-backend/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func CreateSession(c *gin.Context) {
	email := c.GetString("email")
	session := &model.Session{
		OwnerEmail: email,
		SessionID:  uuid.New().String(),
		Title:      model.DefaultSessionTitle,
	}
	if err := dao.Default.CreateSession(c.Request.Context(), session); err != nil {
		slog.Error(ErrCreateSession.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrCreateSession.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: response.SessionResponse{
			SessionID: session.SessionID,
			Title:     session.Title,
		},
	})
}

func GetSessions(c *gin.Context) {
	email := c.GetString("email")
	sessions, err := dao.Default.GetSessionsByOwner(c.Request.Context(), email)
	if err != nil {
		slog.Error(ErrGetSessions.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetSessions.Error(),
		})
		return
	}

	var resp response.GetSessionsResponse
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, response.SessionResponse{
			SessionID: s.SessionID,
			Title:     s.Title,
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}

func DeleteSession(c *gin.Context) {
	email := c.GetString("email")
	sessionID := c.Param("id")
	if err := dao.Default.DeleteSession(c.Request.Context(), email, sessionID); err != nil {
		slog.Error(ErrDeleteSession.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrDeleteSession.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}

func GetSessionMessages(c *gin.Context) {
	email := c.GetString("email")
	sessionID := c.Param("id")

	// 空会话和不存在的会话要区分开，归属校验失败返回404
	session, err := dao.Default.GetSession(c.Request.Context(), email, sessionID)
	if err != nil {
		slog.Error(ErrGetSessionMessages.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetSessionMessages.Error(),
		})
		return
	}
	if session == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: ErrSessionNotFound.Error(),
		})
		return
	}

	messages, err := dao.Default.GetSessionMessages(c.Request.Context(), email, sessionID, 0)
	if err != nil {
		slog.Error(ErrGetSessionMessages.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetSessionMessages.Error(),
		})
		return
	}

	var resp response.GetSessionMessagesResponse
	for _, m := range messages {
		resp.Messages = append(resp.Messages, response.MessageResponse{
			CreatedAt:       m.CreatedAt,
			Role:            m.Role,
			Content:         m.Content,
			ToolCallResults: m.ToolCallResults,
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}

func UpdateSessionTitle(c *gin.Context) {
	var req request.UpdateSessionTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	email := c.GetString("email")
	sessionID := c.Param("id")
	if err := dao.Default.UpdateSessionTitle(c.Request.Context(), email, sessionID, req.Title); err != nil {
		slog.Error(ErrUpdateSessionTitle.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUpdateSessionTitle.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}
