package controller

import (
	"context"
	"log/slog"
	"time"

	"payslip-agent-backend/config"
	"payslip-agent-backend/dao"
	"payslip-agent-backend/model"
	"payslip-agent-backend/request"
	"payslip-agent-backend/service/chat"
	"payslip-agent-backend/service/titler"
	"payslip-agent-backend/utils"

	"github.com/gin-gonic/gin"
)

// AgentChat 处理一次用户轮，编排过程经SSE流式下发
// 轮内任何失败都会以error事件结束，不会让前端无声等待
func AgentChat(c *gin.Context) {
	utils.SetSSEHeaders(c)

	var req request.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		utils.SendSSEMessage(c, utils.EventError, ErrParseRequest.Error())
		utils.SendSSEMessage(c, utils.EventDone, "")
		return
	}

	email := c.GetString("email")
	session, err := dao.Default.GetSession(c.Request.Context(), email, req.SessionID)
	if err != nil || session == nil {
		slog.Error(ErrSessionNotFound.Error(), "session_id", req.SessionID, "err", err)
		utils.SendSSEMessage(c, utils.EventError, ErrSessionNotFound.Error())
		utils.SendSSEMessage(c, utils.EventDone, "")
		return
	}

	sseHandler := chat.NewGinSSEHandler(c, req.SessionID)
	orchestrator, err := chat.NewOrchestrator(sseHandler, dao.Default, email, req.SessionID)
	if err != nil {
		slog.Error(ErrCreateOrchestrator.Error(), "err", err)
		utils.SendSSEMessage(c, utils.EventError, ErrCreateOrchestrator.Error())
		utils.SendSSEMessage(c, utils.EventDone, "")
		return
	}

	// 轮级超时；客户端断开时request context随之取消
	timeout := time.Duration(config.Cfg.Model.TurnTimeout) * time.Second
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if _, err := orchestrator.Turn(ctx, req.Message); err != nil {
		slog.Error(ErrChatTurn.Error(), "session_id", req.SessionID, "err", err)
		utils.SendSSEMessage(c, utils.EventError, ErrChatTurn.Error())
		utils.SendSSEMessage(c, utils.EventDone, "")
		return
	}

	utils.SendSSEMessage(c, utils.EventDone, "")

	if session.Title == model.DefaultSessionTitle {
		titler.Instance.Dispatch(c.Request.Context(), titler.TitleTask{
			Owner:     email,
			SessionID: req.SessionID,
		})
	}
}
