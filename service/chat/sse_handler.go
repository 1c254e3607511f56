package chat

import (
	"context"

	"payslip-agent-backend/model"
	"payslip-agent-backend/utils"

	"github.com/gin-gonic/gin"
)

// 占位消息的展示文案
const thinkingText = "Checking your records..."

// EventSink 编排过程中的增量状态出口，前端据此渲染进度
// ThinkingDone在每个工具回合结束时恰好触发一次，成功失败都不例外
type EventSink interface {
	ThinkingStarted(ctx context.Context)
	ThinkingDone(ctx context.Context)
	ToolCallResults(ctx context.Context, results []model.ToolCallResult)
	FinalAnswer(ctx context.Context, text string)
}

// GinSSEHandler 基于Gin的事件出口，使用SSE推送编排进度
type GinSSEHandler struct {
	Ctx     *gin.Context
	Session string
}

var _ EventSink = &GinSSEHandler{}

func NewGinSSEHandler(ctx *gin.Context, session string) *GinSSEHandler {
	return &GinSSEHandler{
		Ctx:     ctx,
		Session: session,
	}
}

func (h *GinSSEHandler) ThinkingStarted(ctx context.Context) {
	utils.SendSSEMessage(h.Ctx, utils.EventThinking, thinkingText)
}

func (h *GinSSEHandler) ThinkingDone(ctx context.Context) {
	utils.SendSSEMessage(h.Ctx, utils.EventThinkingDone, "")
}

func (h *GinSSEHandler) ToolCallResults(ctx context.Context, results []model.ToolCallResult) {
	utils.SendSSEMessage(h.Ctx, utils.EventToolCallResult, results)
}

func (h *GinSSEHandler) FinalAnswer(ctx context.Context, text string) {
	utils.SendSSEMessage(h.Ctx, utils.EventFinalAnswer, text)
}
