package chat

import (
	"context"
	"encoding/json"

	"payslip-agent-backend/dao"
	"payslip-agent-backend/model"

	"github.com/tmc/langchaingo/llms"
)

const historyLimit = 200

// History 会话转录的持久化边界
// 工具调用的中间消息只存在于单轮编排的内存中，重建上下文时仅回放文本
type History struct {
	store     dao.Store
	owner     string
	sessionID string
	limit     int
}

func NewHistory(store dao.Store, owner, sessionID string) *History {
	return &History{
		store:     store,
		owner:     owner,
		sessionID: sessionID,
		limit:     historyLimit,
	}
}

// Load 按时间顺序重建已落库的对话上下文
func (h *History) Load(ctx context.Context) ([]llms.MessageContent, error) {
	messages, err := h.store.GetSessionMessages(ctx, h.owner, h.sessionID, h.limit)
	if err != nil {
		return nil, err
	}

	var content []llms.MessageContent
	for _, msg := range messages {
		switch msg.Role {
		case string(llms.ChatMessageTypeAI):
			content = append(content, llms.TextParts(llms.ChatMessageTypeAI, msg.Content))
		case string(llms.ChatMessageTypeHuman):
			content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))
		}
	}
	return content, nil
}

func (h *History) AddUserMessage(ctx context.Context, text string) error {
	return h.append(ctx, llms.ChatMessageTypeHuman, text, nil)
}

func (h *History) AddAIMessage(ctx context.Context, text string, toolCallResults []model.ToolCallResult) error {
	var resultsJSON json.RawMessage
	if len(toolCallResults) > 0 {
		data, err := json.Marshal(toolCallResults)
		if err != nil {
			return err
		}
		resultsJSON = data
	}
	return h.append(ctx, llms.ChatMessageTypeAI, text, resultsJSON)
}

func (h *History) append(ctx context.Context, role llms.ChatMessageType, text string, toolCallResults json.RawMessage) error {
	return h.store.AppendMessage(ctx, &model.Message{
		SessionID:       h.sessionID,
		Role:            string(role),
		Content:         text,
		ToolCallResults: toolCallResults,
	})
}
