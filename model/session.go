package model

import (
	"encoding/json"
	"time"
)

const DefaultSessionTitle = "新会话"

type Session struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	OwnerEmail string    `gorm:"not null;index" json:"owner_email"`
	SessionID  string    `gorm:"not null" json:"session_id"`
	Title      string    `json:"title"`
}

func (Session) TableName() string {
	return "chat_session"
}

// Message 建立联合索引 (session_id, created_at)
// "思考中"占位消息只经SSE下发，永远不会落库
type Message struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time       `gorm:"index:idx_session_created" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	SessionID       string          `gorm:"not null;index:idx_session_created" json:"session_id"`
	Role            string          `gorm:"not null" json:"role"`
	Content         string          `gorm:"type:text" json:"content"`
	ToolCallResults json.RawMessage `gorm:"type:json" json:"tool_call_results"`
}

func (Message) TableName() string {
	return "chat_message"
}

// ToolCallResult 单次工具调用的结果，携带原始调用的ID和函数名
type ToolCallResult struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Result json.RawMessage `json:"result"`
}
