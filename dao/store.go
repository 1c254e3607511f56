package dao

import (
	"context"
	"errors"
	"log/slog"

	"payslip-agent-backend/config"
	"payslip-agent-backend/model"
)

var ErrStore = errors.New("store operation failed")

// Store 统一的持久化接口，所有查询都以owner为边界做用户隔离
// MySQL和内存两种实现，启动时根据配置选择其一
type Store interface {
	CreatePayslip(ctx context.Context, p *model.Payslip) (string, error)

	// ListPayslips 按支付日期倒序返回，year/month为0表示不过滤
	ListPayslips(ctx context.Context, owner string, year, month int) ([]model.Payslip, error)

	// GetPayslipByID 未命中时返回 (nil, nil)
	GetPayslipByID(ctx context.Context, owner, id string) (*model.Payslip, error)

	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	CreateSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, owner, sessionID string) (*model.Session, error)
	GetSessionsByOwner(ctx context.Context, owner string) ([]model.Session, error)
	DeleteSession(ctx context.Context, owner, sessionID string) error
	UpdateSessionTitle(ctx context.Context, owner, sessionID, title string) error

	AppendMessage(ctx context.Context, m *model.Message) error
	GetSessionMessages(ctx context.Context, owner, sessionID string, limit int) ([]model.Message, error)

	Close() error
}

// Default 全局存储实例，由Init设置
var Default Store

func Init(cfg *config.Config) error {
	if cfg.DemoMode() {
		slog.Info("MySQL DSN not configured, falling back to in-memory demo store")
		s := NewMemoryStore()
		s.SeedDemoUser()
		Default = s
		return nil
	}

	s, err := NewMySQLStore(cfg.MySQL.DSN)
	if err != nil {
		return err
	}
	Default = s
	return nil
}
