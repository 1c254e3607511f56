package dao

import (
	"context"
	"errors"
	"fmt"

	"payslip-agent-backend/model"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type MySQLStore struct {
	db *gorm.DB
}

var _ Store = &MySQLStore{}

func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Payslip{},
		&model.Session{},
		&model.Message{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %v", err)
	}

	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) CreatePayslip(ctx context.Context, p *model.Payslip) (string, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return "", fmt.Errorf("%w: %v", ErrStore, err)
	}
	return p.ID, nil
}

func (s *MySQLStore) ListPayslips(ctx context.Context, owner string, year, month int) ([]model.Payslip, error) {
	q := s.db.WithContext(ctx).
		Where("owner_id = ?", owner)

	// 支付日期为ISO字符串，按日历成分过滤
	if year > 0 {
		q = q.Where("SUBSTRING(date, 1, 4) = ?", fmt.Sprintf("%04d", year))
	}
	if month > 0 {
		q = q.Where("SUBSTRING(date, 6, 2) = ?", fmt.Sprintf("%02d", month))
	}

	var payslips []model.Payslip
	if err := q.Order("date DESC").Find(&payslips).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return payslips, nil
}

func (s *MySQLStore) GetPayslipByID(ctx context.Context, owner, id string) (*model.Payslip, error) {
	var p model.Payslip
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", owner, id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return &p, nil
}

func (s *MySQLStore) CreateUser(ctx context.Context, u *model.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

func (s *MySQLStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return &u, nil
}

func (s *MySQLStore) CreateSession(ctx context.Context, sess *model.Session) error {
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

func (s *MySQLStore) GetSession(ctx context.Context, owner, sessionID string) (*model.Session, error) {
	var sess model.Session
	err := s.db.WithContext(ctx).
		Where("owner_email = ? AND session_id = ?", owner, sessionID).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return &sess, nil
}

func (s *MySQLStore) GetSessionsByOwner(ctx context.Context, owner string) ([]model.Session, error) {
	var sessions []model.Session
	err := s.db.WithContext(ctx).
		Where("owner_email = ?", owner).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return sessions, nil
}

func (s *MySQLStore) DeleteSession(ctx context.Context, owner, sessionID string) error {
	// 删除会话
	err := s.db.WithContext(ctx).
		Where("owner_email = ? AND session_id = ?", owner, sessionID).
		Delete(&model.Session{}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	// 删除会话内的对话记录
	err = s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&model.Message{}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	return nil
}

func (s *MySQLStore) UpdateSessionTitle(ctx context.Context, owner, sessionID, title string) error {
	err := s.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("owner_email = ? AND session_id = ?", owner, sessionID).
		Update("title", title).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

func (s *MySQLStore) AppendMessage(ctx context.Context, m *model.Message) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

func (s *MySQLStore) GetSessionMessages(ctx context.Context, owner, sessionID string, limit int) ([]model.Message, error) {
	// 先校验会话归属，消息表本身不含owner列
	sess, err := s.GetSession(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	q := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var messages []model.Message
	if err := q.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return messages, nil
}

func (s *MySQLStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
