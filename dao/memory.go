package dao

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"payslip-agent-backend/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	DemoUserEmail    = "demo@example.com"
	demoUserPassword = "demo123"
)

// MemoryStore 演示模式下的内存存储，进程退出即丢失
type MemoryStore struct {
	mu sync.RWMutex

	payslips map[string][]model.Payslip       // owner -> records
	users    map[string]model.User            // email -> user
	sessions map[string][]model.Session       // owner -> sessions
	messages map[string][]model.Message       // sessionID -> messages
	nextID   uint
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		payslips: make(map[string][]model.Payslip),
		users:    make(map[string]model.User),
		sessions: make(map[string][]model.Session),
		messages: make(map[string][]model.Message),
	}
}

// SeedDemoUser 注入演示账号，免去本地试用时的注册步骤
func (s *MemoryStore) SeedDemoUser() {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoUserPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to seed demo user", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[DemoUserEmail] = model.User{
		ID:       1,
		Email:    DemoUserEmail,
		Password: string(hash),
		Name:     "Demo User",
		Avatar:   model.DefaultAvatar,
	}

	slog.Info("Demo user ready", "email", DemoUserEmail, "password", demoUserPassword)
}

func (s *MemoryStore) CreatePayslip(ctx context.Context, p *model.Payslip) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().UnixMilli()
	}
	s.payslips[p.OwnerID] = append(s.payslips[p.OwnerID], *p)
	return p.ID, nil
}

func (s *MemoryStore) ListPayslips(ctx context.Context, owner string, year, month int) ([]model.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Payslip
	for _, p := range s.payslips[owner] {
		if year > 0 || month > 0 {
			d, err := time.Parse("2006-01-02", p.Date)
			if err != nil {
				continue
			}
			if year > 0 && d.Year() != year {
				continue
			}
			if month > 0 && int(d.Month()) != month {
				continue
			}
		}
		result = append(result, p)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date > result[j].Date
	})
	return result, nil
}

func (s *MemoryStore) GetPayslipByID(ctx context.Context, owner, id string) (*model.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.payslips[owner] {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now()
	s.users[u.Email] = *u
	return nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemoryStore) CreateSession(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sess.ID = s.nextID
	sess.CreatedAt = time.Now()
	s.sessions[sess.OwnerEmail] = append(s.sessions[sess.OwnerEmail], *sess)
	return nil
}

func (s *MemoryStore) GetSession(ctx context.Context, owner, sessionID string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions[owner] {
		if sess.SessionID == sessionID {
			found := sess
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetSessionsByOwner(ctx context.Context, owner string) ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]model.Session, len(s.sessions[owner]))
	copy(sessions, s.sessions[owner])
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, owner, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sessions[owner][:0]
	for _, sess := range s.sessions[owner] {
		if sess.SessionID != sessionID {
			kept = append(kept, sess)
		}
	}
	s.sessions[owner] = kept
	delete(s.messages, sessionID)
	return nil
}

func (s *MemoryStore) UpdateSessionTitle(ctx context.Context, owner, sessionID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sess := range s.sessions[owner] {
		if sess.SessionID == sessionID {
			s.sessions[owner][i].Title = title
			s.sessions[owner][i].UpdatedAt = time.Now()
		}
	}
	return nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	m.ID = s.nextID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.messages[m.SessionID] = append(s.messages[m.SessionID], *m)
	return nil
}

func (s *MemoryStore) GetSessionMessages(ctx context.Context, owner, sessionID string, limit int) ([]model.Message, error) {
	sess, err := s.GetSession(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]model.Message, len(s.messages[sessionID]))
	copy(messages, s.messages[sessionID])
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
