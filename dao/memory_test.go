package dao

import (
	"context"
	"testing"

	"payslip-agent-backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayslip(owner, date string, net float64) *model.Payslip {
	return &model.Payslip{
		OwnerID:  owner,
		Date:     date,
		Period:   date[:7],
		NetPay:   net,
		GrossPay: net * 1.3,
		Tax:      net * 0.3,
		Employer: "Acme",
	}
}

func TestCreateAndListPayslip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreatePayslip(ctx, newPayslip("alice", "2024-01-05", 1000))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	payslips, err := store.ListPayslips(ctx, "alice", 0, 0)
	require.NoError(t, err)
	require.Len(t, payslips, 1)
	assert.Equal(t, id, payslips[0].ID)
	assert.Equal(t, "alice", payslips[0].OwnerID)
	assert.Equal(t, "2024-01-05", payslips[0].Date)
	assert.Equal(t, float64(1000), payslips[0].NetPay)
	assert.Equal(t, "Acme", payslips[0].Employer)
	assert.NotZero(t, payslips[0].CreatedAt)
}

func TestPayslipIDsUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id, err := store.CreatePayslip(ctx, newPayslip("alice", "2024-01-05", 1000))
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestListPayslipsSortedByDateDesc(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, date := range []string{"2023-01-10", "2023-03-05", "2022-12-01"} {
		_, err := store.CreatePayslip(ctx, newPayslip("alice", date, 1000))
		require.NoError(t, err)
	}

	payslips, err := store.ListPayslips(ctx, "alice", 0, 0)
	require.NoError(t, err)
	require.Len(t, payslips, 3)

	var dates []string
	for _, p := range payslips {
		dates = append(dates, p.Date)
	}
	assert.Equal(t, []string{"2023-03-05", "2023-01-10", "2022-12-01"}, dates)
}

func TestListPayslipsYearMonthFilter(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, date := range []string{"2023-01-10", "2023-03-05", "2022-01-10"} {
		_, err := store.CreatePayslip(ctx, newPayslip("alice", date, 1000))
		require.NoError(t, err)
	}

	// 年月过滤是合取
	payslips, err := store.ListPayslips(ctx, "alice", 2023, 1)
	require.NoError(t, err)
	require.Len(t, payslips, 1)
	assert.Equal(t, "2023-01-10", payslips[0].Date)

	payslips, err = store.ListPayslips(ctx, "alice", 2023, 0)
	require.NoError(t, err)
	assert.Len(t, payslips, 2)

	payslips, err = store.ListPayslips(ctx, "alice", 0, 1)
	require.NoError(t, err)
	assert.Len(t, payslips, 2)
}

func TestPayslipOwnerIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreatePayslip(ctx, newPayslip("alice", "2024-01-05", 1000))
	require.NoError(t, err)

	payslips, err := store.ListPayslips(ctx, "bob", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, payslips)

	p, err := store.GetPayslipByID(ctx, "bob", id)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = store.GetPayslipByID(ctx, "alice", id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, id, p.ID)
}

func TestGetPayslipByIDAbsent(t *testing.T) {
	store := NewMemoryStore()

	p, err := store.GetPayslipByID(context.Background(), "alice", "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSessionLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := &model.Session{
		OwnerEmail: "alice",
		SessionID:  "s-1",
		Title:      model.DefaultSessionTitle,
	}
	require.NoError(t, store.CreateSession(ctx, sess))

	require.NoError(t, store.AppendMessage(ctx, &model.Message{
		SessionID: "s-1",
		Role:      "human",
		Content:   "hello",
	}))
	require.NoError(t, store.AppendMessage(ctx, &model.Message{
		SessionID: "s-1",
		Role:      "ai",
		Content:   "hi",
	}))

	// 消息读取以会话归属为边界
	messages, err := store.GetSessionMessages(ctx, "bob", "s-1", 0)
	require.NoError(t, err)
	assert.Nil(t, messages)

	messages, err = store.GetSessionMessages(ctx, "alice", "s-1", 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, "hi", messages[1].Content)

	require.NoError(t, store.UpdateSessionTitle(ctx, "alice", "s-1", "Income questions"))
	got, err := store.GetSession(ctx, "alice", "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Income questions", got.Title)

	require.NoError(t, store.DeleteSession(ctx, "alice", "s-1"))
	got, err = store.GetSession(ctx, "alice", "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
