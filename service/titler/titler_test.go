package titler

import (
	"context"
	"errors"
	"testing"

	"payslip-agent-backend/dao"
	"payslip-agent-backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeLLM struct {
	output string
	err    error
	calls  int
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.output}},
	}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func seedSession(t *testing.T, store dao.Store, withMessages bool) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.CreateSession(ctx, &model.Session{
		OwnerEmail: "alice",
		SessionID:  "sess-1",
		Title:      model.DefaultSessionTitle,
	}))
	if withMessages {
		require.NoError(t, store.AppendMessage(ctx, &model.Message{
			SessionID: "sess-1", Role: "human", Content: "How much tax did I pay in March?",
		}))
		require.NoError(t, store.AppendMessage(ctx, &model.Message{
			SessionID: "sess-1", Role: "ai", Content: "You paid 300 in March.",
		}))
	}
}

func TestHandleUpdatesTitle(t *testing.T) {
	store := dao.NewMemoryStore()
	seedSession(t, store, true)
	tl := &Titler{llm: &fakeLLM{output: `"三月份税款查询"` + "\n"}, store: store}

	require.NoError(t, tl.Handle(context.Background(), TitleTask{Owner: "alice", SessionID: "sess-1"}))

	sess, err := store.GetSession(context.Background(), "alice", "sess-1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "三月份税款查询", sess.Title)
}

func TestHandleEmptySessionIsNoop(t *testing.T) {
	store := dao.NewMemoryStore()
	seedSession(t, store, false)
	llm := &fakeLLM{output: "whatever"}
	tl := &Titler{llm: llm, store: store}

	require.NoError(t, tl.Handle(context.Background(), TitleTask{Owner: "alice", SessionID: "sess-1"}))
	assert.Zero(t, llm.calls)

	sess, err := store.GetSession(context.Background(), "alice", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSessionTitle, sess.Title)
}

func TestHandleRetriesThenFails(t *testing.T) {
	store := dao.NewMemoryStore()
	seedSession(t, store, true)
	llm := &fakeLLM{err: errors.New("upstream down")}
	tl := &Titler{llm: llm, store: store}

	err := tl.Handle(context.Background(), TitleTask{Owner: "alice", SessionID: "sess-1"})
	require.Error(t, err)
	assert.Equal(t, titleAttempts, llm.calls)
}

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "工资查询", sanitizeTitle(`"工资查询"`))
	assert.Equal(t, "first line", sanitizeTitle("first line\nsecond line"))
	assert.Equal(t, "", sanitizeTitle("  \n"))

	long := "一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十超出"
	assert.Equal(t, 30, len([]rune(sanitizeTitle(long))))
}
