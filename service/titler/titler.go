package titler

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"payslip-agent-backend/config"
	"payslip-agent-backend/dao"
	"payslip-agent-backend/model"
	"payslip-agent-backend/service/mq"
	"payslip-agent-backend/utils"

	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/avast/retry-go/v4"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	taskChanSize = 100
	workerNum    = 2

	titleAttempts = 3
	maxTitleRunes = 30

	// 生成标题时回看的消息条数
	contextMessageLimit = 4
)

//go:embed prompts/title.txt
var titlePrompt string

var titlePromptTmpl = template.Must(template.New("title").Parse(titlePrompt))

// TitleTask 为仍是默认标题的会话生成标题
type TitleTask struct {
	Owner     string `json:"owner"`
	SessionID string `json:"session_id"`
}

// Titler 后台会话标题生成器
// 配置了MQ时任务走消息队列，否则退回进程内channel
type Titler struct {
	llm      llms.Model
	store    dao.Store
	taskChan chan TitleTask
}

// Instance Titler单例实例
var Instance *Titler

func Init(store dao.Store) error {
	var llm llms.Model
	if config.Cfg.Model.APIKey != "" {
		client, err := openai.New(
			openai.WithModel(config.Cfg.Model.ChatModel),
			openai.WithToken(config.Cfg.Model.APIKey),
			openai.WithBaseURL(config.Cfg.Model.BaseURL),
			openai.WithHTTPClient(utils.DefaultHTTPClient()),
		)
		if err != nil {
			return fmt.Errorf("failed to create llm client: %v", err)
		}
		llm = client
	}

	Instance = &Titler{
		llm:      llm,
		store:    store,
		taskChan: make(chan TitleTask, taskChanSize),
	}
	return nil
}

// Run 启动进程内worker，消费channel中的任务
func (t *Titler) Run() {
	ctx := context.Background()
	for i := 1; i <= workerNum; i++ {
		go t.worker(ctx, i)
	}
}

// Dispatch 分发标题任务
func (t *Titler) Dispatch(ctx context.Context, task TitleTask) {
	if t.llm == nil {
		return
	}

	if mq.Ready() {
		err := mq.SendMessage(ctx, &mq.Message{
			Topic:   mq.TopicChatSession,
			Tag:     mq.TagSessionTitle,
			Payload: task,
		})
		if err != nil {
			slog.Error("Failed to dispatch title task to MQ", "session_id", task.SessionID, "err", err)
		}
		return
	}

	select {
	case t.taskChan <- task:
	default:
		slog.Warn("Title task queue full, dropping task", "session_id", task.SessionID)
	}
}

// HandleTitleMessage MQ消费入口
func HandleTitleMessage(ctx context.Context, msg *primitive.MessageExt) error {
	var task TitleTask
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		return fmt.Errorf("failed to unmarshal title task: %v", err)
	}
	return Instance.Handle(ctx, task)
}

func (t *Titler) worker(ctx context.Context, id int) {
	slog.Info("Starting title worker", "worker_id", id)
	for task := range t.taskChan {
		if err := t.Handle(ctx, task); err != nil {
			slog.Error("Failed to generate session title",
				"session_id", task.SessionID,
				"err", err,
			)
		}
	}
}

// Handle 生成并写回会话标题
func (t *Titler) Handle(ctx context.Context, task TitleTask) error {
	messages, err := t.store.GetSessionMessages(ctx, task.Owner, task.SessionID, contextMessageLimit)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	prompt, err := t.buildPrompt(messages)
	if err != nil {
		return err
	}

	title, err := retry.DoWithData(
		func() (string, error) {
			return llms.GenerateFromSinglePrompt(ctx, t.llm, prompt)
		},
		retry.Context(ctx),
		retry.Attempts(titleAttempts),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		return fmt.Errorf("llm call error: %w", err)
	}

	title = sanitizeTitle(title)
	if title == "" {
		return nil
	}
	return t.store.UpdateSessionTitle(ctx, task.Owner, task.SessionID, title)
}

func (t *Titler) buildPrompt(messages []model.Message) (string, error) {
	type entry struct {
		Role    string
		Content string
	}
	data := struct {
		Messages []entry
	}{}
	for _, msg := range messages {
		data.Messages = append(data.Messages, entry{Role: msg.Role, Content: msg.Content})
	}

	var buf bytes.Buffer
	if err := titlePromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %v", err)
	}
	return buf.String(), nil
}

func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"“”'`)
	if idx := strings.IndexByte(title, '\n'); idx != -1 {
		title = title[:idx]
	}
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes])
	}
	return strings.TrimSpace(title)
}
