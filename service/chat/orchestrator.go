package chat

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"text/template"
	"time"

	"payslip-agent-backend/config"
	"payslip-agent-backend/dao"
	"payslip-agent-backend/model"
	"payslip-agent-backend/utils"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/sync/errgroup"
)

var (
	ErrCredentialMissing = errors.New("model api key is not configured")
	ErrEmptyResponse     = errors.New("model returned an empty response")

	// ErrRoundLimit 单轮对话内工具回合数超过上限
	ErrRoundLimit = errors.New("tool round limit exceeded")
)

const fallbackAnswer = "I'm sorry, I couldn't process that."

//go:embed prompts/system.txt
var systemPromptText string

var systemPromptTmpl = template.Must(template.New("system").Parse(systemPromptText))

// 配置300s超时时间处理LLM长响应
var agentHTTPClient *http.Client = utils.NewHTTPClient(
	utils.WithTimeout(300 * time.Second),
)

// Orchestrator 驱动一次用户轮的完整状态机：
// 发送用户消息 -> 若干工具回合（并发执行、全量回传）-> 最终回答
// 每个会话同一时刻只有一轮在途，由上层禁止并发提交
type Orchestrator struct {
	llm       llms.Model
	registry  *Registry
	history   *History
	sink      EventSink
	owner     string
	maxRounds int
}

func NewOrchestrator(sink EventSink, store dao.Store, owner, sessionID string) (*Orchestrator, error) {
	if config.Cfg.Model.APIKey == "" {
		return nil, ErrCredentialMissing
	}

	llm, err := openai.New(
		openai.WithModel(config.Cfg.Model.ChatModel),
		openai.WithToken(config.Cfg.Model.APIKey),
		openai.WithBaseURL(config.Cfg.Model.BaseURL),
		openai.WithHTTPClient(agentHTTPClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %v", err)
	}

	return &Orchestrator{
		llm:       llm,
		registry:  NewRegistry(store),
		history:   NewHistory(store, owner, sessionID),
		sink:      sink,
		owner:     owner,
		maxRounds: config.Cfg.Model.MaxToolRounds,
	}, nil
}

// Turn 执行一次用户轮，返回最终回答
// 任何失败都会以模型口吻写入转录，保证用户不会面对无声的失败，
// 会话本身保持可用
func (o *Orchestrator) Turn(ctx context.Context, userText string) (string, error) {
	final, err := o.run(ctx, userText)
	if err != nil {
		errText := "Error: " + err.Error()
		if herr := o.history.AddAIMessage(ctx, errText, nil); herr != nil {
			slog.Error("Failed to record turn error in transcript", "err", herr)
		}
		return "", err
	}
	return final, nil
}

func (o *Orchestrator) run(ctx context.Context, userText string) (string, error) {
	msgs, err := o.history.Load(ctx)
	if err != nil {
		return "", err
	}

	system, err := o.systemPrompt()
	if err != nil {
		return "", err
	}
	msgs = append([]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, system)}, msgs...)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, userText))

	if err := o.history.AddUserMessage(ctx, userText); err != nil {
		return "", err
	}

	// 本轮全部工具调用结果，随最终回答一起落库
	var collected []model.ToolCallResult

	for rounds := 0; ; rounds++ {
		resp, err := o.llm.GenerateContent(ctx, msgs, llms.WithTools(o.registry.Definitions()))
		if err != nil {
			return "", fmt.Errorf("model call failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}

		choice := resp.Choices[0]
		if len(choice.ToolCalls) == 0 {
			final := choice.Content
			if final == "" {
				final = fallbackAnswer
			}
			if err := o.history.AddAIMessage(ctx, final, collected); err != nil {
				return "", err
			}
			o.sink.FinalAnswer(ctx, final)
			return final, nil
		}

		if rounds >= o.maxRounds {
			return "", ErrRoundLimit
		}

		results, err := o.runToolRound(ctx, choice.ToolCalls)
		if err != nil {
			return "", err
		}

		// 携带工具调用的assistant消息和批量结果消息成对追加，
		// 结果通过调用ID与请求一一对应
		assistantMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, call := range choice.ToolCalls {
			assistantMsg.Parts = append(assistantMsg.Parts, call)
		}
		msgs = append(msgs, assistantMsg)

		toolMsg := llms.MessageContent{Role: llms.ChatMessageTypeTool}
		for _, result := range results {
			toolMsg.Parts = append(toolMsg.Parts, llms.ToolCallResponse{
				ToolCallID: result.ID,
				Name:       result.Name,
				Content:    string(result.Result),
			})
		}
		msgs = append(msgs, toolMsg)

		o.sink.ToolCallResults(ctx, results)
		collected = append(collected, results...)
	}
}

// runToolRound 并发执行一个回合内的全部工具调用并等待收齐
// 任何一个调用失败则整个回合作废，不回传部分结果
// 占位事件在成功和失败路径上都恰好释放一次
func (o *Orchestrator) runToolRound(ctx context.Context, calls []llms.ToolCall) ([]model.ToolCallResult, error) {
	o.sink.ThinkingStarted(ctx)
	defer o.sink.ThinkingDone(ctx)

	results := make([]model.ToolCallResult, len(calls))
	g, gctx := errgroup.WithContext(ctx)

	for i, call := range calls {
		g.Go(func() error {
			if call.FunctionCall == nil {
				return fmt.Errorf("tool call %s has no function payload", call.ID)
			}

			payload, err := o.registry.Dispatch(gctx, o.owner, call.FunctionCall.Name, call.FunctionCall.Arguments)
			if err != nil {
				return err
			}

			results[i] = model.ToolCallResult{
				ID:     call.ID,
				Name:   call.FunctionCall.Name,
				Result: payload,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tool round aborted: %w", err)
	}
	return results, nil
}

func (o *Orchestrator) systemPrompt() (string, error) {
	var buf bytes.Buffer
	data := struct {
		CurrentDate string
	}{
		CurrentDate: time.Now().Format("2006-01-02"),
	}
	if err := systemPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render system prompt: %v", err)
	}
	return buf.String(), nil
}
