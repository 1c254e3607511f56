package extraction

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"payslip-agent-backend/config"
	"payslip-agent-backend/model"
	"payslip-agent-backend/utils"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	ErrCredentialMissing = errors.New("model api key is not configured")
	ErrExtraction        = errors.New("failed to extract payslip fields")
)

//go:embed prompts/extract.txt
var extractPrompt string

// 多模态提取调用的超时时间
var extractionHTTPClient *http.Client = utils.NewHTTPClient(
	utils.WithTimeout(120 * time.Second),
)

// Extractor 将工资单图片交给多模态模型，解析出结构化字段
type Extractor struct {
	llm llms.Model
}

func NewExtractor() (*Extractor, error) {
	if config.Cfg.Model.APIKey == "" {
		return nil, ErrCredentialMissing
	}

	llm, err := openai.New(
		openai.WithModel(config.Cfg.Model.VisionModel),
		openai.WithToken(config.Cfg.Model.APIKey),
		openai.WithBaseURL(config.Cfg.Model.BaseURL),
		openai.WithHTTPClient(extractionHTTPClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %v", err)
	}

	return &Extractor{llm: llm}, nil
}

// Extract 单轮调用，要求模型返回严格JSON
// 不做重试，失败时由调用方降级到手动录入
func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (*model.PartialPayslip, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, image),
				llms.TextPart(extractPrompt),
			},
		},
	}

	resp, err := e.llm.GenerateContent(ctx, content, llms.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty model response", ErrExtraction)
	}

	return parsePartialPayslip(resp.Choices[0].Content)
}

func parsePartialPayslip(text string) (*model.PartialPayslip, error) {
	text = trimCodeFence(text)

	var partial model.PartialPayslip
	if err := json.Unmarshal([]byte(text), &partial); err != nil {
		return nil, fmt.Errorf("%w: model output is not valid JSON: %v", ErrExtraction, err)
	}
	return &partial, nil
}

// 提示词已要求不输出markdown代码块，这里仍容忍一层围栏
func trimCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
