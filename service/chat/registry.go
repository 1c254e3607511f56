package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"payslip-agent-backend/dao"

	"github.com/tmc/langchaingo/llms"
)

const (
	toolListPayslips     = "listPayslips"
	toolGetPayslipDetail = "getPayslipDetail"
)

// 模型可以对查询未命中做出对话式反应，因此未找到和未知工具
// 都作为结构化结果返回，而不是错误
var (
	payloadNotFound    = json.RawMessage(`{"error":"Payslip not found"}`)
	payloadUnknownTool = json.RawMessage(`{"error":"Unknown tool"}`)
)

// Registry 模型可调用的封闭工具集
// 调用者身份由编排器注入，模型无法伪造
type Registry struct {
	store dao.Store
}

func NewRegistry(store dao.Store) *Registry {
	return &Registry{store: store}
}

// Definitions 工具的函数声明，随每次模型调用下发
func (r *Registry) Definitions() []llms.Tool {
	return []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        toolListPayslips,
				Description: "List the user's payslips, optionally filtered by year and month.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"year": map[string]any{
							"type":        "integer",
							"description": "The 4-digit year (e.g. 2023); omit or pass 0 for all years",
						},
						"month": map[string]any{
							"type":        "integer",
							"description": "The month number (1-12); omit or pass 0 for all months",
						},
					},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        toolGetPayslipDetail,
				Description: "Get detailed information about a specific payslip by ID.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "The unique ID of the payslip",
						},
					},
					"required": []string{"id"},
				},
			},
		},
	}
}

// Dispatch 执行一次工具调用，参数先经校验再落到存储查询
// 返回的payload原样转发给模型；只有底层存储故障才返回error
func (r *Registry) Dispatch(ctx context.Context, owner, name, rawArgs string) (json.RawMessage, error) {
	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return argumentErrorPayload(fmt.Sprintf("arguments are not a valid JSON object: %v", err)), nil
		}
	}

	switch name {
	case toolListPayslips:
		return r.listPayslips(ctx, owner, args)
	case toolGetPayslipDetail:
		return r.getPayslipDetail(ctx, owner, args)
	default:
		return payloadUnknownTool, nil
	}
}

func (r *Registry) listPayslips(ctx context.Context, owner string, args map[string]any) (json.RawMessage, error) {
	year, ok := intArg(args, "year")
	if !ok || (year != 0 && (year < 1000 || year > 9999)) {
		return argumentErrorPayload("year must be a 4-digit integer, or 0 for no filter"), nil
	}
	month, ok := intArg(args, "month")
	if !ok || month < 0 || month > 12 {
		return argumentErrorPayload("month must be an integer between 1 and 12, or 0 for no filter"), nil
	}

	payslips, err := r.store.ListPayslips(ctx, owner, year, month)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", toolListPayslips, err)
	}

	entries := make([]map[string]any, 0, len(payslips))
	for _, p := range payslips {
		entries = append(entries, map[string]any{
			"id":       p.ID,
			"date":     p.Date,
			"net":      p.NetPay,
			"employer": p.Employer,
		})
	}

	return mustMarshal(map[string]any{
		"count":    len(payslips),
		"payslips": entries,
	}), nil
}

func (r *Registry) getPayslipDetail(ctx context.Context, owner string, args map[string]any) (json.RawMessage, error) {
	id, _ := args["id"].(string)
	if id == "" {
		return argumentErrorPayload("id must be a non-empty string"), nil
	}

	payslip, err := r.store.GetPayslipByID(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", toolGetPayslipDetail, err)
	}
	if payslip == nil {
		return payloadNotFound, nil
	}
	return mustMarshal(payslip), nil
}

// intArg 工具参数经JSON解码后数字都是float64，这里收敛为整数
// 缺省返回0，表示过滤条件未给出
func intArg(args map[string]any, key string) (int, bool) {
	v, exists := args[key]
	if !exists || v == nil {
		return 0, true
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func argumentErrorPayload(msg string) json.RawMessage {
	return mustMarshal(map[string]string{"error": "invalid arguments: " + msg})
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{"error":"failed to encode tool result"}`)
	}
	return data
}
