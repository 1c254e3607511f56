package chat

import (
	"context"
	"encoding/json"
	"testing"

	"payslip-agent-backend/dao"
	"payslip-agent-backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) (dao.Store, []string) {
	t.Helper()
	store := dao.NewMemoryStore()
	ctx := context.Background()

	var ids []string
	for _, p := range []struct {
		date string
		net  float64
	}{
		{"2023-01-10", 1000},
		{"2023-03-05", 1100},
		{"2022-12-01", 900},
	} {
		id, err := store.CreatePayslip(ctx, &model.Payslip{
			OwnerID:  "alice",
			Date:     p.date,
			Period:   p.date[:7],
			NetPay:   p.net,
			GrossPay: p.net * 1.3,
			Tax:      p.net * 0.3,
			Employer: "Acme",
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return store, ids
}

func dispatch(t *testing.T, r *Registry, owner, name, args string) map[string]any {
	t.Helper()
	payload, err := r.Dispatch(context.Background(), owner, name, args)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	return decoded
}

func TestDispatchListPayslips(t *testing.T) {
	store, _ := seedStore(t)
	r := NewRegistry(store)

	result := dispatch(t, r, "alice", toolListPayslips, `{}`)
	assert.Equal(t, float64(3), result["count"])

	payslips := result["payslips"].([]any)
	require.Len(t, payslips, 3)
	first := payslips[0].(map[string]any)
	assert.Equal(t, "2023-03-05", first["date"])
	assert.Equal(t, "Acme", first["employer"])
	assert.Equal(t, float64(1100), first["net"])
}

func TestDispatchListPayslipsFiltered(t *testing.T) {
	store, _ := seedStore(t)
	r := NewRegistry(store)

	result := dispatch(t, r, "alice", toolListPayslips, `{"year":2023,"month":1}`)
	assert.Equal(t, float64(1), result["count"])
	payslips := result["payslips"].([]any)
	require.Len(t, payslips, 1)
	assert.Equal(t, "2023-01-10", payslips[0].(map[string]any)["date"])
}

func TestDispatchListPayslipsExplicitZeroMeansNoFilter(t *testing.T) {
	store, _ := seedStore(t)
	r := NewRegistry(store)

	result := dispatch(t, r, "alice", toolListPayslips, `{"year":0,"month":0}`)
	assert.Equal(t, float64(3), result["count"])
}

func TestDispatchListPayslipsInvalidArgs(t *testing.T) {
	store, _ := seedStore(t)
	r := NewRegistry(store)

	for _, args := range []string{
		`{"year":23}`,
		`{"month":13}`,
		`{"year":"2023"}`,
		`{"month":1.5}`,
		`[1,2]`,
	} {
		result := dispatch(t, r, "alice", toolListPayslips, args)
		assert.Contains(t, result["error"], "invalid arguments", "args: %s", args)
	}
}

func TestDispatchGetPayslipDetail(t *testing.T) {
	store, ids := seedStore(t)
	r := NewRegistry(store)

	result := dispatch(t, r, "alice", toolGetPayslipDetail, `{"id":"`+ids[0]+`"}`)
	assert.Equal(t, ids[0], result["id"])
	assert.Equal(t, "2023-01-10", result["date"])
	assert.Equal(t, float64(1000), result["netPay"])
}

func TestDispatchGetPayslipDetailNotFound(t *testing.T) {
	store, _ := seedStore(t)
	r := NewRegistry(store)

	// 未命中是结构化结果而不是错误，模型要能继续对话
	result := dispatch(t, r, "alice", toolGetPayslipDetail, `{"id":"no-such-id"}`)
	assert.Equal(t, "Payslip not found", result["error"])
}

func TestDispatchOwnerIsolation(t *testing.T) {
	store, ids := seedStore(t)
	r := NewRegistry(store)

	result := dispatch(t, r, "bob", toolListPayslips, `{}`)
	assert.Equal(t, float64(0), result["count"])

	result = dispatch(t, r, "bob", toolGetPayslipDetail, `{"id":"`+ids[0]+`"}`)
	assert.Equal(t, "Payslip not found", result["error"])
}

func TestDispatchUnknownTool(t *testing.T) {
	store, _ := seedStore(t)
	r := NewRegistry(store)

	result := dispatch(t, r, "alice", "dropTables", `{}`)
	assert.Equal(t, "Unknown tool", result["error"])
}
