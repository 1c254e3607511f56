package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountCoercion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"number", `1234.56`, 1234.56},
		{"integer", `1000`, 1000},
		{"numeric string", `"1234.56"`, 1234.56},
		{"string with thousands separator", `"1,234.56"`, 1234.56},
		{"string with currency symbol", `"$1234.56"`, 1234.56},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
		{"garbage string", `"n/a"`, 0},
		{"boolean", `true`, 0},
		{"object", `{"v":1}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.in), &a))
			assert.Equal(t, tt.want, a.Float64())
		})
	}
}

func TestPartialPayslipDecode(t *testing.T) {
	raw := `{"employer":"Acme","date":"2024-01-05","period":"2024-01","netPay":1000,"grossPay":1300,"tax":300}`

	var partial PartialPayslip
	require.NoError(t, json.Unmarshal([]byte(raw), &partial))
	assert.Equal(t, "Acme", partial.Employer)
	assert.Equal(t, "2024-01-05", partial.Date)
	assert.Equal(t, "2024-01", partial.Period)
	assert.Equal(t, float64(1000), partial.NetPay.Float64())
	assert.Equal(t, float64(1300), partial.GrossPay.Float64())
	assert.Equal(t, float64(300), partial.Tax.Float64())
}
