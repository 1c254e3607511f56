package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Payslip 用户提交的一条工资单记录
// 建立联合索引 (owner_id, date)
type Payslip struct {
	ID       string  `gorm:"primarykey;size:64" json:"id"`
	OwnerID  string  `gorm:"not null;index:idx_owner_date" json:"uid"`
	Period   string  `json:"period"`
	Date     string  `gorm:"not null;index:idx_owner_date" json:"date"`
	NetPay   float64 `json:"netPay"`
	GrossPay float64 `json:"grossPay"`
	Tax      float64 `json:"tax"`
	Employer string  `json:"employer"`

	// 图片在OSS上的完整路径，不包含bucket名称
	ImageRef string `json:"imageUrl,omitempty"`

	// 创建时间（毫秒时间戳）
	CreatedAt int64 `gorm:"autoCreateTime:milli" json:"createdAt"`
}

func (Payslip) TableName() string {
	return "payslip"
}

// PartialPayslip 模型从工资单图片中提取出的字段，允许缺失
type PartialPayslip struct {
	Employer string `json:"employer"`
	Date     string `json:"date"`
	Period   string `json:"period"`
	NetPay   Amount `json:"netPay"`
	GrossPay Amount `json:"grossPay"`
	Tax      Amount `json:"tax"`
}

// Amount 金额字段，无效输入一律置0而不报错
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*a = 0
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*a = 0
			return nil
		}
		// 去除千分位符和货币符号后再解析
		str = strings.Map(func(r rune) rune {
			if r == ',' || r == ' ' {
				return -1
			}
			return r
		}, str)
		str = strings.TrimLeft(str, "$¥€£")
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			*a = 0
			return nil
		}
		*a = Amount(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*a = 0
		return nil
	}
	*a = Amount(v)
	return nil
}

func (a Amount) Float64() float64 {
	return float64(a)
}
