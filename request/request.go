package request

import "payslip-agent-backend/model"

type UserRegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

type UserLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

type UpdateSessionTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreatePayslipRequest 用户确认提取结果后的保存请求
// 金额字段使用model.Amount，无效输入置0而不拒绝
type CreatePayslipRequest struct {
	Employer string       `json:"employer"`
	Period   string       `json:"period"`
	Date     string       `json:"date"`
	NetPay   model.Amount `json:"netPay"`
	GrossPay model.Amount `json:"grossPay"`
	Tax      model.Amount `json:"tax"`
	ImageRef string       `json:"imageUrl"`
}
