package response

import "payslip-agent-backend/model"

type ExtractPayslipResponse struct {
	Payslip model.PartialPayslip `json:"payslip"`
}

type CreatePayslipResponse struct {
	ID string `json:"id"`
}

type GetPayslipsResponse struct {
	Count    int             `json:"count"`
	Payslips []model.Payslip `json:"payslips"`
}

// GetPolicyTokenResponse 前端直传图片至OSS的凭证
type GetPolicyTokenResponse struct {
	Policy           string `json:"policy"`
	SecurityToken    string `json:"security_token,omitempty"`
	SignatureVersion string `json:"x_oss_signature_version"`
	Credential       string `json:"x_oss_credential"`
	Date             string `json:"x_oss_date"`
	Signature        string `json:"signature"`
	Host             string `json:"host"`
	Dir              string `json:"dir"`
}

type GetImageLinkResponse struct {
	URL string `json:"url"`
}
