package controller

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"payslip-agent-backend/dao"
	"payslip-agent-backend/model"
	"payslip-agent-backend/request"
	"payslip-agent-backend/response"
	"payslip-agent-backend/service/extraction"
	"payslip-agent-backend/service/imagestore"

	"github.com/gin-gonic/gin"
)

// ExtractPayslip 接收工资单图片，返回模型提取出的字段
// 提取失败不阻断用户，前端降级到空表单手动录入
func ExtractPayslip(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		slog.Error(ErrGetImageFile.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrGetImageFile.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error(ErrGetImageFile.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrGetImageFile.Error(),
		})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		slog.Error(ErrGetImageFile.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrGetImageFile.Error(),
		})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	extractor, err := extraction.NewExtractor()
	if err != nil {
		slog.Error(ErrExtractPayslip.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrExtractPayslip.Error(),
		})
		return
	}

	partial, err := extractor.Extract(c.Request.Context(), image, mimeType)
	if err != nil {
		slog.Error(ErrExtractPayslip.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrExtractPayslip.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.ExtractPayslipResponse{
			Payslip: *partial,
		},
	})
}

// CreatePayslip 用户核对提取结果后保存
// 缺省字段按原始页面的口径补全，金额无效时已被coerce为0
func CreatePayslip(c *gin.Context) {
	var req request.CreatePayslipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	email := c.GetString("email")
	now := time.Now()

	payslip := &model.Payslip{
		OwnerID:  email,
		Employer: req.Employer,
		Period:   req.Period,
		Date:     req.Date,
		NetPay:   req.NetPay.Float64(),
		GrossPay: req.GrossPay.Float64(),
		Tax:      req.Tax.Float64(),
		ImageRef: req.ImageRef,
	}
	if payslip.Employer == "" {
		payslip.Employer = "Unknown"
	}
	if payslip.Period == "" {
		payslip.Period = now.Format("2006-01")
	}
	if payslip.Date == "" {
		payslip.Date = now.Format("2006-01-02")
	}

	id, err := dao.Default.CreatePayslip(c.Request.Context(), payslip)
	if err != nil {
		slog.Error(ErrCreatePayslip.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrCreatePayslip.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: response.CreatePayslipResponse{
			ID: id,
		},
	})
}

func GetPayslips(c *gin.Context) {
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	month, ok := queryInt(c, "month")
	if !ok {
		return
	}

	email := c.GetString("email")
	payslips, err := dao.Default.ListPayslips(c.Request.Context(), email, year, month)
	if err != nil {
		slog.Error(ErrGetPayslips.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetPayslips.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.GetPayslipsResponse{
			Count:    len(payslips),
			Payslips: payslips,
		},
	})
}

func GetPayslipDetail(c *gin.Context) {
	email := c.GetString("email")
	id := c.Param("id")

	payslip, err := dao.Default.GetPayslipByID(c.Request.Context(), email, id)
	if err != nil {
		slog.Error(ErrGetPayslips.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetPayslips.Error(),
		})
		return
	}
	if payslip == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: ErrPayslipNotFound.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: payslip,
	})
}

// GetPolicyToken 前端直传工资单图片至OSS的凭证
func GetPolicyToken(c *gin.Context) {
	if !imagestore.Enabled() {
		c.AbortWithStatusJSON(http.StatusNotImplemented, response.Response{
			Msg: ErrOSSNotConfigured.Error(),
		})
		return
	}

	email := c.GetString("email")
	policyToken, err := imagestore.Instance.GeneratePolicyToken(email)
	if err != nil {
		slog.Error(ErrGeneratePolicyToken.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGeneratePolicyToken.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: policyToken,
	})
}

// GetPayslipImageLink 生成查看原始图片的临时链接
func GetPayslipImageLink(c *gin.Context) {
	if !imagestore.Enabled() {
		c.AbortWithStatusJSON(http.StatusNotImplemented, response.Response{
			Msg: ErrOSSNotConfigured.Error(),
		})
		return
	}

	email := c.GetString("email")
	id := c.Param("id")

	payslip, err := dao.Default.GetPayslipByID(c.Request.Context(), email, id)
	if err != nil {
		slog.Error(ErrGetImageLink.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetImageLink.Error(),
		})
		return
	}
	if payslip == nil || payslip.ImageRef == "" {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: ErrPayslipNotFound.Error(),
		})
		return
	}

	url, err := imagestore.Instance.GeneratePresignedURL(c.Request.Context(), payslip.ImageRef)
	if err != nil {
		slog.Error(ErrGetImageLink.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetImageLink.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.GetImageLinkResponse{
			URL: url,
		},
	})
}

// queryInt 解析可选的整数查询参数，非法时直接写400响应
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		slog.Error(ErrParseRequest.Error(), "param", name, "value", raw)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return 0, false
	}
	return v, true
}
