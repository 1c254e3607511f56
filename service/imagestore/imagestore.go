package imagestore

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"payslip-agent-backend/config"
	"payslip-agent-backend/response"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	osscredentials "github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"github.com/aliyun/credentials-go/credentials"
)

const (
	product = "oss"

	policyExpire  = 1 * time.Hour
	presignExpire = 15 * time.Minute

	// 直传图片的大小上限
	maxUploadBytes = 10 << 20
)

var ErrNotConfigured = errors.New("oss is not configured")

// Client 工资单图片的OSS存取：前端直传凭证 + 查看时的临时链接
type Client struct {
	region    string
	bucket    string
	uploadDir string
	ossClient *oss.Client
	cred      credentials.Credential
}

// Instance 未配置OSS时保持nil，图片引用留空
var Instance *Client

func Init() error {
	if !config.Cfg.OSSEnabled() {
		slog.Info("OSS not configured, payslip images will not be stored")
		return nil
	}

	cred, err := credentials.NewCredential(nil)
	if err != nil {
		return fmt.Errorf("failed to load aliyun credentials: %v", err)
	}

	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(osscredentials.NewEnvironmentVariableCredentialsProvider()).
		WithRegion(config.Cfg.OSS.Region)

	Instance = &Client{
		region:    config.Cfg.OSS.Region,
		bucket:    config.Cfg.OSS.Bucket,
		uploadDir: config.Cfg.OSS.UploadDir,
		ossClient: oss.NewClient(cfg),
		cred:      cred,
	}
	return nil
}

// Enabled 图片存储是否可用
func Enabled() bool {
	return Instance != nil
}

// GeneratePolicyToken 计算前端直传所需的V4签名Post Policy
// 上传路径限定在当前用户的目录下
func (c *Client) GeneratePolicyToken(owner string) (*response.GetPolicyTokenResponse, error) {
	model, err := c.cred.GetCredential()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %v", err)
	}
	accessKeyID := deref(model.AccessKeyId)
	accessKeySecret := deref(model.AccessKeySecret)
	securityToken := deref(model.SecurityToken)

	utcNow := time.Now().UTC()
	date := utcNow.Format("20060102")
	ossDate := utcNow.Format("20060102T150405Z")
	credential := fmt.Sprintf("%s/%s/%s/%s/aliyun_v4_request", accessKeyID, date, c.region, product)
	dir := fmt.Sprintf("%s/%s/", c.uploadDir, owner)

	conditions := []any{
		map[string]string{"bucket": c.bucket},
		map[string]string{"x-oss-signature-version": "OSS4-HMAC-SHA256"},
		map[string]string{"x-oss-credential": credential},
		map[string]string{"x-oss-date": ossDate},
		[]any{"starts-with", "$key", dir},
		[]any{"content-length-range", 1, maxUploadBytes},
	}
	if securityToken != "" {
		conditions = append(conditions, map[string]string{"x-oss-security-token": securityToken})
	}

	policy := map[string]any{
		"expiration": utcNow.Add(policyExpire).Format("2006-01-02T15:04:05.000Z"),
		"conditions": conditions,
	}
	policyJSON, err := json.Marshal(policy)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal policy: %v", err)
	}
	stringToSign := base64.StdEncoding.EncodeToString(policyJSON)

	// V4签名密钥派生链
	signingKey := hmacSHA256([]byte("aliyun_v4"+accessKeySecret), []byte(date))
	signingKey = hmacSHA256(signingKey, []byte(c.region))
	signingKey = hmacSHA256(signingKey, []byte(product))
	signingKey = hmacSHA256(signingKey, []byte("aliyun_v4_request"))
	signature := hex.EncodeToString(hmacSHA256(signingKey, []byte(stringToSign)))

	return &response.GetPolicyTokenResponse{
		Policy:           stringToSign,
		SecurityToken:    securityToken,
		SignatureVersion: "OSS4-HMAC-SHA256",
		Credential:       credential,
		Date:             ossDate,
		Signature:        signature,
		Host:             fmt.Sprintf("https://%s.oss-%s.aliyuncs.com", c.bucket, c.region),
		Dir:              dir,
	}, nil
}

// GeneratePresignedURL 生成查看图片的临时链接
func (c *Client) GeneratePresignedURL(ctx context.Context, objectName string) (string, error) {
	result, err := c.ossClient.Presign(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(c.bucket),
		Key:    oss.Ptr(objectName),
	}, oss.PresignExpires(presignExpire))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %v", objectName, err)
	}
	return result.URL, nil
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
