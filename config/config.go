package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = "8080"
	defaultBaseURL       = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	defaultChatModel     = "qwen-plus"
	defaultVisionModel   = "qwen-vl-plus"
	defaultMaxToolRounds = 8
	defaultTurnTimeout   = 300
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	MySQL  MySQLConfig  `yaml:"mysql"`
	JWT    JWTConfig    `yaml:"jwt"`
	Model  ModelConfig  `yaml:"model"`
	OSS    OSSConfig    `yaml:"oss"`
	MQ     MQConfig     `yaml:"mq"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type MySQLConfig struct {
	// DSN 为空时启用演示模式，使用内存存储
	DSN string `yaml:"dsn"`
}

type JWTConfig struct {
	SecretKey string `yaml:"secret_key"`
}

type ModelConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	ChatModel     string `yaml:"chat_model"`
	VisionModel   string `yaml:"vision_model"`
	MaxToolRounds int    `yaml:"max_tool_rounds"`

	// 单轮对话的超时时间（秒）
	TurnTimeout int `yaml:"turn_timeout"`
}

type OSSConfig struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	UploadDir string `yaml:"upload_dir"`
}

type MQConfig struct {
	NameServer []string `yaml:"name_server"`
}

// Cfg 全局配置实例
var Cfg *Config

func Load(path string) error {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file: %v", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %v", err)
	}

	// 敏感配置支持环境变量覆盖
	if v := os.Getenv("MODEL_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		cfg.JWT.SecretKey = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.MySQL.DSN = v
	}

	applyDefaults(cfg)

	Cfg = cfg
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultPort
	}
	if cfg.Model.BaseURL == "" {
		cfg.Model.BaseURL = defaultBaseURL
	}
	if cfg.Model.ChatModel == "" {
		cfg.Model.ChatModel = defaultChatModel
	}
	if cfg.Model.VisionModel == "" {
		cfg.Model.VisionModel = defaultVisionModel
	}
	if cfg.Model.MaxToolRounds <= 0 {
		cfg.Model.MaxToolRounds = defaultMaxToolRounds
	}
	if cfg.Model.TurnTimeout <= 0 {
		cfg.Model.TurnTimeout = defaultTurnTimeout
	}
}

// DemoMode 未配置MySQL时降级为内存存储的演示模式
func (c *Config) DemoMode() bool {
	return c.MySQL.DSN == ""
}

// OSSEnabled 图片存储是否可用
func (c *Config) OSSEnabled() bool {
	return c.OSS.Bucket != "" && c.OSS.Region != ""
}

// MQEnabled 是否通过RocketMQ分发后台任务
func (c *Config) MQEnabled() bool {
	return len(c.MQ.NameServer) > 0
}
