package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	require.NoError(t, Load(filepath.Join(t.TempDir(), "nope.yaml")))

	assert.Equal(t, "8080", Cfg.Server.Port)
	assert.Equal(t, "qwen-plus", Cfg.Model.ChatModel)
	assert.Equal(t, "qwen-vl-plus", Cfg.Model.VisionModel)
	assert.Equal(t, 8, Cfg.Model.MaxToolRounds)
	assert.Equal(t, 300, Cfg.Model.TurnTimeout)
	assert.True(t, Cfg.DemoMode())
	assert.False(t, Cfg.OSSEnabled())
	assert.False(t, Cfg.MQEnabled())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
model:
  api_key: file-key
  max_tool_rounds: 3
oss:
  region: cn-hangzhou
  bucket: payslip-images
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, Load(path))

	assert.Equal(t, "9090", Cfg.Server.Port)
	assert.Equal(t, "file-key", Cfg.Model.APIKey)
	assert.Equal(t, 3, Cfg.Model.MaxToolRounds)
	assert.True(t, Cfg.OSSEnabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  api_key: file-key\n"), 0o600))

	t.Setenv("MODEL_API_KEY", "env-key")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/payslip")
	require.NoError(t, Load(path))

	assert.Equal(t, "env-key", Cfg.Model.APIKey)
	assert.False(t, Cfg.DemoMode())
}
