package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"payslip-agent-backend/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prev := config.Cfg
	config.Cfg = &config.Config{JWT: config.JWTConfig{SecretKey: "test-secret"}}
	t.Cleanup(func() { config.Cfg = prev })

	r := gin.New()
	r.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("email"))
	})
	return r
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	r := setupRouter(t)

	token, err := GenerateToken("alice@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice@example.com", w.Body.String())
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareBadFormat(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareTamperedToken(t *testing.T) {
	r := setupRouter(t)

	token, err := GenerateToken("alice@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
