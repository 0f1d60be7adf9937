package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"cslogbook/backend/config"
	"cslogbook/backend/internal/api/handler"
	"cslogbook/backend/internal/service"
	"cslogbook/backend/pkg/jwt"
)

func setupTestRouter(t *testing.T) (http.Handler, *jwt.Manager) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			CORS:      config.CORSConfig{AllowOrigins: []string{"http://localhost:5173"}},
			RateLimit: config.RateLimitConfig{Limit: 30, Window: time.Minute},
		},
		Auth:    config.AuthConfig{JWTSecret: "router-test-secret-0123", Issuer: "cslogbook", AccessTokenTTL: time.Minute},
		Storage: config.StorageConfig{UploadDir: t.TempDir(), MaxUploadMB: 1},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	logger := zap.NewNop()

	h := handler.NewHandler(&service.Service{}, handler.NewUploadStore(cfg.Storage, logger), nil, logger)
	reg := prometheus.NewRegistry()
	return Setup(cfg, h, jwtMgr, nil, reg, reg, logger), jwtMgr
}

func TestSetup_Routes(t *testing.T) {
	r, jwtMgr := setupTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  bool
		want   int
	}{
		{"health", http.MethodGet, "/health", false, http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", false, http.StatusOK},
		{"requires auth", http.MethodGet, "/api/v1/projects/1/test-request", false, http.StatusUnauthorized},
		{"student cannot decide", http.MethodPost, "/api/v1/projects/1/test-request/staff-decision", true, http.StatusForbidden},
		{"student cannot auto transition", http.MethodPost, "/api/v1/projects/auto-transition", true, http.StatusForbidden},
		{"me", http.MethodGet, "/api/v1/auth/me", true, http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/nope", false, http.StatusNotFound},
	}

	sid := int64(6401)
	token, err := jwtMgr.GenerateAccessToken(jwt.Identity{UserID: 11, Role: jwt.RoleStudent, StudentID: &sid})
	assert.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
