package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"cslogbook/backend/config"
	"cslogbook/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "middleware-test-secret-0123456789",
		Issuer:         "cslogbook-test",
		AccessTokenTTL: time.Hour,
	})
}

func protectedRouter(mgr *jwt.Manager, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuth(mgr, nil)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64(UserIDKey), "role": c.GetString(RoleKey)})
	})
	r.GET("/p", handlers...)
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	mgr := newManager()
	sid := int64(6401)
	token, err := mgr.GenerateAccessToken(jwt.Identity{UserID: 11, Role: jwt.RoleStudent, StudentID: &sid})
	require.NoError(t, err)
	r := protectedRouter(mgr)

	w := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":11`)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer not-a-token").Code)
}

func TestJWTAuth_IncompleteIdentity(t *testing.T) {
	mgr := newManager()
	token, err := mgr.GenerateAccessToken(jwt.Identity{UserID: 21, Role: jwt.RoleTeacher})
	require.NoError(t, err)

	w := get(protectedRouter(mgr), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleAuth(t *testing.T) {
	mgr := newManager()
	tid := int64(9001)
	teacher, err := mgr.GenerateAccessToken(jwt.Identity{UserID: 21, Role: jwt.RoleTeacher, TeacherID: &tid})
	require.NoError(t, err)
	admin, err := mgr.GenerateAccessToken(jwt.Identity{UserID: 1, Role: jwt.RoleAdmin})
	require.NoError(t, err)

	r := protectedRouter(mgr, RoleAuth(jwt.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+teacher).Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+admin).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/p", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("X-Request-ID", "gateway-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "gateway-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 100))
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
}

func TestLogger_SkipsScrapePaths(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core), "/health", "/metrics"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/metrics", "/p"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	// 成功的健康检查不记录，出错时照常记录
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/metrics", entries[0].ContextMap()["path"])
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	assert.Equal(t, "/p", entries[1].ContextMap()["path"])
	assert.NotEmpty(t, entries[1].ContextMap()["request_id"])
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/p", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/p", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/p", strings.NewReader("0123")))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMetricsBuilder_UsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := NewMetricsBuilder(reg)

	r := gin.New()
	r.Use(b.Build())
	r.GET("/projects/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/projects/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(b.counterVec.WithLabelValues(http.MethodGet, "/projects/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.counterVec.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://cslogbook.example/"}))
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/p", nil)
	req.Header.Set("Origin", "https://cslogbook.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://cslogbook.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
