package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cslogbook/backend/config"
	"cslogbook/backend/internal/api/handler"
	"cslogbook/backend/internal/api/middleware"
	"cslogbook/backend/pkg/jwt"
	"cslogbook/backend/pkg/redis"
)

// 非上传接口的请求体上限
const defaultBodyLimit = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// gatherer 为 /metrics 暴露的指标来源，通常与 reg 为同一个 Registry
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	reg prometheus.Registerer,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidators()

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, "/health", "/metrics"))
	r.Use(middleware.NewMetricsBuilder(reg).Build())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 / 指标 ──
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	uploadLimit := cfg.Storage.MaxUploadMB<<20 + defaultBodyLimit
	writeLimit := middleware.RateLimit(rdb, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window)
	staff := middleware.RoleAuth(jwt.RoleAdmin, jwt.RoleTeacher)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 日历订阅供日历客户端直接拉取，无需认证
		v1.GET("/deadlines/calendar.ics", h.Deadline.Calendar)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 项目：系统测试申请与阶段转换
			projects := authorized.Group("/projects")
			{
				projects.GET("/:id/test-request", h.TestRequest.GetLatest)
				projects.POST("/:id/test-request", middleware.BodyLimit(uploadLimit), writeLimit,
					middleware.RoleAuth(jwt.RoleStudent), h.TestRequest.Submit)
				projects.POST("/:id/test-request/advisor-decision", middleware.BodyLimit(defaultBodyLimit), writeLimit,
					middleware.RoleAuth(jwt.RoleTeacher), h.TestRequest.AdvisorDecision)
				projects.POST("/:id/test-request/staff-decision", middleware.BodyLimit(defaultBodyLimit), writeLimit,
					staff, h.TestRequest.StaffDecision)
				projects.POST("/:id/test-request/evidence", middleware.BodyLimit(uploadLimit), writeLimit,
					middleware.RoleAuth(jwt.RoleStudent), h.TestRequest.UploadEvidence)

				projects.GET("/:id/transition-status", h.Transition.Status)
				projects.GET("/:id/transition-history", h.Transition.History)
				projects.POST("/:id/transition-to-project2", writeLimit, staff, h.Transition.Transition)
				projects.POST("/auto-transition", writeLimit, staff, h.Transition.AutoTransition)
			}

			// 待办列表
			queues := authorized.Group("/test-requests")
			{
				queues.GET("/advisor-queue", middleware.RoleAuth(jwt.RoleTeacher), h.TestRequest.AdvisorQueue)
				queues.GET("/staff-queue", staff, h.TestRequest.StaffQueue)
			}

			// 截止日期
			deadlines := authorized.Group("/deadlines")
			{
				deadlines.GET("", h.Deadline.List)
				deadlines.GET("/late-status", h.Deadline.LateStatus)
				deadlines.POST("", middleware.BodyLimit(defaultBodyLimit), staff, h.Deadline.Create)
			}

			// 流程参数
			systemConfig := authorized.Group("/system-config")
			{
				systemConfig.GET("", h.SystemConfig.GetConfig)
				systemConfig.PUT("", middleware.BodyLimit(defaultBodyLimit), staff, h.SystemConfig.UpdateConfig)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 40400, "message": "接口不存在"})
	})

	return r
}
