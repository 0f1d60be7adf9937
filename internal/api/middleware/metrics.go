package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsBuilder HTTP 请求指标中间件
type MetricsBuilder struct {
	summaryVec *prometheus.SummaryVec
	counterVec *prometheus.CounterVec
}

// NewMetricsBuilder 在 reg 上注册 HTTP 指标
func NewMetricsBuilder(reg prometheus.Registerer) *MetricsBuilder {
	f := promauto.With(reg)
	return &MetricsBuilder{
		summaryVec: f.NewSummaryVec(prometheus.SummaryOpts{
			Namespace: "cslogbook",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时（秒）",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.99: 0.001,
			},
		}, []string{"method", "path", "status_code"}),
		counterVec: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cslogbook",
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		}, []string{"method", "path", "status_code"}),
	}
}

// Build 返回 gin 中间件；path 取路由模板，避免按 project id 产生高基数标签
func (b *MetricsBuilder) Build() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		b.summaryVec.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		b.counterVec.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
