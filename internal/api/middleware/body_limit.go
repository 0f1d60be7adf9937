package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cslogbook/backend/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// 上传接口的上限由 storage.max_upload_mb 决定，其余接口使用较小的全局上限
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.TooLarge(c, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		var tooLarge *http.MaxBytesError
		for _, err := range c.Errors {
			if errors.As(err.Err, &tooLarge) {
				response.TooLarge(c, 10005, "请求体过大")
				return
			}
		}
	}
}
