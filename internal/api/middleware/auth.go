package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"cslogbook/backend/pkg/jwt"
	"cslogbook/backend/pkg/redis"
	"cslogbook/backend/pkg/response"
)

// 上下文键
const (
	ClaimsKey   = "claims"
	UserIDKey   = "user_id"
	RoleKey     = "role"
	TokenJTIKey = "token_jti"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
// rdb 为 nil 时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if !validIdentity(claims) {
			response.Unauthorized(c, 10002, "Token 身份信息不完整")
			c.Abort()
			return
		}

		if rdb != nil && claims.ID != "" {
			blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			// Redis 出错时降级放行
			if err == nil && blacklisted {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Set(TokenJTIKey, claims.ID)

		c.Next()
	}
}

// validIdentity 学生必须携带 student_id，教师必须携带 teacher_id
func validIdentity(claims *jwt.Claims) bool {
	switch claims.Role {
	case jwt.RoleStudent:
		return claims.StudentID != nil
	case jwt.RoleTeacher:
		return claims.TeacherID != nil
	case jwt.RoleAdmin:
		return true
	}
	return false
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一；细粒度权限（如教务支持教师）由 Service 层判断
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(RoleKey)
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
