package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cslogbook/backend/internal/api/middleware"
	"cslogbook/backend/internal/service"
	"cslogbook/backend/pkg/jwt"
	"cslogbook/backend/pkg/response"
)

// MustGetClaims 从 Gin 上下文中安全提取 JWT 声明。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.ClaimsKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// MustGetActor 将 JWT 声明转换为业务层的操作人
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return nil, false
	}
	actor, ok := actorFromClaims(claims)
	if !ok {
		response.Unauthorized(c, 10002, "Token 身份信息不完整")
		return nil, false
	}
	return actor, true
}

func actorFromClaims(claims *jwt.Claims) (service.Actor, bool) {
	switch claims.Role {
	case jwt.RoleStudent:
		if claims.StudentID == nil {
			return nil, false
		}
		return service.StudentActor{UserID: claims.UserID, StudentID: *claims.StudentID}, true
	case jwt.RoleTeacher:
		if claims.TeacherID == nil {
			return nil, false
		}
		return service.TeacherActor{UserID: claims.UserID, TeacherID: *claims.TeacherID, Support: claims.Support}, true
	case jwt.RoleAdmin:
		return service.StaffActor{UserID: claims.UserID, Admin: true}, true
	}
	return nil, false
}

// parseIDParam 解析路径中的正整数 ID，失败时写入 400
func parseIDParam(c *gin.Context, name string, code int) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, code, "无效的 "+name)
		return 0, false
	}
	return id, true
}
