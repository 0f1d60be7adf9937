package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cslogbook/backend/pkg/response"
)

// TokenBlacklist Token 黑名单存储（Redis 实现见 pkg/redis）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// MeResponse 当前登录身份
type MeResponse struct {
	UserID    int64  `json:"user_id"`
	Role      string `json:"role"`
	StudentID *int64 `json:"student_id,omitempty"`
	TeacherID *int64 `json:"teacher_id,omitempty"`
	Support   bool   `json:"support"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// AuthHandler 会话相关 Handler；Token 由统一身份服务签发，本服务只负责校验与注销
type AuthHandler struct {
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthHandler 创建 AuthHandler；blacklist 为 nil 时注销只做客户端清理
func NewAuthHandler(blacklist TokenBlacklist, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{blacklist: blacklist, logger: logger}
}

// Me 当前登录身份
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	resp := MeResponse{
		UserID:    claims.UserID,
		Role:      claims.Role,
		StudentID: claims.StudentID,
		TeacherID: claims.TeacherID,
		Support:   claims.Support,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Format(time.RFC3339)
	}
	response.OK(c, resp)
}

// Logout 注销当前 Token（加入黑名单直到过期）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	ttl := claims.RemainingTTL()
	if h.blacklist != nil && claims.ID != "" && ttl > 0 {
		if err := h.blacklist.BlacklistToken(c.Request.Context(), claims.ID, ttl); err != nil {
			h.logger.Error("Token 加入黑名单失败", zap.Int64("user_id", claims.UserID), zap.Error(err))
			response.InternalError(c)
			return
		}
	}
	response.OK(c, nil)
}
