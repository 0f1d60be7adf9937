package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cslogbook/backend/internal/dto"
	"cslogbook/backend/internal/service"
	"cslogbook/backend/pkg/response"
)

// SystemConfigHandler 流程参数 HTTP 处理器
type SystemConfigHandler struct {
	configSvc service.SystemConfigService
}

// NewSystemConfigHandler 创建 SystemConfigHandler
func NewSystemConfigHandler(configSvc service.SystemConfigService) *SystemConfigHandler {
	return &SystemConfigHandler{configSvc: configSvc}
}

// GetConfig 获取流程参数
// GET /api/v1/system-config
func (h *SystemConfigHandler) GetConfig(c *gin.Context) {
	cfg, err := h.configSvc.Get(c.Request.Context())
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.OK(c, cfg)
}

// UpdateConfig 更新流程参数
// PUT /api/v1/system-config
func (h *SystemConfigHandler) UpdateConfig(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateSystemConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 17000, "参数校验失败", validationDetails(err))
		return
	}

	cfg, err := h.configSvc.Update(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.OK(c, cfg)
}

// handleConfigError 统一处理系统配置模块业务错误
func (h *SystemConfigHandler) handleConfigError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSystemConfigForbidden):
		response.ErrorWithDetails(c, http.StatusForbidden, 17001, err.Error(), "not_staff")
	default:
		response.InternalError(c)
	}
}
