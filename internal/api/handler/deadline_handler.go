package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cslogbook/backend/internal/dto"
	"cslogbook/backend/internal/service"
	"cslogbook/backend/pkg/response"
)

// DeadlineHandler 截止日期模块 Handler
type DeadlineHandler struct {
	svc service.DeadlineService
}

// NewDeadlineHandler 创建 DeadlineHandler 实例
func NewDeadlineHandler(svc service.DeadlineService) *DeadlineHandler {
	return &DeadlineHandler{svc: svc}
}

// List 已发布的截止日期
// GET /api/v1/deadlines?academic_year=2568&semester=1
func (h *DeadlineHandler) List(c *gin.Context) {
	var req dto.DeadlineQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 22000, "参数校验失败", validationDetails(err))
		return
	}

	list, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		handleDeadlineError(c, err)
		return
	}
	response.OK(c, list)
}

// Create 新建截止日期
// POST /api/v1/deadlines
func (h *DeadlineHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 22000, "参数校验失败", validationDetails(err))
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		handleDeadlineError(c, err)
		return
	}
	response.Created(c, resp)
}

// LateStatus 预览某类提交此刻（或指定时间）的迟交标记
// GET /api/v1/deadlines/late-status?kind=system_test&academic_year=2568&semester=1
func (h *DeadlineHandler) LateStatus(c *gin.Context) {
	var req dto.LateStatusPreviewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 22000, "参数校验失败", validationDetails(err))
		return
	}

	resp, err := h.svc.PreviewLateStatus(c.Request.Context(), &req)
	if err != nil {
		handleDeadlineError(c, err)
		return
	}
	response.OK(c, resp)
}

// Calendar iCalendar 订阅
// GET /api/v1/deadlines/calendar.ics
func (h *DeadlineHandler) Calendar(c *gin.Context) {
	var req dto.DeadlineQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 22000, "参数校验失败", validationDetails(err))
		return
	}

	body, err := h.svc.CalendarICS(c.Request.Context(), &req)
	if err != nil {
		handleDeadlineError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="cslogbook-deadlines.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// handleDeadlineError 统一处理截止日期模块业务错误
func handleDeadlineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDeadlineForbidden):
		response.ErrorWithDetails(c, http.StatusForbidden, 22001, err.Error(), "not_staff")
	case errors.Is(err, service.ErrDeadlineTimeInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 22002, err.Error(), "invalid_deadline_at")
	case errors.Is(err, service.ErrSubmissionKindUnknown):
		response.ErrorWithDetails(c, http.StatusBadRequest, 22003, err.Error(), "unknown_kind")
	case errors.Is(err, service.ErrSubmittedAtInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 22004, err.Error(), "invalid_submitted_at")
	default:
		response.InternalError(c)
	}
}
