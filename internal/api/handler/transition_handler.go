package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cslogbook/backend/internal/model"
	"cslogbook/backend/internal/service"
	pkgerrors "cslogbook/backend/pkg/errors"
	"cslogbook/backend/pkg/response"
)

// TransitionHandler Project 1 → Project 2 阶段转换 Handler
type TransitionHandler struct {
	svc service.PhaseTransitionService
}

// NewTransitionHandler 创建 TransitionHandler 实例
func NewTransitionHandler(svc service.PhaseTransitionService) *TransitionHandler {
	return &TransitionHandler{svc: svc}
}

// Status 查询转换资格
// GET /api/v1/projects/:id/transition-status
func (h *TransitionHandler) Status(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", 21000)
	if !ok {
		return
	}

	resp, err := h.svc.CheckEligibility(c.Request.Context(), projectID, actor)
	if err != nil {
		handleTransitionError(c, err)
		return
	}
	if resp.Reason == string(service.ReasonNotFound) {
		response.ErrorWithDetails(c, http.StatusNotFound, 21003, service.ErrProjectNotFound.Error(), resp.Reason)
		return
	}
	response.OK(c, resp)
}

// Transition 教务手动转换
// POST /api/v1/projects/:id/transition-to-project2
func (h *TransitionHandler) Transition(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", 21000)
	if !ok {
		return
	}

	resp, err := h.svc.Transition(c.Request.Context(), projectID, actor, model.TransitionManual)
	if err != nil {
		handleTransitionError(c, err)
		return
	}
	response.OK(c, resp)
}

// History 转换审计记录
// GET /api/v1/projects/:id/transition-history
func (h *TransitionHandler) History(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", 21000)
	if !ok {
		return
	}

	logs, err := h.svc.History(c.Request.Context(), projectID, actor)
	if err != nil {
		handleTransitionError(c, err)
		return
	}
	response.OK(c, logs)
}

// AutoTransition 教务立即触发一次批量自动转换（与定时任务逻辑相同）
// POST /api/v1/projects/auto-transition
func (h *TransitionHandler) AutoTransition(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	if !service.IsStaffCapable(actor) {
		handleTransitionError(c, service.ErrTransitionForbidden)
		return
	}

	resp, err := h.svc.AutoTransitionEligibleProjects(c.Request.Context(), actor)
	if err != nil {
		handleTransitionError(c, err)
		return
	}
	response.OK(c, resp)
}

// handleTransitionError 统一处理阶段转换模块业务错误
func handleTransitionError(c *gin.Context, err error) {
	var ineligible *service.IneligibleError
	switch {
	case errors.Is(err, service.ErrTransitionForbidden):
		response.ErrorWithDetails(c, http.StatusForbidden, 21001, err.Error(), "not_staff")
	case errors.As(err, &ineligible):
		response.ErrorWithDetails(c, http.StatusBadRequest, 21002, service.ErrProjectNotEligible.Error(), string(ineligible.Reason))
	case errors.Is(err, service.ErrProjectNotFound):
		response.ErrorWithDetails(c, http.StatusNotFound, 21003, err.Error(), string(service.ReasonNotFound))
	case errors.Is(err, service.ErrProjectAccessDenied):
		response.ErrorWithDetails(c, http.StatusForbidden, 21004, err.Error(), "access_denied")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.ErrorWithDetails(c, http.StatusConflict, 21005, err.Error(), "concurrent_update")
	default:
		response.InternalError(c)
	}
}
