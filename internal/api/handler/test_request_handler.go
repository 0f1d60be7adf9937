package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cslogbook/backend/internal/dto"
	"cslogbook/backend/internal/service"
	pkgerrors "cslogbook/backend/pkg/errors"
	"cslogbook/backend/pkg/response"
)

// 上传文件分类目录
const (
	uploadCategoryRequest  = "test-requests"
	uploadCategoryEvidence = "test-evidence"
)

// TestRequestHandler 系统测试申请模块 Handler
type TestRequestHandler struct {
	svc     service.TestRequestService
	uploads *UploadStore
}

// NewTestRequestHandler 创建 TestRequestHandler 实例
func NewTestRequestHandler(svc service.TestRequestService, uploads *UploadStore) *TestRequestHandler {
	return &TestRequestHandler{svc: svc, uploads: uploads}
}

// GetLatest 获取项目当前的系统测试申请
// GET /api/v1/projects/:id/test-request
func (h *TestRequestHandler) GetLatest(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", 20000)
	if !ok {
		return
	}

	resp, err := h.svc.GetLatest(c.Request.Context(), projectID, actor)
	if err != nil {
		handleTestRequestError(c, err)
		return
	}
	response.OK(c, resp)
}

// Submit 学生提交系统测试申请
// POST /api/v1/projects/:id/test-request
//
// multipart/form-data：test_start_date, test_due_date, student_note, request_file（可选）
func (h *TestRequestHandler) Submit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", 20000)
	if !ok {
		return
	}

	var req dto.SubmitTestRequestRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 20000, "参数校验失败", validationDetails(err))
		return
	}

	file, err := h.uploads.Save(c, "request_file", uploadCategoryRequest)
	if err != nil && !errors.Is(err, ErrUploadMissing) {
		handleUploadError(c, err)
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), projectID, actor, &req, file)
	if err != nil {
		h.uploads.Remove(file)
		handleTestRequestError(c, err)
		return
	}
	response.Created(c, resp)
}

// AdvisorDecision 导师 / 副导师审批
// POST /api/v1/projects/:id/test-request/advisor-decision
func (h *TestRequestHandler) AdvisorDecision(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", 20000)
	if !ok {
		return
	}

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 20000, "参数校验失败", validationDetails(err))
		return
	}

	resp, err := h.svc.SubmitAdvisorDecision(c.Request.Context(), projectID, actor, &req)
	if err != nil {
		handleTestRequestError(c, err)
		return
	}
	response.OK(c, resp)
}

// StaffDecision 教务审批
// POST /api/v1/projects/:id/test-request/staff-decision
func (h *TestRequestHandler) StaffDecision(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", 20000)
	if !ok {
		return
	}

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 20000, "参数校验失败", validationDetails(err))
		return
	}

	resp, err := h.svc.SubmitStaffDecision(c.Request.Context(), projectID, actor, &req)
	if err != nil {
		handleTestRequestError(c, err)
		return
	}
	response.OK(c, resp)
}

// UploadEvidence 上传测试证明（一次性）
// POST /api/v1/projects/:id/test-request/evidence
func (h *TestRequestHandler) UploadEvidence(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", 20000)
	if !ok {
		return
	}

	file, err := h.uploads.Save(c, "evidence_file", uploadCategoryEvidence)
	if err != nil {
		if errors.Is(err, ErrUploadMissing) {
			handleTestRequestError(c, service.ErrEvidenceFileRequired)
			return
		}
		handleUploadError(c, err)
		return
	}

	resp, err := h.svc.UploadEvidence(c.Request.Context(), projectID, actor, file)
	if err != nil {
		h.uploads.Remove(file)
		handleTestRequestError(c, err)
		return
	}
	response.OK(c, resp)
}

// AdvisorQueue 导师待办
// GET /api/v1/test-requests/advisor-queue
func (h *TestRequestHandler) AdvisorQueue(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	items, err := h.svc.AdvisorQueue(c.Request.Context(), actor)
	if err != nil {
		handleTestRequestError(c, err)
		return
	}
	response.OK(c, items)
}

// StaffQueue 教务待办（分页）
// GET /api/v1/test-requests/staff-queue?status=pending_staff&page=1&page_size=20
func (h *TestRequestHandler) StaffQueue(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.StaffQueueRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 20000, "参数校验失败", validationDetails(err))
		return
	}

	items, total, err := h.svc.StaffQueue(c.Request.Context(), actor, &req)
	if err != nil {
		handleTestRequestError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// handleTestRequestError 统一处理系统测试申请模块业务错误
// details 为前端使用的机器可读原因
func handleTestRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		response.ErrorWithDetails(c, http.StatusNotFound, 20001, err.Error(), "project_not_found")
	case errors.Is(err, service.ErrTestRequestNotFound):
		response.ErrorWithDetails(c, http.StatusNotFound, 20002, err.Error(), "test_request_not_found")
	case errors.Is(err, service.ErrTestRequestAccessDenied):
		response.ErrorWithDetails(c, http.StatusForbidden, 20003, err.Error(), "access_denied")
	case errors.Is(err, service.ErrNotProjectMember):
		response.ErrorWithDetails(c, http.StatusForbidden, 20004, err.Error(), "not_project_member")
	case errors.Is(err, service.ErrNotAdvisorOfRecord):
		response.ErrorWithDetails(c, http.StatusForbidden, 20005, err.Error(), "not_advisor_of_record")
	case errors.Is(err, service.ErrNotStaffCapable):
		response.ErrorWithDetails(c, http.StatusForbidden, 20006, err.Error(), "not_staff")
	case errors.Is(err, service.ErrProjectStatusNotAllowed):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20007, err.Error(), "project_status_not_allowed")
	case errors.Is(err, service.ErrProjectHasNoAdvisor):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20008, err.Error(), "project_has_no_advisor")
	case errors.Is(err, service.ErrTestRequestAlreadyOpen):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20009, err.Error(), "request_already_open")
	case errors.Is(err, service.ErrTestWindowInvalidDate):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20010, err.Error(), "invalid_date")
	case errors.Is(err, service.ErrTestWindowEndBeforeStart):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20011, err.Error(), "end_before_start")
	case errors.Is(err, service.ErrTestWindowTooShort):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20012, err.Error(), "window_too_short")
	case errors.Is(err, service.ErrTestStartTooFar):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20013, err.Error(), "start_too_far")
	case errors.Is(err, service.ErrMeetingLogInsufficient):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20014, err.Error(), "meeting_logs_insufficient")
	case errors.Is(err, service.ErrTestRequestStateInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20015, err.Error(), "invalid_state")
	case errors.Is(err, service.ErrAdvisorAlreadyDecided):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20016, err.Error(), "already_decided")
	case errors.Is(err, service.ErrInvalidDecision):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20017, err.Error(), "invalid_decision")
	case errors.Is(err, service.ErrEvidenceFileRequired):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20018, err.Error(), "evidence_file_required")
	case errors.Is(err, service.ErrEvidenceAlreadySubmitted):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20019, err.Error(), "evidence_already_submitted")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.ErrorWithDetails(c, http.StatusConflict, 20021, err.Error(), "concurrent_update")
	default:
		response.InternalError(c)
	}
}

func handleUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUploadTooLarge):
		response.ErrorWithDetails(c, http.StatusRequestEntityTooLarge, 20020, err.Error(), "file_too_large")
	case errors.Is(err, ErrUploadTypeNotAllowed):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20020, err.Error(), "file_type_not_allowed")
	default:
		response.InternalError(c)
	}
}
