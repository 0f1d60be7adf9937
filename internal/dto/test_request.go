package dto

// ── 系统测试申请模块 DTO ──

// UploadDescriptor 已落盘的上传文件描述；Path 为相对 upload_dir 的路径
type UploadDescriptor struct {
	Path             string
	OriginalFilename string
}

// SubmitTestRequestRequest 提交系统测试申请（multipart 表单）
type SubmitTestRequestRequest struct {
	TestStartDate string `form:"test_start_date" json:"test_start_date" binding:"required,calendar_date"`
	TestDueDate   string `form:"test_due_date"   json:"test_due_date"   binding:"required,calendar_date"`
	StudentNote   string `form:"student_note"    json:"student_note"    binding:"omitempty,max=2000"`
}

// DecisionRequest 导师 / 教务审批请求
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Note     string `json:"note"     binding:"omitempty,max=2000"`
}

// StaffQueueRequest 教务待办查询
type StaffQueueRequest struct {
	Status []string `form:"status" binding:"omitempty,dive,oneof=pending_advisor advisor_rejected pending_staff staff_rejected staff_approved evidence_submitted"`
	PaginationRequest
}

// DecisionSlotResponse 单个导师审批槽位
type DecisionSlotResponse struct {
	TeacherID *int64  `json:"teacher_id"`
	Decision  *string `json:"decision"`
	DecidedAt *string `json:"decided_at"`
	Note      *string `json:"note"`
}

// LateStatusResponse 迟交标记
type LateStatusResponse struct {
	SubmittedLate          bool   `json:"submitted_late"`
	SubmissionDelayMinutes *int   `json:"submission_delay_minutes"`
	ImportantDeadlineID    *int64 `json:"important_deadline_id"`
}

// TestRequestResponse 系统测试申请详情
type TestRequestResponse struct {
	RequestID            int64                 `json:"request_id"`
	ProjectID            int64                 `json:"project_id"`
	Status               string                `json:"status"`
	SubmittedByStudentID int64                 `json:"submitted_by_student_id"`
	SubmittedAt          string                `json:"submitted_at"`
	TestStartDate        string                `json:"test_start_date"`
	TestDueDate          string                `json:"test_due_date"`
	StudentNote          *string               `json:"student_note"`
	RequestFileName      *string               `json:"request_file_name"`
	Advisor              DecisionSlotResponse  `json:"advisor"`
	CoAdvisor            *DecisionSlotResponse `json:"co_advisor"`
	StaffUserID          *int64                `json:"staff_user_id"`
	StaffDecidedAt       *string               `json:"staff_decided_at"`
	StaffNote            *string               `json:"staff_note"`
	EvidenceFileName     *string               `json:"evidence_file_name"`
	EvidenceSubmittedAt  *string               `json:"evidence_submitted_at"`
	LateStatus           LateStatusResponse    `json:"late_status"`
}

// LatestTestRequestResponse 项目当前申请；无申请时 status=none 且 request 为空
type LatestTestRequestResponse struct {
	ProjectID int64                `json:"project_id"`
	Status    string               `json:"status"`
	Request   *TestRequestResponse `json:"request"`
}

// AdvisorQueueItem 导师待办条目
type AdvisorQueueItem struct {
	TestRequestResponse
	ProjectCode string `json:"project_code"`
	ProjectName string `json:"project_name"`
	MyRole      string `json:"my_role"`
	AwaitingMe  bool   `json:"awaiting_me"`
}

// StaffQueueItem 教务待办条目，附带"ยื่นคำขอทดสอบระบบ"截止日期的当前状态
type StaffQueueItem struct {
	TestRequestResponse
	ProjectCode string                 `json:"project_code"`
	ProjectName string                 `json:"project_name"`
	Deadline    DeadlineStatusResponse `json:"deadline"`
}
