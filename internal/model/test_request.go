package model

import "time"

// TestRequestStatus 系统测试申请状态
type TestRequestStatus string

const (
	// TestRequestNone 项目尚无申请（不落库，仅用于查询响应）
	TestRequestNone              TestRequestStatus = "none"
	TestRequestPendingAdvisor    TestRequestStatus = "pending_advisor"
	TestRequestAdvisorRejected   TestRequestStatus = "advisor_rejected"
	TestRequestPendingStaff      TestRequestStatus = "pending_staff"
	TestRequestStaffRejected     TestRequestStatus = "staff_rejected"
	TestRequestStaffApproved     TestRequestStatus = "staff_approved"
	TestRequestEvidenceSubmitted TestRequestStatus = "evidence_submitted"
)

// OpenTestRequestStatuses 占用"项目唯一在途申请"名额的状态
var OpenTestRequestStatuses = []TestRequestStatus{
	TestRequestPendingAdvisor,
	TestRequestPendingStaff,
	TestRequestStaffApproved,
}

// IsTerminal 终态之后允许重新提交
func (s TestRequestStatus) IsTerminal() bool {
	switch s {
	case TestRequestAdvisorRejected, TestRequestStaffRejected, TestRequestEvidenceSubmitted:
		return true
	}
	return false
}

// IsOpen 在途状态（含已批准待上传证明）
func (s TestRequestStatus) IsOpen() bool {
	for _, open := range OpenTestRequestStatuses {
		if s == open {
			return true
		}
	}
	return false
}

// Valid 是否为可落库的状态值
func (s TestRequestStatus) Valid() bool {
	return s.IsOpen() || s.IsTerminal()
}

// Decision 审批意见
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Valid 校验审批意见取值
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// AdvisorRole 指导教师角色
type AdvisorRole string

const (
	AdvisorRolePrimary AdvisorRole = "advisor"
	AdvisorRoleCo      AdvisorRole = "co_advisor"
)

// DecisionSlot 单个指导教师的审批槽位；主导师与副导师各一份，互不覆盖
type DecisionSlot struct {
	TeacherID *int64     `json:"teacher_id,omitempty"`
	Decision  *Decision  `gorm:"type:varchar(10)" json:"decision,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	Note      *string    `gorm:"type:text" json:"note,omitempty"`
}

// Assigned 槽位是否有指定教师
func (s DecisionSlot) Assigned() bool { return s.TeacherID != nil }

// Decided 槽位是否已给出意见
func (s DecisionSlot) Decided() bool { return s.Decision != nil }

// Approved 槽位意见为通过
func (s DecisionSlot) Approved() bool { return s.Decision != nil && *s.Decision == DecisionApprove }

// Rejected 槽位意见为驳回
func (s DecisionSlot) Rejected() bool { return s.Decision != nil && *s.Decision == DecisionReject }

// ProjectTestRequest 系统测试申请表 — 对应 project_test_requests
// 每次提交新增一行；旧申请保留为历史，仅最新一行参与鉴权与状态判断
type ProjectTestRequest struct {
	RequestID            int64             `gorm:"primaryKey;autoIncrement"                   json:"request_id"`
	ProjectID            int64             `gorm:"not null;index"                             json:"project_id"`
	Status               TestRequestStatus `gorm:"type:varchar(30);not null"                  json:"status"`
	SubmittedByStudentID int64             `gorm:"not null"                                   json:"submitted_by_student_id"`
	SubmittedAt          time.Time         `gorm:"not null"                                   json:"submitted_at"`
	TestStartDate        time.Time         `gorm:"not null"                                   json:"test_start_date"`
	TestDueDate          time.Time         `gorm:"not null"                                   json:"test_due_date"`
	StudentNote          *string           `gorm:"type:text"                                  json:"student_note,omitempty"`
	RequestFilePath      *string           `gorm:"type:varchar(500)"                          json:"request_file_path,omitempty"`
	RequestFileName      *string           `gorm:"type:varchar(255)"                          json:"request_file_name,omitempty"`

	Advisor   DecisionSlot `gorm:"embedded;embeddedPrefix:advisor_"    json:"advisor"`
	CoAdvisor DecisionSlot `gorm:"embedded;embeddedPrefix:co_advisor_" json:"co_advisor"`

	StaffUserID    *int64     `json:"staff_user_id,omitempty"`
	StaffDecidedAt *time.Time `json:"staff_decided_at,omitempty"`
	StaffNote      *string    `gorm:"type:text" json:"staff_note,omitempty"`

	EvidenceFilePath    *string    `gorm:"type:varchar(500)" json:"evidence_file_path,omitempty"`
	EvidenceFileName    *string    `gorm:"type:varchar(255)" json:"evidence_file_name,omitempty"`
	EvidenceSubmittedAt *time.Time `json:"evidence_submitted_at,omitempty"`
	EvidenceSubmittedBy *int64     `json:"evidence_submitted_by,omitempty"`

	SubmissionLateStatus `gorm:"embedded"`

	VersionedModel

	// 关联
	Project *Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
}

// TableName 指定表名
func (ProjectTestRequest) TableName() string { return "project_test_requests" }

// HasCoAdvisor 以提交时快照的副导师为准
func (r *ProjectTestRequest) HasCoAdvisor() bool {
	return r.CoAdvisor.Assigned()
}

// Slot 返回指定角色的审批槽位指针
func (r *ProjectTestRequest) Slot(role AdvisorRole) *DecisionSlot {
	if role == AdvisorRoleCo {
		return &r.CoAdvisor
	}
	return &r.Advisor
}

// HasEvidence 证明文件只允许上传一次
func (r *ProjectTestRequest) HasEvidence() bool {
	return r.EvidenceFilePath != nil && *r.EvidenceFilePath != ""
}
