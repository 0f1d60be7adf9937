package model

import "time"

// MeetingApprovalStatus 指导记录审核状态
type MeetingApprovalStatus string

const (
	MeetingPending  MeetingApprovalStatus = "pending"
	MeetingApproved MeetingApprovalStatus = "approved"
	MeetingRejected MeetingApprovalStatus = "rejected"
)

// MeetingLog 指导会面记录 — 对应 meeting_logs（本服务只读，用于提交前置条件）
type MeetingLog struct {
	MeetingLogID   int64                 `gorm:"primaryKey;autoIncrement"                    json:"meeting_log_id"`
	ProjectID      int64                 `gorm:"not null;index"                              json:"project_id"`
	StudentID      int64                 `gorm:"not null;index"                              json:"student_id"`
	Phase          ProjectType           `gorm:"type:varchar(20);not null"                   json:"phase"`
	MeetingDate    time.Time             `gorm:"type:date;not null"                          json:"meeting_date"`
	ApprovalStatus MeetingApprovalStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"approval_status"`
	BaseModel
}

// TableName 指定表名
func (MeetingLog) TableName() string { return "meeting_logs" }
