package model

import "time"

// DeadlineRelatedTo 截止日期所属类别
type DeadlineRelatedTo string

const (
	RelatedToProject1 DeadlineRelatedTo = "project1"
	RelatedToProject2 DeadlineRelatedTo = "project2"
	RelatedToGeneral  DeadlineRelatedTo = "general"
)

// ImportantDeadline 重要截止日期表 — 对应 important_deadlines
// 同名截止日期可在不同学年/学期重复定义，通过 (academic_year, semester) 区分，id 越大越新
type ImportantDeadline struct {
	DeadlineID         int64             `gorm:"primaryKey;autoIncrement"              json:"deadline_id"`
	Name               string            `gorm:"type:varchar(255);not null"            json:"name"`
	RelatedTo          DeadlineRelatedTo `gorm:"type:varchar(30);not null"             json:"related_to"`
	AcademicYear       *int              `json:"academic_year,omitempty"`
	Semester           *int              `gorm:"type:smallint"                         json:"semester,omitempty"`
	DeadlineAt         time.Time         `gorm:"not null"                              json:"deadline_at"`
	GracePeriodMinutes int               `gorm:"not null;default:0"                    json:"grace_period_minutes"`
	AllowLate          bool              `gorm:"not null;default:false"                json:"allow_late"`
	LockAfterDeadline  bool              `gorm:"not null;default:false"                json:"lock_after_deadline"`
	IsPublished        bool              `gorm:"not null;default:false"                json:"is_published"`
	Description        string            `gorm:"type:text"                             json:"description,omitempty"`
	BaseModel
}

// TableName 指定表名
func (ImportantDeadline) TableName() string { return "important_deadlines" }

// SubmissionLateStatus 提交迟交标记（随提交记录一起落库）
// 不变式：SubmissionDelayMinutes 非空当且仅当 SubmittedLate 为 true
type SubmissionLateStatus struct {
	SubmittedLate          bool   `gorm:"not null;default:false" json:"submitted_late"`
	SubmissionDelayMinutes *int   `json:"submission_delay_minutes"`
	ImportantDeadlineID    *int64 `json:"important_deadline_id"`
}
