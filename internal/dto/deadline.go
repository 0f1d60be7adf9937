package dto

// ── 截止日期模块 DTO ──

// CreateDeadlineRequest 新建截止日期
type CreateDeadlineRequest struct {
	Name               string `json:"name"                 binding:"required,min=1,max=255"`
	RelatedTo          string `json:"related_to"           binding:"required,oneof=project1 project2 general"`
	AcademicYear       *int   `json:"academic_year"        binding:"omitempty,min=2500,max=2700"`
	Semester           *int   `json:"semester"             binding:"omitempty,min=1,max=3"`
	DeadlineAt         string `json:"deadline_at"          binding:"required"`
	GracePeriodMinutes int    `json:"grace_period_minutes" binding:"omitempty,min=0,max=525600"`
	AllowLate          bool   `json:"allow_late"`
	LockAfterDeadline  bool   `json:"lock_after_deadline"`
	IsPublished        bool   `json:"is_published"`
	Description        string `json:"description"          binding:"omitempty,max=2000"`
}

// DeadlineQueryRequest 按学年/学期筛选
type DeadlineQueryRequest struct {
	AcademicYear *int `form:"academic_year" binding:"omitempty,min=2500,max=2700"`
	Semester     *int `form:"semester"      binding:"omitempty,min=1,max=3"`
}

// LateStatusPreviewRequest 预览某类提交此刻的迟交标记
type LateStatusPreviewRequest struct {
	Kind         string `form:"kind"          binding:"required,oneof=topic_submission defense_project1 defense_thesis system_test"`
	AcademicYear *int   `form:"academic_year" binding:"omitempty,min=2500,max=2700"`
	Semester     *int   `form:"semester"      binding:"omitempty,min=1,max=3"`
	SubmittedAt  string `form:"submitted_at"`
}

// DeadlineResponse 截止日期
type DeadlineResponse struct {
	DeadlineID         int64  `json:"deadline_id"`
	Name               string `json:"name"`
	RelatedTo          string `json:"related_to"`
	AcademicYear       *int   `json:"academic_year"`
	Semester           *int   `json:"semester"`
	DeadlineAt         string `json:"deadline_at"`
	GracePeriodMinutes int    `json:"grace_period_minutes"`
	AllowLate          bool   `json:"allow_late"`
	LockAfterDeadline  bool   `json:"lock_after_deadline"`
	IsPublished        bool   `json:"is_published"`
	Description        string `json:"description,omitempty"`
}

// DeadlineStatusResponse 截止日期评估结果；未配置截止日期时 status=no_deadline
type DeadlineStatusResponse struct {
	DeadlineID        *int64  `json:"deadline_id"`
	DeadlineAt        *string `json:"deadline_at"`
	EffectiveDeadline *string `json:"effective_deadline"`
	Status            string  `json:"status"`
	IsLate            bool    `json:"is_late"`
	MinutesLate       int     `json:"minutes_late"`
	IsLocked          bool    `json:"is_locked"`
}

// LateStatusPreviewResponse 迟交预览
type LateStatusPreviewResponse struct {
	Kind         string                 `json:"kind"`
	DeadlineName string                 `json:"deadline_name"`
	SubmittedAt  string                 `json:"submitted_at"`
	Evaluation   DeadlineStatusResponse `json:"evaluation"`
	LateStatus   LateStatusResponse     `json:"late_status"`
}
