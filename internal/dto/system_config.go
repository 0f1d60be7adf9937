package dto

// ── 系统配置模块 DTO ──

// UpdateSystemConfigRequest 更新流程参数（仅修改传入的字段）
type UpdateSystemConfigRequest struct {
	MinApprovedMeetingLogs *int `json:"min_approved_meeting_logs" binding:"omitempty,min=0,max=50"`
	TestWindowMinDays      *int `json:"test_window_min_days"      binding:"omitempty,min=1,max=365"`
	TestStartMaxLeadDays   *int `json:"test_start_max_lead_days"  binding:"omitempty,min=0,max=365"`
	QueueRecentDays        *int `json:"queue_recent_days"         binding:"omitempty,min=0,max=365"`
}

// SystemConfigResponse 流程参数响应
type SystemConfigResponse struct {
	MinApprovedMeetingLogs int    `json:"min_approved_meeting_logs"`
	TestWindowMinDays      int    `json:"test_window_min_days"`
	TestStartMaxLeadDays   int    `json:"test_start_max_lead_days"`
	QueueRecentDays        int    `json:"queue_recent_days"`
	Source                 string `json:"source"` // database | defaults
	UpdatedAt              string `json:"updated_at,omitempty"`
}
