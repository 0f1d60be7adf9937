package model

// SystemConfig 系统配置表 — 对应 system_config（单行强类型）
type SystemConfig struct {
	Singleton              bool `gorm:"primaryKey;default:true"  json:"-"`
	MinApprovedMeetingLogs int  `gorm:"not null;default:4"       json:"min_approved_meeting_logs"`
	TestWindowMinDays      int  `gorm:"not null;default:30"      json:"test_window_min_days"`
	TestStartMaxLeadDays   int  `gorm:"not null;default:30"      json:"test_start_max_lead_days"`
	QueueRecentDays        int  `gorm:"not null;default:14"      json:"queue_recent_days"`
	BaseModel
}

// TableName 指定表名
func (SystemConfig) TableName() string { return "system_config" }
