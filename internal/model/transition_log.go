package model

import (
	"time"

	"gorm.io/datatypes"
)

// TransitionType 阶段转换触发方式
type TransitionType string

const (
	TransitionManual TransitionType = "manual"
	TransitionAuto   TransitionType = "auto"
)

// SystemActorLabel 自动任务写入审计记录时使用的操作人标识
const SystemActorLabel = "system"

// ProjectTransitionLog 阶段转换审计表 — 对应 project_transition_logs（只追加，不修改不删除）
type ProjectTransitionLog struct {
	LogID          int64             `gorm:"primaryKey;autoIncrement"             json:"log_id"`
	ProjectID      int64             `gorm:"not null;index"                       json:"project_id"`
	TransitionType TransitionType    `gorm:"type:varchar(10);not null"            json:"transition_type"`
	TriggeredBy    *int64            `json:"triggered_by,omitempty"` // 为空表示系统自动触发
	ActorLabel     string            `gorm:"type:varchar(50);not null"            json:"actor_label"`
	FromType       ProjectType       `gorm:"type:varchar(20);not null"            json:"from_type"`
	ToType         ProjectType       `gorm:"type:varchar(20);not null"            json:"to_type"`
	FromPhase      ProjectPhase      `gorm:"type:varchar(40);not null"            json:"from_phase"`
	ToPhase        ProjectPhase      `gorm:"type:varchar(40);not null"            json:"to_phase"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"                           json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"   json:"created_at"`
}

// TableName 指定表名
func (ProjectTransitionLog) TableName() string { return "project_transition_logs" }

// TimelineEvent 项目动态表 — 对应 timeline_events（只追加）
type TimelineEvent struct {
	EventID   int64             `gorm:"primaryKey;autoIncrement"           json:"event_id"`
	ProjectID int64             `gorm:"not null;index"                     json:"project_id"`
	EventType string            `gorm:"type:varchar(50);not null"          json:"event_type"`
	Title     string            `gorm:"type:varchar(255);not null"         json:"title"`
	ActorID   *int64            `json:"actor_id,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"                         json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (TimelineEvent) TableName() string { return "timeline_events" }
