package repository

import (
	"context"

	"gorm.io/gorm"

	"cslogbook/backend/internal/model"
)

// TransitionLogRepository 阶段转换审计（只追加）
type TransitionLogRepository interface {
	Create(ctx context.Context, log *model.ProjectTransitionLog) error
	ListByProject(ctx context.Context, projectID int64) ([]model.ProjectTransitionLog, error)
}

type transitionLogRepo struct {
	db *gorm.DB
}

// NewTransitionLogRepo 创建 TransitionLogRepository 实例
func NewTransitionLogRepo(db *gorm.DB) TransitionLogRepository {
	return &transitionLogRepo{db: db}
}

func (r *transitionLogRepo) Create(ctx context.Context, log *model.ProjectTransitionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *transitionLogRepo) ListByProject(ctx context.Context, projectID int64) ([]model.ProjectTransitionLog, error) {
	var logs []model.ProjectTransitionLog
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Order("log_id ASC").
		Find(&logs).Error
	return logs, err
}

// TimelineRepository 项目动态（只追加）
type TimelineRepository interface {
	Create(ctx context.Context, event *model.TimelineEvent) error
}

type timelineRepo struct {
	db *gorm.DB
}

// NewTimelineRepo 创建 TimelineRepository 实例
func NewTimelineRepo(db *gorm.DB) TimelineRepository {
	return &timelineRepo{db: db}
}

func (r *timelineRepo) Create(ctx context.Context, event *model.TimelineEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
