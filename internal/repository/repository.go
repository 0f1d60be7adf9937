package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Project       ProjectRepository
	TestRequest   TestRequestRepository
	Deadline      DeadlineRepository
	MeetingLog    MeetingLogRepository
	TransitionLog TransitionLogRepository
	Timeline      TimelineRepository
	SystemConfig  SystemConfigRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		Project:       NewProjectRepo(db),
		TestRequest:   NewTestRequestRepo(db),
		Deadline:      NewDeadlineRepo(db),
		MeetingLog:    NewMeetingLogRepo(db),
		TransitionLog: NewTransitionLogRepo(db),
		Timeline:      NewTimelineRepo(db),
		SystemConfig:  NewSystemConfigRepo(db),
	}
}

// Transaction 在单个数据库事务中执行 fn
// fn 收到的 Repository 所有子仓库均绑定同一事务连接；fn 返回错误时整体回滚
// 未绑定数据库连接（单元测试直接组装 mock）时在当前聚合上直接执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
