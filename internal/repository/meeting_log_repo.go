package repository

import (
	"context"

	"gorm.io/gorm"

	"cslogbook/backend/internal/model"
)

// MeetingLogRepository 指导记录只读接口
type MeetingLogRepository interface {
	CountApproved(ctx context.Context, studentID, projectID int64, phase model.ProjectType) (int64, error)
}

type meetingLogRepo struct {
	db *gorm.DB
}

// NewMeetingLogRepo 创建 MeetingLogRepository 实例
func NewMeetingLogRepo(db *gorm.DB) MeetingLogRepository {
	return &meetingLogRepo{db: db}
}

func (r *meetingLogRepo) CountApproved(ctx context.Context, studentID, projectID int64, phase model.ProjectType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.MeetingLog{}).
		Where("student_id = ? AND project_id = ?", studentID, projectID).
		Where("phase = ? AND approval_status = ?", phase, model.MeetingApproved).
		Count(&count).Error
	return count, err
}
