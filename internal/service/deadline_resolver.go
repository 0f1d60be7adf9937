package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"cslogbook/backend/internal/model"
	"cslogbook/backend/internal/repository"
)

// DeadlineResolver 查找某一学年/学期适用的截止日期
type DeadlineResolver interface {
	// Find 仅查找已发布的截止日期；未配置时返回 (nil, nil)，调用方按"永不迟交"处理
	Find(ctx context.Context, name string, relatedTo model.DeadlineRelatedTo, academicYear, semester *int) (*model.ImportantDeadline, error)
}

type deadlineResolver struct {
	repo *repository.Repository
}

// NewDeadlineResolver 创建 DeadlineResolver 实例
func NewDeadlineResolver(repo *repository.Repository) DeadlineResolver {
	return &deadlineResolver{repo: repo}
}

func (r *deadlineResolver) Find(ctx context.Context, name string, relatedTo model.DeadlineRelatedTo, academicYear, semester *int) (*model.ImportantDeadline, error) {
	deadline, err := r.repo.Deadline.FindPublished(ctx, repository.DeadlineQuery{
		Name:         name,
		RelatedTo:    relatedTo,
		AcademicYear: academicYear,
		Semester:     semester,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return deadline, nil
}
