package repository

import (
	"context"

	"gorm.io/gorm"

	"cslogbook/backend/internal/model"
)

// DeadlineQuery 截止日期查询条件；学年/学期为空表示不按该项过滤
type DeadlineQuery struct {
	Name         string
	RelatedTo    model.DeadlineRelatedTo
	AcademicYear *int
	Semester     *int
}

// DeadlineRepository 截止日期数据访问接口
type DeadlineRepository interface {
	// FindPublished 按条件查找已发布的截止日期，多条命中时取 id 最大者
	FindPublished(ctx context.Context, q DeadlineQuery) (*model.ImportantDeadline, error)
	Create(ctx context.Context, deadline *model.ImportantDeadline) error
	ListPublished(ctx context.Context, academicYear, semester *int) ([]model.ImportantDeadline, error)
}

type deadlineRepo struct {
	db *gorm.DB
}

// NewDeadlineRepo 创建 DeadlineRepository 实例
func NewDeadlineRepo(db *gorm.DB) DeadlineRepository {
	return &deadlineRepo{db: db}
}

func (r *deadlineRepo) FindPublished(ctx context.Context, q DeadlineQuery) (*model.ImportantDeadline, error) {
	var deadline model.ImportantDeadline
	db := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Where("name = ? AND related_to = ?", q.Name, q.RelatedTo)
	db = withPeriod(db, q.AcademicYear, q.Semester)

	err := db.Order("deadline_id DESC").First(&deadline).Error
	if err != nil {
		return nil, err
	}
	return &deadline, nil
}

func (r *deadlineRepo) Create(ctx context.Context, deadline *model.ImportantDeadline) error {
	return r.db.WithContext(ctx).Create(deadline).Error
}

func (r *deadlineRepo) ListPublished(ctx context.Context, academicYear, semester *int) ([]model.ImportantDeadline, error) {
	var deadlines []model.ImportantDeadline
	db := withPeriod(r.db.WithContext(ctx).Where("is_published = ?", true), academicYear, semester)
	err := db.Order("deadline_at ASC").Order("deadline_id ASC").Find(&deadlines).Error
	return deadlines, err
}

func withPeriod(db *gorm.DB, academicYear, semester *int) *gorm.DB {
	if academicYear != nil {
		db = db.Where("academic_year = ?", *academicYear)
	}
	if semester != nil {
		db = db.Where("semester = ?", *semester)
	}
	return db
}
