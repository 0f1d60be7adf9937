package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cslogbook/backend/internal/model"
	pkgerrors "cslogbook/backend/pkg/errors"
)

// ProjectRepository 项目数据访问接口
type ProjectRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Project, error)
	// GetByIDForUpdate 对项目行加 FOR UPDATE 锁，必须在事务中调用
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Project, error)
	ListEligibleForTransition(ctx context.Context) ([]int64, error)
	MarkTransitioned(ctx context.Context, project *model.Project) error
}

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepo 创建 ProjectRepository 实例
func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("project_id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("project_id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	// 成员单独查询，避免 FOR UPDATE 作用到关联表
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", id).
		Find(&project.Members).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListEligibleForTransition 在数据库层筛选可转入 Project 2 的项目
// 已转换的项目被条件本身排除，重复执行不会再次命中
func (r *projectRepo) ListEligibleForTransition(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("project_type <> ?", model.ProjectTypeProject2).
		Where("transitioned_to_project2 = ?", false).
		Where("exam_result = ?", model.ExamResultPassed).
		Where("status NOT IN ?", []model.ProjectStatus{model.ProjectStatusCancelled, model.ProjectStatusArchived}).
		Order("project_id ASC").
		Pluck("project_id", &ids).Error
	return ids, err
}

func (r *projectRepo) MarkTransitioned(ctx context.Context, project *model.Project) error {
	oldVersion := project.Version
	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("project_id = ? AND version = ?", project.ProjectID, oldVersion).
		Updates(map[string]interface{}{
			"project_type":             project.ProjectType,
			"transitioned_to_project2": project.TransitionedToProject2,
			"transitioned_at":          project.TransitionedAt,
			"current_phase":            project.CurrentPhase,
			"status":                   project.Status,
			"updated_by":               project.UpdatedBy,
			"updated_at":               gorm.Expr("NOW()"),
			"version":                  oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	project.Version = oldVersion + 1
	return nil
}
