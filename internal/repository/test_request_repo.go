package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cslogbook/backend/internal/model"
	pkgerrors "cslogbook/backend/pkg/errors"
)

// TestRequestRepository 系统测试申请数据访问接口
type TestRequestRepository interface {
	Create(ctx context.Context, req *model.ProjectTestRequest) error
	// GetLatestByProject 项目最近一次提交的申请，仅该行参与鉴权与状态判断
	GetLatestByProject(ctx context.Context, projectID int64) (*model.ProjectTestRequest, error)
	// GetLatestByProjectForUpdate 同上并加行锁，必须在事务中调用
	GetLatestByProjectForUpdate(ctx context.Context, projectID int64) (*model.ProjectTestRequest, error)
	Update(ctx context.Context, req *model.ProjectTestRequest) error
	ListForAdvisor(ctx context.Context, teacherID int64, recentSince time.Time) ([]model.ProjectTestRequest, error)
	ListForStaff(ctx context.Context, q StaffQueueQuery, offset, limit int) ([]model.ProjectTestRequest, int64, error)
}

// StaffQueueQuery 教务待办筛选条件
// Statuses 中的状态全部返回，RecentStatuses 中的状态只返回 RecentSince 之后更新过的
type StaffQueueQuery struct {
	Statuses       []model.TestRequestStatus
	RecentStatuses []model.TestRequestStatus
	RecentSince    time.Time
}

type testRequestRepo struct {
	db *gorm.DB
}

// NewTestRequestRepo 创建 TestRequestRepository 实例
func NewTestRequestRepo(db *gorm.DB) TestRequestRepository {
	return &testRequestRepo{db: db}
}

func (r *testRequestRepo) Create(ctx context.Context, req *model.ProjectTestRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *testRequestRepo) GetLatestByProject(ctx context.Context, projectID int64) (*model.ProjectTestRequest, error) {
	return r.latest(r.db.WithContext(ctx), projectID)
}

func (r *testRequestRepo) GetLatestByProjectForUpdate(ctx context.Context, projectID int64) (*model.ProjectTestRequest, error) {
	return r.latest(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), projectID)
}

func (r *testRequestRepo) latest(db *gorm.DB, projectID int64) (*model.ProjectTestRequest, error) {
	var req model.ProjectTestRequest
	err := db.
		Where("project_id = ?", projectID).
		Order("submitted_at DESC").
		Order("request_id DESC").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Update 只写入流程中会变化的列，version 作乐观锁
func (r *testRequestRepo) Update(ctx context.Context, req *model.ProjectTestRequest) error {
	oldVersion := req.Version
	result := r.db.WithContext(ctx).
		Model(&model.ProjectTestRequest{}).
		Where("request_id = ? AND version = ?", req.RequestID, oldVersion).
		Updates(map[string]interface{}{
			"status":                req.Status,
			"advisor_decision":      req.Advisor.Decision,
			"advisor_decided_at":    req.Advisor.DecidedAt,
			"advisor_note":          req.Advisor.Note,
			"co_advisor_decision":   req.CoAdvisor.Decision,
			"co_advisor_decided_at": req.CoAdvisor.DecidedAt,
			"co_advisor_note":       req.CoAdvisor.Note,
			"staff_user_id":         req.StaffUserID,
			"staff_decided_at":      req.StaffDecidedAt,
			"staff_note":            req.StaffNote,
			"evidence_file_path":    req.EvidenceFilePath,
			"evidence_file_name":    req.EvidenceFileName,
			"evidence_submitted_at": req.EvidenceSubmittedAt,
			"evidence_submitted_by": req.EvidenceSubmittedBy,
			"updated_by":            req.UpdatedBy,
			"updated_at":            gorm.Expr("NOW()"),
			"version":               oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version = oldVersion + 1
	return nil
}

// ListForAdvisor 教师作为主导师或副导师的申请：在途的全部返回，已结束的只返回近期更新过的
func (r *testRequestRepo) ListForAdvisor(ctx context.Context, teacherID int64, recentSince time.Time) ([]model.ProjectTestRequest, error) {
	var reqs []model.ProjectTestRequest
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("advisor_teacher_id = ? OR co_advisor_teacher_id = ?", teacherID, teacherID).
		Where("status IN ? OR updated_at >= ?", model.OpenTestRequestStatuses, recentSince).
		Order("submitted_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *testRequestRepo) ListForStaff(ctx context.Context, q StaffQueueQuery, offset, limit int) ([]model.ProjectTestRequest, int64, error) {
	var reqs []model.ProjectTestRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ProjectTestRequest{})
	switch {
	case len(q.Statuses) > 0 && len(q.RecentStatuses) > 0:
		db = db.Where("status IN ? OR (status IN ? AND updated_at >= ?)", q.Statuses, q.RecentStatuses, q.RecentSince)
	case len(q.Statuses) > 0:
		db = db.Where("status IN ?", q.Statuses)
	case len(q.RecentStatuses) > 0:
		db = db.Where("status IN ? AND updated_at >= ?", q.RecentStatuses, q.RecentSince)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Project").
		Offset(offset).Limit(limit).
		Order("submitted_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}
