package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecodeclub/ekit/slice"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cslogbook/backend/internal/dto"
	"cslogbook/backend/internal/model"
	"cslogbook/backend/internal/repository"
	"cslogbook/backend/pkg/metrics"
)

// ── 阶段转换模块业务错误 ──

var (
	ErrTransitionForbidden = errors.New("仅教务人员可手动转换项目阶段")
	ErrProjectNotEligible  = errors.New("项目不满足转入 Project 2 的条件")
	ErrProjectAccessDenied = errors.New("无权查看该项目")
)

// EligibilityReason 不满足转换条件的原因
type EligibilityReason string

const (
	ReasonNotFound            EligibilityReason = "not_found"
	ReasonAlreadyProject2     EligibilityReason = "already_project2"
	ReasonAlreadyTransitioned EligibilityReason = "already_transitioned"
	ReasonExamNotPassed       EligibilityReason = "exam_not_passed"
	ReasonProjectCancelled    EligibilityReason = "project_cancelled"
)

// EligibilityResult 转换资格判定结果
type EligibilityResult struct {
	Eligible bool
	Reason   EligibilityReason
}

// IneligibleError 转换被拒绝，携带具体原因
type IneligibleError struct {
	Reason EligibilityReason
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("%s：%s", ErrProjectNotEligible.Error(), e.Reason)
}

// Is 使 errors.Is(err, ErrProjectNotEligible) 成立
func (e *IneligibleError) Is(target error) bool {
	return target == ErrProjectNotEligible
}

// EvaluateEligibility 按固定顺序检查转换条件，返回第一个不满足的原因
func EvaluateEligibility(p *model.Project) EligibilityResult {
	switch {
	case p == nil:
		return EligibilityResult{Reason: ReasonNotFound}
	case p.ProjectType == model.ProjectTypeProject2:
		return EligibilityResult{Reason: ReasonAlreadyProject2}
	case p.TransitionedToProject2:
		return EligibilityResult{Reason: ReasonAlreadyTransitioned}
	case p.ExamResult == nil || *p.ExamResult != model.ExamResultPassed:
		return EligibilityResult{Reason: ReasonExamNotPassed}
	case p.Status.IsClosed():
		return EligibilityResult{Reason: ReasonProjectCancelled}
	}
	return EligibilityResult{Eligible: true}
}

// PhaseTransitionService Project 1 → Project 2 阶段转换
type PhaseTransitionService interface {
	// CheckEligibility 项目不存在时返回 not_found 原因而非错误
	CheckEligibility(ctx context.Context, projectID int64, actor Actor) (*dto.EligibilityResponse, error)
	Transition(ctx context.Context, projectID int64, actor Actor, typ model.TransitionType) (*dto.TransitionResponse, error)
	// AutoTransitionEligibleProjects 逐个项目独立事务转换，单个失败不影响其余项目
	// initiator 为触发本轮执行的操作人，定时任务传 SystemActor{}
	AutoTransitionEligibleProjects(ctx context.Context, initiator Actor) (*dto.AutoTransitionResponse, error)
	History(ctx context.Context, projectID int64, actor Actor) ([]dto.TransitionLogResponse, error)
}

type phaseTransitionService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *zap.Logger
}

// NewPhaseTransitionService 创建 PhaseTransitionService 实例
func NewPhaseTransitionService(repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) PhaseTransitionService {
	return &phaseTransitionService{repo: repo, metrics: m, now: time.Now, logger: logger}
}

// ────────────────────── CheckEligibility ──────────────────────

func (s *phaseTransitionService) CheckEligibility(ctx context.Context, projectID int64, actor Actor) (*dto.EligibilityResponse, error) {
	project, err := s.repo.Project.GetByID(ctx, projectID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询项目失败", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, err
	}
	if project != nil && !canViewProject(project, actor) {
		return nil, ErrProjectAccessDenied
	}

	result := EvaluateEligibility(project)
	return &dto.EligibilityResponse{
		ProjectID: projectID,
		Eligible:  result.Eligible,
		Reason:    string(result.Reason),
	}, nil
}

// ────────────────────── Transition ──────────────────────

func (s *phaseTransitionService) Transition(ctx context.Context, projectID int64, actor Actor, typ model.TransitionType) (*dto.TransitionResponse, error) {
	return s.transition(ctx, projectID, actor, typ, nil)
}

// transition initiator 非空时记录批量转换的实际触发人
func (s *phaseTransitionService) transition(ctx context.Context, projectID int64, actor Actor, typ model.TransitionType, initiator Actor) (*dto.TransitionResponse, error) {
	switch typ {
	case model.TransitionManual:
		if !IsStaffCapable(actor) {
			return nil, ErrTransitionForbidden
		}
	case model.TransitionAuto:
		if _, ok := actor.(SystemActor); !ok {
			return nil, ErrTransitionForbidden
		}
	default:
		return nil, fmt.Errorf("未知的转换类型: %s", typ)
	}

	var transitioned *model.Project
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		project, err := tx.Project.GetByIDForUpdate(ctx, projectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return err
		}
		// 加锁后重新判定，防止手动与自动转换并发执行
		if result := EvaluateEligibility(project); !result.Eligible {
			return &IneligibleError{Reason: result.Reason}
		}

		now := s.now()
		userID := ActorUserID(actor)
		fromType, fromPhase, fromStatus := project.ProjectType, project.CurrentPhase, project.Status

		project.ProjectType = model.ProjectTypeProject2
		project.TransitionedToProject2 = true
		project.TransitionedAt = &now
		project.CurrentPhase = model.PhaseThesisInProgress
		project.Status = model.ProjectStatusInProgress
		project.UpdatedBy = userID
		if err := tx.Project.MarkTransitioned(ctx, project); err != nil {
			return err
		}

		metadata := datatypes.JSONMap{
			"previous_status": string(fromStatus),
			"exam_result":     string(model.ExamResultPassed),
			"academic_year":   project.AcademicYear,
			"semester":        project.Semester,
		}
		if initiatorID := ActorUserID(initiator); initiatorID != nil {
			metadata["triggered_by_user_id"] = *initiatorID
			metadata["triggered_by"] = ActorLabel(initiator)
		}
		if err := tx.TransitionLog.Create(ctx, &model.ProjectTransitionLog{
			ProjectID:      projectID,
			TransitionType: typ,
			TriggeredBy:    userID,
			ActorLabel:     ActorLabel(actor),
			FromType:       fromType,
			ToType:         project.ProjectType,
			FromPhase:      fromPhase,
			ToPhase:        project.CurrentPhase,
			Metadata:       metadata,
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		if err := tx.Timeline.Create(ctx, &model.TimelineEvent{
			ProjectID: projectID,
			EventType: "phase_transition",
			Title:     "项目已转入 Project 2（毕业论文阶段）",
			ActorID:   userID,
			Metadata: datatypes.JSONMap{
				"transition_type": string(typ),
				"from_phase":      string(fromPhase),
				"to_phase":        string(project.CurrentPhase),
			},
			CreatedAt: now,
		}); err != nil {
			return err
		}
		transitioned = project
		return nil
	})
	if err != nil {
		s.metrics.PhaseTransitions.WithLabelValues(string(typ), transitionResultLabel(err)).Inc()
		if !errors.Is(err, ErrProjectNotFound) && !errors.Is(err, ErrProjectNotEligible) {
			s.logger.Error("项目阶段转换失败",
				zap.Int64("project_id", projectID),
				zap.String("type", string(typ)),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.metrics.PhaseTransitions.WithLabelValues(string(typ), "success").Inc()
	s.logger.Info("项目已转入 Project 2",
		zap.Int64("project_id", projectID),
		zap.String("type", string(typ)),
		zap.String("actor", ActorLabel(actor)),
	)
	return toTransitionResponse(transitioned), nil
}

// ────────────────────── AutoTransitionEligibleProjects ──────────────────────

func (s *phaseTransitionService) AutoTransitionEligibleProjects(ctx context.Context, initiator Actor) (*dto.AutoTransitionResponse, error) {
	if _, ok := initiator.(SystemActor); !ok && !IsStaffCapable(initiator) {
		return nil, ErrTransitionForbidden
	}
	ids, err := s.repo.Project.ListEligibleForTransition(ctx)
	if err != nil {
		s.logger.Error("查询待转换项目失败", zap.Error(err))
		return nil, err
	}

	summary := &dto.AutoTransitionResponse{Results: make([]dto.AutoTransitionItem, 0, len(ids))}
	for _, id := range ids {
		item := dto.AutoTransitionItem{ProjectID: id}
		_, err := s.transition(ctx, id, SystemActor{}, model.TransitionAuto, initiator)

		var ineligible *IneligibleError
		switch {
		case err == nil:
			item.Success = true
			summary.Transitioned++
		case errors.As(err, &ineligible):
			// 查询之后被其他操作转换或修改，本轮跳过
			item.Reason = string(ineligible.Reason)
			summary.Skipped++
		case errors.Is(err, ErrProjectNotFound):
			// 查询之后被删除
			item.Reason = string(ReasonNotFound)
			summary.Skipped++
		default:
			item.Error = err.Error()
			summary.Failed++
		}
		summary.Results = append(summary.Results, item)
	}

	s.logger.Info("自动转换执行完成",
		zap.String("initiator", ActorLabel(initiator)),
		zap.Int("candidates", len(ids)),
		zap.Int("transitioned", summary.Transitioned),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// ────────────────────── History ──────────────────────

func (s *phaseTransitionService) History(ctx context.Context, projectID int64, actor Actor) ([]dto.TransitionLogResponse, error) {
	project, err := s.repo.Project.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, err
	}
	if !canViewProject(project, actor) {
		return nil, ErrProjectAccessDenied
	}

	logs, err := s.repo.TransitionLog.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("查询转换记录失败", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, err
	}
	return slice.Map(logs, func(idx int, src model.ProjectTransitionLog) dto.TransitionLogResponse {
		return toTransitionLogResponse(src)
	}), nil
}

func transitionResultLabel(err error) string {
	if errors.Is(err, ErrProjectNotEligible) || errors.Is(err, ErrProjectNotFound) {
		return "rejected"
	}
	return "error"
}
