package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/ecodeclub/ekit/slice"
	"go.uber.org/zap"

	"cslogbook/backend/internal/dto"
	"cslogbook/backend/internal/model"
	"cslogbook/backend/internal/repository"
)

// ── 截止日期模块业务错误 ──

var (
	ErrDeadlineForbidden     = errors.New("仅教务人员可维护截止日期")
	ErrDeadlineTimeInvalid   = errors.New("截止时间格式无效，应为 RFC3339")
	ErrSubmissionKindUnknown = errors.New("未知的提交类型")
	ErrSubmittedAtInvalid    = errors.New("提交时间格式无效，应为 RFC3339")
)

// DeadlineService 截止日期查询、维护与日历导出
type DeadlineService interface {
	List(ctx context.Context, req *dto.DeadlineQueryRequest) ([]dto.DeadlineResponse, error)
	Create(ctx context.Context, req *dto.CreateDeadlineRequest, actor Actor) (*dto.DeadlineResponse, error)
	// PreviewLateStatus 某类提交若在 submitted_at（缺省为当前时间）提交将得到的迟交标记
	PreviewLateStatus(ctx context.Context, req *dto.LateStatusPreviewRequest) (*dto.LateStatusPreviewResponse, error)
	// CalendarICS 已发布截止日期的 iCalendar 订阅内容
	CalendarICS(ctx context.Context, req *dto.DeadlineQueryRequest) (string, error)
}

type deadlineService struct {
	repo      *repository.Repository
	annotator LateSubmissionAnnotator
	now       func() time.Time
	logger    *zap.Logger
}

// NewDeadlineService 创建 DeadlineService 实例
func NewDeadlineService(repo *repository.Repository, annotator LateSubmissionAnnotator, logger *zap.Logger) DeadlineService {
	return &deadlineService{repo: repo, annotator: annotator, now: time.Now, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *deadlineService) List(ctx context.Context, req *dto.DeadlineQueryRequest) ([]dto.DeadlineResponse, error) {
	deadlines, err := s.repo.Deadline.ListPublished(ctx, req.AcademicYear, req.Semester)
	if err != nil {
		s.logger.Error("查询截止日期失败", zap.Error(err))
		return nil, err
	}
	return slice.Map(deadlines, func(idx int, src model.ImportantDeadline) dto.DeadlineResponse {
		return toDeadlineResponse(src)
	}), nil
}

// ────────────────────── Create ──────────────────────

func (s *deadlineService) Create(ctx context.Context, req *dto.CreateDeadlineRequest, actor Actor) (*dto.DeadlineResponse, error) {
	if !IsStaffCapable(actor) {
		return nil, ErrDeadlineForbidden
	}
	deadlineAt, err := time.Parse(time.RFC3339, req.DeadlineAt)
	if err != nil {
		return nil, ErrDeadlineTimeInvalid
	}

	deadline := &model.ImportantDeadline{
		Name:               req.Name,
		RelatedTo:          model.DeadlineRelatedTo(req.RelatedTo),
		AcademicYear:       req.AcademicYear,
		Semester:           req.Semester,
		DeadlineAt:         deadlineAt,
		GracePeriodMinutes: req.GracePeriodMinutes,
		AllowLate:          req.AllowLate,
		LockAfterDeadline:  req.LockAfterDeadline,
		IsPublished:        req.IsPublished,
		Description:        req.Description,
	}
	deadline.CreatedBy = ActorUserID(actor)
	deadline.UpdatedBy = ActorUserID(actor)

	if err := s.repo.Deadline.Create(ctx, deadline); err != nil {
		s.logger.Error("创建截止日期失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("截止日期已创建",
		zap.Int64("deadline_id", deadline.DeadlineID),
		zap.String("name", deadline.Name),
		zap.Bool("published", deadline.IsPublished),
	)
	resp := toDeadlineResponse(*deadline)
	return &resp, nil
}

// ────────────────────── PreviewLateStatus ──────────────────────

func (s *deadlineService) PreviewLateStatus(ctx context.Context, req *dto.LateStatusPreviewRequest) (*dto.LateStatusPreviewResponse, error) {
	kind := SubmissionKind(req.Kind)
	if !kind.Valid() {
		return nil, ErrSubmissionKindUnknown
	}

	at := s.now()
	if req.SubmittedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.SubmittedAt)
		if err != nil {
			return nil, ErrSubmittedAtInvalid
		}
		at = parsed
	}

	st := s.annotator.Evaluate(ctx, kind, req.AcademicYear, req.Semester, at)
	return &dto.LateStatusPreviewResponse{
		Kind:         string(kind),
		DeadlineName: kind.DeadlineName(),
		SubmittedAt:  at.Format(dto.TimeLayout),
		Evaluation:   toDeadlineStatusResponse(st),
		LateStatus:   toLateStatusResponse(st.LateStatus()),
	}, nil
}

// ────────────────────── CalendarICS ──────────────────────

func (s *deadlineService) CalendarICS(ctx context.Context, req *dto.DeadlineQueryRequest) (string, error) {
	deadlines, err := s.repo.Deadline.ListPublished(ctx, req.AcademicYear, req.Semester)
	if err != nil {
		s.logger.Error("导出截止日期日历失败", zap.Error(err))
		return "", err
	}

	now := s.now()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//CSLogbook//Important Deadlines//TH")
	cal.SetXWRCalName("CSLogbook Deadlines")

	for _, d := range deadlines {
		event := cal.AddEvent(fmt.Sprintf("deadline-%d@cslogbook", d.DeadlineID))
		event.SetDtStampTime(now)
		event.SetCreatedTime(d.CreatedAt)
		event.SetModifiedAt(d.UpdatedAt)
		event.SetStartAt(d.DeadlineAt)
		event.SetEndAt(d.DeadlineAt)
		event.SetSummary(d.Name)
		event.SetDescription(deadlineDescription(d))
		event.AddProperty(ics.ComponentPropertyCategories, string(d.RelatedTo))
	}
	return cal.Serialize(), nil
}

func deadlineDescription(d model.ImportantDeadline) string {
	desc := d.Description
	if d.AllowLate && d.GracePeriodMinutes > 0 {
		if desc != "" {
			desc += "\n"
		}
		desc += fmt.Sprintf("允许迟交，宽限 %d 分钟", d.GracePeriodMinutes)
	}
	if d.LockAfterDeadline {
		if desc != "" {
			desc += "\n"
		}
		desc += "超过宽限期后锁定提交"
	}
	return desc
}
