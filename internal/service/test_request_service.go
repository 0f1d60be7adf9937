package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecodeclub/ekit/slice"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cslogbook/backend/internal/dto"
	"cslogbook/backend/internal/model"
	"cslogbook/backend/internal/repository"
	pkgerrors "cslogbook/backend/pkg/errors"
	"cslogbook/backend/pkg/metrics"
)

// ── 系统测试申请模块业务错误 ──

var (
	ErrProjectNotFound          = errors.New("项目不存在")
	ErrTestRequestNotFound      = errors.New("系统测试申请不存在")
	ErrTestRequestAccessDenied  = errors.New("无权查看该项目的系统测试申请")
	ErrNotProjectMember         = errors.New("仅项目成员学生可执行此操作")
	ErrNotAdvisorOfRecord       = errors.New("仅该申请的指导教师可审批")
	ErrNotStaffCapable          = errors.New("仅教务人员可执行此操作")
	ErrProjectStatusNotAllowed  = errors.New("项目当前状态不允许提交系统测试申请")
	ErrProjectHasNoAdvisor      = errors.New("项目尚未指定指导教师")
	ErrTestRequestAlreadyOpen   = errors.New("项目已有进行中或待上传证明的系统测试申请")
	ErrTestWindowInvalidDate    = errors.New("测试日期格式无效，应为 YYYY-MM-DD")
	ErrTestWindowEndBeforeStart = errors.New("测试结束日期不能早于开始日期")
	ErrTestWindowTooShort       = errors.New("测试时长不足")
	ErrTestStartTooFar          = errors.New("测试开始日期超出允许的提前范围")
	ErrMeetingLogInsufficient   = errors.New("已审核通过的指导记录数量不足")
	ErrTestRequestStateInvalid  = errors.New("申请当前状态不允许此操作")
	ErrAdvisorAlreadyDecided    = errors.New("您已对该申请给出审批意见")
	ErrInvalidDecision          = errors.New("审批意见只能为 approve 或 reject")
	ErrEvidenceFileRequired     = errors.New("请上传测试证明文件")
	ErrEvidenceAlreadySubmitted = errors.New("测试证明已上传，不能重复提交")
)

// MeetingLogShortfallError 指导记录不足，携带具体差额
type MeetingLogShortfallError struct {
	Required int
	Approved int
}

func (e *MeetingLogShortfallError) Error() string {
	return fmt.Sprintf("%s：需要 %d 条，已通过 %d 条，还差 %d 条",
		ErrMeetingLogInsufficient.Error(), e.Required, e.Approved, e.Required-e.Approved)
}

// Is 使 errors.Is(err, ErrMeetingLogInsufficient) 成立
func (e *MeetingLogShortfallError) Is(target error) bool {
	return target == ErrMeetingLogInsufficient
}

// 学生可提交系统测试申请的项目状态
var testRequestSubmittableStatuses = map[model.ProjectStatus]bool{
	model.ProjectStatusInProgress: true,
	model.ProjectStatusCompleted:  true,
}

// 教务已处理的申请状态，默认待办中只显示近期更新过的
var staffHandledStatuses = []model.TestRequestStatus{
	model.TestRequestStaffApproved,
	model.TestRequestStaffRejected,
	model.TestRequestEvidenceSubmitted,
}

// TestRequestService 系统测试申请审批流程
type TestRequestService interface {
	GetLatest(ctx context.Context, projectID int64, actor Actor) (*dto.LatestTestRequestResponse, error)
	Submit(ctx context.Context, projectID int64, actor Actor, req *dto.SubmitTestRequestRequest, file *dto.UploadDescriptor) (*dto.TestRequestResponse, error)
	SubmitAdvisorDecision(ctx context.Context, projectID int64, actor Actor, req *dto.DecisionRequest) (*dto.TestRequestResponse, error)
	SubmitStaffDecision(ctx context.Context, projectID int64, actor Actor, req *dto.DecisionRequest) (*dto.TestRequestResponse, error)
	UploadEvidence(ctx context.Context, projectID int64, actor Actor, file *dto.UploadDescriptor) (*dto.TestRequestResponse, error)
	AdvisorQueue(ctx context.Context, actor Actor) ([]dto.AdvisorQueueItem, error)
	StaffQueue(ctx context.Context, actor Actor, req *dto.StaffQueueRequest) ([]dto.StaffQueueItem, int64, error)
}

type testRequestService struct {
	repo      *repository.Repository
	settings  SystemConfigService
	annotator LateSubmissionAnnotator
	metrics   *metrics.Metrics
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewTestRequestService 创建 TestRequestService 实例
// loc 为业务时区，测试窗口按该时区的自然日计算
func NewTestRequestService(
	repo *repository.Repository,
	settings SystemConfigService,
	annotator LateSubmissionAnnotator,
	m *metrics.Metrics,
	loc *time.Location,
	logger *zap.Logger,
) TestRequestService {
	return &testRequestService{
		repo:      repo,
		settings:  settings,
		annotator: annotator,
		metrics:   m,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// ────────────────────── GetLatest ──────────────────────

func (s *testRequestService) GetLatest(ctx context.Context, projectID int64, actor Actor) (*dto.LatestTestRequestResponse, error) {
	project, err := s.getProject(ctx, s.repo, projectID)
	if err != nil {
		return nil, err
	}
	if !canViewProject(project, actor) {
		return nil, ErrTestRequestAccessDenied
	}

	resp := &dto.LatestTestRequestResponse{ProjectID: projectID, Status: string(model.TestRequestNone)}
	latest, err := s.repo.TestRequest.GetLatestByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resp, nil
		}
		s.logger.Error("查询系统测试申请失败", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, err
	}

	item := toTestRequestResponse(latest, s.loc)
	resp.Status = item.Status
	resp.Request = &item
	return resp, nil
}

// ────────────────────── Submit ──────────────────────

func (s *testRequestService) Submit(ctx context.Context, projectID int64, actor Actor, req *dto.SubmitTestRequestRequest, file *dto.UploadDescriptor) (*dto.TestRequestResponse, error) {
	student, ok := actor.(StudentActor)
	if !ok {
		return nil, ErrNotProjectMember
	}

	start, err := parseCalendarDate(req.TestStartDate, s.loc)
	if err != nil {
		return nil, err
	}
	due, err := parseCalendarDate(req.TestDueDate, s.loc)
	if err != nil {
		return nil, err
	}

	settings := s.settings.Settings(ctx)
	now := s.now()
	var created *model.ProjectTestRequest

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		project, err := s.getProjectForUpdate(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if !project.IsMember(student.StudentID) {
			return ErrNotProjectMember
		}
		if !testRequestSubmittableStatuses[project.Status] {
			return ErrProjectStatusNotAllowed
		}
		if project.AdvisorID == nil {
			return ErrProjectHasNoAdvisor
		}

		latest, err := tx.TestRequest.GetLatestByProject(ctx, projectID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if latest != nil && latest.Status.IsOpen() {
			return ErrTestRequestAlreadyOpen
		}

		if err := validateTestWindow(start, due, now.In(s.loc), settings); err != nil {
			return err
		}

		approved, err := tx.MeetingLog.CountApproved(ctx, student.StudentID, projectID, project.ProjectType)
		if err != nil {
			return err
		}
		if approved < int64(settings.MinApprovedMeetingLogs) {
			return &MeetingLogShortfallError{Required: settings.MinApprovedMeetingLogs, Approved: int(approved)}
		}

		year, sem := project.AcademicYear, project.Semester
		created = &model.ProjectTestRequest{
			ProjectID:            projectID,
			Status:               model.TestRequestPendingAdvisor,
			SubmittedByStudentID: student.StudentID,
			SubmittedAt:          now,
			TestStartDate:        start,
			TestDueDate:          endOfDay(due),
			StudentNote:          optionalString(req.StudentNote),
			Advisor:              model.DecisionSlot{TeacherID: project.AdvisorID},
			CoAdvisor:            model.DecisionSlot{TeacherID: project.CoAdvisorID},
			SubmissionLateStatus: s.annotator.Annotate(ctx, KindSystemTest, &year, &sem, now),
		}
		if file != nil && file.Path != "" {
			created.RequestFilePath = &file.Path
			created.RequestFileName = optionalString(file.OriginalFilename)
		}
		created.CreatedBy = &student.UserID
		created.UpdatedBy = &student.UserID

		if err := tx.TestRequest.Create(ctx, created); err != nil {
			if pkgerrors.IsDuplicateKey(err) {
				return ErrTestRequestAlreadyOpen
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.unexpected(err, "提交系统测试申请失败", projectID)
	}

	s.metrics.TestRequestTransitions.WithLabelValues(string(created.Status)).Inc()
	s.logger.Info("系统测试申请已提交",
		zap.Int64("project_id", projectID),
		zap.Int64("request_id", created.RequestID),
		zap.Int64("student_id", student.StudentID),
		zap.Bool("submitted_late", created.SubmittedLate),
	)
	resp := toTestRequestResponse(created, s.loc)
	return &resp, nil
}

// ────────────────────── SubmitAdvisorDecision ──────────────────────

func (s *testRequestService) SubmitAdvisorDecision(ctx context.Context, projectID int64, actor Actor, req *dto.DecisionRequest) (*dto.TestRequestResponse, error) {
	teacher, ok := actor.(TeacherActor)
	if !ok {
		return nil, ErrNotAdvisorOfRecord
	}
	decision := model.Decision(req.Decision)
	if !decision.Valid() {
		return nil, ErrInvalidDecision
	}

	now := s.now()
	var updated *model.ProjectTestRequest
	var role model.AdvisorRole

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := s.getProject(ctx, tx, projectID); err != nil {
			return err
		}
		// 加锁后重新读取，另一位导师可能刚刚写入了自己的槽位
		latest, err := s.getLatestForUpdate(ctx, tx, projectID)
		if err != nil {
			return err
		}

		var ok bool
		role, ok = advisorRoleOnRequest(latest, teacher.TeacherID)
		if !ok {
			return ErrNotAdvisorOfRecord
		}
		if latest.Status != model.TestRequestPendingAdvisor {
			return ErrTestRequestStateInvalid
		}

		slot := latest.Slot(role)
		if slot.Decided() {
			return ErrAdvisorAlreadyDecided
		}
		slot.Decision = &decision
		slot.DecidedAt = &now
		slot.Note = optionalString(req.Note)

		latest.Status = CombineAdvisorDecisions(latest.Advisor, latest.CoAdvisor, latest.HasCoAdvisor())
		latest.UpdatedBy = &teacher.UserID
		if err := tx.TestRequest.Update(ctx, latest); err != nil {
			return err
		}
		updated = latest
		return nil
	})
	if err != nil {
		return nil, s.unexpected(err, "提交导师审批失败", projectID)
	}

	s.metrics.TestRequestTransitions.WithLabelValues(string(updated.Status)).Inc()
	s.logger.Info("导师已审批系统测试申请",
		zap.Int64("project_id", projectID),
		zap.Int64("request_id", updated.RequestID),
		zap.Int64("teacher_id", teacher.TeacherID),
		zap.String("role", string(role)),
		zap.String("decision", string(decision)),
		zap.String("status", string(updated.Status)),
	)
	resp := toTestRequestResponse(updated, s.loc)
	return &resp, nil
}

// ────────────────────── SubmitStaffDecision ──────────────────────

func (s *testRequestService) SubmitStaffDecision(ctx context.Context, projectID int64, actor Actor, req *dto.DecisionRequest) (*dto.TestRequestResponse, error) {
	if !IsStaffCapable(actor) {
		return nil, ErrNotStaffCapable
	}
	decision := model.Decision(req.Decision)
	if !decision.Valid() {
		return nil, ErrInvalidDecision
	}

	now := s.now()
	userID := ActorUserID(actor)
	var updated *model.ProjectTestRequest

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := s.getProject(ctx, tx, projectID); err != nil {
			return err
		}
		latest, err := s.getLatestForUpdate(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if latest.Status != model.TestRequestPendingStaff {
			return ErrTestRequestStateInvalid
		}

		latest.Status = model.TestRequestStaffRejected
		if decision == model.DecisionApprove {
			latest.Status = model.TestRequestStaffApproved
		}
		latest.StaffUserID = userID
		latest.StaffDecidedAt = &now
		latest.StaffNote = optionalString(req.Note)
		latest.UpdatedBy = userID
		if err := tx.TestRequest.Update(ctx, latest); err != nil {
			return err
		}
		updated = latest
		return nil
	})
	if err != nil {
		return nil, s.unexpected(err, "提交教务审批失败", projectID)
	}

	s.metrics.TestRequestTransitions.WithLabelValues(string(updated.Status)).Inc()
	s.logger.Info("教务已审批系统测试申请",
		zap.Int64("project_id", projectID),
		zap.Int64("request_id", updated.RequestID),
		zap.String("decision", string(decision)),
	)
	resp := toTestRequestResponse(updated, s.loc)
	return &resp, nil
}

// ────────────────────── UploadEvidence ──────────────────────

func (s *testRequestService) UploadEvidence(ctx context.Context, projectID int64, actor Actor, file *dto.UploadDescriptor) (*dto.TestRequestResponse, error) {
	student, ok := actor.(StudentActor)
	if !ok {
		return nil, ErrNotProjectMember
	}
	if file == nil || file.Path == "" {
		return nil, ErrEvidenceFileRequired
	}

	now := s.now()
	var updated *model.ProjectTestRequest

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		project, err := s.getProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if !project.IsMember(student.StudentID) {
			return ErrNotProjectMember
		}
		latest, err := s.getLatestForUpdate(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if latest.HasEvidence() {
			return ErrEvidenceAlreadySubmitted
		}
		if latest.Status != model.TestRequestStaffApproved {
			return ErrTestRequestStateInvalid
		}

		latest.EvidenceFilePath = &file.Path
		latest.EvidenceFileName = optionalString(file.OriginalFilename)
		latest.EvidenceSubmittedAt = &now
		latest.EvidenceSubmittedBy = &student.StudentID
		latest.Status = model.TestRequestEvidenceSubmitted
		latest.UpdatedBy = &student.UserID
		if err := tx.TestRequest.Update(ctx, latest); err != nil {
			return err
		}
		updated = latest
		return nil
	})
	if err != nil {
		return nil, s.unexpected(err, "上传测试证明失败", projectID)
	}

	if now.Before(updated.TestDueDate) {
		s.metrics.EarlyEvidenceUploads.Inc()
		s.logger.Warn("测试证明在测试截止日前上传",
			zap.Int64("project_id", projectID),
			zap.Int64("request_id", updated.RequestID),
			zap.Time("test_due_date", updated.TestDueDate),
			zap.Time("uploaded_at", now),
		)
	}
	s.metrics.TestRequestTransitions.WithLabelValues(string(updated.Status)).Inc()
	resp := toTestRequestResponse(updated, s.loc)
	return &resp, nil
}

// ────────────────────── AdvisorQueue ──────────────────────

func (s *testRequestService) AdvisorQueue(ctx context.Context, actor Actor) ([]dto.AdvisorQueueItem, error) {
	teacher, ok := actor.(TeacherActor)
	if !ok {
		return nil, ErrNotAdvisorOfRecord
	}

	settings := s.settings.Settings(ctx)
	since := s.now().AddDate(0, 0, -settings.QueueRecentDays)
	reqs, err := s.repo.TestRequest.ListForAdvisor(ctx, teacher.TeacherID, since)
	if err != nil {
		s.logger.Error("查询导师待办失败", zap.Int64("teacher_id", teacher.TeacherID), zap.Error(err))
		return nil, err
	}

	return slice.Map(reqs, func(idx int, src model.ProjectTestRequest) dto.AdvisorQueueItem {
		role, _ := advisorRoleOnRequest(&src, teacher.TeacherID)
		item := dto.AdvisorQueueItem{
			TestRequestResponse: toTestRequestResponse(&src, s.loc),
			ProjectName:         projectDisplayName(src.Project),
			MyRole:              string(role),
			AwaitingMe:          src.Status == model.TestRequestPendingAdvisor && !src.Slot(role).Decided(),
		}
		if src.Project != nil {
			item.ProjectCode = src.Project.ProjectCode
		}
		return item
	}), nil
}

// ────────────────────── StaffQueue ──────────────────────

func (s *testRequestService) StaffQueue(ctx context.Context, actor Actor, req *dto.StaffQueueRequest) ([]dto.StaffQueueItem, int64, error) {
	if !IsStaffCapable(actor) {
		return nil, 0, ErrNotStaffCapable
	}

	var query repository.StaffQueueQuery
	if len(req.Status) > 0 {
		query.Statuses = slice.Map(req.Status, func(idx int, src string) model.TestRequestStatus {
			return model.TestRequestStatus(src)
		})
	} else {
		// 默认：待教务审批的全部返回，教务已处理的只返回近期的
		settings := s.settings.Settings(ctx)
		query = repository.StaffQueueQuery{
			Statuses:       []model.TestRequestStatus{model.TestRequestPendingStaff},
			RecentStatuses: staffHandledStatuses,
			RecentSince:    s.now().AddDate(0, 0, -settings.QueueRecentDays),
		}
	}

	reqs, total, err := s.repo.TestRequest.ListForStaff(ctx, query, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询教务待办失败", zap.Error(err))
		return nil, 0, err
	}

	// 同一学期的项目共用一个截止日期，按学期缓存评估结果
	now := s.now()
	evaluated := make(map[[2]int]DeadlineStatus)
	items := slice.Map(reqs, func(idx int, src model.ProjectTestRequest) dto.StaffQueueItem {
		item := dto.StaffQueueItem{
			TestRequestResponse: toTestRequestResponse(&src, s.loc),
			ProjectName:         projectDisplayName(src.Project),
			Deadline:            toDeadlineStatusResponse(DeadlineStatus{Status: DeadlineNone}),
		}
		if src.Project == nil {
			return item
		}
		item.ProjectCode = src.Project.ProjectCode
		key := [2]int{src.Project.AcademicYear, src.Project.Semester}
		st, ok := evaluated[key]
		if !ok {
			year, sem := key[0], key[1]
			st = s.annotator.Evaluate(ctx, KindSystemTest, &year, &sem, now)
			evaluated[key] = st
		}
		item.Deadline = toDeadlineStatusResponse(st)
		return item
	})
	return items, total, nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *testRequestService) getProject(ctx context.Context, repo *repository.Repository, projectID int64) (*model.Project, error) {
	project, err := repo.Project.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *testRequestService) getProjectForUpdate(ctx context.Context, tx *repository.Repository, projectID int64) (*model.Project, error) {
	project, err := tx.Project.GetByIDForUpdate(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *testRequestService) getLatestForUpdate(ctx context.Context, tx *repository.Repository, projectID int64) (*model.ProjectTestRequest, error) {
	latest, err := tx.TestRequest.GetLatestByProjectForUpdate(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestRequestNotFound
		}
		return nil, err
	}
	return latest, nil
}

// unexpected 业务错误原样返回，其余错误记录日志
func (s *testRequestService) unexpected(err error, msg string, projectID int64) error {
	if isTestRequestBusinessError(err) {
		return err
	}
	s.logger.Error(msg, zap.Int64("project_id", projectID), zap.Error(err))
	return err
}

func isTestRequestBusinessError(err error) bool {
	for _, target := range []error{
		ErrProjectNotFound, ErrTestRequestNotFound, ErrNotProjectMember, ErrNotAdvisorOfRecord,
		ErrProjectStatusNotAllowed, ErrProjectHasNoAdvisor, ErrTestRequestAlreadyOpen,
		ErrTestWindowEndBeforeStart, ErrTestWindowTooShort, ErrTestStartTooFar, ErrMeetingLogInsufficient,
		ErrTestRequestStateInvalid, ErrAdvisorAlreadyDecided, ErrEvidenceAlreadySubmitted,
		pkgerrors.ErrOptimisticLock,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// advisorRoleOnRequest 以提交时快照的导师为准判断教师角色
func advisorRoleOnRequest(req *model.ProjectTestRequest, teacherID int64) (model.AdvisorRole, bool) {
	if req.Advisor.TeacherID != nil && *req.Advisor.TeacherID == teacherID {
		return model.AdvisorRolePrimary, true
	}
	if req.CoAdvisor.TeacherID != nil && *req.CoAdvisor.TeacherID == teacherID {
		return model.AdvisorRoleCo, true
	}
	return "", false
}

// validateTestWindow 校验测试窗口（均为业务时区的自然日零点）
func validateTestWindow(start, due, now time.Time, settings WorkflowSettings) error {
	if due.Before(start) {
		return ErrTestWindowEndBeforeStart
	}
	if days := daysBetween(start, due); days < settings.TestWindowMinDays {
		return fmt.Errorf("%w：至少 %d 天，当前 %d 天", ErrTestWindowTooShort, settings.TestWindowMinDays, days)
	}
	today := startOfDay(now)
	if lead := daysBetween(today, start); lead > settings.TestStartMaxLeadDays {
		return fmt.Errorf("%w：开始日期最多为 %d 天后", ErrTestStartTooFar, settings.TestStartMaxLeadDays)
	}
	return nil
}

// parseCalendarDate 解析 YYYY-MM-DD，返回业务时区当日零点
func parseCalendarDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dto.DateLayout, value, loc)
	if err != nil {
		return time.Time{}, ErrTestWindowInvalidDate
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// endOfDay 取到秒，避免数据库微秒精度进位到次日
func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Second)
}

// daysBetween 两个日期相差的自然日数，不受夏令时影响
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
