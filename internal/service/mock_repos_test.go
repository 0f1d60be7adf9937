package service

import (
	"context"
	"slices"
	"sort"
	"time"

	"gorm.io/gorm"

	"cslogbook/backend/internal/model"
	"cslogbook/backend/internal/repository"
	pkgerrors "cslogbook/backend/pkg/errors"
)

// ── Mock ProjectRepository ──

type mockProjectRepo struct {
	projects map[int64]*model.Project
	getErr   error
	listErr  error
	markErr  map[int64]error
	// staleIDs 模拟查询后被并发修改的候选项目
	staleIDs []int64
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[int64]*model.Project), markErr: make(map[int64]error)}
}

func cloneProject(p *model.Project) *model.Project {
	cp := *p
	cp.Members = append([]model.ProjectMember(nil), p.Members...)
	return &cp
}

func (m *mockProjectRepo) GetByID(_ context.Context, id int64) (*model.Project, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if p, ok := m.projects[id]; ok {
		return cloneProject(p), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.Project, error) {
	return m.GetByID(ctx, id)
}

func (m *mockProjectRepo) ListEligibleForTransition(_ context.Context) ([]int64, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var ids []int64
	for id, p := range m.projects {
		if p.ProjectType != model.ProjectTypeProject2 && !p.TransitionedToProject2 &&
			p.ExamResult != nil && *p.ExamResult == model.ExamResultPassed && !p.Status.IsClosed() {
			ids = append(ids, id)
		}
	}
	ids = append(ids, m.staleIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *mockProjectRepo) MarkTransitioned(_ context.Context, project *model.Project) error {
	if err := m.markErr[project.ProjectID]; err != nil {
		return err
	}
	stored, ok := m.projects[project.ProjectID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != project.Version {
		return pkgerrors.ErrOptimisticLock
	}
	project.Version++
	m.projects[project.ProjectID] = cloneProject(project)
	return nil
}

// ── Mock TestRequestRepository ──

type mockTestRequestRepo struct {
	requests  []*model.ProjectTestRequest
	nextID    int64
	projects  *mockProjectRepo
	createErr error
	updateErr error
	// now 模拟 updated_at = NOW()
	now func() time.Time
}

func newMockTestRequestRepo(projects *mockProjectRepo, now func() time.Time) *mockTestRequestRepo {
	return &mockTestRequestRepo{nextID: 1, projects: projects, now: now}
}

func cloneRequest(r *model.ProjectTestRequest) *model.ProjectTestRequest {
	cp := *r
	cp.Project = nil
	return &cp
}

// Create 模拟 uq_test_request_open_per_project 部分唯一索引
func (m *mockTestRequestRepo) Create(_ context.Context, req *model.ProjectTestRequest) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, r := range m.requests {
		if r.ProjectID == req.ProjectID && r.Status.IsOpen() && req.Status.IsOpen() {
			return gorm.ErrDuplicatedKey
		}
	}
	req.RequestID = m.nextID
	m.nextID++
	req.Version = 1
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = req.SubmittedAt
	}
	m.requests = append(m.requests, cloneRequest(req))
	return nil
}

func (m *mockTestRequestRepo) GetLatestByProject(_ context.Context, projectID int64) (*model.ProjectTestRequest, error) {
	var latest *model.ProjectTestRequest
	for _, r := range m.requests {
		if r.ProjectID != projectID {
			continue
		}
		if latest == nil || r.SubmittedAt.After(latest.SubmittedAt) ||
			(r.SubmittedAt.Equal(latest.SubmittedAt) && r.RequestID > latest.RequestID) {
			latest = r
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneRequest(latest), nil
}

func (m *mockTestRequestRepo) GetLatestByProjectForUpdate(ctx context.Context, projectID int64) (*model.ProjectTestRequest, error) {
	return m.GetLatestByProject(ctx, projectID)
}

func (m *mockTestRequestRepo) Update(_ context.Context, req *model.ProjectTestRequest) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for i, r := range m.requests {
		if r.RequestID != req.RequestID {
			continue
		}
		if r.Version != req.Version {
			return pkgerrors.ErrOptimisticLock
		}
		req.Version++
		req.UpdatedAt = m.now()
		m.requests[i] = cloneRequest(req)
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockTestRequestRepo) withProject(r *model.ProjectTestRequest) model.ProjectTestRequest {
	cp := *cloneRequest(r)
	if p, ok := m.projects.projects[r.ProjectID]; ok {
		cp.Project = cloneProject(p)
	}
	return cp
}

func (m *mockTestRequestRepo) ListForAdvisor(_ context.Context, teacherID int64, recentSince time.Time) ([]model.ProjectTestRequest, error) {
	var result []model.ProjectTestRequest
	for _, r := range m.requests {
		named := (r.Advisor.TeacherID != nil && *r.Advisor.TeacherID == teacherID) ||
			(r.CoAdvisor.TeacherID != nil && *r.CoAdvisor.TeacherID == teacherID)
		if !named {
			continue
		}
		if r.Status.IsOpen() || !r.UpdatedAt.Before(recentSince) {
			result = append(result, m.withProject(r))
		}
	}
	return result, nil
}

func (m *mockTestRequestRepo) ListForStaff(_ context.Context, q repository.StaffQueueQuery, offset, limit int) ([]model.ProjectTestRequest, int64, error) {
	var matched []model.ProjectTestRequest
	for _, r := range m.requests {
		all := slices.Contains(q.Statuses, r.Status)
		recent := slices.Contains(q.RecentStatuses, r.Status) && !r.UpdatedAt.Before(q.RecentSince)
		unfiltered := len(q.Statuses) == 0 && len(q.RecentStatuses) == 0
		if all || recent || unfiltered {
			matched = append(matched, m.withProject(r))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SubmittedAt.After(matched[j].SubmittedAt) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []model.ProjectTestRequest{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// ── Mock DeadlineRepository ──

type mockDeadlineRepo struct {
	deadlines []*model.ImportantDeadline
	nextID    int64
	findErr   error
}

func newMockDeadlineRepo() *mockDeadlineRepo {
	return &mockDeadlineRepo{nextID: 1}
}

func matchPeriod(d *model.ImportantDeadline, academicYear, semester *int) bool {
	if academicYear != nil && (d.AcademicYear == nil || *d.AcademicYear != *academicYear) {
		return false
	}
	if semester != nil && (d.Semester == nil || *d.Semester != *semester) {
		return false
	}
	return true
}

func (m *mockDeadlineRepo) FindPublished(_ context.Context, q repository.DeadlineQuery) (*model.ImportantDeadline, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var found *model.ImportantDeadline
	for _, d := range m.deadlines {
		if !d.IsPublished || d.Name != q.Name || d.RelatedTo != q.RelatedTo || !matchPeriod(d, q.AcademicYear, q.Semester) {
			continue
		}
		if found == nil || d.DeadlineID > found.DeadlineID {
			found = d
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *mockDeadlineRepo) Create(_ context.Context, deadline *model.ImportantDeadline) error {
	deadline.DeadlineID = m.nextID
	m.nextID++
	cp := *deadline
	m.deadlines = append(m.deadlines, &cp)
	return nil
}

func (m *mockDeadlineRepo) ListPublished(_ context.Context, academicYear, semester *int) ([]model.ImportantDeadline, error) {
	var result []model.ImportantDeadline
	for _, d := range m.deadlines {
		if d.IsPublished && matchPeriod(d, academicYear, semester) {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DeadlineAt.Before(result[j].DeadlineAt) })
	return result, nil
}

// ── Mock MeetingLogRepository ──

type meetingLogKey struct {
	studentID int64
	projectID int64
	phase     model.ProjectType
}

type mockMeetingLogRepo struct {
	approved map[meetingLogKey]int64
	err      error
}

func newMockMeetingLogRepo() *mockMeetingLogRepo {
	return &mockMeetingLogRepo{approved: make(map[meetingLogKey]int64)}
}

func (m *mockMeetingLogRepo) CountApproved(_ context.Context, studentID, projectID int64, phase model.ProjectType) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.approved[meetingLogKey{studentID, projectID, phase}], nil
}

// ── Mock TransitionLogRepository ──

type mockTransitionLogRepo struct {
	logs      []model.ProjectTransitionLog
	createErr error
}

func newMockTransitionLogRepo() *mockTransitionLogRepo {
	return &mockTransitionLogRepo{}
}

func (m *mockTransitionLogRepo) Create(_ context.Context, log *model.ProjectTransitionLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	log.LogID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockTransitionLogRepo) ListByProject(_ context.Context, projectID int64) ([]model.ProjectTransitionLog, error) {
	var result []model.ProjectTransitionLog
	for _, l := range m.logs {
		if l.ProjectID == projectID {
			result = append(result, l)
		}
	}
	return result, nil
}

// ── Mock TimelineRepository ──

type mockTimelineRepo struct {
	events []model.TimelineEvent
}

func newMockTimelineRepo() *mockTimelineRepo {
	return &mockTimelineRepo{}
}

func (m *mockTimelineRepo) Create(_ context.Context, event *model.TimelineEvent) error {
	event.EventID = int64(len(m.events) + 1)
	m.events = append(m.events, *event)
	return nil
}

// ── Mock SystemConfigRepository ──

type mockSystemConfigRepo struct {
	cfg    *model.SystemConfig
	getErr error
}

func newMockSystemConfigRepo() *mockSystemConfigRepo {
	return &mockSystemConfigRepo{}
}

func (m *mockSystemConfigRepo) Get(_ context.Context) (*model.SystemConfig, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.cfg == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m.cfg
	return &cp, nil
}

func (m *mockSystemConfigRepo) Upsert(_ context.Context, cfg *model.SystemConfig) error {
	cfg.Singleton = true
	cp := *cfg
	m.cfg = &cp
	return nil
}
