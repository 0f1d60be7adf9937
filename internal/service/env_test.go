package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cslogbook/backend/config"
	"cslogbook/backend/internal/model"
	"cslogbook/backend/internal/repository"
	"cslogbook/backend/pkg/metrics"
)

// ── 测试辅助 ──

var bangkok = time.FixedZone("ICT", 7*3600)

// 固定"当前时间"：2025-08-01 10:00 (+07:00)
var fixedNow = time.Date(2025, 8, 1, 10, 0, 0, 0, bangkok)

const (
	testProjectID  int64 = 100
	leaderStudent  int64 = 6401
	memberStudent  int64 = 6402
	outsider       int64 = 6499
	advisorTeacher int64 = 9001
	coTeacher      int64 = 9002
	otherTeacher   int64 = 9003
)

type testEnv struct {
	repo        *repository.Repository
	projects    *mockProjectRepo
	requests    *mockTestRequestRepo
	deadlines   *mockDeadlineRepo
	meetingLogs *mockMeetingLogRepo
	transitions *mockTransitionLogRepo
	timeline    *mockTimelineRepo
	sysConfig   *mockSystemConfigRepo

	metrics     *metrics.Metrics
	settings    SystemConfigService
	annotator   LateSubmissionAnnotator
	testRequest *testRequestService
	transition  *phaseTransitionService
	deadline    *deadlineService
}

func newTestEnv() *testEnv {
	projects := newMockProjectRepo()
	env := &testEnv{
		projects:    projects,
		requests:    newMockTestRequestRepo(projects, func() time.Time { return fixedNow }),
		deadlines:   newMockDeadlineRepo(),
		meetingLogs: newMockMeetingLogRepo(),
		transitions: newMockTransitionLogRepo(),
		timeline:    newMockTimelineRepo(),
		sysConfig:   newMockSystemConfigRepo(),
	}
	env.repo = &repository.Repository{
		Project:       env.projects,
		TestRequest:   env.requests,
		Deadline:      env.deadlines,
		MeetingLog:    env.meetingLogs,
		TransitionLog: env.transitions,
		Timeline:      env.timeline,
		SystemConfig:  env.sysConfig,
	}

	logger := zap.NewNop()
	m := metrics.NewNop()
	env.metrics = m
	workflow := config.WorkflowConfig{
		Timezone:               "Asia/Bangkok",
		MinApprovedMeetingLogs: 4,
		TestWindowMinDays:      30,
		TestStartMaxLeadDays:   30,
		QueueRecentDays:        14,
	}

	env.settings = NewSystemConfigService(env.repo, workflow, logger)
	env.annotator = NewLateSubmissionAnnotator(NewDeadlineResolver(env.repo), m, logger)

	env.testRequest = NewTestRequestService(env.repo, env.settings, env.annotator, m, bangkok, logger).(*testRequestService)
	env.testRequest.now = func() time.Time { return fixedNow }

	env.transition = NewPhaseTransitionService(env.repo, m, logger).(*phaseTransitionService)
	env.transition.now = func() time.Time { return fixedNow }

	env.deadline = NewDeadlineService(env.repo, env.annotator, logger).(*deadlineService)
	env.deadline.now = func() time.Time { return fixedNow }
	return env
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

// seedProject 两名学生、主导师，无副导师，状态 in_progress
func (e *testEnv) seedProject() *model.Project {
	p := &model.Project{
		ProjectID:    testProjectID,
		ProjectCode:  "CS68-001",
		NameTH:       "ระบบจัดการสมุดบันทึก",
		Status:       model.ProjectStatusInProgress,
		ProjectType:  model.ProjectTypeProject2,
		CurrentPhase: model.PhaseThesisInProgress,
		AcademicYear: 2568,
		Semester:     1,
		AdvisorID:    int64Ptr(advisorTeacher),
		Members: []model.ProjectMember{
			{ProjectID: testProjectID, StudentID: leaderStudent, Role: model.MemberRoleLeader},
			{ProjectID: testProjectID, StudentID: memberStudent, Role: model.MemberRoleMember},
		},
	}
	p.Version = 1
	e.projects.projects[p.ProjectID] = p
	return p
}

func (e *testEnv) withCoAdvisor() {
	e.projects.projects[testProjectID].CoAdvisorID = int64Ptr(coTeacher)
}

func (e *testEnv) approveMeetingLogs(studentID int64, n int64) {
	e.meetingLogs.approved[meetingLogKey{studentID, testProjectID, model.ProjectTypeProject2}] = n
}

func (e *testEnv) seedSystemTestDeadline(at time.Time) *model.ImportantDeadline {
	d := &model.ImportantDeadline{
		Name:         "ยื่นคำขอทดสอบระบบ",
		RelatedTo:    model.RelatedToProject2,
		AcademicYear: intPtr(2568),
		Semester:     intPtr(1),
		DeadlineAt:   at,
		IsPublished:  true,
	}
	_ = e.deadlines.Create(context.Background(), d)
	return d
}

var (
	leader   = StudentActor{UserID: 11, StudentID: leaderStudent}
	member   = StudentActor{UserID: 12, StudentID: memberStudent}
	stranger = StudentActor{UserID: 19, StudentID: outsider}
	advisor  = TeacherActor{UserID: 21, TeacherID: advisorTeacher}
	co       = TeacherActor{UserID: 22, TeacherID: coTeacher}
	other    = TeacherActor{UserID: 23, TeacherID: otherTeacher}
	support  = TeacherActor{UserID: 24, TeacherID: 9004, Support: true}
	admin    = StaffActor{UserID: 1, Admin: true}
)
