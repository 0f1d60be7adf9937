package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cslogbook/backend/internal/dto"
	"cslogbook/backend/internal/model"
	pkgerrors "cslogbook/backend/pkg/errors"
)

func window(start, due string) *dto.SubmitTestRequestRequest {
	return &dto.SubmitTestRequestRequest{TestStartDate: start, TestDueDate: due, StudentNote: "พร้อมทดสอบ"}
}

// 明天开始、30 天窗口：合法申请
func validWindow() *dto.SubmitTestRequestRequest {
	return window("2025-08-02", "2025-09-01")
}

func readyEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv()
	env.seedProject()
	env.approveMeetingLogs(leaderStudent, 4)
	return env
}

func submitValid(t *testing.T, env *testEnv) *dto.TestRequestResponse {
	t.Helper()
	resp, err := env.testRequest.Submit(context.Background(), testProjectID, leader, validWindow(),
		&dto.UploadDescriptor{Path: "test-requests/a.pdf", OriginalFilename: "request.pdf"})
	require.NoError(t, err)
	return resp
}

func decide(d model.Decision, note string) *dto.DecisionRequest {
	return &dto.DecisionRequest{Decision: string(d), Note: note}
}

// ────────────────────── Submit ──────────────────────

func TestSubmit_WindowMinimumDuration(t *testing.T) {
	env := readyEnv(t)

	_, err := env.testRequest.Submit(context.Background(), testProjectID, leader, window("2025-08-02", "2025-08-31"), nil)
	assert.ErrorIs(t, err, ErrTestWindowTooShort)
	assert.Empty(t, env.requests.requests)

	resp, err := env.testRequest.Submit(context.Background(), testProjectID, leader, window("2025-08-02", "2025-09-01"), nil)
	require.NoError(t, err)
	assert.Equal(t, string(model.TestRequestPendingAdvisor), resp.Status)
	assert.Equal(t, "2025-08-02", resp.TestStartDate)
	assert.Equal(t, "2025-09-01", resp.TestDueDate)
}

func TestSubmit_StoresSnapshotAndFile(t *testing.T) {
	env := readyEnv(t)
	env.withCoAdvisor()

	resp := submitValid(t, env)

	require.Len(t, env.requests.requests, 1)
	stored := env.requests.requests[0]
	assert.Equal(t, leaderStudent, stored.SubmittedByStudentID)
	assert.Equal(t, fixedNow, stored.SubmittedAt)
	require.NotNil(t, stored.Advisor.TeacherID)
	assert.Equal(t, advisorTeacher, *stored.Advisor.TeacherID)
	require.NotNil(t, stored.CoAdvisor.TeacherID)
	assert.Equal(t, coTeacher, *stored.CoAdvisor.TeacherID)
	require.NotNil(t, stored.RequestFilePath)
	assert.Equal(t, "test-requests/a.pdf", *stored.RequestFilePath)
	assert.Equal(t, time.Date(2025, 9, 1, 23, 59, 59, 0, bangkok), stored.TestDueDate)

	require.NotNil(t, resp.CoAdvisor)
	require.NotNil(t, resp.RequestFileName)
	assert.Equal(t, "request.pdf", *resp.RequestFileName)
	assert.False(t, resp.LateStatus.SubmittedLate)
}

func TestSubmit_TagsLateSubmission(t *testing.T) {
	env := readyEnv(t)
	env.seedSystemTestDeadline(fixedNow.Add(-2 * time.Hour))

	resp := submitValid(t, env)

	assert.True(t, resp.LateStatus.SubmittedLate)
	require.NotNil(t, resp.LateStatus.SubmissionDelayMinutes)
	assert.Equal(t, 120, *resp.LateStatus.SubmissionDelayMinutes)
	assert.Equal(t, string(model.TestRequestPendingAdvisor), resp.Status)
}

func TestSubmit_LateTaggingFailureDoesNotBlock(t *testing.T) {
	env := readyEnv(t)
	env.deadlines.findErr = assert.AnError

	resp := submitValid(t, env)
	assert.False(t, resp.LateStatus.SubmittedLate)
}

func TestSubmit_MeetingLogShortfall(t *testing.T) {
	env := readyEnv(t)
	env.approveMeetingLogs(leaderStudent, 3)

	_, err := env.testRequest.Submit(context.Background(), testProjectID, leader, validWindow(), nil)
	require.ErrorIs(t, err, ErrMeetingLogInsufficient)

	var shortfall *MeetingLogShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, 4, shortfall.Required)
	assert.Equal(t, 3, shortfall.Approved)
}

func TestSubmit_MeetingLogsCountedPerSubmitter(t *testing.T) {
	env := readyEnv(t)

	_, err := env.testRequest.Submit(context.Background(), testProjectID, member, validWindow(), nil)
	assert.ErrorIs(t, err, ErrMeetingLogInsufficient)
}

func TestSubmit_ThresholdFromSystemConfig(t *testing.T) {
	env := readyEnv(t)
	env.sysConfig.cfg = &model.SystemConfig{
		Singleton:              true,
		MinApprovedMeetingLogs: 6,
		TestWindowMinDays:      30,
		TestStartMaxLeadDays:   30,
		QueueRecentDays:        14,
	}

	_, err := env.testRequest.Submit(context.Background(), testProjectID, leader, validWindow(), nil)
	assert.ErrorIs(t, err, ErrMeetingLogInsufficient)
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		req     *dto.SubmitTestRequestRequest
		prepare func(env *testEnv)
		wantErr error
	}{
		{"非项目成员", stranger, validWindow(), nil, ErrNotProjectMember},
		{"教师不能提交", advisor, validWindow(), nil, ErrNotProjectMember},
		{"项目不存在", leader, validWindow(), func(env *testEnv) { delete(env.projects.projects, testProjectID) }, ErrProjectNotFound},
		{"项目状态不允许", leader, validWindow(), func(env *testEnv) {
			env.projects.projects[testProjectID].Status = model.ProjectStatusDraft
		}, ErrProjectStatusNotAllowed},
		{"未指定导师", leader, validWindow(), func(env *testEnv) {
			env.projects.projects[testProjectID].AdvisorID = nil
		}, ErrProjectHasNoAdvisor},
		{"日期格式错误", leader, window("2025/08/02", "2025-09-01"), nil, ErrTestWindowInvalidDate},
		{"结束早于开始", leader, window("2025-09-01", "2025-08-02"), nil, ErrTestWindowEndBeforeStart},
		{"开始日期过远", leader, window("2025-09-15", "2025-10-20"), nil, ErrTestStartTooFar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := readyEnv(t)
			if tt.prepare != nil {
				tt.prepare(env)
			}
			_, err := env.testRequest.Submit(context.Background(), testProjectID, tt.actor, tt.req, nil)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, env.requests.requests)
		})
	}
}

func TestSubmit_PastStartDateAllowed(t *testing.T) {
	env := readyEnv(t)

	_, err := env.testRequest.Submit(context.Background(), testProjectID, leader, window("2025-07-20", "2025-08-20"), nil)
	assert.NoError(t, err)
}

func TestSubmit_SecondOpenRequestBlocked(t *testing.T) {
	env := readyEnv(t)
	submitValid(t, env)

	_, err := env.testRequest.Submit(context.Background(), testProjectID, member, validWindow(), nil)
	assert.ErrorIs(t, err, ErrTestRequestAlreadyOpen)
	assert.Len(t, env.requests.requests, 1)
}

func TestSubmit_UniqueIndexViolationMapped(t *testing.T) {
	env := readyEnv(t)
	// 并发场景：应用层检查通过，但数据库唯一索引拒绝
	env.requests.createErr = gorm.ErrDuplicatedKey

	_, err := env.testRequest.Submit(context.Background(), testProjectID, leader, validWindow(), nil)
	assert.ErrorIs(t, err, ErrTestRequestAlreadyOpen)
}

func TestSubmit_AllowedAfterRejection(t *testing.T) {
	env := readyEnv(t)
	submitValid(t, env)
	_, err := env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, decide(model.DecisionReject, "ขอบเขตไม่ชัดเจน"))
	require.NoError(t, err)

	env.testRequest.now = func() time.Time { return fixedNow.Add(time.Hour) }
	resp := submitValid(t, env)
	assert.Equal(t, string(model.TestRequestPendingAdvisor), resp.Status)
	assert.Len(t, env.requests.requests, 2)

	latest, err := env.testRequest.GetLatest(context.Background(), testProjectID, leader)
	require.NoError(t, err)
	assert.Equal(t, resp.RequestID, latest.Request.RequestID)
}

// ────────────────────── GetLatest ──────────────────────

func TestGetLatest_None(t *testing.T) {
	env := readyEnv(t)

	resp, err := env.testRequest.GetLatest(context.Background(), testProjectID, leader)
	require.NoError(t, err)
	assert.Equal(t, "none", resp.Status)
	assert.Nil(t, resp.Request)
}

func TestGetLatest_Visibility(t *testing.T) {
	env := readyEnv(t)
	submitValid(t, env)

	for _, a := range []Actor{leader, member, advisor, support, admin} {
		resp, err := env.testRequest.GetLatest(context.Background(), testProjectID, a)
		require.NoError(t, err)
		assert.Equal(t, string(model.TestRequestPendingAdvisor), resp.Status)
	}
	for _, a := range []Actor{stranger, other} {
		_, err := env.testRequest.GetLatest(context.Background(), testProjectID, a)
		assert.ErrorIs(t, err, ErrTestRequestAccessDenied)
	}

	_, err := env.testRequest.GetLatest(context.Background(), 404, admin)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

// ────────────────────── 导师审批 ──────────────────────

func TestAdvisorDecision_SingleAdvisorApproves(t *testing.T) {
	env := readyEnv(t)
	submitValid(t, env)

	resp, err := env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, decide(model.DecisionApprove, "ok"))
	require.NoError(t, err)
	assert.Equal(t, string(model.TestRequestPendingStaff), resp.Status)
	require.NotNil(t, resp.Advisor.Decision)
	assert.Equal(t, "approve", *resp.Advisor.Decision)
	assert.Nil(t, resp.CoAdvisor)
}

func TestAdvisorDecision_BothAdvisorsRequired(t *testing.T) {
	env := readyEnv(t)
	env.withCoAdvisor()
	submitValid(t, env)

	resp, err := env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, decide(model.DecisionApprove, ""))
	require.NoError(t, err)
	assert.Equal(t, string(model.TestRequestPendingAdvisor), resp.Status)

	resp, err = env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, co, decide(model.DecisionApprove, ""))
	require.NoError(t, err)
	assert.Equal(t, string(model.TestRequestPendingStaff), resp.Status)
	require.NotNil(t, resp.CoAdvisor)
	require.NotNil(t, resp.CoAdvisor.Decision)
}

func TestAdvisorDecision_CoAdvisorRejectionShortCircuits(t *testing.T) {
	env := readyEnv(t)
	env.withCoAdvisor()
	submitValid(t, env)

	resp, err := env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, co, decide(model.DecisionReject, "ยังไม่พร้อม"))
	require.NoError(t, err)
	assert.Equal(t, string(model.TestRequestAdvisorRejected), resp.Status)

	_, err = env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, decide(model.DecisionApprove, ""))
	assert.ErrorIs(t, err, ErrTestRequestStateInvalid)
}

func TestAdvisorDecision_AlreadyDecided(t *testing.T) {
	env := readyEnv(t)
	env.withCoAdvisor()
	submitValid(t, env)

	_, err := env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, decide(model.DecisionApprove, ""))
	require.NoError(t, err)

	_, err = env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, decide(model.DecisionReject, ""))
	assert.ErrorIs(t, err, ErrAdvisorAlreadyDecided)
	assert.Equal(t, model.TestRequestPendingAdvisor, env.requests.requests[0].Status)
}

func TestAdvisorDecision_UsesSubmissionSnapshot(t *testing.T) {
	env := readyEnv(t)
	submitValid(t, env)
	// 提交后更换导师，审批权仍属提交时的导师
	env.projects.projects[testProjectID].AdvisorID = int64Ptr(otherTeacher)

	_, err := env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, other, decide(model.DecisionApprove, ""))
	assert.ErrorIs(t, err, ErrNotAdvisorOfRecord)

	_, err = env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, decide(model.DecisionApprove, ""))
	assert.NoError(t, err)
}

func TestAdvisorDecision_Rejections(t *testing.T) {
	env := readyEnv(t)

	_, err := env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, decide(model.DecisionApprove, ""))
	assert.ErrorIs(t, err, ErrTestRequestNotFound)

	submitValid(t, env)

	_, err = env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, leader, decide(model.DecisionApprove, ""))
	assert.ErrorIs(t, err, ErrNotAdvisorOfRecord)

	_, err = env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, &dto.DecisionRequest{Decision: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, support, decide(model.DecisionApprove, ""))
	assert.ErrorIs(t, err, ErrNotAdvisorOfRecord)
}

func TestAdvisorDecision_ConcurrentWriteConflict(t *testing.T) {
	env := readyEnv(t)
	submitValid(t, env)
	env.requests.updateErr = pkgerrors.ErrOptimisticLock

	_, err := env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, decide(model.DecisionApprove, ""))
	assert.ErrorIs(t, err, pkgerrors.ErrOptimisticLock)
	assert.Equal(t, model.TestRequestPendingAdvisor, env.requests.requests[0].Status)
}

// ────────────────────── 教务审批 ──────────────────────

func approvedByAdvisor(t *testing.T, env *testEnv) {
	t.Helper()
	submitValid(t, env)
	_, err := env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, decide(model.DecisionApprove, ""))
	require.NoError(t, err)
}

func TestStaffDecision_Approve(t *testing.T) {
	env := readyEnv(t)
	approvedByAdvisor(t, env)

	resp, err := env.testRequest.SubmitStaffDecision(context.Background(), testProjectID, admin, decide(model.DecisionApprove, "อนุมัติ"))
	require.NoError(t, err)
	assert.Equal(t, string(model.TestRequestStaffApproved), resp.Status)
	require.NotNil(t, resp.StaffUserID)
	assert.Equal(t, admin.UserID, *resp.StaffUserID)
	assert.NotNil(t, resp.StaffDecidedAt)
}

func TestStaffDecision_SupportTeacherReject(t *testing.T) {
	env := readyEnv(t)
	approvedByAdvisor(t, env)

	resp, err := env.testRequest.SubmitStaffDecision(context.Background(), testProjectID, support, decide(model.DecisionReject, ""))
	require.NoError(t, err)
	assert.Equal(t, string(model.TestRequestStaffRejected), resp.Status)
}

func TestStaffDecision_Rejections(t *testing.T) {
	env := readyEnv(t)
	submitValid(t, env)

	_, err := env.testRequest.SubmitStaffDecision(context.Background(), testProjectID, advisor, decide(model.DecisionApprove, ""))
	assert.ErrorIs(t, err, ErrNotStaffCapable)

	_, err = env.testRequest.SubmitStaffDecision(context.Background(), testProjectID, leader, decide(model.DecisionApprove, ""))
	assert.ErrorIs(t, err, ErrNotStaffCapable)

	// 仍在等待导师审批
	_, err = env.testRequest.SubmitStaffDecision(context.Background(), testProjectID, admin, decide(model.DecisionApprove, ""))
	assert.ErrorIs(t, err, ErrTestRequestStateInvalid)
}

// ────────────────────── 测试证明 ──────────────────────

func staffApproved(t *testing.T, env *testEnv) {
	t.Helper()
	approvedByAdvisor(t, env)
	_, err := env.testRequest.SubmitStaffDecision(context.Background(), testProjectID, admin, decide(model.DecisionApprove, ""))
	require.NoError(t, err)
}

func TestUploadEvidence_OneShot(t *testing.T) {
	env := readyEnv(t)
	staffApproved(t, env)
	file := &dto.UploadDescriptor{Path: "evidence/e.pdf", OriginalFilename: "evidence.pdf"}

	// 测试截止日之前上传：允许，只记录告警
	resp, err := env.testRequest.UploadEvidence(context.Background(), testProjectID, member, file)
	require.NoError(t, err)
	assert.Equal(t, string(model.TestRequestEvidenceSubmitted), resp.Status)
	require.NotNil(t, resp.EvidenceFileName)
	assert.Equal(t, "evidence.pdf", *resp.EvidenceFileName)

	stored := env.requests.requests[0]
	require.NotNil(t, stored.EvidenceSubmittedBy)
	assert.Equal(t, memberStudent, *stored.EvidenceSubmittedBy)
	// 测试截止日 2025-09-01 之前上传，计入提前上传指标
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.EarlyEvidenceUploads))

	_, err = env.testRequest.UploadEvidence(context.Background(), testProjectID, leader, file)
	assert.ErrorIs(t, err, ErrEvidenceAlreadySubmitted)
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.EarlyEvidenceUploads))
}

func TestUploadEvidence_AfterDueDateNotCountedEarly(t *testing.T) {
	env := readyEnv(t)
	staffApproved(t, env)
	env.testRequest.now = func() time.Time { return time.Date(2025, 9, 2, 9, 0, 0, 0, bangkok) }

	_, err := env.testRequest.UploadEvidence(context.Background(), testProjectID, leader,
		&dto.UploadDescriptor{Path: "evidence/e.pdf", OriginalFilename: "evidence.pdf"})
	require.NoError(t, err)
	assert.Zero(t, testutil.ToFloat64(env.metrics.EarlyEvidenceUploads))
}

func TestUploadEvidence_Rejections(t *testing.T) {
	env := readyEnv(t)
	file := &dto.UploadDescriptor{Path: "evidence/e.pdf"}

	_, err := env.testRequest.UploadEvidence(context.Background(), testProjectID, leader, nil)
	assert.ErrorIs(t, err, ErrEvidenceFileRequired)

	_, err = env.testRequest.UploadEvidence(context.Background(), testProjectID, leader, file)
	assert.ErrorIs(t, err, ErrTestRequestNotFound)

	approvedByAdvisor(t, env)

	_, err = env.testRequest.UploadEvidence(context.Background(), testProjectID, leader, file)
	assert.ErrorIs(t, err, ErrTestRequestStateInvalid)

	_, err = env.testRequest.UploadEvidence(context.Background(), testProjectID, stranger, file)
	assert.ErrorIs(t, err, ErrNotProjectMember)

	_, err = env.testRequest.UploadEvidence(context.Background(), testProjectID, admin, file)
	assert.ErrorIs(t, err, ErrNotProjectMember)
}

// ────────────────────── 待办列表 ──────────────────────

func TestAdvisorQueue(t *testing.T) {
	env := readyEnv(t)
	env.withCoAdvisor()
	submitValid(t, env)

	items, err := env.testRequest.AdvisorQueue(context.Background(), co)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "co_advisor", items[0].MyRole)
	assert.True(t, items[0].AwaitingMe)
	assert.Equal(t, "CS68-001", items[0].ProjectCode)
	assert.Equal(t, "ระบบจัดการสมุดบันทึก", items[0].ProjectName)

	_, err = env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, co, decide(model.DecisionApprove, ""))
	require.NoError(t, err)

	items, err = env.testRequest.AdvisorQueue(context.Background(), co)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].AwaitingMe)

	items, err = env.testRequest.AdvisorQueue(context.Background(), advisor)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "advisor", items[0].MyRole)
	assert.True(t, items[0].AwaitingMe)

	items, err = env.testRequest.AdvisorQueue(context.Background(), other)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = env.testRequest.AdvisorQueue(context.Background(), admin)
	assert.ErrorIs(t, err, ErrNotAdvisorOfRecord)
}

func TestAdvisorQueue_OldClosedRequestsHidden(t *testing.T) {
	env := readyEnv(t)
	submitValid(t, env)
	_, err := env.testRequest.SubmitAdvisorDecision(context.Background(), testProjectID, advisor, decide(model.DecisionReject, ""))
	require.NoError(t, err)

	env.requests.requests[0].UpdatedAt = fixedNow.AddDate(0, 0, -3)
	items, err := env.testRequest.AdvisorQueue(context.Background(), advisor)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	env.requests.requests[0].UpdatedAt = fixedNow.AddDate(0, 0, -15)
	items, err = env.testRequest.AdvisorQueue(context.Background(), advisor)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStaffQueue(t *testing.T) {
	env := readyEnv(t)
	env.seedSystemTestDeadline(fixedNow.Add(48 * time.Hour))
	approvedByAdvisor(t, env)

	_, _, err := env.testRequest.StaffQueue(context.Background(), advisor, &dto.StaffQueueRequest{})
	assert.ErrorIs(t, err, ErrNotStaffCapable)

	items, total, err := env.testRequest.StaffQueue(context.Background(), admin, &dto.StaffQueueRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, string(model.TestRequestPendingStaff), items[0].Status)
	assert.Equal(t, string(DeadlineOnTime), items[0].Deadline.Status)
	assert.NotNil(t, items[0].Deadline.DeadlineAt)

	items, total, err = env.testRequest.StaffQueue(context.Background(), support, &dto.StaffQueueRequest{Status: []string{"pending_advisor"}})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestStaffQueue_DefaultExcludesAdvisorStage(t *testing.T) {
	env := readyEnv(t)
	submitValid(t, env)

	items, total, err := env.testRequest.StaffQueue(context.Background(), admin, &dto.StaffQueueRequest{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestStaffQueue_DefaultIncludesRecentStaffOutcomes(t *testing.T) {
	env := readyEnv(t)
	approvedByAdvisor(t, env)
	_, err := env.testRequest.SubmitStaffDecision(context.Background(), testProjectID, admin, decide(model.DecisionReject, "เอกสารไม่ครบ"))
	require.NoError(t, err)

	items, total, err := env.testRequest.StaffQueue(context.Background(), admin, &dto.StaffQueueRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, string(model.TestRequestStaffRejected), items[0].Status)

	// 超过 queue_recent_days 未更新的已处理申请不再出现在默认待办中
	env.requests.requests[0].UpdatedAt = fixedNow.AddDate(0, 0, -15)
	items, total, err = env.testRequest.StaffQueue(context.Background(), admin, &dto.StaffQueueRequest{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	// 显式按状态筛选时不受时间限制
	items, total, err = env.testRequest.StaffQueue(context.Background(), admin, &dto.StaffQueueRequest{Status: []string{"staff_rejected"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}

func TestStaffQueue_PendingStaffNeverExpires(t *testing.T) {
	env := readyEnv(t)
	approvedByAdvisor(t, env)
	env.requests.requests[0].UpdatedAt = fixedNow.AddDate(-1, 0, 0)

	items, total, err := env.testRequest.StaffQueue(context.Background(), admin, &dto.StaffQueueRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, string(model.TestRequestPendingStaff), items[0].Status)
}

// ────────────────────── 测试窗口 ──────────────────────

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 8, 2, 0, 0, 0, 0, bangkok)
	assert.Equal(t, 30, daysBetween(a, time.Date(2025, 9, 1, 0, 0, 0, 0, bangkok)))
	assert.Equal(t, 0, daysBetween(a, a.Add(23*time.Hour)))
	assert.Equal(t, -1, daysBetween(a, a.AddDate(0, 0, -1)))
}
