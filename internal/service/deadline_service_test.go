package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cslogbook/backend/internal/dto"
)

func createDeadlineRequest() *dto.CreateDeadlineRequest {
	return &dto.CreateDeadlineRequest{
		Name:               "ยื่นคำขอทดสอบระบบ",
		RelatedTo:          "project2",
		AcademicYear:       intPtr(2568),
		Semester:           intPtr(1),
		DeadlineAt:         "2025-08-01T00:00:00+07:00",
		GracePeriodMinutes: 1440,
		AllowLate:          true,
		LockAfterDeadline:  true,
		IsPublished:        true,
		Description:        "ส่งผ่านระบบเท่านั้น",
	}
}

func TestDeadlineService_Create(t *testing.T) {
	env := newTestEnv()

	resp, err := env.deadline.Create(context.Background(), createDeadlineRequest(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.DeadlineID)
	assert.Equal(t, "project2", resp.RelatedTo)

	require.Len(t, env.deadlines.deadlines, 1)
	stored := env.deadlines.deadlines[0]
	require.NotNil(t, stored.CreatedBy)
	assert.Equal(t, admin.UserID, *stored.CreatedBy)
	assert.True(t, stored.DeadlineAt.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, bangkok)))
}

func TestDeadlineService_CreateRejections(t *testing.T) {
	env := newTestEnv()

	_, err := env.deadline.Create(context.Background(), createDeadlineRequest(), advisor)
	assert.ErrorIs(t, err, ErrDeadlineForbidden)

	req := createDeadlineRequest()
	req.DeadlineAt = "2025-08-01"
	_, err = env.deadline.Create(context.Background(), req, admin)
	assert.ErrorIs(t, err, ErrDeadlineTimeInvalid)
	assert.Empty(t, env.deadlines.deadlines)
}

func TestDeadlineService_List(t *testing.T) {
	env := newTestEnv()
	_, err := env.deadline.Create(context.Background(), createDeadlineRequest(), admin)
	require.NoError(t, err)
	draft := createDeadlineRequest()
	draft.IsPublished = false
	_, err = env.deadline.Create(context.Background(), draft, admin)
	require.NoError(t, err)

	list, err := env.deadline.List(context.Background(), &dto.DeadlineQueryRequest{AcademicYear: intPtr(2568)})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = env.deadline.List(context.Background(), &dto.DeadlineQueryRequest{AcademicYear: intPtr(2567)})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeadlineService_PreviewLateStatus(t *testing.T) {
	env := newTestEnv()
	_, err := env.deadline.Create(context.Background(), createDeadlineRequest(), admin)
	require.NoError(t, err)

	resp, err := env.deadline.PreviewLateStatus(context.Background(), &dto.LateStatusPreviewRequest{
		Kind:         "system_test",
		AcademicYear: intPtr(2568),
		Semester:     intPtr(1),
		SubmittedAt:  "2025-08-01T12:00:00+07:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "ยื่นคำขอทดสอบระบบ", resp.DeadlineName)
	assert.Equal(t, "submitted_late", resp.Evaluation.Status)
	assert.Equal(t, 720, resp.Evaluation.MinutesLate)
	assert.False(t, resp.Evaluation.IsLocked)
	assert.True(t, resp.LateStatus.SubmittedLate)

	// 缺省使用当前时间：2025-08-01 10:00，仍在宽限期内
	resp, err = env.deadline.PreviewLateStatus(context.Background(), &dto.LateStatusPreviewRequest{
		Kind: "system_test", AcademicYear: intPtr(2568), Semester: intPtr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 600, resp.Evaluation.MinutesLate)

	resp, err = env.deadline.PreviewLateStatus(context.Background(), &dto.LateStatusPreviewRequest{
		Kind: "topic_submission", AcademicYear: intPtr(2568), Semester: intPtr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "no_deadline", resp.Evaluation.Status)
	assert.Nil(t, resp.Evaluation.DeadlineAt)

	_, err = env.deadline.PreviewLateStatus(context.Background(), &dto.LateStatusPreviewRequest{Kind: "unknown"})
	assert.ErrorIs(t, err, ErrSubmissionKindUnknown)

	_, err = env.deadline.PreviewLateStatus(context.Background(), &dto.LateStatusPreviewRequest{Kind: "system_test", SubmittedAt: "yesterday"})
	assert.ErrorIs(t, err, ErrSubmittedAtInvalid)
}

func TestDeadlineService_CalendarICS(t *testing.T) {
	env := newTestEnv()
	_, err := env.deadline.Create(context.Background(), createDeadlineRequest(), admin)
	require.NoError(t, err)

	body, err := env.deadline.CalendarICS(context.Background(), &dto.DeadlineQueryRequest{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR"))
	assert.Contains(t, body, "BEGIN:VEVENT")
	assert.Contains(t, body, "UID:deadline-1@cslogbook")
	assert.Contains(t, body, "SUMMARY:ยื่นคำขอทดสอบระบบ")
	assert.Contains(t, body, "END:VCALENDAR")
}

func TestDeadlineDescription(t *testing.T) {
	env := newTestEnv()
	_, err := env.deadline.Create(context.Background(), createDeadlineRequest(), admin)
	require.NoError(t, err)

	desc := deadlineDescription(*env.deadlines.deadlines[0])
	assert.Contains(t, desc, "ส่งผ่านระบบเท่านั้น")
	assert.Contains(t, desc, "1440")
	assert.Contains(t, desc, "锁定")
}
