package service

import (
	"time"

	"cslogbook/backend/internal/model"
)

// DeadlineStatusLabel 截止日期评估标签
type DeadlineStatusLabel string

const (
	DeadlineOnTime             DeadlineStatusLabel = "on_time"
	DeadlineSubmittedLate      DeadlineStatusLabel = "submitted_late"
	DeadlineSubmittedAfterLock DeadlineStatusLabel = "submitted_after_lock"
	DeadlineNone               DeadlineStatusLabel = "no_deadline"
)

// DeadlineStatus 截止日期评估结果
type DeadlineStatus struct {
	DeadlineID        *int64
	DeadlineAt        time.Time
	EffectiveDeadline time.Time
	IsLate            bool
	MinutesLate       int
	IsLocked          bool
	Status            DeadlineStatusLabel
}

// EvaluateDeadline 计算提交时间相对截止日期的状态
//
//	effective = deadline_at + (allow_late ? grace : 0)
//	late      = submittedAt > deadline_at
//	locked    = submittedAt > effective && lock_after_deadline
//
// 纯函数；deadline 为空或未设置时间时返回 no_deadline
func EvaluateDeadline(submittedAt time.Time, deadline *model.ImportantDeadline) DeadlineStatus {
	if deadline == nil || deadline.DeadlineAt.IsZero() {
		return DeadlineStatus{Status: DeadlineNone}
	}

	grace := 0
	if deadline.AllowLate && deadline.GracePeriodMinutes > 0 {
		grace = deadline.GracePeriodMinutes
	}
	id := deadline.DeadlineID
	status := DeadlineStatus{
		DeadlineID:        &id,
		DeadlineAt:        deadline.DeadlineAt,
		EffectiveDeadline: deadline.DeadlineAt.Add(time.Duration(grace) * time.Minute),
		Status:            DeadlineOnTime,
	}

	if submittedAt.After(deadline.DeadlineAt) {
		status.IsLate = true
		status.MinutesLate = int(submittedAt.Sub(deadline.DeadlineAt) / time.Minute)
		status.Status = DeadlineSubmittedLate
	}
	if deadline.LockAfterDeadline && submittedAt.After(status.EffectiveDeadline) {
		status.IsLocked = true
		status.Status = DeadlineSubmittedAfterLock
	}
	return status
}

// LateStatus 转换为随提交落库的迟交标记
func (s DeadlineStatus) LateStatus() model.SubmissionLateStatus {
	late := model.SubmissionLateStatus{ImportantDeadlineID: s.DeadlineID}
	if s.IsLate {
		minutes := s.MinutesLate
		late.SubmittedLate = true
		late.SubmissionDelayMinutes = &minutes
	}
	return late
}
