package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cslogbook/backend/internal/model"
	"cslogbook/backend/pkg/metrics"
)

// SubmissionKind 需要标记迟交的提交类型
type SubmissionKind string

const (
	KindTopicSubmission SubmissionKind = "topic_submission"
	KindDefenseProject1 SubmissionKind = "defense_project1"
	KindDefenseThesis   SubmissionKind = "defense_thesis"
	KindSystemTest      SubmissionKind = "system_test"
)

type deadlineTarget struct {
	name      string
	relatedTo model.DeadlineRelatedTo
}

// 截止日期名称与院系日历中的配置保持一致
var submissionDeadlines = map[SubmissionKind]deadlineTarget{
	KindTopicSubmission: {name: "ส่งหัวข้อโครงงานพิเศษ", relatedTo: model.RelatedToProject1},
	KindDefenseProject1: {name: "ยื่นสอบโครงงานพิเศษ 1", relatedTo: model.RelatedToProject1},
	KindDefenseThesis:   {name: "ยื่นสอบปริญญานิพนธ์", relatedTo: model.RelatedToProject2},
	KindSystemTest:      {name: "ยื่นคำขอทดสอบระบบ", relatedTo: model.RelatedToProject2},
}

// Valid 是否为已知的提交类型
func (k SubmissionKind) Valid() bool {
	_, ok := submissionDeadlines[k]
	return ok
}

// DeadlineName 该类提交对应的截止日期名称
func (k SubmissionKind) DeadlineName() string {
	return submissionDeadlines[k].name
}

// LateSubmissionAnnotator 为各类提交计算迟交标记
// 迟交只作提示不作拦截：查询失败时降级为"未迟交"并记录告警，从不向调用方返回错误
type LateSubmissionAnnotator interface {
	Annotate(ctx context.Context, kind SubmissionKind, academicYear, semester *int, submittedAt time.Time) model.SubmissionLateStatus
	Evaluate(ctx context.Context, kind SubmissionKind, academicYear, semester *int, at time.Time) DeadlineStatus
}

type lateSubmissionAnnotator struct {
	resolver DeadlineResolver
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewLateSubmissionAnnotator 创建 LateSubmissionAnnotator 实例
func NewLateSubmissionAnnotator(resolver DeadlineResolver, m *metrics.Metrics, logger *zap.Logger) LateSubmissionAnnotator {
	return &lateSubmissionAnnotator{resolver: resolver, metrics: m, logger: logger}
}

func (a *lateSubmissionAnnotator) Annotate(ctx context.Context, kind SubmissionKind, academicYear, semester *int, submittedAt time.Time) model.SubmissionLateStatus {
	late := a.Evaluate(ctx, kind, academicYear, semester, submittedAt).LateStatus()
	if late.SubmittedLate {
		a.metrics.LateSubmissions.WithLabelValues(string(kind)).Inc()
	}
	return late
}

func (a *lateSubmissionAnnotator) Evaluate(ctx context.Context, kind SubmissionKind, academicYear, semester *int, at time.Time) DeadlineStatus {
	target, ok := submissionDeadlines[kind]
	if !ok {
		a.logger.Warn("未知的提交类型，跳过迟交标记", zap.String("kind", string(kind)))
		return DeadlineStatus{Status: DeadlineNone}
	}

	deadline, err := a.resolver.Find(ctx, target.name, target.relatedTo, academicYear, semester)
	if err != nil {
		a.logger.Warn("查询截止日期失败，按未迟交处理",
			zap.String("kind", string(kind)),
			zap.String("deadline", target.name),
			zap.Error(err),
		)
		a.metrics.LateTaggingDegraded.WithLabelValues(string(kind)).Inc()
		return DeadlineStatus{Status: DeadlineNone}
	}
	return EvaluateDeadline(at, deadline)
}
