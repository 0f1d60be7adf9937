package service

import (
	"go.uber.org/zap"

	"cslogbook/backend/config"
	"cslogbook/backend/internal/repository"
	"cslogbook/backend/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	SystemConfig SystemConfigService
	TestRequest  TestRequestService
	Transition   PhaseTransitionService
	Deadline     DeadlineService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	systemConfig := NewSystemConfigService(repo, cfg.Workflow, logger)
	annotator := NewLateSubmissionAnnotator(NewDeadlineResolver(repo), m, logger)

	return &Service{
		SystemConfig: systemConfig,
		TestRequest:  NewTestRequestService(repo, systemConfig, annotator, m, cfg.Workflow.Location(), logger),
		Transition:   NewPhaseTransitionService(repo, m, logger),
		Deadline:     NewDeadlineService(repo, annotator, logger),
	}
}
