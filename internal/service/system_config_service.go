package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cslogbook/backend/config"
	"cslogbook/backend/internal/dto"
	"cslogbook/backend/internal/model"
	"cslogbook/backend/internal/repository"
)

// ── 系统配置模块业务错误 ──

var (
	ErrSystemConfigForbidden = errors.New("仅教务人员可修改流程参数")
)

// WorkflowSettings 审批流程参数的生效值
type WorkflowSettings struct {
	MinApprovedMeetingLogs int
	TestWindowMinDays      int
	TestStartMaxLeadDays   int
	QueueRecentDays        int
}

// SystemConfigService 系统配置业务接口
type SystemConfigService interface {
	Get(ctx context.Context) (*dto.SystemConfigResponse, error)
	Update(ctx context.Context, req *dto.UpdateSystemConfigRequest, actor Actor) (*dto.SystemConfigResponse, error)
	// Settings 读取生效参数；表中无数据或查询失败时回退到配置文件默认值
	Settings(ctx context.Context) WorkflowSettings
}

type systemConfigService struct {
	repo     *repository.Repository
	defaults config.WorkflowConfig
	logger   *zap.Logger
}

// NewSystemConfigService 创建 SystemConfigService 实例
func NewSystemConfigService(repo *repository.Repository, defaults config.WorkflowConfig, logger *zap.Logger) SystemConfigService {
	return &systemConfigService{repo: repo, defaults: defaults, logger: logger}
}

// ────────────────────── Get ──────────────────────

func (s *systemConfigService) Get(ctx context.Context) (*dto.SystemConfigResponse, error) {
	cfg, err := s.repo.SystemConfig.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.toResponse(s.defaultRow(), "defaults"), nil
		}
		s.logger.Error("查询系统配置失败", zap.Error(err))
		return nil, err
	}
	return s.toResponse(cfg, "database"), nil
}

// ────────────────────── Update ──────────────────────

func (s *systemConfigService) Update(ctx context.Context, req *dto.UpdateSystemConfigRequest, actor Actor) (*dto.SystemConfigResponse, error) {
	if !IsStaffCapable(actor) {
		return nil, ErrSystemConfigForbidden
	}

	cfg, err := s.repo.SystemConfig.Get(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询系统配置失败", zap.Error(err))
			return nil, err
		}
		cfg = s.defaultRow()
	}

	if req.MinApprovedMeetingLogs != nil {
		cfg.MinApprovedMeetingLogs = *req.MinApprovedMeetingLogs
	}
	if req.TestWindowMinDays != nil {
		cfg.TestWindowMinDays = *req.TestWindowMinDays
	}
	if req.TestStartMaxLeadDays != nil {
		cfg.TestStartMaxLeadDays = *req.TestStartMaxLeadDays
	}
	if req.QueueRecentDays != nil {
		cfg.QueueRecentDays = *req.QueueRecentDays
	}
	cfg.UpdatedBy = ActorUserID(actor)

	if err := s.repo.SystemConfig.Upsert(ctx, cfg); err != nil {
		s.logger.Error("更新系统配置失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("流程参数已更新",
		zap.Int("min_approved_meeting_logs", cfg.MinApprovedMeetingLogs),
		zap.Int("test_window_min_days", cfg.TestWindowMinDays),
		zap.Int("test_start_max_lead_days", cfg.TestStartMaxLeadDays),
		zap.Int("queue_recent_days", cfg.QueueRecentDays),
	)
	return s.toResponse(cfg, "database"), nil
}

// ────────────────────── Settings ──────────────────────

func (s *systemConfigService) Settings(ctx context.Context) WorkflowSettings {
	cfg, err := s.repo.SystemConfig.Get(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("读取流程参数失败，使用默认值", zap.Error(err))
		}
		cfg = s.defaultRow()
	}
	return WorkflowSettings{
		MinApprovedMeetingLogs: cfg.MinApprovedMeetingLogs,
		TestWindowMinDays:      cfg.TestWindowMinDays,
		TestStartMaxLeadDays:   cfg.TestStartMaxLeadDays,
		QueueRecentDays:        cfg.QueueRecentDays,
	}
}

// ────────────────────── 内部方法 ──────────────────────

func (s *systemConfigService) defaultRow() *model.SystemConfig {
	return &model.SystemConfig{
		Singleton:              true,
		MinApprovedMeetingLogs: s.defaults.MinApprovedMeetingLogs,
		TestWindowMinDays:      s.defaults.TestWindowMinDays,
		TestStartMaxLeadDays:   s.defaults.TestStartMaxLeadDays,
		QueueRecentDays:        s.defaults.QueueRecentDays,
	}
}

func (s *systemConfigService) toResponse(cfg *model.SystemConfig, source string) *dto.SystemConfigResponse {
	resp := &dto.SystemConfigResponse{
		MinApprovedMeetingLogs: cfg.MinApprovedMeetingLogs,
		TestWindowMinDays:      cfg.TestWindowMinDays,
		TestStartMaxLeadDays:   cfg.TestStartMaxLeadDays,
		QueueRecentDays:        cfg.QueueRecentDays,
		Source:                 source,
	}
	if !cfg.UpdatedAt.IsZero() {
		resp.UpdatedAt = cfg.UpdatedAt.Format(dto.TimeLayout)
	}
	return resp
}
