package handler

import (
	"go.uber.org/zap"

	"cslogbook/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	TestRequest  *TestRequestHandler
	Transition   *TransitionHandler
	Deadline     *DeadlineHandler
	SystemConfig *SystemConfigHandler
	Health       *HealthHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, uploads *UploadStore, blacklist TokenBlacklist, logger *zap.Logger, checks ...HealthCheck) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(blacklist, logger),
		TestRequest:  NewTestRequestHandler(svc.TestRequest, uploads),
		Transition:   NewTransitionHandler(svc.Transition),
		Deadline:     NewDeadlineHandler(svc.Deadline),
		SystemConfig: NewSystemConfigHandler(svc.SystemConfig),
		Health:       NewHealthHandler(checks...),
	}
}
