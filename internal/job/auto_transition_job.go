package job

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cslogbook/backend/internal/service"
	"cslogbook/backend/pkg/metrics"
)

const autoTransitionLockKey = "job:auto_transition"

// Locker 跨实例互斥锁（Redis 实现见 pkg/redis）
// AcquireLock 未抢到锁时返回空令牌且 err 为 nil
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// AutoTransitionJob 定期将考试通过的 Project 1 项目转入 Project 2
// 多实例部署时通过 Locker 保证同一时刻只有一个实例执行
type AutoTransitionJob struct {
	svc     service.PhaseTransitionService
	locker  Locker
	lockTTL time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAutoTransitionJob locker 为 nil 时不加锁（单实例部署）
func NewAutoTransitionJob(svc service.PhaseTransitionService, locker Locker, lockTTL time.Duration,
	m *metrics.Metrics, logger *zap.Logger) *AutoTransitionJob {
	return &AutoTransitionJob{svc: svc, locker: locker, lockTTL: lockTTL, metrics: m, logger: logger}
}

func (j *AutoTransitionJob) Name() string {
	return "auto_transition"
}

func (j *AutoTransitionJob) Run(ctx context.Context) error {
	if j.locker != nil {
		token, err := j.locker.AcquireLock(ctx, autoTransitionLockKey, j.lockTTL)
		if err != nil {
			j.metrics.AutoTransitionRuns.WithLabelValues("error").Inc()
			return fmt.Errorf("获取自动转换锁失败: %w", err)
		}
		if token == "" {
			j.metrics.AutoTransitionRuns.WithLabelValues("locked").Inc()
			j.logger.Info("其他实例正在执行自动转换，本次跳过")
			return nil
		}
		defer func() {
			// 任务超时后 ctx 已取消，释放锁不能沿用
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
			defer cancel()
			if err := j.locker.ReleaseLock(releaseCtx, autoTransitionLockKey, token); err != nil {
				j.logger.Warn("释放自动转换锁失败", zap.Error(err))
			}
		}()
	}

	summary, err := j.svc.AutoTransitionEligibleProjects(ctx, service.SystemActor{})
	if err != nil {
		j.metrics.AutoTransitionRuns.WithLabelValues("error").Inc()
		return err
	}

	result := "success"
	if summary.Failed > 0 {
		result = "partial"
	}
	j.metrics.AutoTransitionRuns.WithLabelValues(result).Inc()
	return nil
}
