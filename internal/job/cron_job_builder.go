package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronJobBuilder 将 Job 适配为 cron.Job，统一记录耗时与错误
type CronJobBuilder struct {
	ctx     context.Context
	timeout time.Duration
	logger  *zap.Logger
}

// NewCronJobBuilder ctx 取消后不再启动新的执行；timeout 为单次执行上限，<=0 表示不限制
func NewCronJobBuilder(ctx context.Context, timeout time.Duration, logger *zap.Logger) *CronJobBuilder {
	return &CronJobBuilder{ctx: ctx, timeout: timeout, logger: logger}
}

func (b *CronJobBuilder) Build(job Job) cron.Job {
	jobName := job.Name()
	return cronJobAdapterFunc(func() {
		if b.ctx.Err() != nil {
			return
		}
		ctx := b.ctx
		if b.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(b.ctx, b.timeout)
			defer cancel()
		}

		start := time.Now()
		b.logger.Debug("开始运行", zap.String("job_name", jobName))
		if err := job.Run(ctx); err != nil {
			b.logger.Error("执行失败", zap.String("job_name", jobName), zap.Error(err))
		}
		b.logger.Debug("结束运行",
			zap.String("job_name", jobName),
			zap.Duration("cost", time.Since(start)),
		)
	})
}

type cronJobAdapterFunc func()

func (c cronJobAdapterFunc) Run() {
	c()
}
