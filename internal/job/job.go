package job

import "context"

// Job 定时任务
type Job interface {
	Name() string
	Run(ctx context.Context) error
}
