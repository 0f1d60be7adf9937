package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cslogbook/backend/config"
	"cslogbook/backend/internal/api/handler"
	"cslogbook/backend/internal/api/router"
	"cslogbook/backend/internal/job"
	"cslogbook/backend/internal/repository"
	"cslogbook/backend/internal/service"
	"cslogbook/backend/pkg/database"
	"cslogbook/backend/pkg/jwt"
	applogger "cslogbook/backend/pkg/logger"
	"cslogbook/backend/pkg/metrics"
	"cslogbook/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，为空时依次查找 ./config/config.yaml 与 ./config.yaml")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Workflow.Timezone),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, logger, cfg.Log.Level == "debug")
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、限流与任务互斥锁将不可用", zap.Error(err))
		rdb = nil
	}
	// 接口变量必须保持真正的 nil，避免持有 nil 指针
	var (
		blacklist handler.TokenBlacklist
		locker    job.Locker
	)
	if rdb != nil {
		defer rdb.Close()
		blacklist, locker = rdb, rdb
	}

	// 5. 指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 6. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, m, logger)

	checks := []handler.HealthCheck{{Name: "database", Check: sqlDB.PingContext}}
	if rdb != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: rdb.Ping})
	}
	uploads := handler.NewUploadStore(cfg.Storage, logger)
	h := handler.NewHandler(svc, uploads, blacklist, logger, checks...)

	engine := router.Setup(cfg, h, jwtMgr, rdb, reg, reg, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second, // 上传接口
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// 7. 运行：HTTP 服务 + 定时任务，收到信号后统一关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务器异常: %w", err)
		}
		return nil
	})

	if cfg.Job.AutoTransitionEnabled {
		if locker == nil {
			logger.Warn("Redis 不可用，自动转换任务以单实例模式运行")
		}
		builder := job.NewCronJobBuilder(gctx, cfg.Job.LockTTL, logger)
		autoTransition := job.NewAutoTransitionJob(svc.Transition, locker, cfg.Job.LockTTL, m, logger)

		scheduler := cron.New(cron.WithLocation(cfg.Workflow.Location()))
		if _, err := scheduler.AddJob(cfg.Job.AutoTransitionCron, builder.Build(autoTransition)); err != nil {
			logger.Fatal("注册自动转换任务失败", zap.String("cron", cfg.Job.AutoTransitionCron), zap.Error(err))
		}

		g.Go(func() error {
			scheduler.Start()
			logger.Info("定时任务已启动", zap.String("job", autoTransition.Name()), zap.String("cron", cfg.Job.AutoTransitionCron))
			<-gctx.Done()
			// 等待正在执行的任务结束
			<-scheduler.Stop().Done()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("开始优雅关闭...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("服务器关闭异常: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("服务退出", zap.Error(err))
	}
	logger.Info("服务器已关闭")
}
