package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"project-tracker/internal/adapter/notification"
	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/api/middleware"
	"project-tracker/internal/api/router"
	"project-tracker/internal/cache"
	"project-tracker/internal/pkg/config"
	"project-tracker/internal/pkg/database"
	"project-tracker/internal/pkg/logger"
	"project-tracker/internal/repository"
	"project-tracker/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Close()
		}()
		return serve(cfg)
	},
}

func serve(cfg *config.Config) error {
	logger.Info(fmt.Sprintf("服务 %s 启动中...", appName), zap.String("version", appVersion))

	// 初始化数据库
	if err := openDatabase(cfg, cfg.Database.AutoMigrate); err != nil {
		return err
	}
	defer func() {
		_ = database.Close()
	}()
	db := database.GetDB()

	// 对象存储
	ctx := context.Background()
	store, err := storage.NewObjectStore(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("初始化对象存储失败: %w", err)
	}
	stager := storage.NewMediaStager(store, logger.Log)
	logger.Info("对象存储已就绪", zap.String("driver", cfg.Storage.Driver), zap.String("bucket", cfg.Storage.Bucket))

	// 通知
	var dispatcher *notification.Dispatcher
	if cfg.Notification.Enabled {
		notifier := notification.NewNotifier(&cfg.Notification, logger.Log)
		dispatcher = notification.NewDispatcher(notifier, cfg.Notification.Timeout(), logger.Log)
		logger.Info("通知已启用", zap.String("notifier", notifier.Name()))
	} else {
		logger.Warn("通知未启用, 不会发送 WhatsApp 消息")
	}

	// 跟踪页缓存
	trackCache := cache.NewTrackCache(cache.NewRedisClient(&cfg.Redis), time.Duration(cfg.Redis.TrackTTL)*time.Second, logger.Log)
	if trackCache.Enabled() {
		if err := trackCache.Ping(ctx); err != nil {
			logger.Warn("Redis 不可用, 跟踪页将直接读库", zap.Error(err))
		}
	}

	limiter := middleware.NewRateLimiter(cfg.Track.RatePerSecond, cfg.Track.Burst)

	// 初始化并启动定时任务调度器
	var taskScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		reconciler := scheduler.NewMediaReconciler(
			store,
			repository.NewProgressUpdateRepository(db),
			repository.NewArtifactRepository(db),
			time.Duration(cfg.Scheduler.OrphanGrace)*time.Second,
			logger.Log,
		)
		taskScheduler = scheduler.NewScheduler(reconciler, limiter, logger.Log)
		if err := taskScheduler.Start(&cfg.Scheduler); err != nil {
			logger.Warn("定时任务调度器启动失败", zap.Error(err))
			taskScheduler = nil
		}
	}

	// 设置路由
	r := router.Setup(cfg, router.Deps{
		DB:          db,
		Stager:      stager,
		Dispatcher:  dispatcher,
		TrackCache:  trackCache,
		RateLimiter: limiter,
		Logger:      logger.Log,
	})

	// 创建HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("%s 服务启动成功", cfg.Server.Name),
			zap.String("address", addr),
			zap.String("mode", cfg.Server.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("服务器启动失败", zap.Error(err))
		return err
	}

	logger.Info("服务正在关闭...")

	// 关闭定时任务调度器
	if taskScheduler != nil {
		taskScheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 等待已提交的通知发送完成
	if dispatcher != nil {
		dispatcher.Wait()
	}
	if err := trackCache.Close(); err != nil {
		logger.Warn("关闭 Redis 连接失败", zap.Error(err))
	}

	logger.Info("服务已关闭")
	return nil
}
