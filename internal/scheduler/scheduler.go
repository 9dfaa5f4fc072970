package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"project-tracker/internal/pkg/config"
)

const (
	defaultReconcileSpec = "0 0 * * * *" // 每小时
	limiterSweepSpec     = "0 */5 * * * *"
	limiterMaxAge        = 10 * time.Minute
)

// Sweeper 可定期清理的组件, 如限流器
type Sweeper interface {
	Sweep(maxAge time.Duration) int
}

// Scheduler 调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	reconciler    *MediaReconciler
	sweeper       Sweeper
	cronSchedules map[string]cron.EntryID // 存储任务ID，便于管理
}

// NewScheduler 创建调度器, sweeper 可为 nil
func NewScheduler(reconciler *MediaReconciler, sweeper Sweeper, logger *zap.Logger) *Scheduler {
	// 创建 cron 实例（带秒级支持）
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:          c,
		logger:        logger,
		reconciler:    reconciler,
		sweeper:       sweeper,
		cronSchedules: make(map[string]cron.EntryID),
	}
}

// Start 启动调度器
func (s *Scheduler) Start(cfg *config.SchedulerConfig) error {
	log := s.logger.Sugar()

	log.Info("启动定时任务调度器...")

	// cron 表达式格式: 秒 分 时 日 月 周
	cronExpr := cfg.ReconcileSpec
	if cronExpr == "" {
		cronExpr = defaultReconcileSpec
		log.Warn("未配置scheduler.reconcile_spec，使用默认值", zap.String("cron", cronExpr))
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		log.Info("执行定时任务: 存储对账")
		if _, err := s.TriggerReconcile(context.Background()); err != nil {
			log.Errorf("存储对账任务执行失败: %v", err)
		}
	})
	if err != nil {
		log.Errorf("注册存储对账: %v 任务失败: %v", cronExpr, err)
		return err
	}
	s.cronSchedules["media_reconcile"] = entryID
	log.Infof("存储对账任务已注册: %s entry_id=%d", cronExpr, entryID)

	if s.sweeper != nil {
		entryID, err = s.cron.AddFunc(limiterSweepSpec, func() {
			if n := s.sweeper.Sweep(limiterMaxAge); n > 0 {
				log.Debugf("清理限流器 %d 个", n)
			}
		})
		if err != nil {
			return err
		}
		s.cronSchedules["limiter_sweep"] = entryID
	}

	// 启动 cron
	s.cron.Start()
	log.Info("定时任务调度器启动成功")

	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	// 停止 cron（等待正在执行的任务完成）
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("定时任务调度器已停止")
}

// Entries 已注册的任务名
func (s *Scheduler) Entries() []string {
	names := make([]string, 0, len(s.cronSchedules))
	for name := range s.cronSchedules {
		names = append(names, name)
	}
	return names
}

// TriggerReconcile 手动触发存储对账（用于测试或手动触发）
func (s *Scheduler) TriggerReconcile(ctx context.Context) (int, error) {
	return s.reconciler.Run(ctx)
}
