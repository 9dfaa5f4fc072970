package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/pkg/database"
	"project-tracker/internal/pkg/logger"
	"project-tracker/internal/repository"
	"project-tracker/internal/scheduler"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "立即执行一次存储对账, 清理未被引用的媒体对象",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Close()
		}()

		if err := openDatabase(cfg, false); err != nil {
			return err
		}
		defer func() {
			_ = database.Close()
		}()
		db := database.GetDB()

		ctx := context.Background()
		store, err := storage.NewObjectStore(ctx, &cfg.Storage)
		if err != nil {
			return fmt.Errorf("初始化对象存储失败: %w", err)
		}

		reconciler := scheduler.NewMediaReconciler(
			store,
			repository.NewProgressUpdateRepository(db),
			repository.NewArtifactRepository(db),
			time.Duration(cfg.Scheduler.OrphanGrace)*time.Second,
			logger.Log,
		)
		removed, err := scheduler.NewScheduler(reconciler, nil, logger.Log).TriggerReconcile(ctx)
		if err != nil {
			return err
		}
		logger.Info("存储对账完成", zap.Int("removed", removed))
		fmt.Fprintf(cmd.OutOrStdout(), "removed=%d\n", removed)
		return nil
	},
}
