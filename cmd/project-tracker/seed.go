package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"project-tracker/internal/adapter/notification"
	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/core/pipeline"
	"project-tracker/internal/pkg/database"
	"project-tracker/internal/pkg/logger"
	"project-tracker/internal/seed"
	"project-tracker/internal/service"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "导入初始管理员与演示项目",
	Long:  `从 YAML 文件导入用户与项目, 已存在的用户名与项目名会被跳过. 导入过程不发送客户通知.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Close()
		}()

		f, err := seed.Load(seedFile)
		if err != nil {
			return err
		}

		if err := openDatabase(cfg, true); err != nil {
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
		stager := storage.NewMediaStager(store, logger.Log)
		composer := notification.Composer{
			Brand:     cfg.Notification.Brand,
			Signature: cfg.Notification.Signature,
			PublicURL: cfg.Server.PublicURL,
		}

		p := pipeline.NewPipeline(db, stager, nil, composer, nil, cfg.Pipeline.MaxRetries, logger.Log)
		projects := service.NewProjectService(db, stager, nil, composer, nil, logger.Log)

		res, err := seed.NewSeeder(db, projects, p, logger.Log).Apply(ctx, f)
		if err != nil {
			return err
		}
		logger.Info("种子数据导入完成",
			zap.Int("users", res.UsersCreated),
			zap.Int("projects", res.ProjectsCreated),
			zap.Int("logs", res.LogsCreated),
			zap.Int("skipped", res.Skipped))
		fmt.Fprintf(cmd.OutOrStdout(), "users=%d projects=%d logs=%d skipped=%d\n",
			res.UsersCreated, res.ProjectsCreated, res.LogsCreated, res.Skipped)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "configs/seed.yaml", "种子文件路径")
}
