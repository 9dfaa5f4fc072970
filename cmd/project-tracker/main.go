package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"project-tracker/internal/pkg/config"
	"project-tracker/internal/pkg/database"
	"project-tracker/internal/pkg/logger"

	_ "project-tracker/docs" // Swagger docs
)

// @title Project Tracker API
// @version 1.0
// @description 项目进度跟踪平台 API 文档
// @description 提供项目管理、进度日志、讨论资料、客户跟踪页等功能

// @contact.name API Support
// @contact.email support@example.com

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const (
	appVersion = "1.0.0"
	appName    = "project-tracker"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "项目进度跟踪平台",
	Long:          `project-tracker 管理客户项目的开发与维护进度, 并通过专属链接向客户展示进展.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径 (例如: --config=configs/config.yaml)")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, reconcileCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap 加载配置并初始化日志
func bootstrap() (*config.Config, error) {
	// 优先级: 命令行参数 > 环境变量 > 默认路径
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Println("\n使用方式:")
		fmt.Println("  1. 命令行参数指定:")
		fmt.Println("     ./project-tracker serve --config=configs/config.yaml")
		fmt.Println("  2. 环境变量指定:")
		fmt.Println("     export CONFIG_FILE=configs/config.yaml")
		fmt.Println("     ./project-tracker serve")
		fmt.Println("  3. 使用默认配置:")
		fmt.Println("     ./project-tracker serve  (将使用 configs/config.yaml)")
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	logger.Info(fmt.Sprintf("Load config file: %s of %s", configPath, getConfigSource()))
	return cfg, nil
}

// openDatabase 初始化数据库连接, migrate 为 true 时同步表结构
func openDatabase(cfg *config.Config, migrate bool) error {
	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("初始化数据库失败: %w", err)
	}
	logger.Info("数据库连接成功",
		zap.String("driver", cfg.Database.Driver),
		zap.String("database", cfg.Database.Database))

	if migrate {
		if err := database.Migrate(database.GetDB()); err != nil {
			return fmt.Errorf("数据库迁移失败: %w", err)
		}
		logger.Info("数据库迁移完成")
	}
	return nil
}

// getConfigPath 获取配置文件路径
// 优先级: 命令行参数 > 环境变量 > 默认路径
func getConfigPath() string {
	// 1. 命令行参数
	if configFile != "" {
		return configFile
	}

	// 2. 环境变量
	if envConfig := os.Getenv("CONFIG_FILE"); envConfig != "" {
		return envConfig
	}

	// 3. 默认路径
	return "configs/config.yaml"
}

// getConfigSource 获取配置来源说明
func getConfigSource() string {
	if configFile != "" {
		return "命令行参数"
	}
	if os.Getenv("CONFIG_FILE") != "" {
		return "环境变量"
	}
	return "默认配置"
}
