package main

import (
	"github.com/spf13/cobra"

	"project-tracker/internal/pkg/database"
	"project-tracker/internal/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "同步数据库表结构",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Close()
		}()

		if err := openDatabase(cfg, true); err != nil {
			return err
		}
		return database.Close()
	},
}
