package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bat-ads/internal/config"
	"bat-ads/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations for the configured storage driver",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := newLogger(cfg.Log)

		addr := cfg.SQLite.Path
		if cfg.StorageDriver == db.DriverPostgres {
			addr = cfg.Psql.Addr.String()
		}
		if err = db.Migrate(cfg.StorageDriver, addr); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
