package main

import (
	"github.com/spf13/cobra"

	"github.com/edgard/recapbot/internal/database"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			// NewDB applies pending migrations before returning.
			db, err := database.NewDB(cfg.Database, log)
			if err != nil {
				log.Error("Failed to migrate database", "path", cfg.Database.Path, "error", err)
				return err
			}
			defer database.CloseDB(db, log)

			version, dirty, err := database.SchemaVersion(db)
			if err != nil {
				return err
			}
			log.Info("Database is up to date", "path", cfg.Database.Path, "version", version, "dirty", dirty)
			return nil
		},
	}
}
