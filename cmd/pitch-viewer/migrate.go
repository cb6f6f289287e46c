package main

import (
	"github.com/pitchpilot/pitch-analyzer/internal/config"
	"github.com/pitchpilot/pitch-analyzer/internal/store"
	"github.com/pitchpilot/pitch-analyzer/pkg/log"
	"github.com/pitchpilot/pitch-analyzer/pkg/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		undo := log.Setup(cfg.LogLevel)
		defer undo()

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalf("initializing data store: %v", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := migrations.MigrateStore(db, cfg, migrationFolder); err != nil {
			zap.S().Fatalf("running migrations: %v", err)
		}

		zap.S().Info("Db migrated")
		return nil
	},
}
