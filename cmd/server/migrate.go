package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/social-auth/internal/config"
	"github.com/iliyamo/social-auth/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{database.MigrateUp, database.MigrateDown, database.MigrateStatus},
		RunE:      migrateCommand,
	}
}

func migrateCommand(cmd *cobra.Command, args []string) error {
	command := database.MigrateUp
	if len(args) == 1 {
		command = args[0]
	}
	cfg := config.Load()
	if cfg.DB.Driver == config.DriverMemory {
		return fmt.Errorf("nothing to migrate for DB_DRIVER=%s", config.DriverMemory)
	}

	db, err := database.Open(cfg.DB.Driver, cfg.DB.ConnString())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return database.Migrate(ctx, db, cfg.DB.Driver, command)
}
