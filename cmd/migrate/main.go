package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|status]

import (
	"context"
	"fmt"
	"os"

	"resume-insights/internal/shared/config"
	"resume-insights/internal/shared/storage/db"
	"resume-insights/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	if err := telemetry.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintln(os.Stderr, "logger setup:", err)
	}
	defer telemetry.Sync()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if err := run(context.Background(), cfg, command); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err.Error()})
		telemetry.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, command string) error {
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	switch command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB)
	default:
		return fmt.Errorf("unknown command %q (want up, down or status)", command)
	}
	if err != nil {
		return err
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
	return nil
}
