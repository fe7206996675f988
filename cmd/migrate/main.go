package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	root "github.com/land-registry-map"
	"github.com/land-registry-map/internal/config"
	"github.com/land-registry-map/internal/pkg/logger"
	"github.com/land-registry-map/internal/repository/postgres"
)

const migrationsDir = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log.Level, cfg.Server.ServiceAlias+"-migrate")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manages the land_registry_title schema",
	}

	rootCmd.AddCommand(
		gooseCommand(cfg, log, "up", "Migrates database to the latest version", goose.UpContext),
		gooseCommand(cfg, log, "down", "Rolls back the latest migration", goose.DownContext),
		gooseCommand(cfg, log, "status", "Prints migration status", goose.StatusContext),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type gooseFunc func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error

func gooseCommand(cfg *config.Config, log *zap.Logger, use, short string, run gooseFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			db, err := postgres.New(&cfg.Database, log)
			if err != nil {
				log.Fatal("could not connect to postgres", zap.Error(err))
			}
			defer db.Close()

			goose.SetBaseFS(root.Migrations)
			if err := goose.SetDialect("postgres"); err != nil {
				log.Fatal("could not set goose dialect to postgres", zap.Error(err))
			}

			if err := run(ctx, db.DB.DB, migrationsDir); err != nil {
				log.Fatal("migration failed", zap.String("command", use), zap.Error(err))
			}

			log.Info("migration command completed", zap.String("command", use))
		},
	}
}
