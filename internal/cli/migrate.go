package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"kiddoland-quiz-service/internal/config"
	pgstore "kiddoland-quiz-service/internal/infra/postgres"
	pgmigrations "kiddoland-quiz-service/internal/infra/postgres/migrations"
	"kiddoland-quiz-service/internal/quiz"
)

// NewMigrateCmd applies database migrations and seeds the built-in banks.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and seed built-in question banks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return runMigrationsWithConfig(ctx, cfg)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("migrations applied")

	return seedBanks(ctx, cfg.Postgres.URL)
}

func seedBanks(ctx context.Context, url string) error {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer pool.Close()

	loader := pgstore.NewBankLoader(pool)
	for id, bank := range quiz.DefaultBanks() {
		if err := loader.SaveBank(ctx, bank); err != nil {
			return fmt.Errorf("seed bank %s: %w", id, err)
		}
	}
	log.Printf("built-in question banks seeded")
	return nil
}
