package db

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"torchtally/src/infra/config"
)

//go:embed all:migrations
var migrationsFS embed.FS

// Migrate applies pending goose migrations from the embedded filesystem.
// It opens a short-lived database/sql connection over the pgx stdlib driver;
// the application pool is not used for migrations.
func Migrate(cfg config.DatabaseConfig, log *slog.Logger) error {
	conn, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(conn)
	if err != nil {
		return err
	}
	log.Info("database migrations applied", "version", version)
	return nil
}
