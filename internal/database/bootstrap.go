package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"propmatch/internal/config"
	"propmatch/internal/middleware"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// MaintenanceDSN returns a DSN for dbName on the configured server, used to
// reach the "postgres" maintenance database before the target exists.
func MaintenanceDSN(cfg *config.Config, dbName string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, dbName, cfg.DBSSLMode)
}

// EnsureDatabase creates the configured database when it does not exist.
func EnsureDatabase(ctx context.Context, cfg *config.Config) error {
	sqlDB, err := sql.Open("pgx", MaintenanceDSN(cfg, "postgres"))
	if err != nil {
		return fmt.Errorf("open maintenance database: %w", err)
	}
	defer sqlDB.Close()

	var exists bool
	if err := sqlDB.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check database %q: %w", cfg.DBName, err)
	}
	if exists {
		return nil
	}

	stmt := "CREATE DATABASE " + pgx.Identifier{cfg.DBName}.Sanitize()
	if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create database %q: %w", cfg.DBName, err)
	}
	middleware.Logger.Info("Database created", slog.String("name", cfg.DBName))
	return nil
}
