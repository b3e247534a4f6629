package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"
)

//go:embed scripts/*.sql
var bootstrapFS embed.FS

const schemaVersion = 1

// metaExistsQuery asks whether the docqa_meta table is present, per driver.
var metaExistsQuery = map[string]string{
	DriverPostgres: `
		SELECT EXISTS (
		  SELECT 1 FROM information_schema.tables
		  WHERE table_name = 'docqa_meta'
		)`,
	DriverSQLite: `
		SELECT EXISTS (
		  SELECT 1 FROM sqlite_master
		  WHERE type = 'table' AND name = 'docqa_meta'
		)`,
}

// EnsureBootstrapped creates the schema when the meta table or its version row is missing.
func EnsureBootstrapped(ctx context.Context, db *sql.DB, driver string) error {
	ctxBoot, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	query, ok := metaExistsQuery[driver]
	if !ok {
		return fmt.Errorf("no bootstrap script for driver %q", driver)
	}

	var exists bool
	if err := db.QueryRowContext(ctxBoot, query).Scan(&exists); err != nil {
		return fmt.Errorf("meta table check failed: %w", err)
	}
	if !exists {
		return runBootstrap(ctxBoot, db, driver)
	}

	var hasVersion bool
	if err := db.QueryRowContext(ctxBoot, rebind(driver, `SELECT EXISTS (SELECT 1 FROM docqa_meta WHERE version = $1)`), schemaVersion).Scan(&hasVersion); err != nil {
		return fmt.Errorf("meta version check failed: %w", err)
	}
	if !hasVersion {
		return runBootstrap(ctxBoot, db, driver)
	}

	return nil
}

func runBootstrap(ctx context.Context, db *sql.DB, driver string) error {
	name := fmt.Sprintf("scripts/initdb_%s.sql", driver)
	sqlBytes, err := bootstrapFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec bootstrap: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}
	return nil
}
