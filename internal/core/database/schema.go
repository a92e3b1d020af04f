package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"
)

//go:embed scripts/archive_v1.sql
var schemaFS embed.FS

const (
	schemaVersion = 1
	schemaScript  = "scripts/archive_v1.sql"
)

// ensureArchiveSchema applies the archive DDL when docfields_meta is missing or
// does not record schemaVersion. The script is idempotent.
func ensureArchiveSchema(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	applied, err := archiveSchemaApplied(ctx, db)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	ddl, err := schemaFS.ReadFile(schemaScript)
	if err != nil {
		return fmt.Errorf("read %s: %w", schemaScript, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(ddl)); err != nil {
		return fmt.Errorf("apply archive schema v%d: %w", schemaVersion, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive schema: %w", err)
	}

	slog.Info("result archive schema applied", "version", schemaVersion)
	return nil
}

// archiveSchemaApplied uses to_regclass so a fresh database needs no second round trip.
func archiveSchemaApplied(ctx context.Context, db *sql.DB) (bool, error) {
	var applied bool
	err := db.QueryRowContext(ctx, `
		SELECT CASE
			WHEN to_regclass('docfields_meta') IS NULL THEN false
			ELSE EXISTS (SELECT 1 FROM docfields_meta WHERE version = $1)
		END`, schemaVersion).Scan(&applied)
	if err != nil {
		return false, fmt.Errorf("check archive schema version: %w", err)
	}
	return applied, nil
}
