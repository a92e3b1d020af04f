package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/docfields/internal/core"
	"github.com/markdave123-py/docfields/internal/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// DatabaseClient is the Postgres-backed result archive.
type DatabaseClient struct {
	db *sql.DB
}

var _ core.ResultArchive = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, databaseURL string) (*DatabaseClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctxPing, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := ensureArchiveSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive schema: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// SaveExtractionResult upserts a terminal job.
func (c *DatabaseClient) SaveExtractionResult(ctx context.Context, res *models.ArchivedResult) error {
	if res == nil {
		return errors.New("nil result")
	}
	var fields []byte
	if res.Fields != nil {
		b, err := json.Marshal(res.Fields)
		if err != nil {
			return fmt.Errorf("encode fields: %w", err)
		}
		fields = b
	}

	const q = `
		INSERT INTO extraction_results
			(job_id, bucket, object_key, field_spec, status, fields, error, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		ON CONFLICT (job_id) DO UPDATE SET
			status = EXCLUDED.status,
			fields = EXCLUDED.fields,
			error = EXCLUDED.error,
			completed_at = EXCLUDED.completed_at
	`
	_, err := c.db.ExecContext(ctx, q,
		res.JobID, res.Bucket, res.ObjectKey, res.FieldSpec, string(res.Status), fields, res.Error, res.CompletedAt)
	return err
}

// ListExtractionResults returns the most recently completed jobs first.
func (c *DatabaseClient) ListExtractionResults(ctx context.Context, limit int) ([]models.ArchivedResult, error) {
	limit = clampLimit(limit)
	const q = `
		SELECT job_id, bucket, object_key, field_spec, status, fields, COALESCE(error, ''), completed_at
		FROM extraction_results
		ORDER BY completed_at DESC
		LIMIT $1
	`
	rows, err := c.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ArchivedResult
	for rows.Next() {
		var (
			r      models.ArchivedResult
			status string
			fields []byte
		)
		if err := rows.Scan(&r.JobID, &r.Bucket, &r.ObjectKey, &r.FieldSpec, &status, &fields, &r.Error, &r.CompletedAt); err != nil {
			return nil, err
		}
		r.Status = models.JobStatus(status)
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &r.Fields); err != nil {
				return nil, fmt.Errorf("decode fields for %s: %w", r.JobID, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
