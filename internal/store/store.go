// internal/store/store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/JeeveshRajan/formscope/api/schemas"
)

// DBPool abstracts the pgxpool.Pool so the archive can be mocked in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS form_runs (
    run_id      TEXT PRIMARY KEY,
    source_url  TEXT NOT NULL,
    page_title  TEXT NOT NULL,
    captured_at TIMESTAMPTZ NOT NULL,
    step_count  INT NOT NULL,
    field_count INT NOT NULL,
    document    JSONB NOT NULL
)`

const insertRunSQL = `
INSERT INTO form_runs (run_id, source_url, page_title, captured_at, step_count, field_count, document)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Store archives completed scan runs in Postgres. It is an optional feature:
// archive failures are reported to the caller, who logs and moves on.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New verifies the connection and ensures the archive table exists.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to ensure form_runs table: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// ArchiveRun inserts one completed schema under the given run id.
func (s *Store) ArchiveRun(ctx context.Context, runID string, schema *schemas.FormSchema) error {
	doc, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema document: %w", err)
	}

	capturedAt, err := time.Parse("2006-01-02 15:04:05", schema.Metadata.ScrapedAt)
	if err != nil {
		// The timestamp string is our own format; fall back to now if a
		// future change breaks the layout rather than losing the row.
		s.log.Warn("Unparseable scraped_at, archiving with current time",
			zap.String("scraped_at", schema.Metadata.ScrapedAt))
		capturedAt = time.Now()
	}

	_, err = s.pool.Exec(ctx, insertRunSQL,
		runID,
		schema.Metadata.URL,
		schema.Metadata.Title,
		capturedAt.UTC(),
		len(schema.Steps),
		schema.FieldCount(),
		doc,
	)
	if err != nil {
		return fmt.Errorf("failed to insert form run: %w", err)
	}

	s.log.Info("Run archived", zap.String("run_id", runID))
	return nil
}
