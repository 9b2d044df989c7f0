package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink stores one row per invocation.
type PostgresSink struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresSink connects to dsn and creates table if it does not exist.
func NewPostgresSink(ctx context.Context, dsn, table string) (*PostgresSink, error) {
	if table == "" {
		table = "tool_invocations"
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	s := &PostgresSink{pool: pool, table: pgx.Identifier{table}.Sanitize()}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSink) migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	invocation_id TEXT PRIMARY KEY,
	tool          TEXT NOT NULL,
	mode          TEXT NOT NULL,
	caller_hash   TEXT,
	arguments     JSONB,
	success       BOOLEAN NOT NULL,
	fallback      BOOLEAN NOT NULL,
	error_kind    TEXT,
	error         TEXT,
	duration_ms   BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Write(ctx context.Context, rec Record) error {
	args, err := json.Marshal(rec.Arguments)
	if err != nil {
		return fmt.Errorf("marshal arguments: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s
	(invocation_id, tool, mode, caller_hash, arguments, success, fallback, error_kind, error, duration_ms, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (invocation_id) DO NOTHING`, s.table)
	_, err = s.pool.Exec(ctx, query,
		rec.InvocationID, rec.Tool, rec.Mode, nullable(rec.CallerHash), args,
		rec.Success, rec.Fallback, nullable(rec.ErrorKind), nullable(rec.Error),
		rec.DurationMs, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (s *PostgresSink) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresSink) Close() { s.pool.Close() }

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
