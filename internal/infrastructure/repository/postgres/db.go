package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema bootstraps all tables. The advisory lock serializes DDL across
// concurrent api/sweeper startups.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026090101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS files (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	file_type TEXT NOT NULL,
	file_size BIGINT NOT NULL,
	upload_time TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	file_id TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	prompt_used TEXT NOT NULL,
	model_used TEXT,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	processing_time DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_file_id ON analyses(file_id);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);

CREATE TABLE IF NOT EXISTS metrics (
	id BIGSERIAL PRIMARY KEY,
	department TEXT NOT NULL DEFAULT '全部部门',
	requirement_throughput INTEGER,
	monthly_delivered_requirements INTEGER,
	monthly_new_requirements INTEGER,
	delivery_cycle_p75 DOUBLE PRECISION,
	online_defects INTEGER,
	reopen_rate DOUBLE PRECISION,
	emergency_releases INTEGER,
	incident_count INTEGER,
	work_saturation DOUBLE PRECISION,
	code_equivalent INTEGER,
	record_date TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_metrics_department_date ON metrics(department, record_date);

CREATE TABLE IF NOT EXISTS project_details (
	id BIGSERIAL PRIMARY KEY,
	department TEXT NOT NULL DEFAULT '全部部门',
	person_name TEXT,
	position_name TEXT,
	project_name TEXT,
	saturation DOUBLE PRECISION,
	code_equivalent INTEGER,
	delivered_requirements INTEGER,
	total_hours DOUBLE PRECISION,
	ai_usage_days DOUBLE PRECISION,
	record_date TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS developer_rankings (
	id BIGSERIAL PRIMARY KEY,
	department TEXT NOT NULL DEFAULT '全部部门',
	name TEXT,
	score INTEGER,
	work_saturation DOUBLE PRECISION,
	code_equivalent INTEGER,
	defect_count INTEGER,
	record_date TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS settings (
	id BIGSERIAL PRIMARY KEY,
	refresh_interval INTEGER NOT NULL,
	email_notifications BOOLEAN NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ai_config (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
