// Package postgres stores audit metadata with a rolling retention window.
// The table has no content columns: license key hash, IP, outcome and
// timestamps only.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

type Store struct {
	db        *sql.DB
	retention time.Duration
}

func NewStore(db *sql.DB, retention time.Duration) *Store {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &Store{db: db, retention: retention}
}

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

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS audit_events (
	id TEXT PRIMARY KEY,
	license_key_hash TEXT NOT NULL,
	request_ip TEXT NOT NULL,
	outcome_code TEXT NOT NULL,
	rate_flagged BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_events_key_hash ON audit_events(license_key_hash, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_audit_events_created_at ON audit_events(created_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Append inserts one record and opportunistically purges rows that fell out
// of the retention window.
func (s *Store) Append(ctx context.Context, rec domain.AuditRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO audit_events (id, license_key_hash, request_ip, outcome_code, rate_flagged, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, rec.ID, rec.LicenseKeyHash, rec.RequestIP, rec.OutcomeCode, rec.RateFlagged, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
DELETE FROM audit_events WHERE created_at < $1
`, time.Now().UTC().Add(-s.retention)); err != nil {
		return fmt.Errorf("purge expired audit events: %w", err)
	}
	return nil
}

func (s *Store) CountSince(ctx context.Context, licenseKeyHash string, since time.Time) (int, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM audit_events WHERE license_key_hash = $1 AND created_at >= $2
`, licenseKeyHash, since)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return count, nil
}
