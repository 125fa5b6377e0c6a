package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/audit"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// UploadAuditRepo implements audit.Recorder against PostgreSQL.
type UploadAuditRepo struct{ db *sql.DB }

// NewUploadAuditRepo creates a Postgres-backed upload audit log.
func NewUploadAuditRepo(db *sql.DB) *UploadAuditRepo { return &UploadAuditRepo{db: db} }

// Open connects to dsn with lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (r *UploadAuditRepo) Record(ctx context.Context, e *audit.Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO upload_audit (
			id, session_id, slot, filename, decoder, row_count, snapshot,
			error_count, warn_count, outcome, cause, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, e.SessionID, e.Slot, e.Filename, e.Decoder, e.Rows, e.Snapshot,
		e.Errors, e.Warnings, string(e.Outcome), e.Cause, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}

func (r *UploadAuditRepo) Recent(ctx context.Context, sessionID string, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, slot, filename, decoder, row_count, snapshot,
		       error_count, warn_count, outcome, cause, created_at
		FROM upload_audit
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var out []audit.Entry
	for rows.Next() {
		var (
			e        audit.Entry
			snapshot sql.NullTime
			outcome  string
		)
		if err := rows.Scan(
			&e.ID, &e.SessionID, &e.Slot, &e.Filename, &e.Decoder, &e.Rows, &snapshot,
			&e.Errors, &e.Warnings, &outcome, &e.Cause, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		if snapshot.Valid {
			t := snapshot.Time
			e.Snapshot = &t
		}
		e.Outcome = audit.Outcome(outcome)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Ping reports whether the database is reachable.
func (r *UploadAuditRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }
