package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"medrecords/internal/core"
	"medrecords/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteAdapter stores the whole collection as one JSON payload under
// CollectionKey, preserving the stored-data shape of earlier versions. It also
// owns the audit_log table written by the event worker.
type SQLiteAdapter struct {
	db     *sql.DB
	logger *log.Logger
}

// AuditEntry is one row of the local record-change audit trail.
type AuditEntry struct {
	ID         int64
	RecordID   string
	Action     string
	OccurredAt time.Time
}

func NewSQLiteAdapter(dbPath string, logger *log.Logger) (*SQLiteAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteAdapter{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (a *SQLiteAdapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Load reads the stored collection. A missing row or a payload that no longer
// parses yields an empty collection; the stored blob is left in place and
// will be overwritten by the next successful save.
func (a *SQLiteAdapter) Load(ctx context.Context) ([]core.Record, error) {
	var payload string
	err := a.db.QueryRowContext(ctx,
		`SELECT payload FROM collections WHERE key = ?`, CollectionKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []core.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %q: %w", CollectionKey, err)
	}

	var records []core.Record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		a.logger.WarnContext(ctx, "Stored collection is corrupt, starting empty",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err.Error())
		return []core.Record{}, nil
	}

	a.logger.InfoContext(ctx, "Collection loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldCount, len(records))
	return records, nil
}

// Save replaces the stored collection in a single transaction.
func (a *SQLiteAdapter) Save(ctx context.Context, records []core.Record) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO collections (key, payload, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		CollectionKey, string(payload))
	if err != nil {
		return fmt.Errorf("write collection %q: %w", CollectionKey, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	a.logger.DebugContext(ctx, "Collection saved",
		log.FieldOperation, log.OpSave,
		log.FieldCount, len(records))
	return nil
}

// AppendAudit records one consumed record-change event.
func (a *SQLiteAdapter) AppendAudit(ctx context.Context, entry AuditEntry) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO audit_log (record_id, action, occurred_at) VALUES (?, ?, ?)`,
		entry.RecordID, entry.Action, entry.OccurredAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the newest audit entries, most recent first.
func (a *SQLiteAdapter) ListAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, record_id, action, occurred_at FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var occurredAt string
		if err := rows.Scan(&e.ID, &e.RecordID, &e.Action, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, occurredAt); err == nil {
			e.OccurredAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
