package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"medrecords/internal/core"
	"medrecords/internal/log"
)

func newTestAdapter(t *testing.T) *SQLiteAdapter {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "medrecords.db")
	adapter, err := NewSQLiteAdapter(dbPath, log.New(log.DefaultConfig()))
	if err != nil {
		t.Fatalf("open adapter: %v", err)
	}
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func TestLoadEmptyDatabase(t *testing.T) {
	adapter := newTestAdapter(t)
	records, err := adapter.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty collection, got %d records", len(records))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	records := []core.Record{
		{ID: "1700000000000", Title: "Annual Checkup", DateAdded: core.NewDate(2025, 1, 2)},
		{ID: "1700000000001", Title: "Lab Results", Diagnosis: "flu", DateAdded: core.NewDate(2025, 1, 3)},
	}
	if err := adapter.Save(ctx, records); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := adapter.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "1700000000000" || got[1].Diagnosis != "flu" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSaveOverwritesPriorCollection(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	if err := adapter.Save(ctx, []core.Record{{ID: "a", Title: "first"}}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := adapter.Save(ctx, []core.Record{}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := adapter.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected overwrite to empty, got %d records", len(got))
	}
}

func TestLoadCorruptPayloadStartsEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "medrecords.db")
	adapter, err := NewSQLiteAdapter(dbPath, log.New(log.DefaultConfig()))
	if err != nil {
		t.Fatalf("open adapter: %v", err)
	}
	defer adapter.Close()

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(
		`INSERT INTO collections (key, payload) VALUES (?, ?)`, CollectionKey, "{not json"); err != nil {
		t.Fatalf("plant corrupt payload: %v", err)
	}

	records, err := adapter.Load(context.Background())
	if err != nil {
		t.Fatalf("corrupt payload must not error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty collection for corrupt payload, got %d", len(records))
	}
}

func TestAuditAppendAndList(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	at := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, action := range []string{"created", "updated", "deleted"} {
		entry := AuditEntry{RecordID: "r1", Action: action, OccurredAt: at.Add(time.Duration(i) * time.Minute)}
		if err := adapter.AppendAudit(ctx, entry); err != nil {
			t.Fatalf("append %s: %v", action, err)
		}
	}

	entries, err := adapter.ListAudit(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Action != "deleted" {
		t.Fatalf("expected newest first, got %s", entries[0].Action)
	}
	if !entries[0].OccurredAt.Equal(at.Add(2 * time.Minute)) {
		t.Fatalf("occurred_at not preserved: %v", entries[0].OccurredAt)
	}
}
