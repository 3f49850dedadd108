package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"medrecords/internal/core"
	"medrecords/internal/log"
	"medrecords/internal/storage"
)

type failingLoadAdapter struct {
	*storage.MemoryAdapter
}

func (f failingLoadAdapter) Load(context.Context) ([]core.Record, error) {
	return nil, errors.New("disk on fire")
}

func newTestStore(t *testing.T) (*Store, *storage.MemoryAdapter) {
	t.Helper()
	adapter := storage.NewMemoryAdapter()
	s := New(context.Background(), adapter, log.New(log.DefaultConfig()))
	return s, adapter
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAddAssignsIDAndDates(t *testing.T) {
	s, _ := newTestStore(t)
	day := time.Date(2025, 8, 15, 9, 30, 0, 0, time.UTC)
	s.now = fixedClock(day)

	rec, err := s.Add(context.Background(), core.Draft{Title: "Annual Checkup"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected assigned id")
	}
	want := core.NewDate(2025, 8, 15)
	if !rec.DateAdded.Equal(want.Time) {
		t.Fatalf("dateAdded = %v, want %v", rec.DateAdded, want)
	}
	if !rec.RecordDate.Equal(want.Time) {
		t.Fatalf("recordDate should default to dateAdded, got %v", rec.RecordDate)
	}
}

func TestAddKeepsSuppliedRecordDate(t *testing.T) {
	s, _ := newTestStore(t)
	supplied := core.NewDate(2025, 2, 1)
	rec, err := s.Add(context.Background(), core.Draft{Title: "Lab Results", RecordDate: supplied})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !rec.RecordDate.Equal(supplied.Time) {
		t.Fatalf("recordDate overwritten: %v", rec.RecordDate)
	}
}

func TestIDsAreUniqueUnderSameMillisecond(t *testing.T) {
	s, _ := newTestStore(t)
	s.now = fixedClock(time.Date(2025, 8, 15, 9, 30, 0, 0, time.UTC))

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		rec, err := s.Add(context.Background(), core.Draft{Title: "r"})
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		if seen[rec.ID] {
			t.Fatalf("duplicate id %s", rec.ID)
		}
		seen[rec.ID] = true
	}
	if got := len(s.List()); got != 50 {
		t.Fatalf("expected 50 records, got %d", got)
	}
}

func TestListLengthTracksAddsAndRemoves(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		rec, err := s.Add(ctx, core.Draft{Title: "r"})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		ids = append(ids, rec.ID)
	}
	for _, id := range ids[:2] {
		if err := s.Remove(ctx, id); err != nil {
			t.Fatalf("remove: %v", err)
		}
	}
	if got := len(s.List()); got != 3 {
		t.Fatalf("expected 3 records, got %d", got)
	}
}

func TestAddRollsBackOnSaveFailure(t *testing.T) {
	s, adapter := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, core.Draft{Title: "keeper"}); err != nil {
		t.Fatalf("seed add: %v", err)
	}

	adapter.FailSave = errors.New("disk full")
	_, err := s.Add(ctx, core.Draft{Title: "loser"})
	if !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	records := s.List()
	if len(records) != 1 || records[0].Title != "keeper" {
		t.Fatalf("in-memory state not rolled back: %+v", records)
	}
}

func TestUpdateMergesOnlySuppliedFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Add(ctx, core.Draft{Title: "X-Ray", Doctor: "Dr. Cruz", Notes: "left wrist"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	notes := "right wrist"
	got, err := s.Update(ctx, rec.ID, core.Patch{Notes: &notes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Notes != notes {
		t.Fatalf("notes not merged: %q", got.Notes)
	}
	if got.Doctor != "Dr. Cruz" || got.Title != "X-Ray" {
		t.Fatalf("unsupplied fields changed: %+v", got)
	}
	if got.ID != rec.ID || !got.DateAdded.Equal(rec.DateAdded.Time) {
		t.Fatalf("id or dateAdded changed: %+v", got)
	}
}

func TestEmptyUpdateStillPersists(t *testing.T) {
	s, adapter := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Add(ctx, core.Draft{Title: "X-Ray"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	before := adapter.SaveCalls

	got, err := s.Update(ctx, rec.ID, core.Patch{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != rec {
		t.Fatalf("empty update changed the record: %+v vs %+v", got, rec)
	}
	if adapter.SaveCalls != before+1 {
		t.Fatalf("empty update must still write, saves %d -> %d", before, adapter.SaveCalls)
	}
}

func TestUpdateRollsBackOnSaveFailure(t *testing.T) {
	s, adapter := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Add(ctx, core.Draft{Title: "original"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	adapter.FailSave = errors.New("disk full")
	title := "changed"
	if _, err := s.Update(ctx, rec.ID, core.Patch{Title: &title}); !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	got, err := s.Get(rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "original" {
		t.Fatalf("update not rolled back: %q", got.Title)
	}
}

func TestRemoveThenOperateFailsNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Add(ctx, core.Draft{Title: "gone soon"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Remove(ctx, rec.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if err := s.Remove(ctx, rec.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second remove: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Update(ctx, rec.ID, core.Patch{}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update after remove: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get(rec.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get after remove: expected ErrNotFound, got %v", err)
	}
}

func TestRemoveRollsBackOnSaveFailure(t *testing.T) {
	s, adapter := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Add(ctx, core.Draft{Title: "sticky"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	adapter.FailSave = errors.New("disk full")
	if err := s.Remove(ctx, rec.ID); !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(s.List()) != 1 {
		t.Fatalf("remove not rolled back")
	}
}

func TestLoadFailureYieldsEmptyCollection(t *testing.T) {
	adapter := failingLoadAdapter{storage.NewMemoryAdapter()}
	s := New(context.Background(), adapter, log.New(log.DefaultConfig()))
	if got := len(s.List()); got != 0 {
		t.Fatalf("expected empty collection after load failure, got %d", got)
	}
	// The store must still accept mutations afterwards.
	if _, err := s.Add(context.Background(), core.Draft{Title: "fresh start"}); err != nil {
		t.Fatalf("add after failed load: %v", err)
	}
}

func TestStoreResumesIDsFromLoadedCollection(t *testing.T) {
	adapter := storage.NewMemoryAdapter()
	adapter.Seed([]core.Record{{ID: "9000000000000", Title: "old"}})
	s := New(context.Background(), adapter, log.New(log.DefaultConfig()))
	s.now = fixedClock(time.UnixMilli(1000)) // far behind the seeded id

	rec, err := s.Add(context.Background(), core.Draft{Title: "new"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if rec.ID != "9000000000001" {
		t.Fatalf("expected id bumped past loaded max, got %s", rec.ID)
	}
}
