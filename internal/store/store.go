// Package store owns the canonical in-memory record collection and mediates
// every mutation through a persistence adapter.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"medrecords/internal/core"
	"medrecords/internal/log"
	"medrecords/internal/storage"
)

// Store serializes all mutations behind one mutex: the adapter's save is a
// full-collection overwrite with no merge logic, so two interleaved writers
// would lose updates. A failed save rolls the in-memory collection back to
// its pre-mutation state; readers never observe a partial mutation.
type Store struct {
	mu      sync.Mutex
	adapter storage.Adapter
	logger  *log.Logger
	records []core.Record

	now    func() time.Time
	lastID int64
}

// New loads the initial collection from the adapter. A load failure is logged
// and startup continues with an empty collection.
func New(ctx context.Context, adapter storage.Adapter, logger *log.Logger) *Store {
	s := &Store{
		adapter: adapter,
		logger:  logger.WithComponent(log.ComponentStore),
		now:     time.Now,
	}

	records, err := adapter.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Initial load failed, starting with empty collection",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err.Error())
		records = []core.Record{}
	}
	s.records = records

	for _, r := range records {
		if id, err := strconv.ParseInt(r.ID, 10, 64); err == nil && id > s.lastID {
			s.lastID = id
		}
	}
	return s
}

// List returns a snapshot of the collection in insertion order.
func (s *Store) List() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.records...)
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.records[i], nil
	}
	return core.Record{}, fmt.Errorf("get %q: %w", id, core.ErrNotFound)
}

// Add constructs a record from the draft, appends it and persists the
// collection. The store assigns id and dateAdded; an unset recordDate
// defaults to today. Title validity is the caller's contract.
func (s *Store) Add(ctx context.Context, draft core.Draft) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := core.DateOf(s.now())
	rec := core.Record{
		ID:          s.nextID(),
		Title:       draft.Title,
		RecordDate:  draft.RecordDate,
		DateAdded:   today,
		Doctor:      draft.Doctor,
		Diagnosis:   draft.Diagnosis,
		Treatment:   draft.Treatment,
		Medications: draft.Medications,
		Notes:       draft.Notes,
		ImageURL:    draft.ImageURL,
	}
	if rec.RecordDate.IsEmpty() {
		rec.RecordDate = today
	}

	next := append(append([]core.Record(nil), s.records...), rec)
	if err := s.adapter.Save(ctx, next); err != nil {
		return core.Record{}, fmt.Errorf("add record: %w", errors.Join(core.ErrPersistence, err))
	}
	s.records = next

	s.logger.InfoContext(ctx, "Record added",
		log.FieldOperation, log.OpAdd,
		log.FieldRecordID, rec.ID,
		log.FieldTitle, rec.Title)
	return rec, nil
}

// Update merges the patch over the record with the given id and persists. An
// empty patch still triggers a persistence write. If the merged recordDate is
// empty it defaults to today. Id and dateAdded never change.
func (s *Store) Update(ctx context.Context, id string, patch core.Patch) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.Record{}, fmt.Errorf("update %q: %w", id, core.ErrNotFound)
	}

	merged := patch.Apply(s.records[i])
	if merged.RecordDate.IsEmpty() {
		merged.RecordDate = core.DateOf(s.now())
	}

	next := append([]core.Record(nil), s.records...)
	next[i] = merged
	if err := s.adapter.Save(ctx, next); err != nil {
		return core.Record{}, fmt.Errorf("update record: %w", errors.Join(core.ErrPersistence, err))
	}
	s.records = next

	s.logger.InfoContext(ctx, "Record updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldRecordID, id)
	return merged, nil
}

// Remove deletes the record with the given id and persists. Irreversible;
// any confirmation prompt belongs to the presentation layer.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", id, core.ErrNotFound)
	}

	next := append([]core.Record(nil), s.records[:i]...)
	next = append(next, s.records[i+1:]...)
	if err := s.adapter.Save(ctx, next); err != nil {
		return fmt.Errorf("remove record: %w", errors.Join(core.ErrPersistence, err))
	}
	s.records = next

	s.logger.InfoContext(ctx, "Record removed",
		log.FieldOperation, log.OpRemove,
		log.FieldRecordID, id)
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// nextID derives a unique id from the creation timestamp, bumping past the
// last issued id when two adds land in the same millisecond.
func (s *Store) nextID() string {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}
