// Package services orchestrates record mutations with the optional
// record-event feed.
package services

import (
	"context"
	"fmt"

	"medrecords/internal/amqp"
	"medrecords/internal/core"
	"medrecords/internal/log"
	"medrecords/internal/store"
)

// EventPublisher is the outbound event feed. Satisfied by *amqp.Client.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, recordID, action string) error
	Close() error
}

// RecordService runs each mutation through the store, then announces it on
// the event feed. The mutation is the source of truth: a publish failure is
// logged and swallowed, never surfaced to the caller.
type RecordService struct {
	store     *store.Store
	publisher EventPublisher
	logger    *log.Logger
}

func NewRecordService(s *store.Store, publisher EventPublisher, logger *log.Logger) *RecordService {
	return &RecordService{
		store:     s,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentApp),
	}
}

// List returns the collection snapshot in insertion order.
func (s *RecordService) List() []core.Record {
	return s.store.List()
}

// Get returns one record by id.
func (s *RecordService) Get(id string) (core.Record, error) {
	return s.store.Get(id)
}

// Add creates a record and publishes a created event.
func (s *RecordService) Add(ctx context.Context, draft core.Draft) (core.Record, error) {
	rec, err := s.store.Add(ctx, draft)
	if err != nil {
		return core.Record{}, err
	}
	s.publish(ctx, rec.ID, amqp.ActionCreated)
	return rec, nil
}

// Update merges a patch into a record and publishes an updated event.
func (s *RecordService) Update(ctx context.Context, id string, patch core.Patch) (core.Record, error) {
	rec, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return core.Record{}, err
	}
	s.publish(ctx, rec.ID, amqp.ActionUpdated)
	return rec, nil
}

// Remove deletes a record and publishes a deleted event.
func (s *RecordService) Remove(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *RecordService) publish(ctx context.Context, recordID, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, recordID, action); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record event",
			log.FieldOperation, log.OpPublish,
			log.FieldRecordID, recordID,
			log.FieldAction, action,
			log.FieldError, err.Error())
	}
}

// Close releases the event feed connection, if any.
func (s *RecordService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}
