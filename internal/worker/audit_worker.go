// Package worker consumes record events into the local audit trail.
package worker

import (
	"context"
	"fmt"

	"medrecords/internal/amqp"
	"medrecords/internal/log"
	"medrecords/internal/storage"
)

// AuditSink receives consumed events. Satisfied by *storage.SQLiteAdapter.
type AuditSink interface {
	AppendAudit(ctx context.Context, entry storage.AuditEntry) error
}

// AuditWorker turns the record-event feed into audit_log rows. It keeps the
// change history on the device; nothing is shipped anywhere.
type AuditWorker struct {
	sink   AuditSink
	logger *log.Logger
}

func NewAuditWorker(sink AuditSink, logger *log.Logger) *AuditWorker {
	return &AuditWorker{
		sink:   sink,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRecordEvent appends one event to the audit trail. An error makes the
// consumer nack and requeue the delivery.
func (w *AuditWorker) HandleRecordEvent(event *amqp.RecordEvent) error {
	ctx := context.Background()
	entry := storage.AuditEntry{
		RecordID:   event.RecordID,
		Action:     event.Action,
		OccurredAt: event.OccurredAt,
	}
	if err := w.sink.AppendAudit(ctx, entry); err != nil {
		return fmt.Errorf("audit record event: %w", err)
	}

	w.logger.InfoContext(ctx, "Audited record event",
		log.FieldOperation, log.OpConsume,
		log.FieldRecordID, event.RecordID,
		log.FieldAction, event.Action)
	return nil
}
