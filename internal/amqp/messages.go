package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by record events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RecordEvent announces a committed record mutation. It carries only the id
// and the action; consumers that need record contents read the local store.
type RecordEvent struct {
	RecordID   string    `json:"recordId"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewRecordEvent stamps an event with the current time.
func NewRecordEvent(recordID, action string) *RecordEvent {
	return &RecordEvent{
		RecordID:   recordID,
		Action:     action,
		OccurredAt: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON parses an event from JSON bytes.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var event RecordEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
