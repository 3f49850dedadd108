package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 3, 9)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-09"` {
		t.Fatalf("unexpected wire form %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
}

func TestDateJSONEmpty(t *testing.T) {
	var d Date
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `""` {
		t.Fatalf("zero date should marshal to empty string, got %s", b)
	}
	var back Date
	if err := json.Unmarshal([]byte(`""`), &back); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if !back.IsEmpty() {
		t.Fatalf("expected empty date")
	}
}

func TestRecordFieldNames(t *testing.T) {
	// The JSON keys are the stored-data contract; a rename breaks existing data.
	r := Record{
		ID:        "1700000000000",
		Title:     "Annual Checkup",
		DateAdded: NewDate(2025, 1, 2),
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{
		"id", "title", "recordDate", "dateAdded", "doctor",
		"diagnosis", "treatment", "medications", "notes", "imageUrl",
	} {
		if _, ok := m[key]; !ok {
			t.Fatalf("missing field %q in %s", key, b)
		}
	}
}

func TestDraftValidate(t *testing.T) {
	if err := (Draft{Title: "Lab Results"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for _, title := range []string{"", "   "} {
		if err := (Draft{Title: title}).Validate(); err != ErrEmptyTitle {
			t.Fatalf("title %q: expected ErrEmptyTitle, got %v", title, err)
		}
	}
}

func TestPatchApply(t *testing.T) {
	orig := Record{
		ID:         "1",
		Title:      "X-Ray Report",
		RecordDate: NewDate(2025, 2, 1),
		DateAdded:  NewDate(2025, 2, 2),
		Doctor:     "Dr. Cruz",
		Notes:      "left wrist",
	}

	if got := (Patch{}).Apply(orig); got != orig {
		t.Fatalf("empty patch changed the record: %+v", got)
	}

	title := "X-Ray Report (revised)"
	doctor := ""
	got := (Patch{Title: &title, Doctor: &doctor}).Apply(orig)
	if got.Title != title {
		t.Fatalf("title not merged: %q", got.Title)
	}
	if got.Doctor != "" {
		t.Fatalf("doctor should be cleared, got %q", got.Doctor)
	}
	if got.Notes != orig.Notes || got.ID != orig.ID || !got.DateAdded.Equal(orig.DateAdded.Time) {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestEffectiveDateFallback(t *testing.T) {
	added := NewDate(2025, 4, 10)
	withDate := Record{RecordDate: NewDate(2025, 4, 1), DateAdded: added}
	if got := withDate.EffectiveDate(); !got.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected recordDate, got %v", got)
	}
	withoutDate := Record{DateAdded: added}
	if got := withoutDate.EffectiveDate(); !got.Equal(added.Time) {
		t.Fatalf("expected dateAdded fallback, got %v", got)
	}
}
