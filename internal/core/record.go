package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire format for all record dates.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date that serializes as "YYYY-MM-DD". The zero value
	// marshals to the empty string, matching records stored without a date.
	Date struct {
		time.Time
	}

	// Record is one stored medical-record entry. Field names are part of the
	// stored-data contract and must not change.
	Record struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		RecordDate  Date   `json:"recordDate"`
		DateAdded   Date   `json:"dateAdded"`
		Doctor      string `json:"doctor"`
		Diagnosis   string `json:"diagnosis"`
		Treatment   string `json:"treatment"`
		Medications string `json:"medications"`
		Notes       string `json:"notes"`
		ImageURL    string `json:"imageUrl"`
	}

	// Draft carries caller-supplied fields for a new record. The store fills in
	// id, dateAdded and a default recordDate.
	Draft struct {
		Title       string `json:"title"`
		RecordDate  Date   `json:"recordDate"`
		Doctor      string `json:"doctor"`
		Diagnosis   string `json:"diagnosis"`
		Treatment   string `json:"treatment"`
		Medications string `json:"medications"`
		Notes       string `json:"notes"`
		ImageURL    string `json:"imageUrl"`
	}

	// Patch carries a partial update. Nil fields are left untouched by the
	// merge; id and dateAdded are never patchable.
	Patch struct {
		Title       *string `json:"title"`
		RecordDate  *Date   `json:"recordDate"`
		Doctor      *string `json:"doctor"`
		Diagnosis   *string `json:"diagnosis"`
		Treatment   *string `json:"treatment"`
		Medications *string `json:"medications"`
		Notes       *string `json:"notes"`
		ImageURL    *string `json:"imageUrl"`
	}
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrPersistence = errors.New("persistence failure")
	ErrEmptyTitle  = errors.New("empty title")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// IsEmpty reports whether the date is unset.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Validate checks the caller contract for a new record.
func (dr Draft) Validate() error {
	if strings.TrimSpace(dr.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Validate rejects patches that would blank out the title. A nil title is
// fine; that field is simply not part of the merge.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Apply merges the patch over r and returns the result. Unset fields keep
// their prior values; ID and DateAdded are never touched.
func (p Patch) Apply(r Record) Record {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.RecordDate != nil {
		r.RecordDate = *p.RecordDate
	}
	if p.Doctor != nil {
		r.Doctor = *p.Doctor
	}
	if p.Diagnosis != nil {
		r.Diagnosis = *p.Diagnosis
	}
	if p.Treatment != nil {
		r.Treatment = *p.Treatment
	}
	if p.Medications != nil {
		r.Medications = *p.Medications
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.ImageURL != nil {
		r.ImageURL = *p.ImageURL
	}
	return r
}

// EffectiveDate is the date used everywhere a record is ordered, filtered or
// bucketed: recordDate when set, dateAdded otherwise.
func (r Record) EffectiveDate() Date {
	if !r.RecordDate.IsEmpty() {
		return r.RecordDate
	}
	return r.DateAdded
}
