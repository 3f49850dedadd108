package core

import (
	"sort"
	"strings"
	"time"
)

// Query functions are pure: they take a snapshot of the collection plus an
// explicit reference time and never touch storage or the wall clock.

// Search returns the records whose title, doctor, diagnosis or notes contain
// term, case-insensitively. An empty term matches everything, in snapshot
// order.
func Search(records []Record, term string) []Record {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if needle == "" || matches(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r Record, needle string) bool {
	for _, field := range []string{r.Title, r.Doctor, r.Diagnosis, r.Notes} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// SortedByRecency returns a copy ordered by descending effective date. The
// sort is stable: records sharing a date keep their snapshot order.
func SortedByRecency(records []Record) []Record {
	out := append([]Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveDate().After(out[j].EffectiveDate().Time)
	})
	return out
}

// Today returns the records whose effective date falls on now's calendar day.
func Today(records []Record, now time.Time) []Record {
	day := DateOf(now)
	out := make([]Record, 0)
	for _, r := range records {
		if r.EffectiveDate().Equal(day.Time) {
			out = append(out, r)
		}
	}
	return out
}

// ThisWeek returns the records whose effective date is on or after seven days
// before now. There is no upper bound; future-dated records match too.
func ThisWeek(records []Record, now time.Time) []Record {
	cutoff := DateOf(now.AddDate(0, 0, -7))
	out := make([]Record, 0)
	for _, r := range records {
		if !r.EffectiveDate().Before(cutoff.Time) {
			out = append(out, r)
		}
	}
	return out
}

// ThisMonth returns the records whose effective date shares now's calendar
// month. The year is deliberately not compared, so a record from the same
// month of another year matches; MonthlySeries, by contrast, buckets on month
// and year. Callers depend on both behaviors as they are.
func ThisMonth(records []Record, now time.Time) []Record {
	month := now.Month()
	out := make([]Record, 0)
	for _, r := range records {
		if r.EffectiveDate().Month() == month {
			out = append(out, r)
		}
	}
	return out
}
