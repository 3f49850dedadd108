package core

import (
	"math"
	"time"
)

// Category labels assigned by ByCategory.
const (
	CategoryDiagnosis = "Diagnosis"
	CategoryTreatment = "Treatment"
	CategoryGeneral   = "General"
)

// MonthCount is one bucket of the monthly chart series.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// DefaultSeriesWindow is the trailing number of months shown on the dashboard.
const DefaultSeriesWindow = 5

// Category returns the record's label under the dashboard priority rule:
// a non-empty diagnosis wins, then a non-empty treatment, else General.
func (r Record) Category() string {
	switch {
	case r.Diagnosis != "":
		return CategoryDiagnosis
	case r.Treatment != "":
		return CategoryTreatment
	default:
		return CategoryGeneral
	}
}

// ByCategory counts records per category label. Every record lands in exactly
// one bucket, so the counts always sum to len(records).
func ByCategory(records []Record) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		out[r.Category()]++
	}
	return out
}

// MonthlySeries buckets records into the trailing window of calendar months
// ending at now, oldest first. A record counts toward the bucket whose month
// and year both match its effective date. Labels are abbreviated month names.
func MonthlySeries(records []Record, now time.Time, windowSize int) []MonthCount {
	if windowSize <= 0 {
		windowSize = DefaultSeriesWindow
	}
	series := make([]MonthCount, 0, windowSize)
	for i := windowSize - 1; i >= 0; i-- {
		bucket := now.AddDate(0, -i, 0)
		count := 0
		for _, r := range records {
			d := r.EffectiveDate()
			if d.Month() == bucket.Month() && d.Year() == bucket.Year() {
				count++
			}
		}
		series = append(series, MonthCount{Month: bucket.Format("Jan"), Count: count})
	}
	return series
}

// PercentageShare is count as an integer percentage of total, rounded to the
// nearest whole number. A zero total yields zero rather than dividing by it.
func PercentageShare(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
