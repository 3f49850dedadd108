package core

import (
	"testing"
	"time"
)

func TestCategoryPriority(t *testing.T) {
	cases := []struct {
		r    Record
		want string
	}{
		{Record{Diagnosis: "flu", Treatment: "rest"}, CategoryDiagnosis},
		{Record{Treatment: "rest"}, CategoryTreatment},
		{Record{}, CategoryGeneral},
		{Record{Notes: "n/a"}, CategoryGeneral},
	}
	for i, tc := range cases {
		if got := tc.r.Category(); got != tc.want {
			t.Fatalf("case %d: got %s, want %s", i, got, tc.want)
		}
	}
}

func TestByCategoryCountsSumToLength(t *testing.T) {
	records := []Record{
		{Title: "a", Diagnosis: "flu"},
		{Title: "b", Treatment: "rest"},
		{Title: "c"},
		{Title: "d", Diagnosis: "cold", Treatment: "rest"},
	}
	got := ByCategory(records)
	if got[CategoryDiagnosis] != 2 || got[CategoryTreatment] != 1 || got[CategoryGeneral] != 1 {
		t.Fatalf("unexpected counts %v", got)
	}
	sum := 0
	for _, n := range got {
		sum += n
	}
	if sum != len(records) {
		t.Fatalf("counts sum to %d, want %d", sum, len(records))
	}

	if got := ByCategory(nil); len(got) != 0 {
		t.Fatalf("empty input should yield empty counts, got %v", got)
	}
}

func TestMonthlySeries(t *testing.T) {
	now := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	records := []Record{
		rec("1", "a", NewDate(2025, 8, 1)),
		rec("2", "b", NewDate(2025, 8, 20)),
		rec("3", "c", NewDate(2025, 6, 5)),
		rec("4", "d", NewDate(2024, 8, 1)),  // same month, wrong year: excluded here
		rec("5", "e", NewDate(2025, 3, 31)), // outside the window
	}
	got := MonthlySeries(records, now, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 buckets, got %d", len(got))
	}
	wantLabels := []string{"Apr", "May", "Jun", "Jul", "Aug"}
	wantCounts := []int{0, 0, 1, 0, 2}
	for i := range got {
		if got[i].Month != wantLabels[i] || got[i].Count != wantCounts[i] {
			t.Fatalf("bucket %d = %+v, want {%s %d}", i, got[i], wantLabels[i], wantCounts[i])
		}
	}
}

func TestMonthlySeriesDefaultsWindow(t *testing.T) {
	got := MonthlySeries(nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 0)
	if len(got) != DefaultSeriesWindow {
		t.Fatalf("expected default window of %d, got %d", DefaultSeriesWindow, len(got))
	}
}

func TestPercentageShare(t *testing.T) {
	cases := []struct {
		count, total, want int
	}{
		{0, 0, 0},
		{7, 0, 0},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
	}
	for _, tc := range cases {
		if got := PercentageShare(tc.count, tc.total); got != tc.want {
			t.Fatalf("PercentageShare(%d, %d) = %d, want %d", tc.count, tc.total, got, tc.want)
		}
	}
}
