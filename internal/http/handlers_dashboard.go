package http

import (
	"net/http"

	"medrecords/internal/core"
)

const (
	dashCacheKey = "summary"
	recentCount  = 5
)

type categoryShare struct {
	Count   int `json:"count"`
	Percent int `json:"percent"`
}

// dashboardSummary is everything the dashboard widgets render in one call.
type dashboardSummary struct {
	Total         int                      `json:"total"`
	Today         int                      `json:"today"`
	ThisWeek      int                      `json:"thisWeek"`
	ThisMonth     int                      `json:"thisMonth"`
	WeekPercent   int                      `json:"weekPercent"`
	ByCategory    map[string]categoryShare `json:"byCategory"`
	MonthlySeries []core.MonthCount        `json:"monthlySeries"`
	Recent        []core.Record            `json:"recent"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	if summary, ok := s.dashCache.Get(dashCacheKey); ok {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary := s.buildDashboard()
	s.dashCache.Set(dashCacheKey, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) buildDashboard() dashboardSummary {
	records := s.records.List()
	now := s.now()

	total := len(records)
	week := len(core.ThisWeek(records, now))

	byCategory := make(map[string]categoryShare)
	for label, count := range core.ByCategory(records) {
		byCategory[label] = categoryShare{
			Count:   count,
			Percent: core.PercentageShare(count, total),
		}
	}

	recent := core.SortedByRecency(records)
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}

	return dashboardSummary{
		Total:         total,
		Today:         len(core.Today(records, now)),
		ThisWeek:      week,
		ThisMonth:     len(core.ThisMonth(records, now)),
		WeekPercent:   core.PercentageShare(week, total),
		ByCategory:    byCategory,
		MonthlySeries: core.MonthlySeries(records, now, core.DefaultSeriesWindow),
		Recent:        recent,
	}
}
