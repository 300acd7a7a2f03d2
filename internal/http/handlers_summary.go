package http

import (
	"net/http"
	"strconv"

	"smartexpense/internal/core"
)

// handleOverview serves the dashboard snapshot: today/week/month totals
// plus the category breakdown.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	ov, err := s.summaries.Overview(r.Context(), sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ov.ByCategory == nil {
		ov.ByCategory = []core.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, ov)
}

const (
	defaultSeriesDays = 7
	maxSeriesDays     = 90
)

// handleDailySeries serves per-day totals for the trailing ?days= days
// (default 7), oldest first.
func (s *Server) handleDailySeries(w http.ResponseWriter, r *http.Request) {
	days := defaultSeriesDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSeriesDays {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 90")
			return
		}
		days = n
	}

	sess := sessionFrom(r.Context())
	series, err := s.summaries.DailySeries(r.Context(), sess.UserID, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]core.DailyTotal{"days": series})
}
