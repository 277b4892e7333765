package handlers

import (
	"net/http"
	"strconv"
	"time"
)

const maxMetricsWindow = 30 * 24 * time.Hour

// GenerationMetrics summarizes generation events over the last ?hours
// (default 24).
func (a *App) GenerationMetrics(w http.ResponseWriter, r *http.Request) {
	if a.Events == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "event log requires DATABASE_URL")
		return
	}
	window := 24 * time.Hour
	if v := r.URL.Query().Get("hours"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "hours must be a positive integer")
			return
		}
		if max := int(maxMetricsWindow / time.Hour); hours > max {
			hours = max
		}
		window = time.Duration(hours) * time.Hour
	}
	since := time.Now().Add(-window)
	stats, err := a.Events.Summary(r.Context(), since)
	if err != nil {
		a.Logger.Error().Err(err).Msg("load generation metrics")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load metrics")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"since":         since.UTC(),
		"open_sessions": a.Sessions.Len(),
		"items":         stats,
	})
}
