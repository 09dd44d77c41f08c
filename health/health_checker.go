// Package health provides health checking functionality for the treatment plan API.
package health

import (
	"math"
	"net/http"
	"slices"
	"time"

	"github.com/giygas/treatment-plan-api/interfaces"
)

// StaleThreshold is the data age past which the service reports degraded
const StaleThreshold = 48 * time.Hour

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore   interfaces.DataStore
	reloadTimes []string
	now         func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies.
// reloadTimes are the HH:MM reload times used to compute the next update.
func NewHealthChecker(dataStore interfaces.DataStore, reloadTimes []string) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore:   dataStore,
		reloadTimes: reloadTimes,
		now:         time.Now,
	}
}

// HealthCheck reports on the loaded reference set
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	set := h.dataStore.GetReferenceSet()
	isUpdating := h.dataStore.IsUpdating()
	now := h.now()

	dataAge := now.Sub(set.LoadedAt)

	switch {
	case len(set.Diseases) == 0 || len(set.Medications) == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > StaleThreshold:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"version":        set.Version.String(),
		"last_update":    set.LoadedAt.Format(time.RFC3339),
		"data_age_hours": math.Round(dataAge.Hours()*10) / 10,
		"next_update":    h.nextUpdateFrom(now).Format(time.RFC3339),
		"diseases":       len(set.Diseases),
		"clinics":        len(set.Clinics),
		"medications":    len(set.Medications),
		"is_updating":    isUpdating,
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled update time
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	return h.nextUpdateFrom(h.now())
}

func (h *HealthCheckerImpl) nextUpdateFrom(now time.Time) time.Time {
	var today []time.Time
	for _, hhmm := range h.reloadTimes {
		t, err := time.Parse("15:04", hhmm)
		if err != nil {
			continue
		}
		today = append(today, time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()))
	}
	if len(today) == 0 {
		return time.Time{}
	}

	slices.SortFunc(today, func(a, b time.Time) int { return a.Compare(b) })

	for _, t := range today {
		if now.Before(t) {
			return t
		}
	}

	// all of today's reloads have passed; the earliest one runs tomorrow
	return today[0].AddDate(0, 0, 1)
}
