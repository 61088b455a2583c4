// Package health reports the health of the D3AI API from the state of its
// catalog store.
package health

import (
	"math"
	"net/http"
	"runtime"
	"time"

	"github.com/giygas/d3ai-api/interfaces"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements interfaces.HealthChecker.
type HealthCheckerImpl struct {
	store      interfaces.CatalogStore
	staleAfter time.Duration
}

// NewHealthChecker creates a health checker over store. When staleAfter is
// positive, a catalog not refreshed for that long is reported as degraded;
// use it only when periodic reloads are enabled.
func NewHealthChecker(store interfaces.CatalogStore, staleAfter time.Duration) *HealthCheckerImpl {
	return &HealthCheckerImpl{store: store, staleAfter: staleAfter}
}

// HealthCheck returns the status, its details and the HTTP status code:
// 503 for an empty catalog, 200 otherwise.
func (h *HealthCheckerImpl) HealthCheck() (status string, details map[string]any, httpStatus int) {
	snap := h.store.Snapshot()
	lastUpdate := h.store.GetLastUpdated()
	reloadErr := h.store.LastReloadError()
	dataAge := time.Since(lastUpdate)

	switch {
	case snap.DiseaseCount() == 0:
		status, httpStatus = StatusUnhealthy, http.StatusServiceUnavailable
	case reloadErr != nil:
		status, httpStatus = StatusDegraded, http.StatusOK
	case h.staleAfter > 0 && dataAge > h.staleAfter:
		status, httpStatus = StatusDegraded, http.StatusOK
	default:
		status, httpStatus = StatusHealthy, http.StatusOK
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	catalogDetails := map[string]any{
		"source":         snap.Source(),
		"diseases":       snap.DiseaseCount(),
		"drugs":          snap.DrugCount(),
		"last_update":    lastUpdate.Format(time.RFC3339),
		"data_age_hours": math.Round(dataAge.Hours()*10) / 10,
		"is_updating":    h.store.IsUpdating(),
	}
	if reloadErr != nil {
		catalogDetails["last_reload_error"] = reloadErr.Error()
	}

	details = map[string]any{
		"catalog": catalogDetails,
		"system": map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(mem.Alloc / 1024 / 1024),
				"sys_mb":   int(mem.Sys / 1024 / 1024),
				"num_gc":   mem.NumGC,
			},
		},
	}
	if start := h.store.GetServerStartTime(); !start.IsZero() {
		details["uptime_seconds"] = math.Round(time.Since(start).Seconds())
	}
	return status, details, httpStatus
}
