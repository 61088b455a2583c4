package health

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/giygas/d3ai-api/catalog"
	"github.com/giygas/d3ai-api/data"
)

func TestHealthCheckHealthy(t *testing.T) {
	store := data.NewCatalogContainer(catalog.Default())
	store.SetServerStartTime(time.Now().Add(-time.Minute))

	status, details, code := NewHealthChecker(store, 0).HealthCheck()
	if status != StatusHealthy || code != http.StatusOK {
		t.Fatalf("got %s/%d, want healthy/200", status, code)
	}

	cat, ok := details["catalog"].(map[string]any)
	if !ok {
		t.Fatalf("catalog details missing: %v", details)
	}
	if cat["diseases"] != 2 || cat["drugs"] != 1 || cat["source"] != "builtin" {
		t.Errorf("unexpected catalog details %v", cat)
	}
	if _, ok := cat["last_reload_error"]; ok {
		t.Error("no reload error expected")
	}
	if _, ok := details["system"].(map[string]any); !ok {
		t.Error("system details missing")
	}
	if up, ok := details["uptime_seconds"].(float64); !ok || up < 59 {
		t.Errorf("unexpected uptime %v", details["uptime_seconds"])
	}
}

func TestHealthCheckUnhealthyWhenEmpty(t *testing.T) {
	status, _, code := NewHealthChecker(data.NewCatalogContainer(nil), 0).HealthCheck()
	if status != StatusUnhealthy || code != http.StatusServiceUnavailable {
		t.Errorf("got %s/%d, want unhealthy/503", status, code)
	}
}

func TestHealthCheckDegradedAfterFailedReload(t *testing.T) {
	store := data.NewCatalogContainer(catalog.Default())
	store.SetReloadError(errors.New("catalog.yaml: no such file"))

	status, details, code := NewHealthChecker(store, 0).HealthCheck()
	if status != StatusDegraded || code != http.StatusOK {
		t.Errorf("got %s/%d, want degraded/200", status, code)
	}
	cat := details["catalog"].(map[string]any)
	if cat["last_reload_error"] != "catalog.yaml: no such file" {
		t.Errorf("reload error not reported: %v", cat)
	}

	store.SetReloadError(nil)
	if status, _, _ := NewHealthChecker(store, 0).HealthCheck(); status != StatusHealthy {
		t.Errorf("a successful reload should clear degraded, got %s", status)
	}
}

func TestHealthCheckDegradedWhenStale(t *testing.T) {
	store := data.NewCatalogContainer(catalog.Default())

	if status, _, _ := NewHealthChecker(store, time.Hour).HealthCheck(); status != StatusHealthy {
		t.Errorf("fresh catalog should be healthy, got %s", status)
	}
	if status, _, _ := NewHealthChecker(store, time.Nanosecond).HealthCheck(); status != StatusDegraded {
		t.Errorf("stale catalog should be degraded, got %s", status)
	}
}
