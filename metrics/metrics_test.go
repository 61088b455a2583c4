package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/disease/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := HTTPRequestTotals.WithLabelValues(http.MethodGet, "/api/disease/{name}", "404")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/disease/influenza", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/disease/other", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	assert.Equal(t, 0.0, testutil.ToFloat64(HTTPRequestInFlight))
}

func TestMiddlewareWithoutRouter(t *testing.T) {
	counter := HTTPRequestTotals.WithLabelValues(http.MethodGet, unmatchedRoute, "200")
	before := testutil.ToFloat64(counter)

	h := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestDomainCounters(t *testing.T) {
	matched := testutil.ToFloat64(DiseasePredictions.WithLabelValues(OutcomeMatched))
	unknown := testutil.ToFloat64(DiseasePredictions.WithLabelValues(OutcomeUnknown))
	ObservePrediction(true)
	ObservePrediction(false)
	ObservePrediction(false)
	assert.Equal(t, matched+1, testutil.ToFloat64(DiseasePredictions.WithLabelValues(OutcomeMatched)))
	assert.Equal(t, unknown+2, testutil.ToFloat64(DiseasePredictions.WithLabelValues(OutcomeUnknown)))

	parse := testutil.ToFloat64(MoleculeParseFailures.WithLabelValues("validate"))
	ObserveParseFailure("validate")
	assert.Equal(t, parse+1, testutil.ToFloat64(MoleculeParseFailures.WithLabelValues("validate")))

	ok := testutil.ToFloat64(CatalogReloads.WithLabelValues(ResultSuccess))
	failed := testutil.ToFloat64(CatalogReloads.WithLabelValues(ResultFailure))
	ObserveReload(nil)
	ObserveReload(errors.New("boom"))
	assert.Equal(t, ok+1, testutil.ToFloat64(CatalogReloads.WithLabelValues(ResultSuccess)))
	assert.Equal(t, failed+1, testutil.ToFloat64(CatalogReloads.WithLabelValues(ResultFailure)))
}
