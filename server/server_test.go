package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/giygas/d3ai-api/catalog"
	"github.com/giygas/d3ai-api/config"
	"github.com/giygas/d3ai-api/data"
	"github.com/giygas/d3ai-api/disease"
	"github.com/giygas/d3ai-api/drug"
	"github.com/giygas/d3ai-api/handlers"
	"github.com/giygas/d3ai-api/health"
	"github.com/giygas/d3ai-api/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                  "8000",
		Address:               "127.0.0.1",
		Env:                   config.EnvTest,
		MaxRequestBody:        1024,
		MaxHeaderSize:         4096,
		MatcherMode:           "pairwise",
		MaxGeneratedMolecules: 20,
		RateLimitRate:         1,
		RateLimitCapacity:     1000,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	store := data.NewCatalogContainer(catalog.Default())
	h := handlers.NewHTTPHandler(
		disease.NewService(store, disease.ModePairwise),
		drug.NewService(store),
		validation.NewInputValidator(cfg.MaxGeneratedMolecules),
		health.NewHealthChecker(store, 0),
	)
	s, err := NewServer(cfg, h)
	require.NoError(t, err)
	t.Cleanup(s.limiter.Stop)
	return s
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestLoadOpenAPI(t *testing.T) {
	doc, err := LoadOpenAPI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "D3AI API", doc.Info.Title)

	for _, path := range []string{
		"/", "/health",
		"/api/predict-disease", "/api/disease/{name}", "/api/drug-candidates/{disease}",
		"/api/generate-molecules", "/api/predict-properties", "/api/validate-structure",
	} {
		assert.NotNil(t, doc.Paths.Value(path), "path %s is documented", path)
	}
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		method, target, body string
		want                 int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/docs", "", http.StatusOK},
		{http.MethodGet, "/docs/openapi.yaml", "", http.StatusOK},
		{http.MethodPost, "/api/predict-disease", `["fever","cough"]`, http.StatusOK},
		{http.MethodGet, "/api/disease/influenza", "", http.StatusOK},
		{http.MethodGet, "/api/disease/unknown", "", http.StatusNotFound},
		{http.MethodGet, "/api/drug-candidates/influenza", "", http.StatusOK},
		{http.MethodPost, "/api/predict-properties?smiles=CCO", "", http.StatusOK},
		{http.MethodPost, "/api/validate-structure?smiles=CCO", "", http.StatusOK},
		{http.MethodPost, "/api/generate-molecules?smiles=CCO&n_molecules=2", "", http.StatusOK},
		{http.MethodGet, "/api/predict-disease", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nowhere", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			rr := serve(s, req)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestRateLimitHeaders(t *testing.T) {
	s := newTestServer(t, testConfig())

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/api/disease/influenza", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1000", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Rate"))
	assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Remaining"))

	var d map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
	assert.Equal(t, "influenza", d["name"])
}

func TestRateLimitExceeded(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitCapacity = 100
	s := newTestServer(t, cfg)

	generate := func(client string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/generate-molecules?smiles=CCO&n_molecules=1", nil)
		req.RemoteAddr = "10.0.0.254:5000"
		req.Header.Set("X-Forwarded-For", client)
		return serve(s, req)
	}

	assert.Equal(t, http.StatusOK, generate("10.0.0.1").Code)

	rr := generate("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, generate("10.0.0.2").Code, "clients have separate buckets")
}

func TestRequestBodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRequestBody = 16
	s := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/predict-disease",
		strings.NewReader(`["fever","cough","fatigue","body aches"]`))
	rr := serve(s, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, rr.Body.String(), "Maximum allowed size is 16 bytes")
}

func TestRequestHeadersTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxHeaderSize = 64
	s := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Padding", strings.Repeat("a", 128))
	rr := serve(s, req)

	assert.Equal(t, http.StatusRequestHeaderFieldsTooLarge, rr.Code)
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://example.org")
	rr := serve(s, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestTrailingSlashRedirect(t *testing.T) {
	s := newTestServer(t, testConfig())

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/health/", nil))
	assert.Equal(t, http.StatusMovedPermanently, rr.Code)
	assert.Equal(t, "/health", rr.Header().Get("Location"))
}

func TestGzipResponses(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/docs/openapi.yaml", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := serve(s, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))

	plain := serve(s, httptest.NewRequest(http.MethodGet, "/docs/openapi.yaml", nil))
	assert.Empty(t, plain.Header().Get("Content-Encoding"))
	assert.True(t, strings.HasPrefix(plain.Body.String(), "openapi: 3.0.3"))
}

func TestSpoofedForwardingHeadersShareOneBucket(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitCapacity = 100
	s := newTestServer(t, cfg)

	succeeded := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/generate-molecules?smiles=CCO&n_molecules=1", nil)
		req.RemoteAddr = fmt.Sprintf("203.0.113.9:%d", 40000+i)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		if serve(s, req).Code == http.StatusOK {
			succeeded++
		}
	}

	assert.Equal(t, 1, succeeded)
	s.limiter.mu.RLock()
	assert.Len(t, s.limiter.clients, 1)
	s.limiter.mu.RUnlock()
}

func TestCORSHeadersOnThrottledAndPreflightRequests(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitCapacity = 100
	s := newTestServer(t, cfg)

	send := func(method string, headers map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/generate-molecules?smiles=CCO&n_molecules=1", nil)
		req.Header.Set("Origin", "https://example.org")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return serve(s, req)
	}

	require.Equal(t, http.StatusOK, send(http.MethodPost, nil).Code)

	throttled := send(http.MethodPost, nil)
	require.Equal(t, http.StatusTooManyRequests, throttled.Code)
	assert.Equal(t, "*", throttled.Header().Get("Access-Control-Allow-Origin"))

	preflight := send(http.MethodOptions, map[string]string{"Access-Control-Request-Method": http.MethodPut})
	assert.NotEqual(t, http.StatusTooManyRequests, preflight.Code)
	assert.Equal(t, "*", preflight.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodPut, preflight.Header().Get("Access-Control-Allow-Methods"))
}
