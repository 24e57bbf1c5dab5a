package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware(okHandler)

	call := func(ip, path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1", "/v1/sessions"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1", "/v1/sessions"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1", "/v1/sessions"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2", "/v1/sessions"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1", "/health"))

	assert.Equal(t, 0, rl.Sweep(time.Now()))
	assert.Equal(t, 2, rl.Sweep(time.Now().Add(time.Hour)))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(req))
}

func TestHTTPMetrics_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v1/sessions/{id}/progress", okHandler)
	r.Handle("/metrics", MetricsHandler(reg))

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/sessions/"+id+"/progress", nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/v1/sessions/{id}/progress", "200")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "readiness_http_requests_total")
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/analyze", nil))

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"status":502`)
	assert.Contains(t, out, `"path":"/api/analyze"`)
}

func TestHealthHandler(t *testing.T) {
	ok := CheckFunc(func(context.Context) error { return nil })
	closed := CheckFunc(func(context.Context) error { return errors.New("closed") })

	cases := []struct {
		name   string
		checks []Check
		code   int
		status string
	}{
		{"all ok", []Check{{Name: "store", Probe: ok}}, http.StatusOK, `"status":"ok"`},
		{"optional down", []Check{{Name: "store", Probe: ok}, {Name: "narrative", Probe: closed, Optional: true}}, http.StatusOK, `"status":"degraded"`},
		{"required down", []Check{{Name: "store", Probe: closed}, {Name: "narrative", Probe: closed, Optional: true}}, http.StatusServiceUnavailable, `"status":"down"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthHandler(tc.checks)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			require.Equal(t, tc.code, rec.Code)
			assert.True(t, strings.HasPrefix(rec.Body.String(), "{"+tc.status), rec.Body.String())
		})
	}
}

func TestReadiness(t *testing.T) {
	var r Readiness
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	r.Set(true)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready"`)

	var none *Readiness
	assert.False(t, none.Ready())
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidateSessionID("0b6f3c1e-5d1a-4c59-9d0e-4f8c7a1b2c3d"))
	assert.Error(t, ValidateSessionID(""))
	assert.Error(t, ValidateSessionID("../etc"))
	assert.NoError(t, ValidateQuestionID("B4_q8"))
	assert.Error(t, ValidateQuestionID("q1-1;drop"))
	assert.Error(t, ValidateQuestionID("q1-1"))
	assert.Error(t, ValidateQuestionID(""))
	assert.NoError(t, ValidateSessionID(strings.Repeat("a", 64)))
	assert.Error(t, ValidateSessionID(strings.Repeat("a", 65)))
	assert.Equal(t, "abc", SanitizeString(" a\x00b\x07c "))
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(500))
	assert.Equal(t, 1, ValidatePage(-3))
}
