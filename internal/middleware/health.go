package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const probeTimeout = 2 * time.Second

// HealthChecker probes one dependency.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to HealthChecker
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// PingDB probes a SQL store.
func PingDB(db *sql.DB) HealthChecker {
	return CheckFunc(db.PingContext)
}

// Check is a named probe. A failing optional probe degrades the report
// but keeps the endpoint at 200; the narrative provider is optional since
// analysis falls back to local scoring.
type Check struct {
	Name     string
	Probe    HealthChecker
	Optional bool
}

// Report is the /healthz body.
type Report struct {
	Status    string        `json:"status"` // ok | degraded | down
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

type CheckResult struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
}

// HealthHandler runs checks in order and reports 503 when a required one fails.
func HealthHandler(checks []Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := Report{Status: "ok", Timestamp: time.Now().UTC(), Checks: make([]CheckResult, 0, len(checks))}
		for _, c := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
			start := time.Now()
			err := c.Probe.Check(ctx)
			cancel()

			res := CheckResult{Name: c.Name, Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				res.Status, res.Error = "down", err.Error()
				switch {
				case !c.Optional:
					rep.Status = "down"
				case rep.Status == "ok":
					rep.Status = "degraded"
				}
			}
			rep.Checks = append(rep.Checks, res)
		}

		code := http.StatusOK
		if rep.Status == "down" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(rep)
	}
}

// Readiness gates /readyz: not ready until stores are open, and again
// while the server drains.
type Readiness struct{ ready atomic.Bool }

func (r *Readiness) Set(ready bool) { r.ready.Store(ready) }

func (r *Readiness) Ready() bool { return r != nil && r.ready.Load() }

func (r *Readiness) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	status, code := "ready", http.StatusOK
	if !r.Ready() {
		status, code = "not ready", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// LivenessHandler always answers ok while the process serves requests.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
