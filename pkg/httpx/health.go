package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (database.Database, cache.RedisClient, events.EventBus all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks maps a dependency name ("database", "redis", ...) to its health check.
type HealthChecks map[string]HealthChecker

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler returns an http.HandlerFunc that checks every registered
// HealthChecker concurrently and reports 503 "degraded" if any of them fail.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		type result struct {
			name string
			err  error
		}
		results := make(chan result, len(checks))
		for name, c := range checks {
			go func(name string, c HealthChecker) {
				results <- result{name: name, err: c.Ping(ctx)}
			}(name, c)
		}

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		for range checks {
			res := <-results
			if res.err != nil {
				resp.Status = "degraded"
				resp.Checks[res.name] = "unreachable"
				continue
			}
			resp.Checks[res.name] = "ok"
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
