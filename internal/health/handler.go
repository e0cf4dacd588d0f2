// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ulearner/ulearner-backend/internal/core"
)

type checkResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type report struct {
	Status string        `json:"status"`
	Checks []checkResult `json:"checks"`
}

type Handler struct {
	db    *core.Database
	redis *core.Redis
}

func NewHandler(db *core.Database, redis *core.Redis) *Handler {
	return &Handler{db: db, redis: redis}
}

// Live reports process liveness only.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, map[string]string{"status": "ok"})
}

// Ready runs the dependency checks; any failure yields 503 so the load
// balancer stops routing here.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	rep := h.check(r.Context())

	if rep.Status != "ok" {
		core.JSON(w, http.StatusServiceUnavailable, rep)
		return
	}

	core.OK(w, rep)
}

// Health is the human-facing aggregate of the same checks, always 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.check(r.Context()))
}

func (h *Handler) check(ctx context.Context) report {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"database", h.db.Ping},
		{"redis", h.redis.Ping},
	}

	results := make([]checkResult, len(checks))

	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			result := checkResult{Name: check.name, Status: "ok"}
			if err := check.fn(checkCtx); err != nil {
				result.Status = "down"
				result.Error = err.Error()
			}
			results[i] = result
		}()
	}
	wg.Wait()

	rep := report{Status: "ok", Checks: results}
	for _, result := range results {
		if result.Status != "ok" {
			rep.Status = "degraded"
			break
		}
	}

	return rep
}
