// AngelaMos | 2026
// handler.go

package ops

import (
	"context"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"

	"github.com/ulearner/ulearner-backend/internal/core"
)

// Counter reports a total row count; the domain repositories satisfy it.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// StatusCounter additionally breaks the count down by status.
type StatusCounter interface {
	Counter
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// TokenPurger removes long-expired refresh tokens; the auth token store
// satisfies it.
type TokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Handler serves operator-only statistics and maintenance. Mounted behind
// RequireAdmin.
type Handler struct {
	db          *core.Database
	redis       *core.Redis
	users       Counter
	courses     Counter
	enrollments StatusCounter
	tokens      TokenPurger
}

func NewHandler(
	db *core.Database,
	redis *core.Redis,
	users Counter,
	courses Counter,
	enrollments StatusCounter,
	tokens TokenPurger,
) *Handler {
	return &Handler{
		db:          db,
		redis:       redis,
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		tokens:      tokens,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/stats", h.Stats)
	r.Get("/stats/runtime", h.RuntimeStats)
	r.Post("/maintenance/purge-tokens", h.PurgeTokens)

	return r
}

// PurgeTokens sweeps refresh tokens whose expiry is long past.
func (h *Handler) PurgeTokens(w http.ResponseWriter, r *http.Request) {
	purged, err := h.tokens.PurgeExpired(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]int64{"purged": purged})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userCount, err := h.users.Count(ctx)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	courseCount, err := h.courses.Count(ctx)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	enrollmentCount, err := h.enrollments.Count(ctx)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	byStatus, err := h.enrollments.CountByStatus(ctx)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]any{
		"users":               userCount,
		"courses":             courseCount,
		"enrollments":         enrollmentCount,
		"enrollmentsByStatus": byStatus,
	})
}

func (h *Handler) RuntimeStats(w http.ResponseWriter, _ *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	dbStats := h.db.Stats()
	poolStats := h.redis.PoolStats()

	core.OK(w, map[string]any{
		"goroutines": runtime.NumGoroutine(),
		"memory": map[string]any{
			"allocBytes": mem.Alloc,
			"sysBytes":   mem.Sys,
			"numGC":      mem.NumGC,
		},
		"database": map[string]any{
			"openConnections": dbStats.OpenConnections,
			"inUse":           dbStats.InUse,
			"idle":            dbStats.Idle,
			"waitCount":       dbStats.WaitCount,
		},
		"redis": map[string]any{
			"totalConns": poolStats.TotalConns,
			"idleConns":  poolStats.IdleConns,
			"hits":       poolStats.Hits,
			"misses":     poolStats.Misses,
		},
	})
}
