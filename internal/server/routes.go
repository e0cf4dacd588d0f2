// AngelaMos | 2026
// routes.go

package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ulearner/ulearner-backend/internal/auth"
	"github.com/ulearner/ulearner-backend/internal/config"
	"github.com/ulearner/ulearner-backend/internal/core"
	"github.com/ulearner/ulearner-backend/internal/course"
	"github.com/ulearner/ulearner-backend/internal/enrollment"
	"github.com/ulearner/ulearner-backend/internal/health"
	"github.com/ulearner/ulearner-backend/internal/middleware"
	"github.com/ulearner/ulearner-backend/internal/ops"
	"github.com/ulearner/ulearner-backend/internal/user"
)

// Deps collects everything the router mounts.
type Deps struct {
	Config      *config.Config
	Logger      *slog.Logger
	Redis       *core.Redis
	Verifier    middleware.TokenVerifier
	Auth        *auth.Handler
	Users       *user.Handler
	Courses     *course.Handler
	Enrollments *enrollment.Handler
	Health      *health.Handler
	Ops         *ops.Handler
}

// NewRouter assembles the full HTTP surface: health probes at the root, the
// API under /api with the catalog public and everything else behind the
// authenticator.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(d.Config.IsProduction()))
	r.Use(middleware.CORS(d.Config.CORS))

	limiter := middleware.NewRateLimiter(d.Redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			d.Config.RateLimit.Requests,
			d.Config.RateLimit.Burst,
		),
		FailOpen: true,
	})
	r.Use(limiter.Handler)

	r.Get("/healthz", d.Health.Health)
	r.Get("/livez", d.Health.Live)
	r.Get("/readyz", d.Health.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", d.Auth.Routes(d.Verifier))
		r.Mount("/catalog", d.Courses.CatalogRoutes())

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(d.Verifier))

			r.Mount("/courses", d.Courses.ManagementRoutes())
			r.Mount("/progress", d.Enrollments.ProgressRoutes())

			r.Route("/profile", func(r chi.Router) {
				r.Get("/users/{id}", d.Users.GetUser)
				r.Get("/users/{id}/enrollments", d.Enrollments.ListByStudent)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Mount("/ops", d.Ops.Routes())
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		core.NotFound(w, "route")
	})

	return r
}
