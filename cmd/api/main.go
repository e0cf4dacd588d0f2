// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/ulearner/ulearner-backend/internal/auth"
	"github.com/ulearner/ulearner-backend/internal/config"
	"github.com/ulearner/ulearner-backend/internal/core"
	"github.com/ulearner/ulearner-backend/internal/course"
	"github.com/ulearner/ulearner-backend/internal/enrollment"
	"github.com/ulearner/ulearner-backend/internal/health"
	"github.com/ulearner/ulearner-backend/internal/ops"
	"github.com/ulearner/ulearner-backend/internal/server"
	"github.com/ulearner/ulearner-backend/internal/user"
)

func main() {
	//nolint:errcheck // .env is optional outside local development
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // shutdown path

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close() //nolint:errcheck // shutdown path

	issuer, err := auth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		return err
	}
	if issuer.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET not set, using built-in development secret")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, logger)

	tokenRepo := auth.NewRepository(db)
	tokenStore := auth.NewTokenStore(tokenRepo, logger)
	authService := auth.NewService(db, issuer, tokenStore, userService, logger)

	courseRepo := course.NewRepository(db)
	courseService := course.NewService(db, courseRepo, userService, logger)

	enrollmentRepo := enrollment.NewRepository(db)
	enrollmentService := enrollment.NewService(
		db,
		enrollmentRepo,
		courseService,
		userService,
		logger,
	)

	router := server.NewRouter(server.Deps{
		Config:      cfg,
		Logger:      logger,
		Redis:       rdb,
		Verifier:    issuer,
		Auth:        auth.NewHandler(authService, validate),
		Users:       user.NewHandler(userService),
		Courses:     course.NewHandler(courseService, validate),
		Enrollments: enrollment.NewHandler(enrollmentService, validate),
		Health:      health.NewHandler(db, rdb),
		Ops: ops.NewHandler(
			db,
			rdb,
			userRepo,
			courseRepo,
			enrollmentRepo,
			tokenStore,
		),
	})

	srv := server.New(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")

	return srv.Shutdown(context.Background())
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
