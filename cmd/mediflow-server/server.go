package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/def-himani/mediflow/internal/config"
	"github.com/def-himani/mediflow/internal/domain/account"
	"github.com/def-himani/mediflow/internal/domain/activity"
	"github.com/def-himani/mediflow/internal/domain/clinical"
	"github.com/def-himani/mediflow/internal/domain/reference"
	"github.com/def-himani/mediflow/internal/domain/scheduling"
	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/internal/platform/auth"
	"github.com/def-himani/mediflow/internal/platform/db"
	"github.com/def-himani/mediflow/internal/platform/middleware"
)

const shutdownTimeout = 10 * time.Second

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := newLogger(nil)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := newServer(cfg, logger, pool)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newServer builds the echo instance with every route mounted. Requests to
// /api/patient and /api/physician pass the token guard and role check
// before a pooled connection is acquired. The connection middleware is
// attached per route so unmatched paths never touch the pool.
func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.Audit(logger))

	e.GET("/health/db", db.HealthHandler(pool, logger))

	tx := db.NewTransactor(pool)
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret))
	hasher := auth.NewHasher(cfg.BcryptCost)

	referenceSvc := reference.NewService(reference.NewRepoPG(pool))
	schedulingSvc := scheduling.NewService(scheduling.NewRepoPG(pool), tx)
	accountSvc := account.NewService(account.NewRepoPG(pool), tx, hasher, tokens)
	activitySvc := activity.NewService(activity.NewRepoPG(pool), tx, schedulingSvc)
	clinicalSvc := clinical.NewService(clinical.NewRepoPG(pool), tx,
		schedulingSvc, referenceSvc, schedulingSvc, activitySvc, logger)

	api := e.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "status": "ok"})
	})

	conn := db.ConnMiddleware(pool)
	guard := auth.Guard(tokens, logger)
	patient := api.Group("/patient", guard, auth.RequireRole(auth.RolePatient))
	physician := api.Group("/physician", guard, auth.RequireRole(auth.RolePhysician))

	account.NewHandler(accountSvc).RegisterRoutes(api, patient, physician, conn)
	reference.NewHandler(referenceSvc).RegisterRoutes(api, conn)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(patient, physician, conn)
	activity.NewHandler(activitySvc).RegisterRoutes(patient, physician, conn)
	clinical.NewHandler(clinicalSvc).RegisterRoutes(patient, physician, conn)

	return e
}
