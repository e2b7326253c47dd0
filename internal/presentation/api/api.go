package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/churchconnect/realtime/internal/infrastructure/configs"
	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/churchconnect/realtime/internal/infrastructure/metrics"
	"github.com/churchconnect/realtime/internal/infrastructure/ratelimiter"
	healthHandler "github.com/churchconnect/realtime/internal/presentation/handler/health"
	realtimeHandler "github.com/churchconnect/realtime/internal/presentation/handler/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Application struct {
	config          configs.Config
	realtimeHandler *realtimeHandler.Handler
	healthHandler   *healthHandler.Handler
	logger          logging.Logger
	ratelimiter     ratelimiter.Limiter
	metrics         *metrics.Metrics
}

func NewApplication(
	config configs.Config,
	realtime *realtimeHandler.Handler,
	health *healthHandler.Handler,
	logger logging.Logger,
	limiter ratelimiter.Limiter,
	m *metrics.Metrics,
) *Application {
	return &Application{
		config:          config,
		realtimeHandler: realtime,
		healthHandler:   health,
		logger:          logger,
		ratelimiter:     limiter,
		metrics:         m,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.loggerMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)

	// WebSocket routes carry no request timeout: connections are long-lived.
	r.Route("/ws", func(r chi.Router) {
		r.Get("/notifications/{userId}", app.realtimeHandler.ServeNotifications)
		r.Get("/chat/{groupId}", app.realtimeHandler.ServeChat)
		r.Get("/events/{eventId}", app.realtimeHandler.ServeEvents)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)

		r.Handle("/metrics", app.metrics.Handler())
	})

	return otelhttp.NewHandler(r, "realtime-gateway")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:     mux,
		ReadTimeout: time.Second * 10,
		IdleTimeout: time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		healthHandler.SetHealthy(false)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
