package api

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/thoughtline/thoughtline/internal/api/handlers"
	mw "github.com/thoughtline/thoughtline/internal/api/middleware"
	"github.com/thoughtline/thoughtline/internal/config"
	"github.com/thoughtline/thoughtline/internal/domain"
	"github.com/thoughtline/thoughtline/internal/render"
	"github.com/thoughtline/thoughtline/internal/service"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router   *chi.Mux
	Reaper   *service.ReaperService
	registry *service.SessionRegistry

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(logger *zap.Logger) *App {
	stages, err := domain.StagesForVariant(config.StageVariant())
	if err != nil {
		logger.Warn("invalid stage variant, using canonical", zap.Error(err))
		stages = domain.CanonicalStages()
	}
	logger.Info("stage set resolved",
		zap.String("variant", stages.Variant()),
		zap.Any("stages", stages.Members()),
	)

	registry := service.NewSessionRegistry(stages)
	reaper := service.NewReaperService(registry, config.SessionTTL(), logger)

	var console *render.Console
	if config.ConsoleRender() {
		console = render.NewConsole(os.Stderr)
		logger.Info("console rendering enabled")
	}

	sessionHandler := handlers.NewSessionHandler(registry)
	thoughtHandler := handlers.NewThoughtHandler(registry, console, logger)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Reaper:    reaper,
		registry:  registry,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics (no auth)
	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		if key := config.APIKey(); key != "" {
			r.Use(mw.BearerAuth(key))
		}

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Post("/thoughts", thoughtHandler.Submit)
				r.Get("/thoughts", thoughtHandler.History)
			})
		})
	})

	return app
}

// NewRouter returns just the chi.Mux for callers that manage no lifecycle.
func NewRouter(logger *zap.Logger) *chi.Mux {
	return NewApp(logger).Router
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"sessions": app.registry.Len(),
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"sessions":       app.registry.Len(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
