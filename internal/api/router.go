package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/Harshitk-cp/concord/internal/api/handlers"
	mw "github.com/Harshitk-cp/concord/internal/api/middleware"
	"github.com/Harshitk-cp/concord/internal/buildconfig"
	"github.com/Harshitk-cp/concord/internal/config"
	"github.com/Harshitk-cp/concord/internal/profile"
	"github.com/Harshitk-cp/concord/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and the counters reported on /metrics.
type App struct {
	Router    *chi.Mux
	consensus *handlers.ConsensusHandler
	requests  *mw.RequestStats
	startTime time.Time
}

// NewApp wires the HTTP surface around an engine. providers lists the
// agent providers that have a configured invoker.
func NewApp(engine *service.Engine, profiles *profile.Registry, providers []string, logger *zap.Logger) *App {
	consensusHandler := handlers.NewConsensusHandler(engine, logger)
	domainHandler := handlers.NewDomainHandler(profiles)

	r := chi.NewRouter()
	app := &App{
		Router:    r,
		consensus: consensusHandler,
		requests:  mw.NewRequestStats(),
		startTime: time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.requests.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)

	// Health and metrics (no auth, no rate limit)
	r.Get("/health", healthHandler(providers, profiles))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))
		r.Use(mw.BearerAuth(config.APIKey()))

		r.Route("/consensus", func(r chi.Router) {
			r.Post("/", consensusHandler.Evaluate)
			r.Post("/aggregate", consensusHandler.Aggregate)
		})
		r.Get("/domains", domainHandler.List)
	})

	return app
}

func healthHandler(providers []string, profiles *profile.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		// Only the mock provider means no real agent can be reached.
		if len(providers) <= 1 {
			status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    status,
			"build":     buildconfig.Get(),
			"providers": providers,
			"domains":   profiles.Names(),
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)
		runs, cancelled := app.consensus.Runs()
		requests := app.requests.Snapshot()

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  requests.Requests,
			"error_count":    requests.Errors(),
			"requests":       requests,
			"consensus_runs": runs,
			"cancelled_runs": cancelled,
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"build": buildconfig.Get(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
