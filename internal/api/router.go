package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	mw "github.com/dayline/dayline/internal/api/middleware"
	"github.com/dayline/dayline/internal/buildconfig"
	"github.com/dayline/dayline/internal/domain"
	"github.com/dayline/dayline/internal/service"
	"github.com/dayline/dayline/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the status router. The bot itself talks to Telegram; this surface
// exists for operators and uptime monitors.
type App struct {
	Router *chi.Mux

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(
	db *pgxpool.Pool,
	profiles domain.ProfileStore,
	records domain.RecordStore,
	sessions *service.SessionService,
	rps float64,
	burst int,
	logger *zap.Logger,
) *App {
	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(rps, burst))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())
	r.Get("/stats", statsHandler(profiles, records, sessions, logger))

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func statsHandler(profiles domain.ProfileStore, records domain.RecordStore, sessions *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		users, err := profiles.Count(ctx)
		if err != nil {
			logger.Error("stats: counting users failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
			return
		}
		totalRecords, err := records.Count(ctx)
		if err != nil {
			logger.Error("stats: counting records failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
			return
		}

		weekAgo := time.Now().UTC().AddDate(0, 0, -7).Format(domain.DayFormat)
		activeUsers, err := records.ActiveUsersSince(ctx, weekAgo)
		if err != nil {
			logger.Error("stats: counting active users failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"users":              users,
			"records":            totalRecords,
			"active_users_7d":    activeUsers,
			"live_sessions":      sessions.LiveCount(),
			"reporting_day":      sessions.LocalDay(),
			"service":            "dayline",
			"version":            buildconfig.Version(),
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		writeJSON(w, http.StatusOK, map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Ensure stores satisfy the domain interfaces at compile time.
var (
	_ domain.ProfileStore = (*store.ProfileStore)(nil)
	_ domain.RecordStore  = (*store.RecordStore)(nil)
)
