package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dayline/dayline/internal/api"
	"github.com/dayline/dayline/internal/buildconfig"
	"github.com/dayline/dayline/internal/config"
	"github.com/dayline/dayline/internal/domain"
	"github.com/dayline/dayline/internal/service"
	"github.com/dayline/dayline/internal/store"
	"github.com/dayline/dayline/internal/telegram"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	token := config.BotToken()
	if token == "" {
		logger.Fatal("BOT_TOKEN is required")
	}

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	// Stores
	profiles := store.NewProfileStore(pool)
	records := store.NewRecordStore(pool)

	// Services
	clock := domain.SystemClock{}
	offset := config.UTCOffsetHours()
	cutoffHour, cutoffMinute := config.CutoffHour(), config.CutoffMinute()

	sessions := service.NewSessionService(records, clock, offset, cutoffHour, cutoffMinute, logger)
	sessions.SetTimeout(config.SessionTimeout())
	analyzer := service.NewAnalyzerService(logger)
	recommender := service.NewRecommendationService(logger)
	flow := service.NewFlowService(profiles, records, sessions, analyzer, recommender,
		clock, config.RecentWindow(), cutoffHour, cutoffMinute, logger)

	// Telegram transport
	client := telegram.NewClient(token)
	poller := telegram.NewPoller(client, flow, logger)

	reminder := service.NewReminderService(profiles, records, sessions, flow, client,
		clock, offset, cutoffHour, cutoffMinute, config.ReminderRPS(), logger)

	// Status server
	app := api.NewApp(pool, profiles, records, sessions, config.RateLimitRPS(), config.RateLimitBurst(), logger)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	poller.Start()
	reminder.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("status server starting",
			zap.String("addr", addr),
			zap.String("version", buildconfig.Version()),
			zap.String("commit", buildconfig.Commit()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("status server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down")

	poller.Stop()
	reminder.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("status server forced to shutdown", zap.Error(err))
	}

	logger.Info("stopped")
}
