/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave planner server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment variables)
  2. Build the zap logger
  3. Open the SQLite store
  4. Wire the reconciler (store + change fan-out)
  5. Configure the HTTP router
  6. Start server with graceful shutdown

ENVIRONMENT:
  APP_ADDR    Listen address (default :8080)
  DB_PATH     SQLite database path (default planner.db, ":memory:" works)
  JWT_SECRET  Token signing secret (required in production)
  TOKEN_TTL   Token lifetime (default 12h)
  APP_ENV     development | production

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the database, exit.

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite: Persistence
*/
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/leave-planner/api"
	"github.com/warp/leave-planner/config"
	"github.com/warp/leave-planner/schedule"
	"github.com/warp/leave-planner/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Change fan-out: the API does not subscribe anything itself, but the
	// reconciler publishes after every save so future listeners (websocket
	// push, cache invalidation) plug in here.
	notifier := schedule.NewFanOut()
	notifier.Subscribe(func(event string, snap schedule.Snapshot) {
		logger.Info("schedule change published",
			zap.String("event", event),
			zap.Int("weeks", len(snap)))
	})

	reconciler := schedule.NewReconciler(store.SnapshotStore(), notifier, logger)
	handler := api.NewHandler(store, reconciler, logger, cfg.JWTSecret, cfg.TokenTTL)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
