/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the workshop costing and ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (.env, environment, then flags)
  2. Open the SQLite snapshot store and decode the last saved workshop
  3. Build the engine on an in-memory store seeded with that workshop
  4. Start the autosaver
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides HTTP_PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for a throwaway database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the autosaver and flush unsaved changes
  4. Close the database

ENVIRONMENT:
  See config/config.go for every variable and its default.

SEE ALSO:
  - api/server.go: Router configuration
  - engine/autosave.go: Periodic snapshot saves
  - store/sqlite/sqlite.go: Snapshot storage
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/workshop-engine/api"
	"github.com/warp/workshop-engine/config"
	"github.com/warp/workshop-engine/engine"
	"github.com/warp/workshop-engine/logging"
	"github.com/warp/workshop-engine/store/sqlite"
	"github.com/warp/workshop-engine/workshop"
	"github.com/warp/workshop-engine/workshop/store"
)

func main() {
	cfg := config.Load()

	port := flag.Int("port", cfg.Server.HTTPPort, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	flag.Parse()

	log := logging.New(logging.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	defer log.Sync()

	if err := run(cfg, *port, *dbPath, log); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, port int, dbPath string, log *zap.Logger) error {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Load the last saved workshop
	ctx := context.Background()
	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	st, err := workshop.DecodeState(snap)
	if err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	ids := workshop.NewClockIDs()
	ids.Seed(st.MaxID())

	eng := engine.New(store.NewMemoryWith(st), ids, opts, log)
	log.Info("workshop loaded",
		zap.String("db", dbPath),
		zap.Int("parts", len(st.Parts)),
		zap.Int("orders", len(st.Orders)),
		zap.String("discipline", string(opts.Valuer.Discipline)),
		zap.String("overpayment_policy", string(opts.Payments)))

	saver := engine.NewAutoSaver(eng, db, log)
	saver.Enabled = cfg.Autosave.Enabled
	saver.Interval = cfg.Autosave.Interval
	saver.Start()

	handler := api.NewHandler(eng, db, log)
	router := api.NewRouter(handler, cfg.Server.CORSAllowedOrigins, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.Int("port", port), zap.String("env", cfg.Server.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		saver.Stop()
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	saver.Stop()
	if err := saver.Flush(shutdownCtx); err != nil {
		return fmt.Errorf("final save failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
