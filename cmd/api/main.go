package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xelth-com/ecktables/internal/config"
	"github.com/xelth-com/ecktables/internal/database"
	"github.com/xelth-com/ecktables/internal/events"
	"github.com/xelth-com/ecktables/internal/floorplan"
	"github.com/xelth-com/ecktables/internal/handlers"
	"github.com/xelth-com/ecktables/internal/logger"
	"github.com/xelth-com/ecktables/internal/middleware"
	"github.com/xelth-com/ecktables/internal/store"
	"github.com/xelth-com/ecktables/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "ecktables")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	zlog.Info("synchronizing database schema")
	if err := db.Migrate(); err != nil {
		zlog.Warn("migration warning", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 4. Floor plan engine
	tables := store.NewTableStore(db.DB)
	canvas := floorplan.Canvas{
		Extent:   floorplan.Size{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height},
		BaseSize: cfg.Canvas.BaseSize,
	}
	leave := floorplan.ParseLeavePolicy(cfg.Canvas.LeavePolicy)

	bus, err := events.NewBus(ctx, cfg.Redis, zlog)
	if err != nil {
		zlog.Fatal("failed to start event bus", zap.Error(err))
	}
	committer := floorplan.NewCommitter(tables, cfg.Canvas.CommitTimeout, zlog)

	hub := websocket.NewHub(websocket.Options{
		Editor: websocket.EditorConfig{
			Canvas:    canvas,
			Threshold: cfg.Canvas.DragThreshold,
			Leave:     leave,
		},
		Source:    tables,
		Committer: committer,
		Bus:       bus,
		Logger:    zlog,
	})
	go hub.Run(ctx)
	bus.Subscribe(hub.HandleTableMoved)

	// 5. Set up HTTP router
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, zlog)
	limiter.StartCleanup(time.Minute, ctx.Done())

	router := handlers.NewRouter(handlers.Deps{
		Tables:      tables,
		Canvas:      canvas,
		Bus:         bus,
		Hub:         hub,
		Limiter:     limiter,
		Logger:      zlog,
		JWTSecret:   cfg.JWTSecret,
		FrontendDir: cfg.FrontendDir,
	})
	if cfg.JWTSecret == "" {
		zlog.Warn("JWT_SECRET is not set, floor plan API is unauthenticated")
	}

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.NodeEnv))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	zlog.Info("shutting down gracefully", zap.String("signal", sig.String()))

	// Create context with timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("HTTP server shutdown error", zap.Error(err))
	}

	// Disconnect websocket clients and let in-flight position writes finish
	stop()
	committer.Wait()

	if err := bus.Close(); err != nil {
		zlog.Warn("event bus close error", zap.Error(err))
	}

	// Close database (this also stops embedded PostgreSQL)
	zlog.Info("closing database connection")
	if err := db.Close(); err != nil {
		zlog.Warn("database close error", zap.Error(err))
	}

	zlog.Info("shutdown complete")
}
