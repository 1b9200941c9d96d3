package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashkpis/internal/api"
	"dashkpis/internal/config"
	"dashkpis/internal/database"
	"dashkpis/internal/demo"
	"dashkpis/internal/handlers"
	"dashkpis/internal/logging"
	"dashkpis/internal/poll"
	"dashkpis/internal/server"
	"dashkpis/internal/views"
	"dashkpis/internal/workspace"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.Production())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	var backend views.Backend
	if cfg.Demo() {
		b, err := demo.Seeded()
		if err != nil {
			logger.Fatal("failed to seed demo backend", zap.Error(err))
		}
		backend = b
		logger.Warn("BACKEND_URL is empty, serving demo data")
	} else {
		backend = api.NewClient(cfg.BackendURL, cfg.BackendTimeout, logger)
		logger.Info("using backend", zap.String("url", cfg.BackendURL))
	}

	if cfg.DBDSN != "" {
		if err := database.Init(cfg.DBDSN, logger.Named("db")); err != nil {
			logger.Fatal("audit journal", zap.Error(err))
		}
	}

	spaces := workspace.NewRegistry(backend, cfg.NotifyInterval, logger.Named("workspace"))
	defer spaces.Close()

	// выметаем брошенные сессии
	sweeper := poll.New(cfg.SessionIdle/4, func(context.Context) error {
		if n := spaces.Sweep(cfg.SessionIdle); n > 0 {
			logger.Info("idle workspaces unmounted", zap.Int("count", n))
		}
		return nil
	}, logger.Named("sweep"))
	sweeper.Start(context.Background())
	defer sweeper.Stop()

	h := handlers.New(backend, spaces, logger)
	r := server.NewRouter(cfg, h, spaces, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
