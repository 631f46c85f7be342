package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gitea.jw6.us/james/vcardedit/internal/auth"
	"gitea.jw6.us/james/vcardedit/internal/config"
	"gitea.jw6.us/james/vcardedit/internal/editor"
	httpserver "gitea.jw6.us/james/vcardedit/internal/http"
	"gitea.jw6.us/james/vcardedit/internal/http/ratelimit"
	"gitea.jw6.us/james/vcardedit/internal/logging"
	"gitea.jw6.us/james/vcardedit/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	restoreStdLog := zap.RedirectStdLog(log)
	defer restoreStdLog()

	log.Info("Starting vCard editor server...")
	if cfg.SecretGenerated {
		log.Warn("APP_SESSION_SECRET is not set; using a random secret, sessions will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stor := store.New(store.Options{TTL: cfg.Session.TTL, MaxSessions: cfg.Session.MaxSessions})
	go stor.RunJanitor(ctx, time.Minute)

	editorService := editor.NewService(stor, log.Named("editor"))
	sessionManager := auth.NewSessionManager(cfg)
	authService := auth.NewService(sessionManager, editorService)

	// Uploads: 2 requests per second, burst of 10
	uploadLimiter := ratelimit.NewIPRateLimiter(rate.Limit(2), 10, 5*time.Minute, cfg.TrustedProxies)
	go uploadLimiter.Run(ctx)

	r := httpserver.NewRouter(cfg, stor, editorService, authService, uploadLimiter)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
