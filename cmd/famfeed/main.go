package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/config"
	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/logging"
	"github.com/dukerupert/famfeed/internal/push"
	"github.com/dukerupert/famfeed/internal/server"
	"github.com/dukerupert/famfeed/internal/upload"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "vapid-keys" {
		generateVAPIDKeys()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(logger); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database())
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	uploader, err := upload.New(cfg.Upload())
	if err != nil {
		slog.Error("failed to set up uploads", "error", err)
		os.Exit(1)
	}

	clientIP, err := cfg.ClientIP()
	if err != nil {
		slog.Error("invalid trusted proxies", "error", err)
		os.Exit(1)
	}

	var pushSvc *push.Service
	if pc := cfg.Push(); pc.Enabled() {
		pushSvc = push.NewService(pc)
	} else {
		slog.Info("web push disabled, VAPID keys not configured")
	}

	srv := server.New(db, server.Options{
		Tokens:            auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Uploader:          uploader,
		Push:              pushSvc,
		ClientURL:         cfg.ClientURL,
		AuthRatePerMinute: cfg.AuthRatePerMinute,
		ClientIP:          clientIP,
		Development:       cfg.IsDevelopment(),
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.Start(ctx)

	// No WriteTimeout: sockets stay open for the life of the session.
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("famfeed listening", "addr", httpServer.Addr, "env", cfg.Env, "db", cfg.DBDriver)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	srv.Stop()
}

func generateVAPIDKeys() {
	pub, priv, err := push.GenerateVAPIDKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate keys: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("FAMFEED_VAPID_PUBLIC_KEY=%s\nFAMFEED_VAPID_PRIVATE_KEY=%s\n", pub, priv)
}
