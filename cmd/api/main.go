package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webdialer/internal/config"
	"webdialer/internal/numbers"
	"webdialer/internal/token"
	"webdialer/internal/voice"
	"webdialer/pkg/logger"
	"webdialer/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := buildDeps(rootCtx, cfg, log)
	defer deps.close()

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

// buildDeps wires handlers from config. Outside production the process boots
// with whatever credentials are present; endpoints whose dependency is nil
// answer with a configuration error instead.
func buildDeps(ctx context.Context, cfg config.Config, log *slog.Logger) apiDeps {
	deps := apiDeps{}

	minter, err := token.NewMinter(cfg.Twilio, cfg.Token.TTL)
	if err != nil {
		log.Warn("token minting disabled", "err", err)
	} else {
		deps.Token.Minter = minter
	}

	lister, err := numbers.NewTwilioLister(cfg.Twilio)
	if err != nil {
		log.Warn("number listing disabled", "err", err)
	} else {
		deps.Numbers.Lister = lister
	}

	if cfg.RedisEnabled() && deps.Numbers.Lister != nil {
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Warn("numbers cache disabled", "err", err)
		} else {
			deps.rdb = rdb
			deps.Numbers.Lister = numbers.NewCachedLister(deps.Numbers.Lister, rdb, cfg.Redis.NumbersTTL)
		}
	}

	if cfg.Twilio.ValidateWebhook {
		deps.VoiceSignature = voice.RequireSignature(cfg.Twilio.AuthToken)
	}
	return deps
}
