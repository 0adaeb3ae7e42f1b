// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ngo-donation-platform/internal/config"
	"ngo-donation-platform/internal/infra/adapters/payment"
	pg "ngo-donation-platform/internal/infra/db/postgres"
	"ngo-donation-platform/internal/infra/logging"
	"ngo-donation-platform/internal/infra/metrics"
	red "ngo-donation-platform/internal/infra/redis"
	"ngo-donation-platform/internal/infra/sched"
	"ngo-donation-platform/internal/infra/web"
	"ngo-donation-platform/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed checks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)
	replayGuard := red.NewReplayGuard(redisClient, 24*time.Hour)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	donationRepo := pg.NewDonationRepo(pool)

	// ---- Payment gateway ----
	ph := cfg.Payment.PayHere
	signer := payment.NewSigner(ph.MerchantID, ph.MerchantSecret, payment.VerifyMode(strings.ToLower(ph.VerifyMode)))
	if signer.EffectiveMode() == payment.VerifySkip && strings.EqualFold(cfg.Payment.Mode, "payhere") {
		logger.Warn().Msg("signature verification disabled: merchant secret not configured")
	}
	checkoutCfg := payment.CheckoutConfig{
		MerchantID:  ph.MerchantID,
		CheckoutURL: ph.CheckoutURL,
		Currency:    ph.Currency,
		ReturnURL:   ph.ReturnURL,
		CancelURL:   ph.CancelURL,
		NotifyURL:   ph.NotifyURL,
	}

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, txManager, logger)
	donationUC := usecase.NewDonationUseCase(donationRepo, userRepo, signer, checkoutCfg, cfg.Payment.Mode, logger)
	reconcileUC := usecase.NewReconcileUseCase(donationRepo, signer, ph.Currency, locker, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, donationRepo, logger)

	// ---- HTTP server ----
	authMgr := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	srv := web.NewServer(userUC, donationUC, reconcileUC, statsUC, authMgr, rateLimiter, replayGuard, cfg.Client, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Pending-donation sweeper ----
	sweeper := sched.NewPendingSweeper(donationRepo, cfg.Sweeper.Interval, cfg.Sweeper.StaleAfter, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
