package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/groupclass/checkout/internal/billing"
	"github.com/groupclass/checkout/internal/config"
	"github.com/groupclass/checkout/internal/domain"
	"github.com/groupclass/checkout/internal/handler"
	"github.com/groupclass/checkout/internal/metrics"
	appMiddleware "github.com/groupclass/checkout/internal/middleware"
	"github.com/groupclass/checkout/internal/phone"
	"github.com/groupclass/checkout/internal/refdata"
	"github.com/groupclass/checkout/internal/repository"
	"github.com/groupclass/checkout/internal/server"
	"github.com/groupclass/checkout/internal/service"
	"github.com/groupclass/checkout/pkg/crypto"
	"github.com/groupclass/checkout/pkg/payment"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if present (for local development)
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	zlog.Logger = logger

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx := context.Background()

	catalog := refdata.Default()
	formatter, err := phone.New(cfg.PhoneFormatter, catalog)
	if err != nil {
		return err
	}

	scheduler, err := billing.NewScheduler(billing.RealClock{}, cfg.BillingTimezone, cfg.BillingAnchorHour)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWithRegistry(reg)

	var gateway payment.Gateway
	switch cfg.PaymentProvider {
	case config.ProviderMock:
		gateway = payment.NewMockGateway()
		logger.Warn().Msg("using mock payment provider, no real charges will be made")
	default:
		gateway = payment.NewStripeGateway(payment.StripeConfig{
			Key:     cfg.StripeSecretKey,
			Timeout: cfg.BillingCallTimeout,
			APIURL:  cfg.StripeAPIURL,
		}, logger)
	}

	// Optional signup store
	var (
		db          *pgxpool.Pool
		recorder    service.SignupRecorder
		signupsHTTP *handler.SignupHandler
	)
	if cfg.DatabaseURL != "" {
		db, err = repository.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()

		if err := repository.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		sealer, err := crypto.NewSealer(cfg.EncryptionKey)
		if err != nil {
			return fmt.Errorf("encryption: %w", err)
		}
		repo := repository.NewSignupRepository(db, sealer)
		recorder = repo
		signupsHTTP = handler.NewSignupHandler(repo)
		logger.Info().Msg("database connected and migrated")
	}

	membership := domain.Membership{
		Name:        cfg.MembershipName,
		PriceID:     cfg.StripePriceID,
		AmountCents: cfg.ChargeAmount,
		Currency:    cfg.ChargeCurrency,
	}
	subSvc := service.NewSubscriptionService(gateway, scheduler, recorder, m, service.SubscriptionConfig{
		Membership:  membership,
		CallTimeout: cfg.BillingCallTimeout,
		Compensate:  cfg.Compensate,
	}, logger)

	// 20 req/sec per IP, burst of 40
	globalRL := appMiddleware.NewRateLimiter("global", 20, 40, m)
	defer globalRL.Close()
	// 1 checkout/sec per IP, burst of 5
	subscribeRL := appMiddleware.NewRateLimiter("subscribe", 1, 5, m)
	defer subscribeRL.Close()

	r := server.NewRouter(server.Options{
		Logger:           logger,
		Metrics:          m,
		Gatherer:         reg,
		CORSOrigins:      cfg.CORSOrigins,
		TrustProxy:       cfg.TrustProxy,
		GlobalLimiter:    globalRL,
		SubscribeLimiter: subscribeRL,
		Health:           handler.NewHealthHandler(db, gateway.Name()),
		Catalog:          handler.NewCatalogHandler(catalog, formatter, membership, cfg.StripePublishableKey),
		Subscribe:        handler.NewSubscribeHandler(subSvc),
		Signups:          signupsHTTP,
	})

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Three sequential billing calls plus compensation must fit.
		WriteTimeout: 5*cfg.BillingCallTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", addr).
			Str("billing", gateway.Name()).
			Str("phone_formatter", formatter.Kind()).
			Time("next_anchor", scheduler.NextAnchor()).
			Msg("checkout backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupLogger(levelStr, format string) zerolog.Logger {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
