package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexnum/sentinel/core/captcha"
	"github.com/nexnum/sentinel/core/csrf"
	"github.com/nexnum/sentinel/core/elevation"
	"github.com/nexnum/sentinel/core/guard"
	"github.com/nexnum/sentinel/core/kv"
	"github.com/nexnum/sentinel/core/ratelimit"
	"github.com/nexnum/sentinel/core/signature"
	"github.com/nexnum/sentinel/integration/database/pg"
	"github.com/nexnum/sentinel/integration/database/redis"
	mw "github.com/nexnum/sentinel/middleware"
	"github.com/nexnum/sentinel/pkg/logger"
	"github.com/nexnum/sentinel/pkg/origin"
)

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)
	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("gateway exited", logger.Error(err))
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func run(ctx context.Context, cfg config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, rlStore, healthchecks, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	originGuard, err := origin.New(cfg.AppURLs,
		origin.WithWildcards(cfg.WildcardOrigins...),
		origin.WithProduction(cfg.Production),
		origin.WithAPIKeyCheck(func(h http.Header) bool {
			return h.Get(guard.HeaderAPIKey) != ""
		}),
	)
	if err != nil {
		return fmt.Errorf("origin guard: %w", err)
	}

	csrfProtector, err := csrf.New(cfg.CSRFSecret)
	if err != nil {
		return fmt.Errorf("csrf: %w", err)
	}

	signer, err := signature.New(cfg.SigningSecret, store,
		signature.WithFailClosed(cfg.Production),
		signature.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("signer: %w", err)
	}

	guardOpts := []guard.Option{
		guard.WithOrigin(originGuard),
		guard.WithCSRF(csrfProtector),
		guard.WithSigner(signer),
		guard.WithDeviceStore(store),
		guard.WithBearerPrefix(cfg.APIKeyPrefix),
		guard.WithLogger(log),
		guard.WithMetrics(guard.NewMetrics(prometheus.DefaultRegisterer)),
	}
	if cfg.CaptchaVerifyURL != "" && cfg.CaptchaSecret != "" {
		verifier, err := captcha.New(cfg.CaptchaVerifyURL, cfg.CaptchaSecret)
		if err != nil {
			return fmt.Errorf("captcha: %w", err)
		}
		guardOpts = append(guardOpts, guard.WithCaptcha(verifier))
	} else {
		log.Info("captcha not configured, adaptive challenges will deny")
	}
	g := guard.New(guardOpts...)

	limiter, err := ratelimit.New(rlStore, ratelimit.Config{
		Capacity:       cfg.RateLimitCapacity,
		RefillRate:     cfg.RateLimitRefill,
		RefillInterval: cfg.RateLimitInterval,
	})
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(mw.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AppURLs,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Content-Type", "Authorization",
			guard.HeaderAPIKey, csrf.HeaderToken, captcha.HeaderToken,
			signature.HeaderSignature, signature.HeaderTimestamp, signature.HeaderNonce,
			guard.HeaderTimezone, guard.HeaderScreen, headerElevation,
		},
		ExposedHeaders:   []string{mw.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           cfg.CORSMaxAge,
	}))

	r.Get("/health", healthHandler(healthchecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Session bootstrap: issues the session cookie and its CSRF token.
	r.Group(func(r chi.Router) {
		r.Use(mw.Secure(g, guard.Options{SkipCSRF: true, BrowserCheck: guard.BrowserCheckBasic}))
		r.Use(mw.RateLimit(limiter))
		r.Get("/api/session", sessionHandler(csrfProtector, cfg.Production))
	})

	// Browser-facing API: origin + CSRF + basic attestation.
	r.Group(func(r chi.Router) {
		r.Use(mw.Secure(g, guard.Options{BrowserCheck: guard.BrowserCheckBasic}))
		r.Use(mw.RateLimit(limiter))
		r.Get("/api/whoami", whoamiHandler)
	})

	// Signed API: HMAC signature required, API keys accepted.
	r.Group(func(r chi.Router) {
		r.Use(mw.Secure(g, guard.Options{
			RequireSignature: true,
			AllowAPIKey:      true,
			SkipCSRF:         true,
		}))
		r.Use(mw.RateLimit(limiter))
		r.Post("/api/transfer", transferHandler(log))
	})

	if cfg.PgURL != "" {
		pool, err := pg.Connect(ctx, pg.Config{
			ConnectionURL:  cfg.PgURL,
			MaxConns:       10,
			RetryAttempts:  3,
			RetryInterval:  5 * time.Second,
			ConnectTimeout: 30 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()

		elevator := elevation.New(pg.NewCredentialStore(pool), store, elevation.WithLogger(log))

		// Sensitive actions: strict attestation plus fresh re-auth.
		r.Group(func(r chi.Router) {
			r.Use(mw.Secure(g, guard.Options{BrowserCheck: guard.BrowserCheckStrict}))
			r.Use(mw.RateLimit(limiter))
			r.Post("/api/elevate", elevateHandler(elevator))
			r.Post("/api/account/close", closeAccountHandler(elevator, log))
		})
	} else {
		log.Info("postgres not configured, elevation endpoints disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("gateway listening", slog.Int("port", cfg.Port), slog.Bool("production", cfg.Production))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildStores wires Redis-backed stores when configured, in-process stores
// otherwise. The returned cleanup stops whatever was started.
func buildStores(ctx context.Context, cfg config, log *slog.Logger) (kv.Store, ratelimit.Store, []healthcheck, func(), error) {
	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, redis.Config{
			ConnectionURL:  cfg.RedisURL,
			RetryAttempts:  3,
			RetryInterval:  5 * time.Second,
			ConnectTimeout: 30 * time.Second,
		})
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("redis: %w", err)
		}

		checks := []healthcheck{{name: "redis", probe: redis.Healthcheck(client)}}
		cleanup := func() { _ = client.Close() }
		return redis.NewKVStore(client), redis.NewRateLimitStore(client), checks, cleanup, nil
	}

	log.Info("redis not configured, using in-process stores")

	mem := kv.NewMemory(kv.WithLogger(log))
	go func() {
		if err := mem.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("kv store sweep stopped", logger.Error(err))
		}
	}()

	rl := ratelimit.NewMemoryStore(ratelimit.WithMemoryStoreLogger(log))
	rl.Start(ctx)

	cleanup := func() {
		mem.Stop()
		rl.Stop()
	}
	return mem, rl, nil, cleanup, nil
}
