package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/geocoder89/todohub/internal/appwrite"
	"github.com/geocoder89/todohub/internal/config"
	httpx "github.com/geocoder89/todohub/internal/http"
	"github.com/geocoder89/todohub/internal/http/handlers"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/geocoder89/todohub/internal/observability"
	"github.com/geocoder89/todohub/internal/security"
	"github.com/geocoder89/todohub/internal/session"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "todohub",
			Endpoint:    cfg.OTELEndpoint,
			Env:         cfg.Env,
		})
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			tctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(tctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	client := appwrite.New(appwrite.Config{
		Endpoint:  cfg.AppwriteEndpoint,
		ProjectID: cfg.AppwriteProjectID,
		APIKey:    cfg.AppwriteAPIKey,
		Timeout:   cfg.BackendTimeout,
		Observer:  prom,
		Breaker:   appwrite.NewBreaker(appwrite.BreakerConfig{}),
	})

	sealer, err := security.NewSealer(cfg.SessionSecret)
	if err != nil {
		log.Error("session sealer", "err", err)
		os.Exit(1)
	}

	var store session.Store
	if cfg.RedisAddr != "" {
		rs := session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rs.Close()
		store = rs
		log.Info("session store", "kind", "redis", "addr", cfg.RedisAddr)
	} else {
		ms := session.NewMemoryStore(cfg.SessionTTL)
		go ms.RunJanitor(ctx, time.Minute)
		store = ms
		log.Warn("session store", "kind", "memory", "note", "sessions are lost on restart")
	}

	registry := session.NewRegistry(
		session.AppwriteBuilder(client, session.BuilderConfig{
			RecoveryURL:  cfg.PublicURL + "/password-reset",
			DatabaseID:   cfg.DatabaseID,
			TodosTableID: cfg.TodosTableID,
			Logger:       log,
		}),
		store,
		sealer,
		session.RegistryConfig{
			TTL:         cfg.SessionTTL,
			InitTimeout: cfg.BackendTimeout,
			Logger:      log,
		},
	)
	go registry.RunJanitor(ctx, time.Minute)
	prom.RegisterLiveSessions(registry.Len)

	limiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, time.Minute, handlers.RespondError)
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				limiter.Prune()
			}
		}
	}()

	var shuttingDown atomic.Bool

	router := httpx.NewRouter(log, httpx.Deps{
		Env:            cfg.Env,
		Sessions:       registry,
		Tokens:         session.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL),
		SecureCookies:  cfg.SecureCookies(),
		Prom:           prom,
		Gatherer:       reg,
		AuthLimiter:    limiter,
		BackendTimeout: cfg.BackendTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Checks: []handlers.Check{
			{Name: "sessions", Ping: registry.Ping},
			{Name: "backend", Ping: client.Ping},
		},
		ShuttingDown: shuttingDown.Load,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "public_url", cfg.PublicURL)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	shuttingDown.Store(true)
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
