package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"causelist/internal/causelist"
	"causelist/internal/causelist/handler"
	"causelist/internal/causelist/session"
	"causelist/internal/platform/config"
	"causelist/internal/platform/httpserver"
	"causelist/internal/platform/logger"
	"causelist/internal/platform/metrics"
	"causelist/internal/platform/redis"
	"causelist/internal/platform/tracing"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Form logic lives in internal/causelist.
func main() {
	configDir := flag.String("config", ".", "directory holding an optional causelist.yaml")
	flag.Parse()

	if err := run(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "causelist server: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	log, closeLog, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog.Close()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	client, err := causelist.NewBackend(cfg.Backend, log, m)
	if err != nil {
		return err
	}
	var shared *goredis.Client
	ready := func(context.Context) error { return nil }
	if rdb != nil {
		shared = rdb.Client
		ready = rdb.Health
		defer rdb.Close()
		log.Info("option cache backed by redis")
	}
	cat, err := causelist.NewCatalog(client, causelist.NewCache(cfg.Cache, shared), log, m)
	if err != nil {
		return err
	}

	sessions, err := session.NewRegistry(cat, cat, cfg.Session.MaxSessions, cfg.Session.TTL,
		session.WithLogger(log),
		session.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	h := handler.New(sessions, cfg.Session, log)
	router := handler.NewRouter(h, log, handler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Gatherer:       reg,
		Ready:          ready,
	})
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting causelist server",
			"addr", cfg.Server.Addr,
			"backend", cfg.Backend.BaseURL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return shutdownTracing(shutdownCtx)
	})
	return g.Wait()
}
