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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"marketfactory/internal/platform/config"
	"marketfactory/internal/platform/httpserver"
	"marketfactory/internal/platform/logger"
	"marketfactory/internal/platform/metrics"
	"marketfactory/internal/platform/postgres"
	"marketfactory/internal/platform/redis"
	"marketfactory/internal/platform/tracing"
	"marketfactory/internal/registry"
	"marketfactory/internal/registry/feed"
	regmetrics "marketfactory/internal/registry/metrics"
	"marketfactory/internal/registry/models"
	"marketfactory/internal/registry/service"
	"marketfactory/internal/registry/store"
	httptransport "marketfactory/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Query logic lives in internal/registry.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registryMetrics := regmetrics.New(reg)

	backend, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.close()

	svc := registry.NewService(backend.store, log, registryMetrics)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Health:   backend.health,
		Modules:  []httptransport.Registrar{registry.NewHandler(svc, log, cfg.Registry.DefaultPageLimit)},
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.FeedEnabled() {
		consumer, err := feed.NewConsumer(cfg.Kafka, backend.replica,
			feed.WithLogger(log),
			feed.WithMetrics(registryMetrics),
		)
		if err != nil {
			return err
		}
		defer consumer.Close()
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	g.Go(func() error {
		log.Info("starting market registry", "addr", cfg.Server.Addr, "backend", cfg.Registry.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down market registry")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// backend bundles the selected store with its health check and cleanup.
// replica is set only for the in-memory backend.
type backend struct {
	store   service.Store
	replica *store.InMemoryStore
	health  httptransport.HealthCheck
	close   func()
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (*backend, error) {
	switch cfg.Registry.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:  store.NewPostgres(db),
			health: db.PingContext,
			close:  func() { _ = db.Close() },
		}, nil

	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:  store.NewRedis(client, cfg.Redis.ListKey),
			health: client.Health,
			close:  func() { _ = client.Close() },
		}, nil

	default:
		seed := make([]models.MarketID, len(cfg.Registry.Seed))
		for i, id := range cfg.Registry.Seed {
			seed[i] = models.MarketID(id)
		}
		replica := store.NewInMemoryStore(seed...)
		log.Info("using in-memory registry replica", "seeded", len(seed))
		return &backend{
			store:   replica,
			replica: replica,
			close:   func() {},
		}, nil
	}
}
