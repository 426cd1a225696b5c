package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civicfin/internal/cache"
	"civicfin/internal/crosswalk"
	"civicfin/internal/finance/adapters"
	"civicfin/internal/finance/aggregator"
	"civicfin/internal/finance/cycle"
	"civicfin/internal/finance/events"
	"civicfin/internal/finance/handler"
	financemetrics "civicfin/internal/finance/metrics"
	"civicfin/internal/finance/ports"
	"civicfin/internal/finance/quality"
	"civicfin/internal/finance/resolver"
	"civicfin/internal/finance/service"
	"civicfin/internal/platform/config"
	"civicfin/internal/platform/httpserver"
	"civicfin/internal/platform/logger"
	"civicfin/internal/platform/metrics"
	"civicfin/internal/platform/postgres"
	"civicfin/internal/platform/redis"
	"civicfin/internal/ratelimit"
	"civicfin/internal/sources/congress"
	"civicfin/internal/sources/fec"
	"civicfin/internal/sources/providers"
	httptransport "civicfin/internal/transport/http"
	"civicfin/pkg/platform/circuit"
)

const publisherCloseTimeout = 5 * time.Second

// infra holds the long-lived connections main must close on shutdown.
type infra struct {
	db        *sql.DB
	redis     *redis.Client
	publisher *events.KafkaPublisher
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	conns := &infra{}
	defer conns.close(log)

	httpMetrics := metrics.New()
	financeMetrics := financemetrics.New()

	var err error
	if conns.db, err = postgres.Open(ctx, cfg.Postgres); err != nil {
		return err
	}
	if conns.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return err
	}

	store, err := buildCache(cfg.Cache, conns.redis)
	if err != nil {
		return err
	}

	directory, err := buildCrosswalk(ctx, cfg.Crosswalk, conns.db, log)
	if err != nil {
		return err
	}

	fecClient := fec.New(newUpstream(fec.ProviderID, cfg.Upstream.FEC, "api_key", cfg.Upstream.Breaker, conns.redis, log, financeMetrics))
	fecAdapter := adapters.NewFECAdapter(fecClient,
		adapters.WithCache(store, financeMetrics),
		adapters.WithTTLs(adapters.TTLs{
			Candidate:    cfg.Cache.CandidateTTL,
			Totals:       cfg.Cache.TotalsTTL,
			Transactions: cfg.Cache.TransactionsTTL,
		}),
		adapters.WithSearchLimit(cfg.Resolver.SearchLimit),
	)

	strategies := []resolver.Strategy{
		resolver.NewCrosswalkStrategy(directory, fecAdapter, log),
	}
	if cfg.Upstream.Congress.APIKey != "" {
		congressClient := congress.New(newUpstream(congress.ProviderID, cfg.Upstream.Congress, "api_key", cfg.Upstream.Breaker, conns.redis, log, financeMetrics))
		profiles := adapters.NewProfileAdapter(congressClient, store, financeMetrics, cfg.Cache.CandidateTTL)
		strategies = append(strategies, resolver.NewProfileStrategy(profiles, fecAdapter, log))
	} else {
		log.Info("congress api key not set, profile resolution disabled")
	}
	strategies = append(strategies,
		resolver.NewSearchStrategy(fecAdapter, resolver.SearchConfig{
			MinAcceptScore: cfg.Resolver.MinAcceptScore,
			Cycles:         cfg.Resolver.SearchCycles,
			MaxCalls:       cfg.Resolver.MaxSearchCalls,
			Timeout:        cfg.Resolver.SearchTimeout,
		}, log),
		resolver.NewLooseStrategy(),
	)
	res, err := resolver.New(strategies, resolver.WithLogger(log), resolver.WithObserver(financeMetrics))
	if err != nil {
		return fmt.Errorf("build resolver: %w", err)
	}

	classifier, err := quality.New(quality.Thresholds{High: cfg.Quality.High, Low: cfg.Quality.Low})
	if err != nil {
		return err
	}
	agg, err := aggregator.New(fecAdapter, classifier,
		aggregator.WithConfig(aggregator.Config{
			SamplePageSize: cfg.Aggregation.SamplePageSize,
			FullPageSize:   cfg.Aggregation.FullPageSize,
			TopIndustries:  cfg.Aggregation.TopIndustries,
			TopEmployers:   cfg.Aggregation.TopEmployers,
			TopStates:      cfg.Aggregation.TopStates,
			TopPayees:      cfg.Aggregation.TopPayees,
		}),
		aggregator.WithLogger(log),
		aggregator.WithObserver(financeMetrics),
	)
	if err != nil {
		return fmt.Errorf("build aggregator: %w", err)
	}

	publisher, err := buildPublisher(cfg.Kafka, conns, log)
	if err != nil {
		return err
	}

	svc, err := service.New(directory, res, cycle.NewSelector(cfg.Server.DefaultCycle), agg,
		service.WithLogger(log),
		service.WithMetrics(financeMetrics),
		service.WithReportCache(store, financeMetrics, cfg.Cache.ReportTTL),
		service.WithEventPublisher(publisher),
		service.WithLoadTimeout(cfg.Server.RequestTimeout),
	)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}

	router := httptransport.NewRouter(httptransport.Options{
		Logger:         log,
		Metrics:        httpMetrics,
		RequestTimeout: cfg.Server.RequestTimeout,
		HealthChecks:   conns.healthChecks(),
	}, handler.New(svc, log))

	srv := httpserver.New(cfg.Server, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting civicfin", "addr", cfg.Server.Addr,
			"cache", cfg.Cache.Backend,
			"crosswalk", cfg.Crosswalk.Source,
			"events", publisherKind(cfg.Kafka),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if conns.publisher != nil {
		if err := conns.publisher.Close(shutdownCtx); err != nil {
			log.Warn("flush resolution events", "error", err)
		}
		conns.publisher = nil
	}
	return nil
}

// newUpstream builds a JSON client with its breaker and quota. The quota is
// shared through Redis when available so replicas split one API key.
func newUpstream(id string, p config.Provider, keyParam string, b config.Breaker, rc *redis.Client, log *slog.Logger, obs providers.Observer) *providers.JSONClient {
	quota := ratelimit.Quota{Limit: p.RateLimit, Window: p.RateWindow}
	var limiter ratelimit.Limiter = ratelimit.NewMemory(quota)
	if rc != nil {
		limiter = ratelimit.NewRedis(rc.Client, quota)
	}
	return providers.NewJSONClient(providers.Config{
		ID:          id,
		BaseURL:     p.BaseURL,
		APIKey:      p.APIKey,
		APIKeyParam: keyParam,
		Timeout:     p.Timeout,
	},
		providers.WithLimiter(limiter),
		providers.WithBreaker(circuit.New(id,
			circuit.WithFailureThreshold(b.FailureThreshold),
			circuit.WithSuccessThreshold(b.SuccessThreshold),
			circuit.WithCooldown(b.Cooldown),
		)),
		providers.WithLogger(log),
		providers.WithObserver(obs),
	)
}

// buildCache returns a nil interface, not a typed nil, when nothing backs it.
func buildCache(cfg config.Cache, rc *redis.Client) (cache.Cache, error) {
	switch cfg.Backend {
	case "redis":
		if rc == nil {
			return nil, errors.New("redis cache backend selected but redis is not configured")
		}
		return cache.NewRedis(rc.Client), nil
	case "memory":
		return cache.NewMemory(cache.WithMaxEntries(cfg.MaxEntries)), nil
	default:
		return nil, nil
	}
}

func buildCrosswalk(ctx context.Context, cfg config.Crosswalk, db *sql.DB, log *slog.Logger) (crosswalk.Lookup, error) {
	if cfg.Source != "postgres" {
		mem, err := crosswalk.LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		log.Info("crosswalk loaded", "source", "file", "entries", len(mem.Entries()))
		return mem, nil
	}

	pg := crosswalk.NewPostgresStore(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	if cfg.Seed && cfg.File != "" {
		mem, err := crosswalk.LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		if err := pg.Import(ctx, mem.Entries()); err != nil {
			return nil, fmt.Errorf("seed crosswalk: %w", err)
		}
		log.Info("crosswalk seeded", "entries", len(mem.Entries()))
	}
	return pg, nil
}

func buildPublisher(cfg config.Kafka, conns *infra, log *slog.Logger) (ports.EventPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return events.NewLogPublisher(log), nil
	}
	client, err := events.NewKafkaClient(cfg)
	if err != nil {
		return nil, err
	}
	conns.publisher = events.NewKafkaPublisher(client, cfg.Topic, log)
	return conns.publisher, nil
}

func publisherKind(cfg config.Kafka) string {
	if len(cfg.Brokers) == 0 {
		return "log"
	}
	return "kafka"
}

func (i *infra) healthChecks() map[string]httptransport.HealthCheck {
	checks := map[string]httptransport.HealthCheck{}
	if i.db != nil {
		checks["postgres"] = i.db.PingContext
	}
	if i.redis != nil {
		checks["redis"] = i.redis.Health
	}
	return checks
}

func (i *infra) close(log *slog.Logger) {
	if i.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), publisherCloseTimeout)
		defer cancel()
		if err := i.publisher.Close(ctx); err != nil {
			log.Warn("close kafka publisher", "error", err)
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("close redis", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("close postgres", "error", err)
		}
	}
}
