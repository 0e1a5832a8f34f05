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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"downloadgate/internal/origin"
	"downloadgate/internal/platform/config"
	"downloadgate/internal/platform/httpserver"
	"downloadgate/internal/platform/logger"
	"downloadgate/internal/platform/metrics"
	platformredis "downloadgate/internal/platform/redis"
	ratelimitMetrics "downloadgate/internal/ratelimit/metrics"
	"downloadgate/internal/ratelimit/service/requestlimit"
	"downloadgate/internal/submission/handler"
	submissionMetrics "downloadgate/internal/submission/metrics"
	"downloadgate/internal/submission/models"
	"downloadgate/internal/submission/service"
	"downloadgate/internal/submission/store"
	"downloadgate/internal/submission/store/memory"
	"downloadgate/internal/submission/store/postgres"
	redisstore "downloadgate/internal/submission/store/redis"
	"downloadgate/internal/submission/store/sqlite"
	httptransport "downloadgate/internal/transport/http"
	"downloadgate/pkg/platform/audit"
	"downloadgate/pkg/platform/audit/publisher"
	"downloadgate/pkg/platform/audit/publishers/kafka"
	"downloadgate/pkg/platform/audit/publishers/logsink"
	"downloadgate/pkg/platform/audit/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("download gate stopped", "error", err)
		os.Exit(1)
	}
}

// run wires dependencies and blocks until ctx is cancelled or a server fails.
func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	records, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sink, closeSink, err := openAuditSink(ctx, cfg.Audit, log)
	if err != nil {
		return err
	}
	defer closeSink()

	auditMetrics := publisher.NewMetrics(reg)
	var auditor audit.Emitter = audit.Discard{}
	var auditPublisher *publisher.Publisher
	if sink != nil {
		auditPublisher = publisher.NewPublisher(
			publisher.WithAsyncBuffer(cfg.Audit.Buffer),
			publisher.WithLogger(log),
			publisher.WithMetrics(auditMetrics),
		)
		auditor = auditPublisher
	}

	limiter, err := requestlimit.New(records,
		requestlimit.WithConfig(cfg.RateLimit),
		requestlimit.WithMetrics(ratelimitMetrics.New(reg)),
		requestlimit.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	submissions, err := service.New(records, limiter, cfg.IPHashSalt,
		models.DownloadReference{DownloadURL: cfg.DownloadURL, SHA256: cfg.DownloadSHA256},
		service.WithLogger(log),
		service.WithMetrics(submissionMetrics.New(reg)),
		service.WithAuditor(auditor),
		service.WithStoreTimeout(cfg.StoreTimeout),
	)
	if err != nil {
		return fmt.Errorf("submission service: %w", err)
	}

	guard := origin.New(origin.ParseAllowList(cfg.AllowedOrigins), log, origin.WithAuditor(auditor))
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:          log,
		Metrics:         metrics.New(reg),
		TrustedIPHeader: cfg.TrustedIPHeader,
	}, handler.New(submissions, guard, log, handler.WithRequestTimeout(cfg.RequestTimeout)))

	gate := httpserver.New(cfg.Addr, router)
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = httpserver.New(cfg.MetricsAddr, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	g, gctx := errgroup.WithContext(ctx)

	if auditPublisher != nil {
		w := worker.NewWorker(sink, auditPublisher.Inbox(),
			worker.WithLogger(log),
			worker.WithMetrics(auditMetrics),
			worker.WithDeliveryTimeout(cfg.Audit.DeliveryTimeout),
		)
		// The worker drains until the publisher is closed after shutdown.
		g.Go(func() error {
			return w.Run(context.Background())
		})
	}

	g.Go(func() error {
		log.Info("starting download gate", "addr", cfg.Addr, "store", cfg.StoreDriver, "audit", cfg.Audit.Sink)
		if err := gate.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gate server: %w", err)
		}
		return nil
	})

	if metricsSrv != nil {
		g.Go(func() error {
			log.Info("starting metrics server", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := gate.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("gate shutdown: %w", err))
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
			}
		}
		if auditPublisher != nil {
			auditPublisher.Close()
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// openStore selects the record store named by STORE_DRIVER.
func openStore(ctx context.Context, cfg config.Server, log *slog.Logger) (store.Store, func(), error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory record store; records are lost on restart")
		return memory.New(), noop, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Error("close sqlite store", "error", err)
			}
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, noop, err
		}
		s := postgres.New(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return s, pool.Close, nil

	case config.DriverRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		if client == nil {
			return nil, noop, errors.New("redis store requires REDIS_URL")
		}
		return redisstore.New(client.Client), func() {
			if err := client.Close(); err != nil {
				log.Error("close redis client", "error", err)
			}
		}, nil
	}
	return nil, noop, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// openAuditSink returns nil when auditing is disabled.
func openAuditSink(ctx context.Context, cfg config.AuditConfig, log *slog.Logger) (audit.Sink, func(), error) {
	noop := func() {}

	switch cfg.Sink {
	case config.AuditSinkNone:
		return nil, noop, nil

	case config.AuditSinkLog:
		return logsink.New(log), noop, nil

	case config.AuditSinkKafka:
		s, err := kafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, noop, err
		}
		if err := s.Ping(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, noop, fmt.Errorf("kafka audit sink unreachable: %w", err)
		}
		if err := s.EnsureTopic(ctx, 1, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.KafkaTopic, "error", err)
		}
		return s, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.Close(closeCtx); err != nil {
				log.Error("close kafka audit sink", "error", err)
			}
		}, nil
	}
	return nil, noop, fmt.Errorf("unknown audit sink %q", cfg.Sink)
}
