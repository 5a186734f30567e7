package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bat-ads/internal/adapter/adserver"
	"bat-ads/internal/adapter/catalog"
	httpadapter "bat-ads/internal/adapter/http"
	"bat-ads/internal/adapter/kafka"
	"bat-ads/internal/adapter/postgres"
	"bat-ads/internal/adapter/sqlite"
	"bat-ads/internal/adapter/transport"
	"bat-ads/internal/adapter/usecase"
	"bat-ads/internal/config"
	"bat-ads/internal/core/confirmation"
	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/eligibility"
	"bat-ads/internal/core/port"
	"bat-ads/internal/db"
	"bat-ads/internal/metrics"
	"bat-ads/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, background tasks and the optional Kafka consumer",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return serve(ctx, cfg, newLogger(cfg.Log))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracerProvider(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(sctx); err != nil {
				logger.Error("tracer shutdown error", slog.Any("error", err))
			}
		}()
	}

	storage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	cat, refresher, err := openCatalog(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := transport.DefaultOptions()
	opts.Timeout = cfg.Ads.RequestTimeout
	opts.RetryMax = cfg.Ads.RequestRetries
	client := adserver.New(transport.New(opts, logger), cfg.Ads.ServerURL.String())

	svc, err := usecase.NewAdsService(serviceConfig(cfg), storage, cat, client, logger, usecase.WithMetrics(m))
	if err != nil {
		return err
	}
	defer svc.Close()
	if err = svc.Start(ctx); err != nil {
		return err
	}

	handler := httpadapter.NewHandler(svc, logger, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
			return err
		}
		logger.Info("server gracefully stopped")
		return nil
	})
	g.Go(func() error {
		tasks := usecase.DefaultTasks(svc, refresher, intervals(cfg))
		return usecase.NewScheduler(logger, m, tasks...).Run(gctx)
	})
	if len(cfg.Kafka.Brokers) > 0 {
		g.Go(func() error {
			reader := kafka.NewReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
			logger.Info("consuming ad events", slog.String("topic", cfg.Kafka.Topic))
			return kafka.NewConsumer(reader, svc, logger, cfg.Kafka.Backoff).Run(gctx)
		})
	}
	return g.Wait()
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.Storage, error) {
	switch cfg.StorageDriver {
	case db.DriverPostgres:
		if cfg.Psql.RunMigrations {
			if err := db.Migrate(db.DriverPostgres, cfg.Psql.Addr.String()); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return nil, fmt.Errorf("database connection: %w", err)
		}
		return postgres.New(pool), nil
	default:
		s, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return s, nil
	}
}

// openCatalog returns the catalog and, when it is backed by a file, the
// refresher the scheduler polls.
func openCatalog(cfg config.Config) (*catalog.File, usecase.Refresher, error) {
	if cfg.Catalog.Path == "" {
		return &catalog.File{}, nil, nil
	}
	f, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func serviceConfig(cfg config.Config) usecase.Config {
	c := confirmation.DefaultConfig()
	c.PaymentID = cfg.Ads.PaymentID
	c.BuildChannel = cfg.Ads.BuildChannel
	c.Platform = cfg.Ads.Platform
	c.MinUnblindedTokens = cfg.Ads.MinUnblindedTokens
	c.MaxUnblindedTokens = cfg.Ads.MaxUnblindedTokens
	c.BaseBackoff = cfg.Ads.RetryBaseBackoff
	c.MaxBackoff = cfg.Ads.RetryMaxBackoff
	c.OrphanWindow = cfg.Ads.OrphanWindow
	c.Retention = cfg.Ads.Retention

	perms := make(map[domain.AdType]eligibility.Permissions)
	for name, n := range cfg.Ads.MaxPerHour {
		p := perms[domain.AdType(name)]
		p.MaxPerHour = n
		perms[domain.AdType(name)] = p
	}
	for name, n := range cfg.Ads.MaxPerDay {
		p := perms[domain.AdType(name)]
		p.MaxPerDay = n
		perms[domain.AdType(name)] = p
	}
	return usecase.Config{Confirmation: c, Permissions: perms}
}

func intervals(cfg config.Config) usecase.Intervals {
	return usecase.Intervals{
		Issuers:   cfg.Ads.IssuersInterval,
		Refill:    cfg.Ads.RefillInterval,
		Retry:     cfg.Ads.RetryInterval,
		Payout:    cfg.Ads.PayoutInterval,
		Purge:     cfg.Ads.PurgeInterval,
		Catalog:   cfg.Catalog.RefreshInterval,
		HealthChk: cfg.Ads.HealthInterval,
	}
}
