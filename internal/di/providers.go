package di

import (
	"context"
	"fmt"
	"time"

	"KPIPulse/internal/domain/repository"
	"KPIPulse/internal/handler/api"
	internalrepo "KPIPulse/internal/repository"
	"KPIPulse/internal/service/cache"
	"KPIPulse/internal/usecase"
	"KPIPulse/pkg/config"
	pkgkafka "KPIPulse/pkg/kafka"
	applogger "KPIPulse/pkg/logger"
	"KPIPulse/pkg/metrics"
	pkgpg "KPIPulse/pkg/postgres"
	"KPIPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvidePostgresClient creates the Postgres client.
func ProvidePostgresClient(cfg *config.Config) (*pkgpg.Client, error) {
	client, err := pkgpg.NewClient(
		pkgpg.WithHost(cfg.Postgres.Host),
		pkgpg.WithPort(cfg.Postgres.Port),
		pkgpg.WithDatabase(cfg.Postgres.Database),
		pkgpg.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
		pkgpg.WithSSLMode(cfg.Postgres.SSLMode),
		pkgpg.WithMaxConnections(cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns),
		pkgpg.WithConnLifetime(cfg.Postgres.ConnLifetime),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}
	return client, nil
}

// ProvideStore creates the Postgres-backed store and ensures the ML
// tables exist.
func ProvideStore(client *pkgpg.Client, l *applogger.Logger) (*internalrepo.PostgresStore, error) {
	store := internalrepo.NewPostgresStore(client.DB(), l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideAlertPublisher creates the Kafka alert publisher, or nil when
// alerting is disabled.
func ProvideAlertPublisher(cfg *config.Config) (repository.AlertPublisher, error) {
	if !cfg.Alerts.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Alerts.Brokers),
		pkgkafka.WithCompression(cfg.Alerts.Compression),
		pkgkafka.WithRequiredAcks(cfg.Alerts.Acks),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Alerts.Topic), nil
}

// ProvideCache picks the result cache backend: Redis when configured,
// an in-process TTL cache otherwise.
func ProvideCache(cfg *config.Config) cache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return cache.NewTTLCache()
}

// ProvideService creates the ML service use case.
func ProvideService(
	store *internalrepo.PostgresStore,
	alerts repository.AlertPublisher,
	m repository.Metrics,
	resultCache cache.BytesCache,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Service {
	return usecase.NewService(
		store, store, store, store, alerts, m, resultCache, l,
		usecase.Options{
			Metrics:          cfg.ML.Metrics,
			ForecastHorizons: cfg.ML.ForecastHorizons,
			HoldoutDays:      cfg.ML.HoldoutDays,
			LookbackDays:     cfg.ML.LookbackDays,
			Contamination:    cfg.ML.Contamination,
			ModelVersion:     cfg.ML.ModelVersion,
			CodeVersion:      cfg.ML.CodeVersion,
			CacheTTL:         cfg.ML.CacheTTL,
			MinAlertSeverity: cfg.Alerts.MinSeverity,
		},
	)
}

// ProvideHandler creates the HTTP API handler. The health probe pings
// Postgres.
func ProvideHandler(l *applogger.Logger, svc *usecase.Service, client *pkgpg.Client) *api.Handler {
	return api.NewHandler(l, svc, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Health(ctx)
	})
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	h *api.Handler,
	client *pkgpg.Client,
	alerts repository.AlertPublisher,
) *server.App {
	return server.New(cfg, l, h, client, alerts)
}
