package main

import (
	"context"
	"fmt"

	"github.com/turtacn/InsureDoc-Intelligence/internal/config"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http/handlers"
)

// infrastructure holds the backends of the API server.  Postgres is required;
// the others are nil when disabled in the configuration.
type infrastructure struct {
	pg       *postgres.Connection
	redis    *redis.Client
	cache    redis.Cache
	minio    *minio.Client
	store    *minio.DocumentStore
	os       *opensearch.Client
	searcher *opensearch.Searcher
	producer *kafka.Producer
	brokers  []string
}

func initInfrastructure(ctx context.Context, cfg *config.Config, metrics *prometheus.AppMetrics, logger logging.Logger) (*infrastructure, error) {
	infra := &infrastructure{}

	pg, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	infra.pg = pg

	if cfg.Database.AutoMigrate {
		if err := postgres.NewMigrator(cfg.Database, logger).Up(); err != nil {
			infra.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		infra.redis = rc
		infra.cache = redis.NewRedisCache(rc, logger,
			redis.WithName("analysis"),
			redis.WithDefaultTTL(cfg.Redis.DefaultTTL),
			redis.WithNullCacheTTL(cfg.Redis.NullCacheTTL),
			redis.WithHitObserver(metrics),
		)
	}

	if cfg.MinIO.Enabled {
		mc, err := minio.NewClient(cfg.MinIO, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("minio: %w", err)
		}
		infra.minio = mc
		infra.store = minio.NewDocumentStore(mc, logger)
	}

	if cfg.OpenSearch.Enabled {
		oc, err := opensearch.NewClient(cfg.OpenSearch, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("opensearch: %w", err)
		}
		if err := opensearch.NewIndexer(oc, "", logger).EnsureIndex(ctx); err != nil {
			logger.Warn("Could not ensure document index", logging.Err(err))
		}
		infra.os = oc
		infra.searcher = opensearch.NewSearcher(oc, logger)
	}

	if cfg.Kafka.Enabled {
		if tm, err := kafka.NewTopicManager(ctx, cfg.Kafka.Brokers, logger); err != nil {
			logger.Warn("Could not reach Kafka controller, topics not ensured", logging.Err(err))
		} else {
			if err := tm.EnsureTopics(kafka.DefaultTopics()); err != nil {
				logger.Warn("Could not ensure Kafka topics", logging.Err(err))
			}
			_ = tm.Close()
		}
		p, err := kafka.NewProducer(cfg.Kafka, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("kafka: %w", err)
		}
		infra.producer = p
		infra.brokers = cfg.Kafka.Brokers
	}

	logger.Info("Infrastructure initialized",
		logging.Bool("redis", infra.redis != nil),
		logging.Bool("minio", infra.minio != nil),
		logging.Bool("opensearch", infra.os != nil),
		logging.Bool("kafka", infra.producer != nil),
	)
	return infra, nil
}

// checkers returns one readiness check per configured backend.
func (i *infrastructure) checkers() []handlers.HealthChecker {
	checks := []handlers.HealthChecker{handlers.NewChecker("postgres", i.pg.HealthCheck)}
	if i.redis != nil {
		checks = append(checks, handlers.NewChecker("redis", i.redis.Ping))
	}
	if i.minio != nil {
		checks = append(checks, handlers.NewChecker("minio", i.minio.Ping))
	}
	if i.os != nil {
		checks = append(checks, handlers.NewChecker("opensearch", i.os.Ping))
	}
	if i.producer != nil {
		brokers := i.brokers
		checks = append(checks, handlers.NewChecker("kafka", func(ctx context.Context) error {
			return kafka.Ping(ctx, brokers)
		}))
	}
	return checks
}

// Close releases the backends in reverse order of initialization.
func (i *infrastructure) Close() {
	if i.producer != nil {
		_ = i.producer.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.pg != nil {
		_ = i.pg.Close()
	}
}
