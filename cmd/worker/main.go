// Command worker consumes InsureDoc domain events: analysed documents are
// written to the OpenSearch similarity index and scored claims are audited.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/InsureDoc-Intelligence/internal/application/indexing"
	"github.com/turtacn/InsureDoc-Intelligence/internal/config"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/search/opensearch"
	httpserver "github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http"
	"github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http/middleware"
)

var version = "dev"

const (
	defaultHealthPort = 8081
	indexLockTTL      = 30 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the configuration")
	healthPort := flag.Int("health-port", defaultHealthPort, "port of the health and metrics endpoint")
	flag.Parse()

	config.LoadDotEnv(*envFile)
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       logging.Level(cfg.Log.Level),
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, *healthPort, logger.Named("worker")); err != nil {
		logger.Error("Worker exited with error", logging.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, healthPort int, logger logging.Logger) error {
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka must be enabled for the worker")
	}
	if !cfg.OpenSearch.Enabled {
		return fmt.Errorf("opensearch must be enabled for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		Subsystem:            "worker",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	osClient, err := opensearch.NewClient(cfg.OpenSearch, logger)
	if err != nil {
		return fmt.Errorf("opensearch: %w", err)
	}
	indexer := opensearch.NewIndexer(osClient, "", logger)
	if err := indexer.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("opensearch index: %w", err)
	}

	checkers := []handlers.HealthChecker{
		handlers.NewChecker("opensearch", osClient.Ping),
		handlers.NewChecker("kafka", func(ctx context.Context) error {
			return kafka.Ping(ctx, cfg.Kafka.Brokers)
		}),
	}

	handlerOpts := []indexing.Option{indexing.WithMetrics(metrics)}
	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rc.Close()
		handlerOpts = append(handlerOpts, indexing.WithLocks(func(name string) indexing.Locker {
			return redis.NewMutex(rc, name, redis.WithLockTTL(indexLockTTL), redis.WithRetry(50, 100*time.Millisecond))
		}))
		checkers = append(checkers, handlers.NewChecker("redis", rc.Ping))
	}
	indexHandler := indexing.NewHandler(indexer, logger, handlerOpts...)

	consumer, err := kafka.NewConsumer(
		kafka.ConsumerConfigFrom(cfg.Kafka, kafka.TopicDocumentAnalyzed, kafka.TopicClaimScored),
		logger,
	)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.Subscribe(kafka.TopicDocumentAnalyzed, indexHandler.MessageHandler())
	consumer.Subscribe(kafka.TopicClaimScored, indexing.ClaimAuditHandler(logger, metrics))

	gin.SetMode(gin.ReleaseMode)
	health := httpserver.NewServer(config.ServerConfig{Port: healthPort}, httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler:  handlers.NewHealthHandler(version, checkers...),
		MetricsHandler: collector.Handler(),
		MetricsPath:    cfg.Metrics.Path,
		CORS:           middleware.DefaultCORSConfig(),
		Logging:        middleware.DefaultLoggingConfig(),
		Logger:         logger,
	}), logger)
	go func() {
		if err := health.Start(); err != nil {
			logger.Error("Health server failed", logging.Err(err))
		}
	}()

	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	logger.Info("Worker started",
		logging.Strings("topics", []string{kafka.TopicDocumentAnalyzed, kafka.TopicClaimScored}),
		logging.Int("health_port", healthPort),
	)

	<-ctx.Done()
	logger.Info("Shutdown signal received, draining consumer")

	if err := consumer.Close(); err != nil {
		logger.Warn("Consumer close failed", logging.Err(err))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := health.Stop(shutdownCtx); err != nil {
		logger.Warn("Health server shutdown failed", logging.Err(err))
	}
	logger.Info("Worker stopped")
	return nil
}
