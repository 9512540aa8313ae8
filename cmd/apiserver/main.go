// Command apiserver serves the InsureDoc Intelligence HTTP API.
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

	appauth "github.com/turtacn/InsureDoc-Intelligence/internal/application/auth"
	"github.com/turtacn/InsureDoc-Intelligence/internal/application/claims"
	appdoc "github.com/turtacn/InsureDoc-Intelligence/internal/application/document"
	"github.com/turtacn/InsureDoc-Intelligence/internal/config"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/auth/token"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http"
	"github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

const startupTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the configuration")
	flag.Parse()

	config.LoadDotEnv(*envFile)
	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ValidateServer()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, level, err := logging.NewLoggerWithLevel(logConfig(cfg.Log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logging.SetDefault(logger)

	if err := run(cfg, *configPath, logger, level); err != nil {
		logger.Error("API server exited with error", logging.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string, logger logging.Logger, level logging.AtomicLevel) error {
	logger.Info("Starting InsureDoc Intelligence API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.String("addr", cfg.Server.Addr()),
	)

	if configPath != "" {
		watchLogLevel(configPath, level, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	infra, err := initInfrastructure(startCtx, cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	tokens, err := token.NewManager(cfg.Auth)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	authOpts := []appauth.Option{appauth.WithMetrics(metrics)}
	if infra.redis != nil {
		authOpts = append(authOpts, appauth.WithRevocationStore(redis.NewTokenRevocationStore(infra.redis)))
	}
	authSvc := appauth.NewService(
		repositories.NewPostgresTenantRepo(infra.pg, logger),
		repositories.NewPostgresUserRepo(infra.pg, logger),
		tokens,
		token.NewPasswordHasher(cfg.Auth.BcryptCost),
		logger,
		authOpts...,
	)

	docRepo := repositories.NewPostgresDocumentRepo(infra.pg, logger)
	docOpts := []appdoc.Option{appdoc.WithMetrics(metrics)}
	if infra.store != nil {
		docOpts = append(docOpts, appdoc.WithObjectStore(infra.store, cfg.MinIO.PresignExpiry))
	}
	if infra.searcher != nil {
		docOpts = append(docOpts, appdoc.WithSimilarIndex(infra.searcher))
	}
	if infra.producer != nil {
		docOpts = append(docOpts, appdoc.WithPublisher(infra.producer))
	}
	if infra.cache != nil {
		docOpts = append(docOpts, appdoc.WithCache(infra.cache))
	}
	docSvc := appdoc.NewService(docRepo, cfg.Analysis, logger, docOpts...)
	annotations := appdoc.NewAnnotationService(docRepo, infra.cache, cfg.Analysis.CacheTTL, metrics, logger)

	claimOpts := []claims.Option{
		claims.WithRepository(repositories.NewPostgresAssessmentRepo(infra.pg, logger)),
		claims.WithMetrics(metrics),
	}
	if infra.producer != nil {
		claimOpts = append(claimOpts, claims.WithPublisher(infra.producer))
	}
	claimSvc := claims.NewService(logger, claimOpts...)

	gin.SetMode(cfg.Server.Mode)

	routerCfg := httpserver.RouterConfig{
		AuthHandler:       handlers.NewAuthHandler(authSvc),
		DocumentHandler:   handlers.NewDocumentHandler(docSvc, annotations, cfg.Server.MaxUploadBytes),
		ClaimHandler:      handlers.NewClaimHandler(claimSvc),
		AnnotationHandler: handlers.NewAnnotationHandler(annotations),
		HealthHandler:     handlers.NewHealthHandler(version, infra.checkers()...),
		TokenVerifier:     authSvc,
		HTTPMetrics:       metrics,
		CORS:              corsConfig(cfg.Server),
		Logging:           loggingConfig(cfg.Server),
		Logger:            logger,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsHandler = collector.Handler()
		routerCfg.MetricsPath = cfg.Metrics.Path
	}
	if infra.redis != nil && cfg.Server.RateLimitPerMinute > 0 {
		routerCfg.RateLimiter = redis.NewFixedWindowLimiter(infra.redis, cfg.Server.RateLimitPerMinute, time.Minute)
	}

	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("API server stopped")
	return nil
}

func logConfig(c config.LogConfig) logging.LogConfig {
	return logging.LogConfig{
		Level:       logging.Level(c.Level),
		Format:      c.Format,
		OutputPaths: c.OutputPaths,
	}
}

// watchLogLevel applies log level changes from the config file without a
// restart.  Other settings need a restart.
func watchLogLevel(path string, level logging.AtomicLevel, logger logging.Logger) {
	err := config.Watch(path, func(next *config.Config) {
		l, err := logging.ParseLevel(next.Log.Level)
		if err != nil {
			logger.Warn("Ignoring invalid log level from reloaded config", logging.Err(err))
			return
		}
		if l != level.Level() {
			level.Set(l)
			logger.Info("Log level changed", logging.String("level", l.String()))
		}
	}, func(err error) {
		logger.Warn("Config reload failed", logging.Err(err))
	})
	if err != nil {
		logger.Warn("Config watch disabled", logging.Err(err))
	}
}

func corsConfig(s config.ServerConfig) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	if len(s.CORSAllowedOrigins) > 0 {
		c.AllowedOrigins = s.CORSAllowedOrigins
	}
	return c
}

func loggingConfig(s config.ServerConfig) middleware.LoggingConfig {
	c := middleware.DefaultLoggingConfig()
	if s.SlowRequest > 0 {
		c.SlowThreshold = s.SlowRequest
	}
	return c
}
