package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost         = "0.0.0.0"
	DefaultServerPort         = 8000
	DefaultServerMode         = "release"
	DefaultReadTimeout        = 30 * time.Second
	DefaultWriteTimeout       = 60 * time.Second
	DefaultShutdownTimeout    = 30 * time.Second
	DefaultMaxUploadBytes     = 20 << 20
	DefaultSlowRequest        = 2 * time.Second
	DefaultRateLimitPerMinute = 120

	DefaultDBHost            = "localhost"
	DefaultDBPort            = 5432
	DefaultDBUser            = "insuredoc"
	DefaultDBName            = "insuredoc"
	DefaultDBSSLMode         = "disable"
	DefaultDBMaxOpenConns    = 25
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = 30 * time.Minute
	DefaultDBConnMaxIdleTime = 5 * time.Minute

	DefaultRedisAddr       = "localhost:6379"
	DefaultRedisPoolSize   = 20
	DefaultRedisTimeout    = 3 * time.Second
	DefaultRedisDefaultTTL = 15 * time.Minute
	DefaultRedisNullTTL    = 30 * time.Second
	DefaultRedisKeyPrefix  = "insuredoc:"

	DefaultMinIOEndpoint      = "localhost:9000"
	DefaultMinIOBucket        = "insuredoc-documents"
	DefaultMinIORegion        = "us-east-1"
	DefaultMinIOPresignExpiry = 15 * time.Minute

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaClientID     = "insuredoc-apiserver"
	DefaultKafkaGroupID      = "insuredoc-indexer"
	DefaultKafkaBatchTimeout = 50 * time.Millisecond
	DefaultKafkaWriteTimeout = 10 * time.Second

	DefaultOpenSearchAddress = "http://localhost:9200"
	DefaultOpenSearchIndex   = "insuredoc-documents"
	DefaultOpenSearchTimeout = 10 * time.Second

	DefaultAuthIssuer     = "insuredoc"
	DefaultAuthTokenTTL   = 24 * time.Hour
	DefaultAuthBcryptCost = 10

	DefaultSummaryMaxWords  = 200
	DefaultPreviewChars     = 4000
	DefaultSimilarDocsLimit = 5
	DefaultAnalysisCacheTTL = time.Hour

	DefaultMetricsNamespace = "insuredoc"
	DefaultMetricsPath      = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// defaultValues lists every key viper must know about so that INSUREDOC_*
// environment variables resolve even when no config file sets the key.
func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"server.host":                  DefaultServerHost,
		"server.port":                  DefaultServerPort,
		"server.mode":                  DefaultServerMode,
		"server.read_timeout":          DefaultReadTimeout,
		"server.write_timeout":         DefaultWriteTimeout,
		"server.shutdown_timeout":      DefaultShutdownTimeout,
		"server.max_upload_bytes":      DefaultMaxUploadBytes,
		"server.slow_request":          DefaultSlowRequest,
		"server.cors_allowed_origins":  []string{"*"},
		"server.rate_limit_per_minute": DefaultRateLimitPerMinute,

		"database.host":               DefaultDBHost,
		"database.port":               DefaultDBPort,
		"database.user":               DefaultDBUser,
		"database.password":           "",
		"database.db_name":            DefaultDBName,
		"database.ssl_mode":           DefaultDBSSLMode,
		"database.max_open_conns":     DefaultDBMaxOpenConns,
		"database.max_idle_conns":     DefaultDBMaxIdleConns,
		"database.conn_max_lifetime":  DefaultDBConnMaxLifetime,
		"database.conn_max_idle_time": DefaultDBConnMaxIdleTime,
		"database.auto_migrate":       false,

		"redis.enabled":        false,
		"redis.addr":           DefaultRedisAddr,
		"redis.password":       "",
		"redis.db":             0,
		"redis.pool_size":      DefaultRedisPoolSize,
		"redis.dial_timeout":   DefaultRedisTimeout,
		"redis.read_timeout":   DefaultRedisTimeout,
		"redis.write_timeout":  DefaultRedisTimeout,
		"redis.default_ttl":    DefaultRedisDefaultTTL,
		"redis.null_cache_ttl": DefaultRedisNullTTL,
		"redis.key_prefix":     DefaultRedisKeyPrefix,

		"minio.enabled":        false,
		"minio.endpoint":       DefaultMinIOEndpoint,
		"minio.access_key":     "",
		"minio.secret_key":     "",
		"minio.use_ssl":        false,
		"minio.region":         DefaultMinIORegion,
		"minio.bucket":         DefaultMinIOBucket,
		"minio.presign_expiry": DefaultMinIOPresignExpiry,

		"kafka.enabled":       false,
		"kafka.brokers":       []string{DefaultKafkaBroker},
		"kafka.client_id":     DefaultKafkaClientID,
		"kafka.group_id":      DefaultKafkaGroupID,
		"kafka.batch_timeout": DefaultKafkaBatchTimeout,
		"kafka.write_timeout": DefaultKafkaWriteTimeout,

		"opensearch.enabled":         false,
		"opensearch.addresses":       []string{DefaultOpenSearchAddress},
		"opensearch.username":        "",
		"opensearch.password":        "",
		"opensearch.index":           DefaultOpenSearchIndex,
		"opensearch.request_timeout": DefaultOpenSearchTimeout,
		"opensearch.insecure_tls":    false,

		"auth.jwt_secret":  "",
		"auth.issuer":      DefaultAuthIssuer,
		"auth.token_ttl":   DefaultAuthTokenTTL,
		"auth.bcrypt_cost": DefaultAuthBcryptCost,

		"analysis.summary_max_words":  DefaultSummaryMaxWords,
		"analysis.preview_chars":      DefaultPreviewChars,
		"analysis.similar_docs_limit": DefaultSimilarDocsLimit,
		"analysis.cache_ttl":          DefaultAnalysisCacheTTL,

		"metrics.enabled":   true,
		"metrics.namespace": DefaultMetricsNamespace,
		"metrics.path":      DefaultMetricsPath,

		"log.level":        DefaultLogLevel,
		"log.format":       DefaultLogFormat,
		"log.output_paths": []string{"stdout"},
	}
}

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields already set by the caller are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Server.SlowRequest == 0 {
		cfg.Server.SlowRequest = DefaultSlowRequest
	}
	if len(cfg.Server.CORSAllowedOrigins) == 0 {
		cfg.Server.CORSAllowedOrigins = []string{"*"}
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = DefaultDBConnMaxLifetime
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = DefaultDBConnMaxIdleTime
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisDefaultTTL
	}
	if cfg.Redis.NullCacheTTL == 0 {
		cfg.Redis.NullCacheTTL = DefaultRedisNullTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = DefaultMinIORegion
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = DefaultMinIOPresignExpiry
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = DefaultKafkaClientID
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = DefaultKafkaBatchTimeout
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = DefaultKafkaWriteTimeout
	}

	// ── OpenSearch ────────────────────────────────────────────────────────────
	if len(cfg.OpenSearch.Addresses) == 0 {
		cfg.OpenSearch.Addresses = []string{DefaultOpenSearchAddress}
	}
	if cfg.OpenSearch.Index == "" {
		cfg.OpenSearch.Index = DefaultOpenSearchIndex
	}
	if cfg.OpenSearch.RequestTimeout == 0 {
		cfg.OpenSearch.RequestTimeout = DefaultOpenSearchTimeout
	}

	// ── Auth ──────────────────────────────────────────────────────────────────
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = DefaultAuthIssuer
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = DefaultAuthTokenTTL
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = DefaultAuthBcryptCost
	}

	// ── Analysis ──────────────────────────────────────────────────────────────
	if cfg.Analysis.SummaryMaxWords == 0 {
		cfg.Analysis.SummaryMaxWords = DefaultSummaryMaxWords
	}
	if cfg.Analysis.PreviewChars == 0 {
		cfg.Analysis.PreviewChars = DefaultPreviewChars
	}
	if cfg.Analysis.SimilarDocsLimit == 0 {
		cfg.Analysis.SimilarDocsLimit = DefaultSimilarDocsLimit
	}
	if cfg.Analysis.CacheTTL == 0 {
		cfg.Analysis.CacheTTL = DefaultAnalysisCacheTTL
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
