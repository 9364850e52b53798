package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
	DefaultLogOutput = "stderr"

	DefaultCorpusPath = "data/250k_rndm_zinc_drugs_clean.smi"
	DefaultOutputDir  = "data"

	DefaultAromaticMode = "preserve"
	DefaultMarkerMode   = "hydrogen"
	DefaultReducer      = "wildcard"

	DefaultWorkerConcurrency = 1

	DefaultMetricsNamespace = "fragvocab"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisKeyPrefix = "fragvocab:"
	DefaultRedisBatchSize = 1000

	DefaultPostgresHost          = "localhost"
	DefaultPostgresPort          = 5432
	DefaultPostgresDBName        = "fragvocab"
	DefaultPostgresSSLMode       = "disable"
	DefaultPostgresMaxOpenConns  = 10
	DefaultPostgresMaxIdleConns  = 5
	DefaultPostgresMigrationPath = "migrations"
	DefaultPostgresBatchSize     = 1000

	DefaultKafkaBroker    = "localhost:9092"
	DefaultKafkaTopic     = "fragvocab.fragments"
	DefaultKafkaBatchSize = 100

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "fragvocab"
)

var (
	DefaultOutputFormats = []string{"json", "csv"}

	DefaultRedisDialTimeout        = 5 * time.Second
	DefaultRedisReadTimeout        = 3 * time.Second
	DefaultRedisWriteTimeout       = 3 * time.Second
	DefaultPostgresConnMaxLifetime = 30 * time.Minute
	DefaultKafkaWriteTimeout       = 10 * time.Second
)

// ApplyDefaults fills every zero-value field in cfg with its default. Fields
// that have already been set are left unchanged so that explicit
// configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	// ── Corpus / output ───────────────────────────────────────────────────────
	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = DefaultCorpusPath
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = append([]string(nil), DefaultOutputFormats...)
	}

	// ── Decomposition ─────────────────────────────────────────────────────────
	if cfg.Decomposition.AromaticMode == "" {
		cfg.Decomposition.AromaticMode = DefaultAromaticMode
	}
	if cfg.Decomposition.MarkerMode == "" {
		cfg.Decomposition.MarkerMode = DefaultMarkerMode
	}
	if cfg.Decomposition.Reducer == "" {
		cfg.Decomposition.Reducer = DefaultReducer
	}

	// ── Worker / metrics ──────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = DefaultRedisReadTimeout
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = DefaultRedisWriteTimeout
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.BatchSize == 0 {
		cfg.Redis.BatchSize = DefaultRedisBatchSize
	}

	// ── Postgres ──────────────────────────────────────────────────────────────
	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = DefaultPostgresHost
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Postgres.DBName == "" {
		cfg.Postgres.DBName = DefaultPostgresDBName
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = DefaultPostgresSSLMode
	}
	if cfg.Postgres.MaxOpenConns == 0 {
		cfg.Postgres.MaxOpenConns = DefaultPostgresMaxOpenConns
	}
	if cfg.Postgres.MaxIdleConns == 0 {
		cfg.Postgres.MaxIdleConns = DefaultPostgresMaxIdleConns
	}
	if cfg.Postgres.ConnMaxLifetime == 0 {
		cfg.Postgres.ConnMaxLifetime = DefaultPostgresConnMaxLifetime
	}
	if cfg.Postgres.MigrationPath == "" {
		cfg.Postgres.MigrationPath = DefaultPostgresMigrationPath
	}
	if cfg.Postgres.BatchSize == 0 {
		cfg.Postgres.BatchSize = DefaultPostgresBatchSize
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = DefaultKafkaBatchSize
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = DefaultKafkaWriteTimeout
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
}
