// Package config defines the configuration structures of fragvocab. No I/O or
// parsing logic lives here; only plain data types and validation.
package config

import (
	"fmt"
	"time"

	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level        string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format       string `mapstructure:"format"` // "console" | "json"
	Output       string `mapstructure:"output"`
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// CorpusConfig describes the input corpus.
type CorpusConfig struct {
	Path string `mapstructure:"path"`
	// SkipInvalid logs and skips lines that do not parse instead of aborting.
	SkipInvalid  bool `mapstructure:"skip_invalid"`
	MaxMolecules int  `mapstructure:"max_molecules"` // 0 reads the whole file
}

// OutputConfig describes where vocabularies are written.
type OutputConfig struct {
	Dir     string   `mapstructure:"dir"`
	Formats []string `mapstructure:"formats"` // subset of "json", "csv"
}

// DecompositionConfig selects how fragments are cut and serialized.
type DecompositionConfig struct {
	AromaticMode string `mapstructure:"aromatic_mode"` // "preserve" | "kekulize" | "none"
	MarkerMode   string `mapstructure:"marker_mode"`   // "hydrogen" | "wildcard"
	Reducer      string `mapstructure:"reducer"`       // "wildcard" | "skeleton"
}

// WorkerConfig holds the molecule worker pool size.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// MetricsConfig holds Prometheus textfile parameters.
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Namespace    string `mapstructure:"namespace"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// RedisConfig holds Redis connection parameters for the vocabulary mirror.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	BatchSize    int           `mapstructure:"batch_size"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
	BatchSize       int           `mapstructure:"batch_size"`
}

// KafkaConfig holds the fragment event producer parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"` // -1 all, 0 none, 1 leader
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log           LogConfig           `mapstructure:"log"`
	Corpus        CorpusConfig        `mapstructure:"corpus"`
	Output        OutputConfig        `mapstructure:"output"`
	Decomposition DecompositionConfig `mapstructure:"decomposition"`
	Worker        WorkerConfig        `mapstructure:"worker"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered. Sink sections are only checked when
// the sink is enabled.
func (c *Config) Validate() error {
	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected console|json", c.Log.Format)
	}

	// Corpus / output
	if c.Corpus.Path == "" {
		return fmt.Errorf("config: corpus.path is required")
	}
	if c.Corpus.MaxMolecules < 0 {
		return fmt.Errorf("config: corpus.max_molecules must be ≥ 0, got %d", c.Corpus.MaxMolecules)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("config: output.dir is required")
	}
	for _, f := range c.Output.Formats {
		if f != "json" && f != "csv" {
			return fmt.Errorf("config: output.formats entry %q is invalid; expected json|csv", f)
		}
	}

	// Decomposition
	if !ftypes.AromaticMode(c.Decomposition.AromaticMode).IsValid() {
		return fmt.Errorf("config: decomposition.aromatic_mode %q is invalid; expected preserve|kekulize|none", c.Decomposition.AromaticMode)
	}
	if !ftypes.MarkerMode(c.Decomposition.MarkerMode).IsValid() {
		return fmt.Errorf("config: decomposition.marker_mode %q is invalid; expected hydrogen|wildcard", c.Decomposition.MarkerMode)
	}
	if !ftypes.Reducer(c.Decomposition.Reducer).IsValid() {
		return fmt.Errorf("config: decomposition.reducer %q is invalid; expected wildcard|skeleton", c.Decomposition.Reducer)
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.TextfilePath == "" {
		return fmt.Errorf("config: metrics.textfile_path is required when metrics are enabled")
	}

	// Sinks
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}
	if c.Postgres.Enabled {
		if c.Postgres.Host == "" {
			return fmt.Errorf("config: postgres.host is required")
		}
		if c.Postgres.Port < 1 || c.Postgres.Port > 65535 {
			return fmt.Errorf("config: postgres.port %d is out of range [1, 65535]", c.Postgres.Port)
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("config: postgres.user is required")
		}
		if c.Postgres.DBName == "" {
			return fmt.Errorf("config: postgres.db_name is required")
		}
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required")
		}
	}
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required")
		}
	}

	return nil
}
