package cli

import (
	"context"
	"time"

	"github.com/spf13/afero"

	"github.com/turtacn/fragvocab/internal/application/vocabulary"
	"github.com/turtacn/fragvocab/internal/config"
	"github.com/turtacn/fragvocab/internal/infrastructure/database/postgres"
	"github.com/turtacn/fragvocab/internal/infrastructure/database/postgres/repositories"
	redisinfra "github.com/turtacn/fragvocab/internal/infrastructure/database/redis"
	kafkainfra "github.com/turtacn/fragvocab/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	prominfra "github.com/turtacn/fragvocab/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/fragvocab/internal/infrastructure/storage/file"
	minioinfra "github.com/turtacn/fragvocab/internal/infrastructure/storage/minio"
	"github.com/turtacn/fragvocab/pkg/errors"
)

const preflightTimeout = 5 * time.Second

// wiring holds the collaborators of one build and the resources to release
// once it is done.
type wiring struct {
	deps      vocabulary.Deps
	collector prominfra.MetricsCollector
	closers   []namedCloser
	checks    []namedCheck
	logger    logging.Logger
}

type namedCloser struct {
	name  string
	close func() error
}

type namedCheck struct {
	name  string
	check func(ctx context.Context) error
}

// preflight checks every wired sink once more before any molecule is read.
func (w *wiring) preflight(ctx context.Context) error {
	for _, c := range w.checks {
		cctx, cancel := context.WithTimeout(ctx, preflightTimeout)
		start := time.Now()
		err := c.check(cctx)
		cancel()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSinkFailed, c.name+" is not reachable")
		}
		w.logger.Debug("sink ready", logging.String("sink", c.name), logging.Duration("latency", time.Since(start)))
	}
	return nil
}

// Close releases every opened resource in reverse order.
func (w *wiring) Close() {
	for i := len(w.closers) - 1; i >= 0; i-- {
		c := w.closers[i]
		if err := c.close(); err != nil {
			w.logger.Warn("close failed", logging.String("resource", c.name), logging.Err(err))
		}
	}
}

func postgresConfig(cfg *config.Config) postgres.PostgresConfig {
	return postgres.PostgresConfig{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		Database:        cfg.Postgres.DBName,
		Username:        cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
}

// wireBuild connects every enabled sink. An enabled sink that cannot be
// reached fails the wiring and releases what was already opened.
func wireBuild(ctx context.Context, fs afero.Fs, cfg *config.Config, migrate bool, log logging.Logger) (*wiring, error) {
	w := &wiring{logger: log}
	fail := func(err error) (*wiring, error) {
		w.Close()
		return nil, err
	}

	w.deps = vocabulary.Deps{
		Reader: file.NewCorpusReader(fs, log.Named("corpus")),
		Writer: file.NewVocabularyWriter(fs, cfg.Output.Dir, cfg.Output.Formats, log.Named("writer")),
		Logger: log,
	}

	if cfg.Metrics.Enabled {
		collector, err := prominfra.NewMetricsCollector(prominfra.CollectorConfig{
			Namespace:       cfg.Metrics.Namespace,
			EnableGoMetrics: true,
		}, log)
		if err != nil {
			return fail(err)
		}
		w.collector = collector
		w.deps.Metrics = prominfra.NewRunMetrics(collector)
	}

	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(&redisinfra.RedisConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, log.Named("redis"))
		if err != nil {
			return fail(err)
		}
		w.closers = append(w.closers, namedCloser{"redis", client.Close})
		w.checks = append(w.checks, namedCheck{"redis", client.Ping})
		w.deps.Sinks = append(w.deps.Sinks,
			redisinfra.NewVocabularyStore(client, cfg.Redis.KeyPrefix, cfg.Redis.BatchSize, log.Named("redis")))
	}

	if cfg.Postgres.Enabled {
		conn, err := postgres.NewConnection(postgresConfig(cfg), log.Named("postgres"))
		if err != nil {
			return fail(err)
		}
		w.closers = append(w.closers, namedCloser{"postgres", conn.Close})
		w.checks = append(w.checks, namedCheck{"postgres", func(ctx context.Context) error {
			if err := conn.HealthCheck(ctx); err != nil {
				return err
			}
			st := conn.Stats()
			log.Debug("postgres pool", logging.Int("open", st.OpenConnections), logging.Int("idle", st.Idle))
			return nil
		}})
		if migrate {
			if err := conn.RunMigrations(cfg.Postgres.MigrationPath); err != nil {
				return fail(err)
			}
		}
		repo := repositories.NewVocabularyRepository(conn.DB(), cfg.Postgres.BatchSize, log.Named("postgres"))
		w.deps.Sinks = append(w.deps.Sinks, repo)
		w.deps.Recorder = repo
	}

	if cfg.Kafka.Enabled {
		producer, err := kafkainfra.NewProducer(kafkainfra.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			RequiredAcks: cfg.Kafka.RequiredAcks,
			BatchSize:    cfg.Kafka.BatchSize,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}, log.Named("kafka"))
		if err != nil {
			return fail(err)
		}
		w.closers = append(w.closers, namedCloser{"kafka", producer.Close})
		w.deps.Sinks = append(w.deps.Sinks, producer)
	}

	if cfg.MinIO.Enabled {
		client, err := minioinfra.NewMinIOClient(&minioinfra.MinIOConfig{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKey,
			SecretAccessKey: cfg.MinIO.SecretKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Bucket:          cfg.MinIO.Bucket,
			Prefix:          cfg.MinIO.Prefix,
		}, log.Named("minio"))
		if err != nil {
			return fail(err)
		}
		w.closers = append(w.closers, namedCloser{"minio", client.Close})
		w.checks = append(w.checks, namedCheck{"minio", func(ctx context.Context) error {
			status, err := client.HealthCheck(ctx)
			if err != nil {
				return err
			}
			if !status.Healthy {
				return errors.New(errors.ErrCodeExternalService, status.Error)
			}
			return nil
		}})
		w.deps.Uploader = minioinfra.NewArtifactStore(client, fs, log.Named("minio"))
	}

	if err := w.preflight(ctx); err != nil {
		return fail(err)
	}
	return w, nil
}
