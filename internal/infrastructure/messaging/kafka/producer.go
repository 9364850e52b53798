package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "producer closed")

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers          []string
	Topic            string
	RequiredAcks     int
	MaxRetries       int
	BatchSize        int
	BatchTimeout     time.Duration
	WriteTimeout     time.Duration
	CompressionCodec string
}

// ProducerMetrics holds producer counters.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// Producer publishes one FragmentEvent per vocabulary entry.
type Producer struct {
	writer  WriterInterface
	config  ProducerConfig
	logger  logging.Logger
	closed  atomic.Bool
	metrics *ProducerMetrics
}

// NewProducer creates a Producer backed by a kafka.Writer.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	var compression kafka.Compression
	switch cfg.CompressionCodec {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  compression,
		Transport:    &kafka.Transport{DialTimeout: 10 * time.Second},
	}

	return NewProducerWithWriter(writer, cfg, logger), nil
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(w WriterInterface, cfg ProducerConfig, logger logging.Logger) *Producer {
	applyDefaults(&cfg)
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{writer: w, config: cfg, logger: logger, metrics: &ProducerMetrics{}}
}

func applyDefaults(cfg *ProducerConfig) {
	if cfg.Topic == "" {
		cfg.Topic = TopicFragments
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
}

func (p *Producer) Name() string { return "kafka" }

// Publish sends one event per item in writes of at most BatchSize messages.
func (p *Producer) Publish(ctx context.Context, runID string, variant ftypes.Variant, items []string) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	now := time.Now().UTC()
	for start := 0; start < len(items); start += p.config.BatchSize {
		end := start + p.config.BatchSize
		if end > len(items) {
			end = len(items)
		}
		msgs := make([]kafka.Message, 0, end-start)
		var size int64
		for _, smi := range items[start:end] {
			msg, err := NewFragmentMessage(p.config.Topic, ftypes.FragmentEvent{
				RunID: runID, Variant: variant, SMILES: smi, Timestamp: now,
			})
			if err != nil {
				return err
			}
			size += int64(len(msg.Value))
			msgs = append(msgs, msg)
		}
		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			p.metrics.MessagesFailed.Add(int64(len(msgs)))
			return errors.Wrap(err, errors.ErrCodeMessageQueueError, "publish failed").WithDetail(p.config.Topic)
		}
		p.metrics.MessagesSent.Add(int64(len(msgs)))
		p.metrics.BytesSent.Add(size)
	}

	p.logger.Info("fragment events published",
		logging.String("topic", p.config.Topic),
		logging.String("variant", string(variant)),
		logging.Int("events", len(items)))
	return nil
}

// GetMetrics returns a snapshot of the producer counters.
func (p *Producer) GetMetrics() (sent, failed, bytes int64) {
	return p.metrics.MessagesSent.Load(), p.metrics.MessagesFailed.Load(), p.metrics.BytesSent.Load()
}

// Close closes the producer.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "Brokers required")
	}
	if cfg.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "MaxRetries must be >= 0")
	}
	switch cfg.RequiredAcks {
	case -1, 0, 1:
	default:
		return errors.New(errors.ErrCodeValidation, "RequiredAcks must be -1, 0 or 1")
	}
	return nil
}
