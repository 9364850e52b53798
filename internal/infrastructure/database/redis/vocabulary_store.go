package redis

import (
	"context"
	"time"

	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

const defaultBatchSize = 1000

// VocabularyStore mirrors vocabularies into Redis sets, one set per variant,
// and records per-run sizes in a hash.
type VocabularyStore struct {
	client    *Client
	prefix    string
	batchSize int
	logger    logging.Logger
}

func NewVocabularyStore(client *Client, prefix string, batchSize int, log logging.Logger) *VocabularyStore {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &VocabularyStore{client: client, prefix: prefix, batchSize: batchSize, logger: log}
}

func (s *VocabularyStore) Name() string { return "redis" }

// SetKey returns the set holding a variant.
func (s *VocabularyStore) SetKey(variant ftypes.Variant) string {
	return s.prefix + "vocab:" + string(variant)
}

// RunKey returns the hash describing a run.
func (s *VocabularyStore) RunKey(runID string) string {
	return s.prefix + "run:" + runID
}

// Publish adds items to the variant set with pipelined SADD batches and
// records the variant size of the run.
func (s *VocabularyStore) Publish(ctx context.Context, runID string, variant ftypes.Variant, items []string) error {
	if s.client.isClosed() {
		return ErrClientClosed
	}
	key := s.SetKey(variant)
	var added int64
	for start := 0; start < len(items); start += s.batchSize {
		end := start + s.batchSize
		if end > len(items) {
			end = len(items)
		}
		members := make([]interface{}, 0, end-start)
		for _, it := range items[start:end] {
			members = append(members, it)
		}
		pipe := s.client.Pipeline()
		cmd := pipe.SAdd(ctx, key, members...)
		if _, err := pipe.Exec(ctx); err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "sadd vocabulary batch").WithDetail(key)
		}
		added += cmd.Val()
	}

	runKey := s.RunKey(runID)
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, runKey, string(variant), len(items), "updated_at", time.Now().UTC().Format(time.RFC3339))
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "record run").WithDetail(runKey)
	}

	total, err := s.Size(ctx, variant)
	if err != nil {
		return err
	}
	s.logger.Info("vocabulary mirrored to redis",
		logging.String("key", key),
		logging.Int("items", len(items)),
		logging.Int64("added", added),
		logging.Int64("total", total))
	return nil
}

// Size returns the number of fragments stored for a variant.
func (s *VocabularyStore) Size(ctx context.Context, variant ftypes.Variant) (int64, error) {
	n, err := s.client.SCard(ctx, s.SetKey(variant)).Result()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeCacheError, "scard vocabulary")
	}
	return n, nil
}
