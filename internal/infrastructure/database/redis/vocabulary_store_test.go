package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

type VocabularyStoreTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *Client
	store  *VocabularyStore
}

func (s *VocabularyStoreTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	s.Require().NoError(err)
	s.client = client
	s.store = NewVocabularyStore(client, "test:", 2, nil)
}

func (s *VocabularyStoreTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func (s *VocabularyStoreTestSuite) TestPublish_Batches() {
	ctx := context.Background()
	items := []string{"CC", "CO", "c1ccccc1", "CN", "CC"}

	s.Require().NoError(s.store.Publish(ctx, "run-1", ftypes.VariantAromatic, items))

	members, err := s.mr.Members("test:vocab:aromatic")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"CC", "CO", "c1ccccc1", "CN"}, members)

	n, err := s.store.Size(ctx, ftypes.VariantAromatic)
	s.NoError(err)
	s.Equal(int64(4), n)

	s.Equal("5", s.mr.HGet("test:run:run-1", "aromatic"))
	s.NotEmpty(s.mr.HGet("test:run:run-1", "updated_at"))
}

func (s *VocabularyStoreTestSuite) TestPublish_IsIdempotent() {
	ctx := context.Background()
	s.Require().NoError(s.store.Publish(ctx, "r", ftypes.VariantReduced, []string{"C"}))
	s.Require().NoError(s.store.Publish(ctx, "r", ftypes.VariantReduced, []string{"C"}))

	members, err := s.mr.Members("test:vocab:reduced")
	s.NoError(err)
	s.Equal([]string{"C"}, members)
}

func (s *VocabularyStoreTestSuite) TestPublish_LogsSetTotal() {
	core, logs := observer.New(zap.InfoLevel)
	store := NewVocabularyStore(s.client, "test:", 10, logging.NewLoggerFromCore(core))
	ctx := context.Background()
	s.Require().NoError(store.Publish(ctx, "r1", ftypes.VariantAromatic, []string{"CC", "CO"}))
	s.Require().NoError(store.Publish(ctx, "r2", ftypes.VariantAromatic, []string{"CO", "CN"}))

	entries := logs.FilterMessage("vocabulary mirrored to redis").All()
	s.Require().Len(entries, 2)
	last := entries[1].ContextMap()
	s.Equal(int64(1), last["added"])
	s.Equal(int64(3), last["total"])
}

func (s *VocabularyStoreTestSuite) TestPublish_Empty() {
	s.NoError(s.store.Publish(context.Background(), "r", ftypes.VariantAromatic, nil))
	s.False(s.mr.Exists("test:vocab:aromatic"))
}

func (s *VocabularyStoreTestSuite) TestPublish_ClosedClient() {
	s.client.Close()
	err := s.store.Publish(context.Background(), "r", ftypes.VariantAromatic, []string{"C"})
	s.Equal(ErrClientClosed, err)
}

func TestVocabularyStoreTestSuite(t *testing.T) {
	suite.Run(t, new(VocabularyStoreTestSuite))
}

func TestVocabularyStore_Keys(t *testing.T) {
	store := NewVocabularyStore(&Client{}, "fv:", 0, nil)
	assert.Equal(t, "fv:vocab:aromatic", store.SetKey(ftypes.VariantAromatic))
	assert.Equal(t, "fv:run:abc", store.RunKey("abc"))
	assert.Equal(t, "redis", store.Name())
	assert.Equal(t, defaultBatchSize, store.batchSize)
}

func TestVocabularyStore_PublishServerGone(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewClient(&RedisConfig{Addr: mr.Addr(), MaxRetries: -1}, logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()
	store := NewVocabularyStore(client, "p:", 10, nil)

	mr.Close()

	err = store.Publish(context.Background(), "r", ftypes.VariantAromatic, []string{"C"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
}
