package minio

import (
	"bytes"
	"context"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"

	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/pkg/errors"
)

// UploadResult describes one stored artifact.
type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

// ArtifactStore uploads the vocabulary files of a run under
// <prefix><run_id>/<file name>.
type ArtifactStore struct {
	client *MinIOClient
	fs     afero.Fs
	logger logging.Logger
}

func NewArtifactStore(client *MinIOClient, fs afero.Fs, log logging.Logger) *ArtifactStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ArtifactStore{client: client, fs: fs, logger: log}
}

func (s *ArtifactStore) Name() string { return "minio" }

// ObjectKey returns the key of a local file for a run.
func (s *ArtifactStore) ObjectKey(runID, localPath string) string {
	return s.runPrefix(runID) + filepath.Base(localPath)
}

func (s *ArtifactStore) runPrefix(runID string) string {
	prefix := s.client.config.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return path.Join(prefix, runID) + "/"
}

// Upload stores every file in paths. It stops at the first failure.
func (s *ArtifactStore) Upload(ctx context.Context, runID string, paths []string) ([]UploadResult, error) {
	if s.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	results := make([]UploadResult, 0, len(paths))
	for _, p := range paths {
		data, err := afero.ReadFile(s.fs, p)
		if err != nil {
			return results, errors.Wrap(err, errors.ErrCodeStorageError, "read artifact").WithDetail(p)
		}
		key := s.ObjectKey(runID, p)
		opts := minio.PutObjectOptions{
			ContentType:  contentType(p),
			UserMetadata: map[string]string{"run-id": runID},
		}
		info, err := s.client.GetClient().PutObject(ctx, s.client.Bucket(), key, bytes.NewReader(data), int64(len(data)), opts)
		if err != nil {
			return results, errors.Wrap(err, errors.ErrCodeStorageError, "upload failed").WithDetail(key)
		}
		results = append(results, UploadResult{
			Bucket:     s.client.Bucket(),
			ObjectKey:  key,
			ETag:       info.ETag,
			Size:       info.Size,
			UploadedAt: time.Now(),
		})
		s.logger.Debug("artifact uploaded", logging.String("key", key), logging.Int("bytes", len(data)))
	}
	s.logger.Info("artifacts uploaded to minio",
		logging.String("run_id", runID),
		logging.Int("objects", len(results)))
	return results, nil
}

// List returns the keys stored for a run.
func (s *ArtifactStore) List(ctx context.Context, runID string) ([]string, error) {
	var keys []string
	opts := minio.ListObjectsOptions{Prefix: s.runPrefix(runID), Recursive: true}
	for obj := range s.client.GetClient().ListObjects(ctx, s.client.Bucket(), opts) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorageError, "list artifacts")
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// Exists reports whether an object key is present.
func (s *ArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.GetClient().StatObject(ctx, s.client.Bucket(), key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeStorageError, "stat artifact")
	}
	return true, nil
}

// Delete removes every object of a run.
func (s *ArtifactStore) Delete(ctx context.Context, runID string) error {
	keys, err := s.List(ctx, runID)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.client.GetClient().RemoveObject(ctx, s.client.Bucket(), k, minio.RemoveObjectOptions{}); err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, "remove artifact").WithDetail(k)
		}
	}
	return nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
