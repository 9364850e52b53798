package vocabulary

import (
	"context"
	stderrors "errors"

	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/internal/infrastructure/storage/minio"
	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

// Sink receives every vocabulary of a run once the local files exist.
type Sink interface {
	Name() string
	Publish(ctx context.Context, runID string, variant ftypes.Variant, items []string) error
}

// RunRecorder stores the summary of a run.
type RunRecorder interface {
	RecordRun(ctx context.Context, summary ftypes.RunSummary) error
}

// ArtifactUploader copies the written files of a run to remote storage.
type ArtifactUploader interface {
	Name() string
	Upload(ctx context.Context, runID string, paths []string) ([]minio.UploadResult, error)
}

// publish fans the result out to every sink. All sinks run even when one
// fails; the failures are joined into the returned error.
func (s *serviceImpl) publish(ctx context.Context, result *BuildResult, log logging.Logger) error {
	var errs []error
	runID := result.Summary.RunID

	for _, sink := range s.sinks {
		var err error
		for _, v := range []struct {
			variant ftypes.Variant
			items   []string
		}{
			{ftypes.VariantAromatic, result.Aromatic.Sorted()},
			{ftypes.VariantReduced, result.Reduced.Sorted()},
		} {
			if err = sink.Publish(ctx, runID, v.variant, v.items); err != nil {
				break
			}
		}
		s.metrics.RecordSink(sink.Name(), err)
		if err != nil {
			log.Error("sink publish failed", logging.String("sink", sink.Name()), logging.Err(err))
			errs = append(errs, errors.Wrap(err, errors.ErrCodeSinkFailed, "sink "+sink.Name()))
		}
	}

	if s.recorder != nil {
		if err := s.recorder.RecordRun(ctx, result.Summary); err != nil {
			log.Error("run summary not recorded", logging.Err(err))
			errs = append(errs, errors.Wrap(err, errors.ErrCodeSinkFailed, "record run"))
		}
	}

	if s.uploader != nil {
		uploaded, err := s.uploader.Upload(ctx, runID, result.Files)
		s.metrics.RecordSink(s.uploader.Name(), err)
		if err != nil {
			log.Error("artifact upload failed",
				logging.String("sink", s.uploader.Name()),
				logging.Int("uploaded", len(uploaded)),
				logging.Err(err))
			errs = append(errs, errors.Wrap(err, errors.ErrCodeSinkFailed, "sink "+s.uploader.Name()))
		}
	}

	return stderrors.Join(errs...)
}
