package vocabulary

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/fragvocab/internal/domain/fragment"
	"github.com/turtacn/fragvocab/internal/domain/molecule"
	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/internal/infrastructure/storage/file"
	"github.com/turtacn/fragvocab/pkg/errors"
)

// moleculeResult is the outcome of one corpus molecule.
type moleculeResult struct {
	skipped      bool
	clusters     int
	ringClusters int
	cut          int
	failures     int
	fragments    []string
}

// processAll handles every record and returns the results in input order.
// With concurrency above one the molecules are processed by a bounded pool;
// the caller merges the slots sequentially so the vocabulary order does not
// depend on scheduling.
func (s *serviceImpl) processAll(ctx context.Context, records []file.Record, input *BuildInput, opts Options, log logging.Logger) ([]moleculeResult, error) {
	results := make([]moleculeResult, len(records))

	if input.Concurrency <= 1 {
		for i, rec := range records {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeCancelled, "build cancelled")
			}
			r, err := s.processMolecule(rec, input.SkipInvalid, opts, log)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(input.Concurrency)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Wrap(err, errors.ErrCodeCancelled, "build cancelled")
			}
			r, err := s.processMolecule(rec, input.SkipInvalid, opts, log)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// processMolecule parses one record, adds explicit hydrogens and cuts every
// cluster. A parse failure aborts the build unless skipInvalid is set; a cut
// failure only drops that cluster.
func (s *serviceImpl) processMolecule(rec file.Record, skipInvalid bool, opts Options, log logging.Logger) (moleculeResult, error) {
	timer := s.metrics.MoleculeTimer()
	m, err := molecule.ParseSMILES(rec.SMILES)
	if err != nil {
		if skipInvalid {
			log.Warn("skipping invalid molecule",
				logging.Int("line", rec.Line),
				logging.String("smiles", rec.SMILES),
				logging.Err(err))
			s.metrics.RecordMolecule(true)
			return moleculeResult{skipped: true}, nil
		}
		return moleculeResult{}, errors.Wrap(err, errors.ErrCodeMoleculeParsingFailed, "corpus molecule").
			WithDetail(lineDetail(rec))
	}

	h := molecule.AddHs(m)
	d := fragment.GetClusterAtoms(h)

	res := moleculeResult{
		clusters:     len(d.Clusters),
		ringClusters: d.RingClusters(),
		fragments:    make([]string, 0, len(d.Clusters)),
	}
	for _, c := range d.Clusters {
		smi, err := s.fragmentSMILES(h, c, opts)
		s.metrics.RecordCluster(c.Tag, err == nil)
		if err != nil {
			res.failures++
			continue
		}
		res.cut++
		res.fragments = append(res.fragments, smi)
	}
	timer.ObserveDuration()
	s.metrics.RecordMolecule(false)
	return res, nil
}

func lineDetail(rec file.Record) string {
	return fmt.Sprintf("line %d: %s", rec.Line, rec.SMILES)
}
