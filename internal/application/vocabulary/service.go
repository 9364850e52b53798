// Package vocabulary drives the fragment vocabulary build over a corpus:
// decompose every molecule, cut its clusters, collect the canonical fragments,
// reduce them, write the four output files and mirror the result to the
// configured sinks.
package vocabulary

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/fragvocab/internal/domain/fragment"
	"github.com/turtacn/fragvocab/internal/domain/molecule"
	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/fragvocab/internal/infrastructure/storage/file"
	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

// Service builds, reduces and inspects fragment vocabularies.
type Service interface {
	// Build runs the whole pipeline over a corpus file.
	Build(ctx context.Context, input *BuildInput) (*BuildResult, error)
	// Reduce applies the second-pass reducer to fragment SMILES.
	Reduce(ctx context.Context, items []string, reducer ftypes.Reducer) (*fragment.Vocabulary, error)
	// Decompose reports the clusters and fragments of a single molecule.
	Decompose(ctx context.Context, smiles string, opts *Options) (*ftypes.DecompositionDTO, error)
}

// Options are the per-molecule processing modes.
type Options struct {
	AromaticMode ftypes.AromaticMode
	MarkerMode   ftypes.MarkerMode
}

func (o *Options) withDefaults() Options {
	out := Options{AromaticMode: ftypes.AromaticPreserve, MarkerMode: ftypes.MarkerHydrogen}
	if o == nil {
		return out
	}
	if o.AromaticMode != "" {
		out.AromaticMode = o.AromaticMode
	}
	if o.MarkerMode != "" {
		out.MarkerMode = o.MarkerMode
	}
	return out
}

func (o Options) validate() error {
	if !o.AromaticMode.IsValid() {
		return errors.Newf(errors.ErrCodeValidation, "invalid aromatic mode %q", o.AromaticMode)
	}
	if !o.MarkerMode.IsValid() {
		return errors.Newf(errors.ErrCodeValidation, "invalid marker mode %q", o.MarkerMode)
	}
	return nil
}

// BuildInput describes one vocabulary build. Zero values fall back to the
// defaults of Options and to sequential processing.
type BuildInput struct {
	CorpusPath   string
	MaxMolecules int
	SkipInvalid  bool
	Concurrency  int
	Reducer      ftypes.Reducer
	Options
}

// BuildResult is the outcome of a build: both vocabularies, the run summary
// and the files written.
type BuildResult struct {
	Summary  ftypes.RunSummary
	Aromatic *fragment.Vocabulary
	Reduced  *fragment.Vocabulary
	Files    []string
}

// Deps are the collaborators of the service. Reader and Writer are required;
// everything else is optional.
type Deps struct {
	Reader   *file.CorpusReader
	Writer   *file.VocabularyWriter
	Sinks    []Sink
	Recorder RunRecorder
	Uploader ArtifactUploader
	Metrics  *prometheus.RunMetrics
	Logger   logging.Logger
}

type serviceImpl struct {
	reader   *file.CorpusReader
	writer   *file.VocabularyWriter
	sinks    []Sink
	recorder RunRecorder
	uploader ArtifactUploader
	metrics  *prometheus.RunMetrics
	logger   logging.Logger
}

// NewService returns a Service over deps. A nil logger or metrics set is
// replaced by a no-op one.
func NewService(deps Deps) Service {
	s := &serviceImpl{
		reader:   deps.Reader,
		writer:   deps.Writer,
		sinks:    deps.Sinks,
		recorder: deps.Recorder,
		uploader: deps.Uploader,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.metrics == nil {
		s.metrics = prometheus.NewRunMetrics(nil)
	}
	return s
}

func (s *serviceImpl) Build(ctx context.Context, input *BuildInput) (*BuildResult, error) {
	if input == nil {
		return nil, errors.New(errors.ErrCodeValidation, "build input is required")
	}
	if s.reader == nil || s.writer == nil {
		return nil, errors.New(errors.ErrCodeInternal, "corpus reader and vocabulary writer are required")
	}
	opts := input.Options.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	reducer := input.Reducer
	if reducer == "" {
		reducer = ftypes.ReducerWildcard
	}
	if !reducer.IsValid() {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid reducer %q", reducer)
	}

	start := time.Now()
	runID := uuid.NewString()
	log := s.logger.With(logging.String("run_id", runID))

	records, err := s.reader.ReadAll(ctx, input.CorpusPath, input.MaxMolecules)
	if err != nil {
		return nil, err
	}
	log.Info("corpus loaded",
		logging.String("path", input.CorpusPath),
		logging.Int("molecules", len(records)))

	results, err := s.processAll(ctx, records, input, opts, log)
	if err != nil {
		return nil, err
	}

	summary := ftypes.RunSummary{RunID: runID, Molecules: len(records)}
	aromatic := fragment.NewVocabulary()
	for _, r := range results {
		if r.skipped {
			summary.SkippedMolecules++
			continue
		}
		summary.Clusters += r.clusters
		summary.RingClusters += r.ringClusters
		summary.FragmentsCut += r.cut
		summary.CutFailures += r.failures
		aromatic.AddAll(r.fragments...)
	}
	log.Info("first pass complete", logging.Int("fragments", aromatic.Len()))

	reduced, err := s.Reduce(ctx, aromatic.Items(), reducer)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, v := range []struct {
		variant ftypes.Variant
		vocab   *fragment.Vocabulary
	}{{ftypes.VariantAromatic, aromatic}, {ftypes.VariantReduced, reduced}} {
		written, err := s.writer.Write(ctx, v.variant, v.vocab.Sorted())
		if err != nil {
			return nil, err
		}
		files = append(files, written...)
		s.metrics.SetVocabularySize(v.variant, v.vocab.Len())
	}

	summary.AromaticVocab = aromatic.Len()
	summary.ReducedVocab = reduced.Len()
	summary.Duration = time.Since(start)
	s.metrics.SetRunDuration(summary.Duration)

	result := &BuildResult{Summary: summary, Aromatic: aromatic, Reduced: reduced, Files: files}
	log.Info("vocabulary written", logging.Strings("files", files), logging.Duration("duration", summary.Duration))

	if err := s.publish(ctx, result, log); err != nil {
		return result, err
	}
	return result, nil
}

func (s *serviceImpl) Reduce(ctx context.Context, items []string, reducer ftypes.Reducer) (*fragment.Vocabulary, error) {
	var reduce func(*molecule.Molecule) *molecule.Molecule
	switch reducer {
	case ftypes.ReducerWildcard, "":
		reduce = fragment.RemoveAnyAtomBonds
	case ftypes.ReducerSkeleton:
		reduce = fragment.ToSingleBondSkeleton
	default:
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid reducer %q", reducer)
	}

	out := fragment.NewVocabulary()
	for _, smi := range items {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCancelled, "reduce cancelled")
		}
		m, err := molecule.ParseSMILES(smi, molecule.WithoutSanitize())
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeFragmentReduceFailed, "reparse fragment").WithDetail(smi)
		}
		out.Add(molecule.ToSMILES(reduce(m)))
	}
	return out, nil
}

func (s *serviceImpl) Decompose(ctx context.Context, smiles string, o *Options) (*ftypes.DecompositionDTO, error) {
	opts := o.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCancelled, "decompose cancelled")
	}

	m, err := molecule.ParseSMILES(smiles)
	if err != nil {
		return nil, err
	}
	h := molecule.AddHs(m)
	d := fragment.GetClusterAtoms(h)

	dto := &ftypes.DecompositionDTO{
		SMILES:      smiles,
		Canonical:   molecule.ToSMILES(m),
		Formula:     molecule.Formula(m),
		NumAtoms:    h.NumAtoms(),
		NumBonds:    h.NumBonds(),
		NumRings:    h.Rings().NumRings(),
		Clusters:    make([]ftypes.ClusterDTO, 0, len(d.Clusters)),
		BranchAtoms: d.BranchAtoms,
	}
	for _, c := range d.Clusters {
		cd := ftypes.ClusterDTO{Tag: c.Tag, Atoms: c.Atoms}
		smi, err := s.fragmentSMILES(h, c, opts)
		if err != nil {
			cd.Error = err.Error()
		} else {
			cd.Fragment = smi
		}
		dto.Clusters = append(dto.Clusters, cd)
	}
	return dto, nil
}

// fragmentSMILES cuts c out of m and returns the canonical fragment.
func (s *serviceImpl) fragmentSMILES(m *molecule.Molecule, c fragment.Cluster, opts Options) (string, error) {
	res := fragment.CreateSubstructure(m, c,
		fragment.WithMarkerMode(opts.MarkerMode),
		fragment.WithLogger(s.logger))
	if !res.OK() {
		return "", res.Err
	}
	frag, err := fragment.UpdateAromatic(res.Fragment, c.Tag, opts.AromaticMode, s.logger)
	if err != nil {
		s.logger.Warn("fragment aromatic update failed",
			logging.String("fragment", molecule.ToSMILES(res.Fragment)),
			logging.String("tag", string(c.Tag)),
			logging.Err(err))
		return "", err
	}
	return molecule.ToSMILES(frag), nil
}
