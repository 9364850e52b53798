package repositories

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

const defaultBatchSize = 500

// ─────────────────────────────────────────────────────────────────────────────
// SQL
// ─────────────────────────────────────────────────────────────────────────────

const (
	insertFragmentsSQL = `
		INSERT INTO fragments (variant, smiles, first_run_id)
		SELECT $1, s, $3 FROM unnest($2::text[]) AS s
		ON CONFLICT (variant, smiles) DO NOTHING`

	upsertRunVariantSQL = `
		INSERT INTO run_variants (run_id, variant, size)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id, variant) DO UPDATE SET size = EXCLUDED.size`

	upsertRunSQL = `
		INSERT INTO vocabulary_runs (
			run_id, molecules, skipped_molecules, clusters, ring_clusters,
			fragments_cut, cut_failures, aromatic_vocab, reduced_vocab, duration_ms
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (run_id) DO UPDATE SET
			molecules = EXCLUDED.molecules,
			skipped_molecules = EXCLUDED.skipped_molecules,
			clusters = EXCLUDED.clusters,
			ring_clusters = EXCLUDED.ring_clusters,
			fragments_cut = EXCLUDED.fragments_cut,
			cut_failures = EXCLUDED.cut_failures,
			aromatic_vocab = EXCLUDED.aromatic_vocab,
			reduced_vocab = EXCLUDED.reduced_vocab,
			duration_ms = EXCLUDED.duration_ms`

	countFragmentsSQL = `SELECT COUNT(*) FROM fragments WHERE variant = $1`
)

// ─────────────────────────────────────────────────────────────────────────────
// VocabularyRepository
// ─────────────────────────────────────────────────────────────────────────────

// VocabularyRepository stores vocabularies in the fragments table, keyed by
// (variant, smiles), and run summaries in vocabulary_runs.
type VocabularyRepository struct {
	db        *sql.DB
	batchSize int
	logger    logging.Logger
}

// NewVocabularyRepository constructs a ready-to-use VocabularyRepository.
func NewVocabularyRepository(db *sql.DB, batchSize int, logger logging.Logger) *VocabularyRepository {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &VocabularyRepository{db: db, batchSize: batchSize, logger: logger}
}

func (r *VocabularyRepository) Name() string { return "postgres" }

// Publish inserts items for a variant in one transaction. Fragments already
// present keep the run that first produced them.
func (r *VocabularyRepository) Publish(ctx context.Context, runID string, variant ftypes.Variant, items []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeDatabaseError, "failed to begin transaction")
	}

	total, err := r.publishTx(ctx, tx, runID, variant, items)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Warn("rollback failed", logging.Err(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.CodeDatabaseError, "failed to commit vocabulary")
	}

	r.logger.Info("vocabulary mirrored to postgres",
		logging.String("run_id", runID),
		logging.String("variant", string(variant)),
		logging.Int("items", len(items)),
		logging.Int64("total", total))
	return nil
}

// publishTx inserts the batches and returns the variant's stored total.
func (r *VocabularyRepository) publishTx(ctx context.Context, q queryExecutor, runID string, variant ftypes.Variant, items []string) (int64, error) {
	for _, batch := range batches(items, r.batchSize) {
		if _, err := q.ExecContext(ctx, insertFragmentsSQL, string(variant), pq.Array(batch), runID); err != nil {
			return 0, appErrors.Wrap(err, appErrors.CodeDatabaseError, "failed to insert fragments")
		}
	}
	if _, err := q.ExecContext(ctx, upsertRunVariantSQL, runID, string(variant), len(items)); err != nil {
		return 0, appErrors.Wrap(err, appErrors.CodeDatabaseError, "failed to record run variant")
	}
	return count(ctx, q, variant)
}

// RecordRun stores or replaces the summary of a run.
func (r *VocabularyRepository) RecordRun(ctx context.Context, s ftypes.RunSummary) error {
	_, err := r.db.ExecContext(ctx, upsertRunSQL,
		s.RunID, s.Molecules, s.SkippedMolecules, s.Clusters, s.RingClusters,
		s.FragmentsCut, s.CutFailures, s.AromaticVocab, s.ReducedVocab, s.Duration.Milliseconds(),
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeDatabaseError, "failed to record run")
	}
	return nil
}

// count returns the number of stored fragments for a variant.
func count(ctx context.Context, q queryExecutor, variant ftypes.Variant) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx, countFragmentsSQL, string(variant)).Scan(&n); err != nil {
		return 0, appErrors.Wrap(err, appErrors.CodeDatabaseError, "failed to count fragments")
	}
	return n, nil
}
