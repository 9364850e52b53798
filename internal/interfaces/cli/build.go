package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/turtacn/fragvocab/internal/application/vocabulary"
	"github.com/turtacn/fragvocab/internal/config"
	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

type buildOptions struct {
	corpus       string
	outDir       string
	formats      []string
	maxMolecules int
	skipInvalid  bool
	concurrency  int
	aromaticMode string
	markerMode   string
	reducer      string
	noSinks      bool
	migrate      bool
}

func newBuildCmd() *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the aromatic and reduced fragment vocabularies of a corpus",
		Long: "Reads one SMILES per line from the corpus, cuts every ring and acyclic-bond\n" +
			"cluster of every molecule and writes frag_with_aromatic.{json,csv} and\n" +
			"frag_reduced.{json,csv}. Enabled sinks receive both vocabularies afterwards.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.corpus, "corpus", "", "corpus file; overrides corpus.path")
	f.StringVar(&opts.outDir, "out-dir", "", "output directory; overrides output.dir")
	f.StringSliceVar(&opts.formats, "formats", nil, "output formats (json, csv); overrides output.formats")
	f.IntVar(&opts.maxMolecules, "max-molecules", 0, "stop after this many molecules (0 reads all)")
	f.BoolVar(&opts.skipInvalid, "skip-invalid", false, "skip molecules that fail to parse")
	f.IntVarP(&opts.concurrency, "concurrency", "j", 0, "molecule workers; overrides worker.concurrency")
	f.StringVar(&opts.aromaticMode, "aromatic-mode", "", "preserve, kekulize or none")
	f.StringVar(&opts.markerMode, "marker-mode", "", "hydrogen or wildcard")
	f.StringVar(&opts.reducer, "reducer", "", "wildcard or skeleton")
	f.BoolVar(&opts.noSinks, "no-sinks", false, "write local files only")
	f.BoolVar(&opts.migrate, "migrate", false, "apply pending migrations before mirroring to postgres")
	return cmd
}

// applyBuildFlags copies every flag the user set over cfg.
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config, opts *buildOptions) {
	f := cmd.Flags()
	if f.Changed("corpus") {
		cfg.Corpus.Path = opts.corpus
	}
	if f.Changed("out-dir") {
		cfg.Output.Dir = opts.outDir
	}
	if f.Changed("formats") {
		cfg.Output.Formats = opts.formats
	}
	if f.Changed("max-molecules") {
		cfg.Corpus.MaxMolecules = opts.maxMolecules
	}
	if f.Changed("skip-invalid") {
		cfg.Corpus.SkipInvalid = opts.skipInvalid
	}
	if f.Changed("concurrency") {
		cfg.Worker.Concurrency = opts.concurrency
	}
	if f.Changed("aromatic-mode") {
		cfg.Decomposition.AromaticMode = opts.aromaticMode
	}
	if f.Changed("marker-mode") {
		cfg.Decomposition.MarkerMode = opts.markerMode
	}
	if f.Changed("reducer") {
		cfg.Decomposition.Reducer = opts.reducer
	}
	if opts.noSinks {
		cfg.Redis.Enabled = false
		cfg.Postgres.Enabled = false
		cfg.Kafka.Enabled = false
		cfg.MinIO.Enabled = false
	}
}

func runBuild(cmd *cobra.Command, opts *buildOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := *cliCtx.Config
	applyBuildFlags(cmd, &cfg, opts)
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid build options")
	}
	log := cliCtx.Logger.Named("build")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := wireBuild(ctx, afero.NewOsFs(), &cfg, opts.migrate, log)
	if err != nil {
		return err
	}
	defer w.Close()

	svc := vocabulary.NewService(w.deps)
	res, buildErr := svc.Build(ctx, &vocabulary.BuildInput{
		CorpusPath:   cfg.Corpus.Path,
		MaxMolecules: cfg.Corpus.MaxMolecules,
		SkipInvalid:  cfg.Corpus.SkipInvalid,
		Concurrency:  cfg.Worker.Concurrency,
		Reducer:      ftypes.Reducer(cfg.Decomposition.Reducer),
		Options: vocabulary.Options{
			AromaticMode: ftypes.AromaticMode(cfg.Decomposition.AromaticMode),
			MarkerMode:   ftypes.MarkerMode(cfg.Decomposition.MarkerMode),
		},
	})

	if w.collector != nil {
		if err := w.collector.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			log.Warn("metrics textfile not written", logging.String("path", cfg.Metrics.TextfilePath), logging.Err(err))
		}
	}
	if res == nil {
		return buildErr
	}

	report := buildReport{Summary: res.Summary, Files: res.Files}
	if buildErr != nil {
		report.SinkError = buildErr.Error()
	}
	if err := PrintResult(cmd, report); err != nil {
		return err
	}
	if buildErr != nil {
		return buildErr
	}
	PrintSuccess(cmd, fmt.Sprintf("vocabularies written to %s", cfg.Output.Dir))
	return nil
}

// buildReport is the printable outcome of a build.
type buildReport struct {
	Summary   ftypes.RunSummary `json:"summary"`
	Files     []string          `json:"files"`
	SinkError string            `json:"sink_error,omitempty"`
}

func (r buildReport) String() string {
	var sb strings.Builder
	sb.WriteString(r.Summary.String())
	for _, f := range r.Files {
		sb.WriteString("\n  ")
		sb.WriteString(f)
	}
	if r.SinkError != "" {
		sb.WriteString("\nsink errors: ")
		sb.WriteString(r.SinkError)
	}
	return sb.String()
}

func (r buildReport) TableHeaders() []string { return []string{"Metric", "Value"} }

func (r buildReport) TableRows() [][]string {
	s := r.Summary
	rows := [][]string{
		{"run id", s.RunID},
		{"molecules", strconv.Itoa(s.Molecules)},
		{"skipped", strconv.Itoa(s.SkippedMolecules)},
		{"clusters", strconv.Itoa(s.Clusters)},
		{"ring clusters", strconv.Itoa(s.RingClusters)},
		{"fragments cut", strconv.Itoa(s.FragmentsCut)},
		{"cut failures", strconv.Itoa(s.CutFailures)},
		{"aromatic vocabulary", strconv.Itoa(s.AromaticVocab)},
		{"reduced vocabulary", strconv.Itoa(s.ReducedVocab)},
		{"duration", s.Duration.String()},
	}
	for _, f := range r.Files {
		rows = append(rows, []string{"file", f})
	}
	return rows
}
