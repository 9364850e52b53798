package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/turtacn/fragvocab/internal/application/vocabulary"
	"github.com/turtacn/fragvocab/internal/infrastructure/storage/file"
	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

// newReduceCmd re-runs the second pass over an existing aromatic vocabulary.
func newReduceCmd() *cobra.Command {
	var in, outDir, reducer string
	var formats []string
	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Rebuild the reduced vocabulary from a JSON aromatic vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if !cmd.Flags().Changed("out-dir") {
				outDir = cfg.Output.Dir
			}
			if !cmd.Flags().Changed("formats") {
				formats = cfg.Output.Formats
			}
			if !cmd.Flags().Changed("reducer") {
				reducer = cfg.Decomposition.Reducer
			}
			if in == "" {
				in = filepath.Join(cfg.Output.Dir, ftypes.VariantAromatic.BaseName()+"."+file.FormatJSON)
			}

			log := cliCtx.Logger.Named("reduce")
			fs := afero.NewOsFs()
			items, err := file.ReadVocabulary(fs, in)
			if err != nil {
				return err
			}

			svc := vocabulary.NewService(vocabulary.Deps{Logger: log})
			reduced, err := svc.Reduce(cmd.Context(), items, ftypes.Reducer(reducer))
			if err != nil {
				return err
			}

			writer := file.NewVocabularyWriter(fs, outDir, formats, log)
			files, err := writer.Write(cmd.Context(), ftypes.VariantReduced, reduced.Sorted())
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeVocabularyWriteFailed, "write reduced vocabulary")
			}
			return PrintResult(cmd, reduceReport{Input: len(items), Reduced: reduced.Len(), Files: files})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in, "in", "", "aromatic vocabulary JSON (default: <output.dir>/frag_with_aromatic.json)")
	f.StringVar(&outDir, "out-dir", "", "output directory; overrides output.dir")
	f.StringSliceVar(&formats, "formats", nil, "output formats (json, csv)")
	f.StringVar(&reducer, "reducer", "", "wildcard or skeleton")
	return cmd
}

type reduceReport struct {
	Input   int      `json:"input"`
	Reduced int      `json:"reduced"`
	Files   []string `json:"files"`
}

func (r reduceReport) String() string {
	return fmt.Sprintf("%d fragments reduced to %d\n  %s", r.Input, r.Reduced, strings.Join(r.Files, "\n  "))
}
