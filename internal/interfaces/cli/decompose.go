package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/fragvocab/internal/application/vocabulary"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

func newDecomposeCmd() *cobra.Command {
	var aromaticMode, markerMode string
	cmd := &cobra.Command{
		Use:   "decompose SMILES...",
		Short: "Show the clusters and fragments of molecules",
		Example: "  fragvocab decompose 'c1ccccc1-c1ccccc1'\n" +
			"  fragvocab decompose -o json CCO CC(=O)O",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			opts := &vocabulary.Options{
				AromaticMode: ftypes.AromaticMode(cliCtx.Config.Decomposition.AromaticMode),
				MarkerMode:   ftypes.MarkerMode(cliCtx.Config.Decomposition.MarkerMode),
			}
			if cmd.Flags().Changed("aromatic-mode") {
				opts.AromaticMode = ftypes.AromaticMode(aromaticMode)
			}
			if cmd.Flags().Changed("marker-mode") {
				opts.MarkerMode = ftypes.MarkerMode(markerMode)
			}

			svc := vocabulary.NewService(vocabulary.Deps{Logger: cliCtx.Logger.Named("decompose")})
			views := make(decompositionViews, 0, len(args))
			for _, smi := range args {
				dto, err := svc.Decompose(cmd.Context(), smi, opts)
				if err != nil {
					return err
				}
				views = append(views, dto)
			}
			return PrintResult(cmd, views)
		},
	}
	cmd.Flags().StringVar(&aromaticMode, "aromatic-mode", "", "preserve, kekulize or none")
	cmd.Flags().StringVar(&markerMode, "marker-mode", "", "hydrogen or wildcard")
	return cmd
}

type decompositionViews []*ftypes.DecompositionDTO

func (v decompositionViews) String() string {
	var sb strings.Builder
	for i, d := range v {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s  %s  atoms=%d bonds=%d rings=%d clusters=%d branch=%v\n",
			d.Canonical, d.Formula, d.NumAtoms, d.NumBonds, d.NumRings, len(d.Clusters), d.BranchAtoms)
		for _, c := range d.Clusters {
			out := c.Fragment
			if c.Error != "" {
				out = "error: " + c.Error
			}
			fmt.Fprintf(&sb, "  %-8s %-24v %s\n", c.Tag, c.Atoms, out)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (v decompositionViews) TableHeaders() []string {
	return []string{"Molecule", "Tag", "Atoms", "Fragment"}
}

func (v decompositionViews) TableRows() [][]string {
	var rows [][]string
	for _, d := range v {
		for _, c := range d.Clusters {
			atoms := make([]string, len(c.Atoms))
			for i, a := range c.Atoms {
				atoms[i] = strconv.Itoa(a)
			}
			out := c.Fragment
			if c.Error != "" {
				out = "error: " + c.Error
			}
			rows = append(rows, []string{d.SMILES, string(c.Tag), strings.Join(atoms, ","), out})
		}
	}
	return rows
}
