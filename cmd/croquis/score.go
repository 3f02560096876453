package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaz8081/croquis/internal/dataset"
)

func newScoreCmd(a *app) *cobra.Command {
	var (
		reference string
		worst     int
	)
	cmd := &cobra.Command{
		Use:   "score --reference <file> [dataset-dir]",
		Short: "Compute the word error rate of a dataset against reference transcripts",
		Long: "Score compares the dataset's metadata.txt with a reference file in the\n" +
			"same id|text format. The dataset defaults to <output_dir>/<dataset.name>.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dataset.Dir(a.cfg.OutputDir, a.cfg.Dataset.Name)
			if len(args) == 1 {
				dir = args[0]
			}
			sc, err := dataset.ScoreDir(dir, reference)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			t := sc.Total
			fmt.Fprintf(out, "scored:  %d clips (%d missing, %d without reference)\n", len(sc.Entries), len(sc.Missing), sc.Extra)
			fmt.Fprintf(out, "WER:     %.2f%% (%d sub, %d ins, %d del over %d words)\n",
				t.Rate()*100, t.Substitutions, t.Insertions, t.Deletions, t.RefWords)
			for _, id := range sc.Missing {
				fmt.Fprintf(out, "missing: %s\n", id)
			}
			for _, e := range sc.Worst(worst) {
				fmt.Fprintf(out, "%-20s %6.2f%%\n", e.ID, e.Rate()*100)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "reference id|text file")
	cmd.Flags().IntVar(&worst, "worst", 10, "list this many clips with the highest error rate")
	cmd.Flags().String("dataset", "", "dataset directory name under the output root")
	cmd.Flags().StringP("output", "o", "", "output root directory")
	bind(cmd.Flags(), "dataset", "dataset.name")
	bind(cmd.Flags(), "output", "output_dir")
	_ = cmd.MarkFlagRequired("reference")
	return cmd
}
