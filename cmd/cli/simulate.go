package main

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "prsboot/internal/errors"
	"prsboot/internal/testkit"
)

func newSimulateCmd() *cobra.Command {
	cohortConfig := testkit.DefaultCohortConfig()
	var outDir string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Write a synthetic cohort (key samples, ancestry, PRS) for trying out run",
		Long: `Generate a synthetic cohort whose ancestry proportion and PRS have a known
monotone association, and write it as tab-delimited files.

Example:
  prsboot simulate --out-dir demo --samples 500 --rho 0.3 --seed 7
  prsboot run --key-samples demo/key_samples.txt --prs-file demo/prs.txt \
    --ancestry-file demo/ancestry.txt --comparison-type pane`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				return apperrors.ValidationError("required flag not set: --out-dir")
			}

			cohort, err := testkit.NewCohortGenerator(cohortConfig).Generate()
			if err != nil {
				return apperrors.InvalidInput(err.Error())
			}
			files, err := cohort.WriteFiles(outDir)
			if err != nil {
				return apperrors.IOError("failed to write cohort", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d key samples (%d shared with ancestry and PRS files):\n", cohort.Key.RowCount(), cohort.Shared)
			fmt.Fprintf(out, "  %s\n  %s\n  %s\n", files.KeySamples, files.Ancestry, files.PRS)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory to write the cohort files into")
	cmd.Flags().IntVar(&cohortConfig.SampleCount, "samples", cohortConfig.SampleCount, "Number of key samples")
	cmd.Flags().Float64Var(&cohortConfig.Rho, "rho", cohortConfig.Rho, "Latent correlation between ancestry and PRS")
	cmd.Flags().Float64Var(&cohortConfig.Overlap, "overlap", cohortConfig.Overlap, "Share of key samples present in the ancestry file")
	cmd.Flags().Int64Var(&cohortConfig.Seed, "seed", cohortConfig.Seed, "Random seed")

	return cmd
}
