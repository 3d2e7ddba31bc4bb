package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"prsboot/adapters/csvstore"
	"prsboot/app"
	"prsboot/domain/stats"
	"prsboot/internal"
	"prsboot/internal/config"
	"prsboot/internal/container"
	apperrors "prsboot/internal/errors"
)

type runOptions struct {
	keySamples     string
	prsFile        string
	ancestryFile   string
	comparisonType string
	ancestryColumn string
	nBoot          int
	seed           int64
	output         string
	replicatesOut  string
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bootstrap correlation for one PRS file",
		Long: `Run the bootstrap correlation between one PRS file and one ancestry column.

The ancestry column is chosen by comparison type: pane uses PANE_ANCESTRY_COLUMN
(default NL.AncEMA); supervised uses SUPERVISED_ANCESTRY_COLUMN, which has no
default. --ancestry-column overrides both.

Example:
  prsboot run --key-samples key_samples.txt --prs-file prs_file.txt \
    --ancestry-file ancestry_file.txt --comparison-type pane --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seedSet := cmd.Flags().Changed("seed")
			return runBootstrap(cmd, opts, seedSet)
		},
	}

	cmd.Flags().StringVar(&opts.keySamples, "key-samples", "", "Path to the key samples file")
	cmd.Flags().StringVar(&opts.prsFile, "prs-file", "", "Path to the PRS file")
	cmd.Flags().StringVar(&opts.ancestryFile, "ancestry-file", "", "Path to the ancestry file (PANE or supervised admixture)")
	cmd.Flags().StringVar(&opts.comparisonType, "comparison-type", "", "Type of comparison to run: "+stats.ComparisonNames())
	cmd.Flags().StringVar(&opts.ancestryColumn, "ancestry-column", "", "Ancestry column name, overriding the configured one")
	cmd.Flags().IntVar(&opts.nBoot, "n-boot", 0, "Number of bootstrap replicates (default BOOTSTRAP_ITERATIONS or 10000)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Random seed for reproducible replicates (default BOOTSTRAP_SEED or clock)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Results CSV to append to (default RESULTS_FILE or bootstrap_results.csv)")
	cmd.Flags().StringVar(&opts.replicatesOut, "replicates-out", "", "Write the bootstrap replicates to this .npy file")

	return cmd
}

func runBootstrap(cmd *cobra.Command, opts runOptions, seedSet bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := internal.DefaultLogger

	var missing []string
	for flag, v := range map[string]string{
		"--key-samples":     opts.keySamples,
		"--prs-file":        opts.prsFile,
		"--ancestry-file":   opts.ancestryFile,
		"--comparison-type": opts.comparisonType,
	} {
		if v == "" {
			missing = append(missing, flag)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return apperrors.ValidationError("required flags not set: " + strings.Join(missing, ", "))
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	comparison, err := stats.ParseComparisonType(opts.comparisonType)
	if err != nil {
		return err
	}
	if opts.nBoot < 0 {
		return apperrors.ValidationError("--n-boot must be positive")
	}

	deps, err := container.New(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Shutdown(ctx)

	output := cfg.Output.ResultsFile
	if opts.output != "" {
		output = opts.output
		deps.UseResultsFile(output)
	}
	if err := deps.Connect(ctx); err != nil {
		return err
	}

	svc := deps.BootstrapService(app.WithProgress(progressLogger(logger)))

	req := app.BootstrapRequest{
		KeySamplesPath: opts.keySamples,
		PRSPath:        opts.prsFile,
		AncestryPath:   opts.ancestryFile,
		ComparisonType: comparison,
		AncestryColumn: opts.ancestryColumn,
		Iterations:     opts.nBoot,
		Seed:           cfg.Bootstrap.Seed,
		SeedSet:        cfg.Bootstrap.SeedSet,
		ReplicatesPath: opts.replicatesOut,
	}
	if seedSet {
		req.Seed = opts.seed
		req.SeedSet = true
	}

	result, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}

	r := result.Record
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Spearman rho = %s, p = %s, 95%% CI %s, SE = %s (n = %d, %d replicates, seed %d)\n",
		csvstore.FormatFloat(r.SpearmanRho), csvstore.FormatFloat(r.PValue), csvstore.FormatInterval(r.CI),
		csvstore.FormatFloat(r.BootstrapSE), result.SampleSize, result.Iterations, result.Seed)
	fmt.Fprintln(out, result.Summary)
	fmt.Fprintf(out, "Processing complete. Results saved to '%s'.\n", output)
	return nil
}

// progressLogger reports every tenth of the run at DEBUG
func progressLogger(logger *internal.Logger) func(done, total int) {
	return func(done, total int) {
		if !logger.Enabled(internal.LogLevelDebug) {
			return
		}
		step := total / 10
		if step == 0 {
			step = 1
		}
		if done%step == 0 || done == total {
			logger.Debug("Bootstrapping: %d/%d", done, total)
		}
	}
}
