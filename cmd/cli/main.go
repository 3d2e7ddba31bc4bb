package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"prsboot/domain/core"
	"prsboot/internal"
	apperrors "prsboot/internal/errors"
)

// Exit codes
const (
	exitRuntimeError = 1
	exitUserError    = 2
)

func main() {
	// A missing .env is fine; the environment alone is enough
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "prsboot",
		Short: "Bootstrap Spearman correlation between polygenic risk scores and ancestry",
		Long: `prsboot joins a key-samples file, an ancestry file and a PRS file on the sample
ID, computes Spearman's rank correlation between the ancestry proportion and the
PRS, and estimates a 95% percentile interval and standard error by resampling.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				internal.DefaultLogger.SetLevel(internal.LogLevelDebug)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	rootCmd.AddCommand(
		newRunCmd(),
		newReportCmd(),
		newSimulateCmd(),
	)
	return rootCmd
}

// exitCode separates mistakes in arguments or input data from runtime failures
func exitCode(err error) int {
	if apperrors.IsUserError(err) || core.IsInputError(err) || errors.Is(err, errUsage) {
		return exitUserError
	}
	return exitRuntimeError
}

var errUsage = errors.New("usage error")
