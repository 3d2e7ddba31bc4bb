package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prsboot/adapters/csvstore"
	"prsboot/internal/config"
	"prsboot/internal/report"
)

func newReportCmd() *cobra.Command {
	var input string
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the accumulated results table",
		Long: `Render the rows of the results CSV as a Markdown table, or as an HTML page with --html.

Example: prsboot report --input bootstrap_results.csv --html > results.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				input = cfg.Output.ResultsFile
			}

			records, err := csvstore.NewStore(input).List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asHTML {
				_, err = out.Write(report.HTML(records))
				return err
			}
			_, err = fmt.Fprint(out, report.Markdown(records))
			return err
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Results CSV to read (default RESULTS_FILE or bootstrap_results.csv)")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render a complete HTML page instead of Markdown")

	return cmd
}
