// Package report renders stored bootstrap results as Markdown or HTML
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"prsboot/domain/stats"
)

const title = "Bootstrap correlation results"

var columns = []string{"PRS file", "Ancestry", "Comparison", "Spearman ρ", "p-value", "Bootstrap 95% CI", "Bootstrap SE"}

// Markdown renders records as a Markdown document with one table row per record
func Markdown(records []stats.ResultRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(records) == 0 {
		b.WriteString("No results recorded yet.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d result(s).\n\n", len(records))
	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(columns)) + "\n")

	for _, r := range records {
		cells := []string{
			escape(r.PRSFile),
			escape(string(r.Ancestry)),
			escape(r.ComparisonType.Method()),
			fixed(r.SpearmanRho),
			general(r.PValue),
			"(" + fixed(r.CI.Lower) + ", " + fixed(r.CI.Upper) + ")",
			fixed(r.BootstrapSE),
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// HTML renders records as a complete HTML page
func HTML(records []stats.ResultRecord) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(Markdown(records)), p, renderer)
}

func fixed(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.4f", v)
}

func general(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.3g", v)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
