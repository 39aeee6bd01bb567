package renderer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/rebalance/rebalance"
)

// reportRenderer formats per-account rebalance results into a markdown
// report, assembled via a strings.Builder.
type reportRenderer struct {
	*strings.Builder
}

func (r *reportRenderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}

// ReportMarkdown renders the given account results as markdown: one
// section per account giving its status, residual, proposed ticker values
// and diagnostics.
func ReportMarkdown(results []rebalance.AccountResult) string {
	r := &reportRenderer{Builder: &strings.Builder{}}
	for _, res := range results {
		r.renderAccount(res)
	}
	return r.String()
}

func (r *reportRenderer) renderAccount(res rebalance.AccountResult) {
	r.Printf("## %s\n\n", res.Account.String())
	r.Printf("Status: **%s** · Residual: %s\n\n", res.Status, res.Residual)

	ConditionalBlock(r.Builder, func(w io.Writer) bool {
		if len(res.Proposed) == 0 {
			return false
		}
		fmt.Fprintf(w, "| Ticker | Proposed |\n|:---|---:|\n")
		symbols := make([]string, 0, len(res.Proposed))
		for sym := range res.Proposed {
			symbols = append(symbols, sym)
		}
		sort.Strings(symbols)
		for _, sym := range symbols {
			fmt.Fprintf(w, "| %s | %s |\n", sym, res.Proposed[sym])
		}
		fmt.Fprintf(w, "\n")
		return true
	})

	ConditionalBlock(r.Builder, func(w io.Writer) bool {
		if len(res.Diagnostics) == 0 {
			return false
		}
		fmt.Fprintf(w, "### Diagnostics\n\n")
		for _, d := range res.Diagnostics {
			fmt.Fprintf(w, "- **%s** (%s): %s\n", d.Kind, d.Entity, d.Message)
		}
		fmt.Fprintf(w, "\n")
		return true
	})
}

// ReportANSI renders the same report for a terminal, using glamour's
// auto-detected style.
func ReportANSI(results []rebalance.AccountResult) (string, error) {
	return glamour.Render(ReportMarkdown(results), "auto")
}
