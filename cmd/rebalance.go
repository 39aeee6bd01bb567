package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	portfolio "github.com/etnz/rebalance"
	"github.com/etnz/rebalance/date"
	"github.com/etnz/rebalance/rebalance"
	"github.com/etnz/rebalance/renderer"
	"github.com/google/subcommands"
)

// rebalanceCmd runs the engine over the portfolios loaded by ingestCmd
// and renders the per-account results.
type rebalanceCmd struct {
	ansi      bool
	json      bool
	fetchLive bool
}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "Rebalance every loaded portfolio." }
func (*rebalanceCmd) Usage() string {
	return `rebalance [-ansi] [-json] [-fetch-live]:
  Run the rebalance engine over the portfolios loaded by "ingest" and
  print the resulting report.
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.ansi, "ansi", false, "Render the report for a terminal instead of plain markdown")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON instead of markdown")
	f.BoolVar(&c.fetchLive, "fetch-live", false, "Fetch sp_today and inflation from their configured live sources before rebalancing")
}

func (c *rebalanceCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(loadedPortfolios) == 0 {
		fmt.Fprintln(os.Stderr, "No portfolios loaded; run \"ingest\" first.")
		return subcommands.ExitFailure
	}

	cfg := portfolio.LoadConfig()
	if c.fetchLive {
		fetchLiveReadings(&cfg)
	}
	engine := rebalance.NewEngine(loadedTickers, cfg, date.Today())

	var all []rebalance.AccountResult
	for _, p := range loadedPortfolios {
		all = append(all, engine.RunPortfolio(p)...)
	}
	cacheResults(all)

	if c.json {
		b, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error marshaling report:", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(b))
		return subcommands.ExitSuccess
	}

	if c.ansi {
		out, err := renderer.ReportANSI(all)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error rendering report:", err)
			return subcommands.ExitFailure
		}
		fmt.Println(out)
		return subcommands.ExitSuccess
	}

	fmt.Println(renderer.ReportMarkdown(all))
	return subcommands.ExitSuccess
}

// fetchLiveReadings overrides cfg's sp_today and inflation with live
// readings from the sources cfg.MarketLevelURL/InflationSeriesID name,
// falling back to the already-layered config values on fetch error.
func fetchLiveReadings(cfg *portfolio.Config) {
	if cfg.MarketLevelURL != "" {
		lvl, err := portfolio.FetchMarketLevel(cfg.MarketLevelURL, cfg.MarketLevelPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error fetching live market level, keeping configured sp_today:", err)
		} else {
			cfg.SPToday = lvl
		}
	}
	if cfg.InflationSeriesID != "" {
		rate, err := (portfolio.InflationSource{SeriesID: cfg.InflationSeriesID}).LatestAnnualRate()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error fetching live inflation rate, keeping configured inflation:", err)
		} else {
			cfg.Inflation = rate
		}
	}
}
