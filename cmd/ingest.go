package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	portfolio "github.com/etnz/rebalance"
	"github.com/etnz/rebalance/loader"
	"github.com/google/subcommands"
)

// ingestCmd loads the CSV input kinds from a data folder and assembles them
// into complete in-memory portfolios, ready for rebalanceCmd.
type ingestCmd struct {
	dataPath string
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "Load portfolios, accounts and holdings from CSV." }
func (*ingestCmd) Usage() string {
	return `ingest [-data-path dir]:
  Load the portfolios, accounts, holdings, overrides and tickers CSV
  files from dir and hold them ready for the rebalance command.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dataPath, "data-path", ".", "Path to the folder containing the CSV input files")
}

func (c *ingestCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tickers, tickerDiags, err := loadCSV(c.dataPath, "tickers.csv", loader.LoadTickers)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading tickers:", err)
		return subcommands.ExitFailure
	}
	holdings, holdingDiags, err := loadCSV(c.dataPath, "holdings.csv", loader.LoadHoldings)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading holdings:", err)
		return subcommands.ExitFailure
	}
	accounts, accountDiags, err := loadCSV(c.dataPath, "accounts.csv", loader.LoadAccounts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading accounts:", err)
		return subcommands.ExitFailure
	}
	overrides, overrideDiags, err := loadCSV(c.dataPath, "overrides.csv", loader.LoadOverrides)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading overrides:", err)
		return subcommands.ExitFailure
	}
	portfolios, portfolioDiags, err := loadCSV(c.dataPath, "portfolios.csv", loader.LoadPortfolios)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading portfolios:", err)
		return subcommands.ExitFailure
	}

	assembled, assembleDiags := loader.Assemble(portfolios, accounts, holdings, overrides)

	loadedTickers = tickers
	loadedPortfolios = assembled

	for _, diags := range [][]portfolio.Diagnostic{tickerDiags, holdingDiags, accountDiags, overrideDiags, portfolioDiags, assembleDiags} {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.Error())
		}
	}
	fmt.Printf("Loaded %d ticker(s) and %d portfolio(s)\n", len(loadedTickers), len(loadedPortfolios))
	return subcommands.ExitSuccess
}

// loadCSV opens name under dir and hands it to load, the shared shape of
// every loader.Load* function.
func loadCSV[T any](dir, name string, load func(r io.Reader) (T, []portfolio.Diagnostic, error)) (T, []portfolio.Diagnostic, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		var zero T
		return zero, nil, err
	}
	defer f.Close()
	return load(f)
}
