package cmd

import (
	"strings"

	portfolio "github.com/etnz/rebalance"
	"github.com/etnz/rebalance/rebalance"
)

// As a CLI application, it has a very short lived lifecycle, so it is ok
// to use global variables to pass state between subcommands invoked in
// the same process (e.g. ingest -> rebalance -> assist/narrate).

var (
	loadedPortfolios []portfolio.Portfolio
	loadedTickers    map[string]portfolio.Ticker
	lastResults      map[portfolio.AccountKey]rebalance.AccountResult
)

// cacheResults records the outcome of the most recent engine run so the
// narrate/assist subcommands can explain it.
func cacheResults(results []rebalance.AccountResult) {
	lastResults = make(map[portfolio.AccountKey]rebalance.AccountResult, len(results))
	for _, r := range results {
		lastResults[r.Account] = r
	}
}

// lookupResult implements agent.AccountResultLookup over the cached
// results, keyed by an "institution/number" string.
func lookupResult(key string) (rebalance.AccountResult, bool) {
	inst, num, found := strings.Cut(key, "/")
	if !found {
		return rebalance.AccountResult{}, false
	}
	r, ok := lastResults[portfolio.AccountKey{Institution: inst, Number: num}]
	return r, ok
}
