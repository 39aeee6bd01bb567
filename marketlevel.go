package portfolio

import (
	"fmt"
	"math"
	"net/http"

	"github.com/PaesslerAG/jsonpath"
)

// MarketLevelSource fetches the S&P 500 level from a JSON HTTP endpoint
// using a jsonpath expression (httputil.go's jwget, extracting a scalar
// out of an arbitrarily nested JSON blob via
// github.com/PaesslerAG/jsonpath). This is an external collaborator: the
// engine never calls it directly. "rebalance -fetch-live"
// (cmd/rebalance.go) calls FetchMarketLevel once per run, when
// Config.MarketLevelURL is set, and overrides Config.SPToday with the
// result before constructing the engine; SPHigh/SPClose stay
// config-file-only values, since the engine only ever needs a live
// reading for "today".
type MarketLevelSource struct {
	Addr string
	Path string

	client *http.Client
}

// NewMarketLevelSource builds a source against addr, extracting the
// scalar value at the given jsonpath expression.
func NewMarketLevelSource(addr, path string) *MarketLevelSource {
	return &MarketLevelSource{Addr: addr, Path: path, client: daily()}
}

// Fetch retrieves and extracts the current market level.
func (s *MarketLevelSource) Fetch() (float64, error) {
	var jobj any
	if err := jwget(s.client, s.Addr, &jobj); err != nil {
		return math.NaN(), fmt.Errorf("error fetching market level from %q: %w", s.Addr, err)
	}
	jval, err := jsonpath.Get(s.Path, jobj)
	if err != nil {
		return math.NaN(), fmt.Errorf("error evaluating jsonpath %q: %w", s.Path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a bare scalar; keep the first element if it returned a list.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return math.NaN(), fmt.Errorf("jsonpath %q did not resolve to a number: %v", s.Path, jval)
	}
	return val, nil
}

// FetchMarketLevel is a convenience wrapper returning a MarketLevel
// ready to assign to Config.SPToday/SPHigh/SPClose.
func FetchMarketLevel(addr, path string) (MarketLevel, error) {
	v, err := (&MarketLevelSource{Addr: addr, Path: path, client: daily()}).Fetch()
	if err != nil {
		return MarketLevel{}, err
	}
	return SetMarketLevel(v), nil
}
