// Package portfolio provides the data model and supporting types for the
// portfolio rebalancing system: portfolios, institutions, accounts,
// tickers and holdings, along with the opaque fixed-point Money, Quantity
// and Percent types used throughout.
//
// The rebalancing algorithm itself — the category tree, weight resolver,
// market adjuster, rebalance node, ticker set allocator, closure pass and
// synthesiser — lives in the rebalance subpackage and consumes the types
// defined here. This package never performs I/O; CSV ingestion lives in
// loader, market data fetches in marketlevel.go and inflation.go, and the
// CLI in cmd.
package portfolio
