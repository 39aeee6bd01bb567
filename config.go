package portfolio

import "github.com/spf13/viper"

// Config is the immutable tuning-parameter set read once at engine
// construction. LoadConfig fills it through viper's Get* accessors.
type Config struct {
	// NCnt caps the number of subsets the ticker-set allocator examines per
	// leaf.
	NCnt int
	// MXRt caps the depth below which a rebalance node performs more than one
	// allocation iteration.
	MXRt int

	// Inflation is the annual inflation rate used by the No-CPI-Annuity
	// synthesizer.
	Inflation Percent

	// SPHigh, SPClose and SPToday are the market-level tuning inputs gating the
	// equity adjustment overlays. Unset (IsSet=false) means the corresponding
	// overlay does not apply.
	SPHigh  MarketLevel
	SPClose MarketLevel
	SPToday MarketLevel

	// MarketLevelURL and MarketLevelPath locate a live index-level quote for
	// "rebalance -fetch-live": an HTTP endpoint and the jsonpath expression
	// extracting the scalar level out of its response. Empty disables the
	// live fetch; SPToday then keeps whatever LoadConfig resolved.
	MarketLevelURL  string
	MarketLevelPath string

	// InflationSeriesID is the INSEE idbank "rebalance -fetch-live" resolves
	// a live year-over-year inflation rate from, overriding Inflation. Empty
	// disables the live fetch.
	InflationSeriesID string
}

// MarketLevel is an optional non-negative market reading: either a tuning
// parameter (sp_high, sp_close, sp_today) is set, or it is absent and the
// overlay it gates is skipped.
type MarketLevel struct {
	Value float64
	IsSet bool
}

func SetMarketLevel(v float64) MarketLevel { return MarketLevel{Value: v, IsSet: true} }

// LoadConfig registers defaults for ncnt, mxrt and inflation and reads the
// tuning parameters from viper. Nothing in this repository binds a config
// file, environment variables or command-line flags to viper, so unless the
// caller has set viper up, the defaults apply and the sp_* readings and the
// live-fetch settings stay unset.
func LoadConfig() Config {
	viper.SetDefault("ncnt", 5000)
	viper.SetDefault("mxrt", 3)
	viper.SetDefault("inflation", Percent(0))

	cfg := Config{
		NCnt:              viper.GetInt("ncnt"),
		MXRt:              viper.GetInt("mxrt"),
		Inflation:         Percent(viper.GetFloat64("inflation")),
		MarketLevelURL:    viper.GetString("market_level_url"),
		MarketLevelPath:   viper.GetString("market_level_path"),
		InflationSeriesID: viper.GetString("inflation_series_id"),
	}
	if viper.IsSet("sp_high") {
		cfg.SPHigh = SetMarketLevel(viper.GetFloat64("sp_high"))
	}
	if viper.IsSet("sp_close") {
		cfg.SPClose = SetMarketLevel(viper.GetFloat64("sp_close"))
	}
	if viper.IsSet("sp_today") {
		cfg.SPToday = SetMarketLevel(viper.GetFloat64("sp_today"))
	}
	return cfg
}

// CloseAdjustActive reports whether the today-vs-lastClose equity adjustment
// overlay applies.
func (c Config) CloseAdjustActive() bool { return c.SPToday.IsSet && c.SPClose.IsSet }

// HighAdjustActive reports whether the today-vs-high hyperbolic overlay
// applies; it additionally requires the portfolio to declare an
// increase-at-zero.
func (c Config) HighAdjustActive(p Portfolio) bool {
	return c.SPToday.IsSet && c.SPHigh.IsSet && p.HasIncreaseAtZero()
}
