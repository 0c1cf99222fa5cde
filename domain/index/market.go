// Package index computes and stores the daily neighborhood competitive index.
package index

// MarketPosition classifies a property by price percentile and rating.
type MarketPosition string

// MarketPosition values.
const (
	MarketBudget       MarketPosition = "budget"
	MarketMid          MarketPosition = "mid-market"
	MarketPremium      MarketPosition = "premium"
	MarketUltraPremium MarketPosition = "ultra-premium"
)

// Classification thresholds.
const (
	UltraPremiumPercentile = 90.0
	UltraPremiumRating     = 4.5
	PremiumPercentile      = 65.0
	MidMarketPercentile    = 35.0
)

// Classify maps a price percentile and 0-5 rating onto a market position.
// A top-decile price without the rating to back it is premium.
func Classify(percentile float64, rating float64, hasRating bool) MarketPosition {
	switch {
	case percentile >= UltraPremiumPercentile && hasRating && rating >= UltraPremiumRating:
		return MarketUltraPremium
	case percentile >= PremiumPercentile:
		return MarketPremium
	case percentile >= MidMarketPercentile:
		return MarketMid
	default:
		return MarketBudget
	}
}

// Valid reports whether m is a known position.
func (m MarketPosition) Valid() bool {
	switch m {
	case MarketBudget, MarketMid, MarketPremium, MarketUltraPremium:
		return true
	}
	return false
}
