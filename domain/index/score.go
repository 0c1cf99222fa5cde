package index

import (
	"math"
	"slices"
)

// Scoring constants.
const (
	NeutralScore       = 50.0
	priceSensitivity   = 150.0
	valueBaseline      = 10.0
	averageQualityNorm = 5.0
	positioningDepth   = 20.0
	positioningTopN    = 3
	weightPrice        = 0.40
	weightValue        = 0.35
	weightPositioning  = 0.25
	advantageThreshold = 70.0
	weaknessThreshold  = 30.0
	deepSetThreshold   = 20
	thinSetThreshold   = 5
)

// Median returns the middle value, averaging the two middle values for an
// even count. ok is false for an empty input.
func Median(prices []float64) (float64, bool) {
	if len(prices) == 0 {
		return 0, false
	}
	s := slices.Clone(prices)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid], true
	}
	return (s[mid-1] + s[mid]) / 2, true
}

// Mean returns the arithmetic mean. ok is false for an empty input.
func Mean(prices []float64) (float64, bool) {
	if len(prices) == 0 {
		return 0, false
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices)), true
}

// Percentile returns the share of prices at or below price, scaled 0-100.
func Percentile(price float64, prices []float64) float64 {
	if len(prices) == 0 {
		return NeutralScore
	}
	var atOrBelow int
	for _, p := range prices {
		if p <= price {
			atOrBelow++
		}
	}
	return Clamp100(float64(atOrBelow) / float64(len(prices)) * 100)
}

// PriceCompetitiveness scores the property price against the market
// reference price. Matching the market gives 50; cheaper raises the score.
func PriceCompetitiveness(price, marketPrice float64) float64 {
	if marketPrice <= 0 {
		return NeutralScore
	}
	return Clamp100(50 + ((marketPrice-price)/marketPrice)*priceSensitivity)
}

// QualityNorm converts a 0-1 quality score to 0-10, defaulting to the
// average of 5 when the property has no quality data.
func QualityNorm(quality float64, ok bool) float64 {
	if !ok {
		return averageQualityNorm
	}
	return math.Max(0, math.Min(10, quality*10))
}

// ValueScore relates quality to price. Quality 5 at the average price is 50.
func ValueScore(qualityNorm, price, avgPrice float64) float64 {
	if price <= 0 || avgPrice <= 0 {
		return NeutralScore
	}
	ratio := price / avgPrice
	return Clamp100(qualityNorm / ratio * valueBaseline)
}

// PositioningScore rewards a deep competitive set and close top matches.
// similarities must be ordered by rank.
func PositioningScore(competitorCount int, similarities []float64) float64 {
	depth := math.Min(float64(competitorCount)/positioningDepth, 1) * 50

	top := similarities
	if len(top) > positioningTopN {
		top = top[:positioningTopN]
	}
	var closeness float64
	if avg, ok := Mean(top); ok {
		closeness = avg * 50
	}
	return Clamp100(depth + closeness)
}

// OverallIndex combines the three component scores.
func OverallIndex(price, value, positioning float64) float64 {
	return Clamp100(weightPrice*price + weightValue*value + weightPositioning*positioning)
}

// Tag names attached to snapshots.
const (
	TagCompetitivePricing     = "competitive_pricing"
	TagStrongValue            = "strong_value"
	TagStrongPositioning      = "strong_positioning"
	TagDeepCompetitiveSet     = "deep_competitive_set"
	TagPremiumPricingPressure = "premium_pricing_pressure"
	TagWeakValue              = "weak_value"
	TagWeakPositioning        = "weak_positioning"
	TagThinCompetitiveSet     = "thin_competitive_set"
	TagPriceDataUnavailable   = "price_data_unavailable"
)

// Tags derives advantage and weakness tags from the component scores.
// Price-based tags are only produced when price data was available.
func Tags(price, value, positioning float64, competitors int, priceData bool) (advantages, weaknesses []string) {
	advantages = []string{}
	weaknesses = []string{}

	if priceData {
		if price >= advantageThreshold {
			advantages = append(advantages, TagCompetitivePricing)
		} else if price <= weaknessThreshold {
			weaknesses = append(weaknesses, TagPremiumPricingPressure)
		}
		if value >= advantageThreshold {
			advantages = append(advantages, TagStrongValue)
		} else if value <= weaknessThreshold {
			weaknesses = append(weaknesses, TagWeakValue)
		}
	} else {
		weaknesses = append(weaknesses, TagPriceDataUnavailable)
	}

	if positioning >= advantageThreshold {
		advantages = append(advantages, TagStrongPositioning)
	} else if positioning <= weaknessThreshold {
		weaknesses = append(weaknesses, TagWeakPositioning)
	}

	if competitors >= deepSetThreshold {
		advantages = append(advantages, TagDeepCompetitiveSet)
	} else if competitors < thinSetThreshold {
		weaknesses = append(weaknesses, TagThinCompetitiveSet)
	}
	return advantages, weaknesses
}

// Clamp100 limits v to [0,100], mapping NaN to 0.
func Clamp100(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// Round2 rounds v to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
