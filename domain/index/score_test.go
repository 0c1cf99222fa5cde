package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	m, ok := Median([]float64{150, 80, 110, 90, 120})
	assert.True(t, ok)
	assert.Equal(t, 110.0, m)

	m, ok = Median([]float64{4, 1, 3, 2})
	assert.True(t, ok)
	assert.Equal(t, 2.5, m)

	_, ok = Median(nil)
	assert.False(t, ok)
}

func TestMedian_DoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	_, _ = Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestPercentile_Inclusive(t *testing.T) {
	prices := []float64{80, 90, 110, 120, 150}

	assert.Equal(t, 40.0, Percentile(100, prices))
	assert.Equal(t, 60.0, Percentile(110, prices))
	assert.Equal(t, 0.0, Percentile(10, prices))
	assert.Equal(t, 100.0, Percentile(500, prices))
}

func TestPriceCompetitiveness(t *testing.T) {
	assert.InDelta(t, 63.64, PriceCompetitiveness(100, 110), 0.01)
	assert.Equal(t, 50.0, PriceCompetitiveness(110, 110))
	assert.Equal(t, 100.0, PriceCompetitiveness(10, 110))
	assert.Equal(t, 0.0, PriceCompetitiveness(500, 110))
	assert.Equal(t, NeutralScore, PriceCompetitiveness(100, 0))
}

func TestValueScore(t *testing.T) {
	assert.Equal(t, 50.0, ValueScore(5, 100, 100))
	assert.Equal(t, 100.0, ValueScore(10, 50, 100))
	assert.InDelta(t, 40.0, ValueScore(8, 200, 100), 1e-9)
	assert.Equal(t, NeutralScore, ValueScore(8, 0, 100))
}

func TestQualityNorm(t *testing.T) {
	assert.Equal(t, 5.0, QualityNorm(0, false))
	assert.InDelta(t, 8.0, QualityNorm(0.8, true), 1e-12)
}

func TestPositioningScore(t *testing.T) {
	assert.InDelta(t, 50+0.9*50, PositioningScore(25, []float64{1, 0.9, 0.8, 0.1}), 1e-9)
	assert.InDelta(t, 5.0/20*50+0.5*50, PositioningScore(5, []float64{0.6, 0.4}), 1e-9)
	assert.Equal(t, 0.0, PositioningScore(0, nil))
}

func TestOverallIndex_Bounds(t *testing.T) {
	assert.Equal(t, 100.0, OverallIndex(100, 100, 100))
	assert.Equal(t, 0.0, OverallIndex(0, 0, 0))
	assert.InDelta(t, 0.4*60+0.35*50+0.25*40, OverallIndex(60, 50, 40), 1e-9)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		percentile float64
		rating     float64
		hasRating  bool
		want       MarketPosition
	}{
		{95, 4.8, true, MarketUltraPremium},
		{95, 4.0, true, MarketPremium},
		{95, 0, false, MarketPremium},
		{65, 5, true, MarketPremium},
		{64.9, 5, true, MarketMid},
		{35, 3, true, MarketMid},
		{34.9, 3, true, MarketBudget},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.percentile, tt.rating, tt.hasRating), "%+v", tt)
	}
	assert.True(t, MarketMid.Valid())
	assert.False(t, MarketPosition("luxury").Valid())
}

func TestTags(t *testing.T) {
	adv, weak := Tags(75, 20, 71, 25, true)
	assert.Equal(t, []string{TagCompetitivePricing, TagStrongPositioning, TagDeepCompetitiveSet}, adv)
	assert.Equal(t, []string{TagWeakValue}, weak)

	adv, weak = Tags(50, 50, 10, 2, false)
	assert.Empty(t, adv)
	assert.Equal(t, []string{TagPriceDataUnavailable, TagWeakPositioning, TagThinCompetitiveSet}, weak)
}
