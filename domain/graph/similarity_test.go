package graph

import (
	"math"
	"testing"

	"github.com/helixml/compset/domain/errs"
	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestGeoSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, GeoSimilarity(0, 10))
	assert.InDelta(t, math.Exp(-3), GeoSimilarity(10, 10), 1e-12)
	assert.InDelta(t, 0.0498, GeoSimilarity(10, 10), 1e-4)

	prev := GeoSimilarity(0, 10)
	for d := 0.5; d <= 15; d += 0.5 {
		cur := GeoSimilarity(d, 10)
		assert.Less(t, cur, prev, "distance %v", d)
		prev = cur
	}

	assert.Equal(t, 0.0, GeoSimilarity(1, 0))
}

func TestAmenitySimilarity(t *testing.T) {
	a := []float64{0.6, 0.8, 0}
	b := []float64{0, 1, 0}
	zero := []float64{0, 0, 0}

	assert.InDelta(t, 1.0, AmenitySimilarity(a, a), 1e-12)
	assert.Equal(t, AmenitySimilarity(a, b), AmenitySimilarity(b, a))
	assert.InDelta(t, 0.8, AmenitySimilarity(a, b), 1e-12)
	assert.Equal(t, 0.0, AmenitySimilarity(a, zero))
	assert.Equal(t, 0.0, AmenitySimilarity(zero, zero))
	assert.Equal(t, 0.0, AmenitySimilarity(a, []float64{1}))
}

func TestQualityScore(t *testing.T) {
	q, ok := QualityScore(ptr(4), ptr(8))
	assert.True(t, ok)
	assert.InDelta(t, 0.8, q, 1e-12)

	q, ok = QualityScore(nil, ptr(7))
	assert.True(t, ok)
	assert.InDelta(t, 0.7, q, 1e-12)

	_, ok = QualityScore(nil, nil)
	assert.False(t, ok)
}

func TestReviewSimilarity(t *testing.T) {
	assert.InDelta(t, 0.9, ReviewSimilarity(0.8, true, 0.7, true), 1e-12)
	assert.Equal(t, ReviewSimilarity(0.2, true, 0.9, true), ReviewSimilarity(0.9, true, 0.2, true))
	assert.Equal(t, 0.0, ReviewSimilarity(0.8, false, 0.8, true))
	assert.Equal(t, 0.0, ReviewSimilarity(0.8, true, 0, false))
}

func TestWeights_CombineStaysInUnitInterval(t *testing.T) {
	weights := []Weights{DefaultWeights(), {Geo: 1}, {Amenity: 0.5, Review: 0.5}}
	values := []float64{0, 0.3, 1}
	for _, w := range weights {
		for _, g := range values {
			for _, a := range values {
				for _, r := range values {
					got := w.Combine(g, a, r)
					assert.GreaterOrEqual(t, got, 0.0)
					assert.LessOrEqual(t, got, 1.0)
				}
			}
		}
	}
	assert.InDelta(t, 1.0, DefaultWeights().Combine(1, 1, 1), 1e-12)
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.ErrorIs(t, Weights{Geo: 0.5, Amenity: 0.5, Review: 0.5}.Validate(), ErrInvalidWeights)
	assert.ErrorIs(t, Weights{Geo: 1.2, Amenity: -0.2}.Validate(), errs.ErrValidation)
}

func TestBuildOptions(t *testing.T) {
	o := NewBuildOptions()
	assert.Equal(t, DefaultMaxDistanceKm, o.MaxDistanceKm())
	assert.Equal(t, DefaultMaxCompetitors, o.MaxCompetitors())
	assert.NoError(t, o.Validate())

	o = NewBuildOptions(WithMaxDistanceKm(0))
	assert.ErrorIs(t, o.Validate(), errs.ErrValidation)
	o = NewBuildOptions(WithMaxCompetitors(-1))
	assert.ErrorIs(t, o.Validate(), errs.ErrValidation)
	o = NewBuildOptions(WithWeights(Weights{Geo: 1, Amenity: 1}))
	assert.ErrorIs(t, o.Validate(), ErrInvalidWeights)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.1))
	assert.Equal(t, 1.0, Clamp01(1.1))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
	assert.Equal(t, 0.5, Clamp01(0.5))
}
