package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_DenseOrderedPermutation(t *testing.T) {
	candidates := []Candidate{
		{HotelID: 5, OverallSimilarity: 0.4},
		{HotelID: 2, OverallSimilarity: 0.9},
		{HotelID: 9, OverallSimilarity: 0.6},
		{HotelID: 1, OverallSimilarity: 0.6},
	}

	rels := Rank(7, candidates, DefaultWeights(), 10)

	require.Len(t, rels, 4)
	ids := make([]int64, len(rels))
	for i, r := range rels {
		assert.Equal(t, i+1, r.Rank())
		assert.Equal(t, int64(7), r.PropertyID())
		assert.Equal(t, DefaultWeights(), r.Weights())
		ids[i] = r.HotelID()
	}
	assert.Equal(t, []int64{2, 1, 9, 5}, ids)
}

func TestRank_TruncatesAfterOrdering(t *testing.T) {
	candidates := []Candidate{
		{HotelID: 1, OverallSimilarity: 0.1},
		{HotelID: 2, OverallSimilarity: 0.8},
		{HotelID: 3, OverallSimilarity: 0.5},
	}

	rels := Rank(1, candidates, DefaultWeights(), 2)

	require.Len(t, rels, 2)
	assert.Equal(t, int64(2), rels[0].HotelID())
	assert.Equal(t, int64(3), rels[1].HotelID())
}

func TestRank_DeterministicAcrossInputOrder(t *testing.T) {
	a := []Candidate{{HotelID: 3, OverallSimilarity: 0.5}, {HotelID: 1, OverallSimilarity: 0.5}, {HotelID: 2, OverallSimilarity: 0.5}}
	b := []Candidate{a[2], a[0], a[1]}

	assert.Equal(t, Rank(1, a, DefaultWeights(), 0), Rank(1, b, DefaultWeights(), 0))
}

func TestRank_RoundsStoredValues(t *testing.T) {
	rels := Rank(1, []Candidate{{HotelID: 1, OverallSimilarity: 0.123456, DistanceKm: 1.23456}}, DefaultWeights(), 0)

	assert.Equal(t, 0.1235, rels[0].OverallSimilarity())
	assert.Equal(t, 1.235, rels[0].DistanceKm())
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(1, nil, DefaultWeights(), 5))
}
