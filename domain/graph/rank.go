package graph

import (
	"cmp"
	"slices"
)

// Candidate is a scored hotel awaiting ranking.
type Candidate struct {
	HotelID           int64
	DistanceKm        float64
	GeoSimilarity     float64
	AmenitySimilarity float64
	ReviewSimilarity  float64
	OverallSimilarity float64
}

// Rank orders candidates by overall similarity descending, breaking ties by
// ascending hotel ID, keeps at most limit of them and numbers them 1..N.
// Similarities are stored rounded to four decimals; ranking uses the rounded
// values so stored ranks agree with stored scores.
func Rank(propertyID int64, candidates []Candidate, weights Weights, limit int) []Relationship {
	sorted := make([]Candidate, len(candidates))
	for i, c := range candidates {
		c.GeoSimilarity = Round(c.GeoSimilarity, 4)
		c.AmenitySimilarity = Round(c.AmenitySimilarity, 4)
		c.ReviewSimilarity = Round(c.ReviewSimilarity, 4)
		c.OverallSimilarity = Round(c.OverallSimilarity, 4)
		c.DistanceKm = Round(c.DistanceKm, 3)
		sorted[i] = c
	}
	slices.SortFunc(sorted, func(a, b Candidate) int {
		if c := cmp.Compare(b.OverallSimilarity, a.OverallSimilarity); c != 0 {
			return c
		}
		return cmp.Compare(a.HotelID, b.HotelID)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]Relationship, len(sorted))
	for i, c := range sorted {
		out[i] = Relationship{
			propertyID:        propertyID,
			hotelID:           c.HotelID,
			geoSimilarity:     c.GeoSimilarity,
			amenitySimilarity: c.AmenitySimilarity,
			reviewSimilarity:  c.ReviewSimilarity,
			overallSimilarity: c.OverallSimilarity,
			distanceKm:        c.DistanceKm,
			rank:              i + 1,
			weights:           weights,
		}
	}
	return out
}
