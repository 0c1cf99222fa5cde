package graph

import (
	"time"

	"github.com/helixml/compset/domain/hotel"
)

// Relationship is one edge between a property and a competitor hotel.
type Relationship struct {
	id                int64
	propertyID        int64
	hotelID           int64
	geoSimilarity     float64
	amenitySimilarity float64
	reviewSimilarity  float64
	overallSimilarity float64
	distanceKm        float64
	rank              int
	weights           Weights
	createdAt         time.Time
}

// ReconstructRelationship recreates a relationship from persistence.
func ReconstructRelationship(
	id, propertyID, hotelID int64,
	geoSim, amenitySim, reviewSim, overallSim, distanceKm float64,
	rank int,
	weights Weights,
	createdAt time.Time,
) Relationship {
	return Relationship{
		id:                id,
		propertyID:        propertyID,
		hotelID:           hotelID,
		geoSimilarity:     geoSim,
		amenitySimilarity: amenitySim,
		reviewSimilarity:  reviewSim,
		overallSimilarity: overallSim,
		distanceKm:        distanceKm,
		rank:              rank,
		weights:           weights,
		createdAt:         createdAt,
	}
}

// ID returns the row ID.
func (r Relationship) ID() int64 { return r.id }

// PropertyID returns the subject property.
func (r Relationship) PropertyID() int64 { return r.propertyID }

// HotelID returns the competitor hotel.
func (r Relationship) HotelID() int64 { return r.hotelID }

// GeoSimilarity returns the distance-based similarity.
func (r Relationship) GeoSimilarity() float64 { return r.geoSimilarity }

// AmenitySimilarity returns the cosine similarity of amenity vectors.
func (r Relationship) AmenitySimilarity() float64 { return r.amenitySimilarity }

// ReviewSimilarity returns the quality similarity.
func (r Relationship) ReviewSimilarity() float64 { return r.reviewSimilarity }

// OverallSimilarity returns the weighted combination.
func (r Relationship) OverallSimilarity() float64 { return r.overallSimilarity }

// DistanceKm returns the great-circle distance.
func (r Relationship) DistanceKm() float64 { return r.distanceKm }

// Rank returns the 1-based similarity rank.
func (r Relationship) Rank() int { return r.rank }

// Weights returns the weights the edge was computed with.
func (r Relationship) Weights() Weights { return r.weights }

// CreatedAt returns when the edge was written.
func (r Relationship) CreatedAt() time.Time { return r.createdAt }

// Competitor is a relationship joined with its hotel.
type Competitor struct {
	Relationship Relationship
	Hotel        hotel.Hotel
}
