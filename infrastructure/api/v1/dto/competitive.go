// Package dto holds request and response bodies of the v1 API.
package dto

import (
	"time"

	"github.com/helixml/compset/domain/graph"
)

// AttributesRequest overrides the stored quality fields of a property.
type AttributesRequest struct {
	StarRating  *float64 `json:"star_rating,omitempty"`
	ReviewScore *float64 `json:"review_score,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
}

// LocationRequest is a coordinate pair.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// BuildOptionsRequest overrides the default graph build options.
type BuildOptionsRequest struct {
	MaxDistanceKm  *float64       `json:"max_distance_km,omitempty"`
	MaxCompetitors *int           `json:"max_competitors,omitempty"`
	Weights        *graph.Weights `json:"weights,omitempty"`
}

// BuildGraphRequest is the body of POST .../competitive/build-graph.
type BuildGraphRequest struct {
	Location   *LocationRequest     `json:"location"`
	Attributes *AttributesRequest   `json:"attributes,omitempty"`
	Options    *BuildOptionsRequest `json:"options,omitempty"`
}

// BuildGraphResult reports how many relationships a build stored.
type BuildGraphResult struct {
	PropertyID           int64 `json:"property_id"`
	RelationshipsCreated int   `json:"relationships_created"`
}

// BuildGraphResponse wraps BuildGraphResult.
type BuildGraphResponse struct {
	Data BuildGraphResult `json:"data"`
}

// ComputeRequest is the body of POST .../competitive/compute.
type ComputeRequest struct {
	Date               string             `json:"date"`
	PropertyPrice      *float64           `json:"property_price,omitempty"`
	PropertyAttributes *AttributesRequest `json:"property_attributes,omitempty"`
}

// SnapshotData is a neighborhood index snapshot. Price fields are null when
// price data was unavailable; change fields are null when no earlier
// snapshot exists.
type SnapshotData struct {
	ID                        int64     `json:"id"`
	PropertyID                int64     `json:"property_id"`
	Date                      string    `json:"date"`
	OverallIndex              float64   `json:"overall_index"`
	PriceCompetitivenessScore float64   `json:"price_competitiveness_score"`
	ValueScore                float64   `json:"value_score"`
	PositioningScore          float64   `json:"positioning_score"`
	MarketPosition            string    `json:"market_position"`
	PropertyPrice             *float64  `json:"property_price"`
	NeighborhoodMedianPrice   *float64  `json:"neighborhood_median_price"`
	NeighborhoodAvgPrice      *float64  `json:"neighborhood_avg_price"`
	PricePercentile           *float64  `json:"price_percentile"`
	CompetitorsAnalyzed       int       `json:"competitors_analyzed"`
	IndexChange1d             *float64  `json:"index_change_1d"`
	IndexChange7d             *float64  `json:"index_change_7d"`
	IndexChange30d            *float64  `json:"index_change_30d"`
	CompetitiveAdvantages     []string  `json:"competitive_advantages"`
	CompetitiveWeaknesses     []string  `json:"competitive_weaknesses"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// SnapshotResponse wraps a snapshot, or null when none exists.
type SnapshotResponse struct {
	Data *SnapshotData `json:"data"`
}

// TrendPoint is one day of an index trend.
type TrendPoint struct {
	Date                      string  `json:"date"`
	OverallIndex              float64 `json:"overall_index"`
	PriceCompetitivenessScore float64 `json:"price_competitiveness_score"`
}

// TrendResponse lists trend points oldest first.
type TrendResponse struct {
	Data []TrendPoint `json:"data"`
}

// RelationshipData is one competitor edge.
type RelationshipData struct {
	HotelID           int64         `json:"hotel_id"`
	SimilarityRank    int           `json:"similarity_rank"`
	GeoSimilarity     float64       `json:"geo_similarity"`
	AmenitySimilarity float64       `json:"amenity_similarity"`
	ReviewSimilarity  float64       `json:"review_similarity"`
	OverallSimilarity float64       `json:"overall_similarity"`
	DistanceKm        float64       `json:"distance_km"`
	Weights           graph.Weights `json:"weights"`
	CreatedAt         time.Time     `json:"created_at"`
}

// RelationshipListResponse lists edges in rank order.
type RelationshipListResponse struct {
	Data []RelationshipData `json:"data"`
}

// CompetitorHotel is the hotel detail attached to a ranked competitor.
type CompetitorHotel struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Source      string   `json:"source"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	StarRating  *float64 `json:"star_rating"`
	ReviewScore *float64 `json:"review_score"`
	ReviewCount int      `json:"review_count"`
	Amenities   []string `json:"amenities"`
}

// CompetitorData is a ranked competitor with its hotel.
type CompetitorData struct {
	RelationshipData
	Hotel CompetitorHotel `json:"hotel"`
}

// CompetitorListResponse lists competitors in rank order.
type CompetitorListResponse struct {
	Data []CompetitorData `json:"data"`
}
