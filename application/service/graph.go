package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/helixml/compset/domain/geo"
	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/domain/hotel"
	"github.com/helixml/compset/domain/property"
	"github.com/helixml/compset/domain/query"
	"github.com/helixml/compset/internal/config"
)

// GraphBuilder computes and stores the competitor similarity graph.
type GraphBuilder struct {
	hotels     *Hotels
	store      graph.Store
	vectorizer hotel.Vectorizer
	logger     *slog.Logger
	staleOnce  *sync.Once
}

// NewGraphBuilder creates a new GraphBuilder.
func NewGraphBuilder(hotels *Hotels, store graph.Store, vectorizer hotel.Vectorizer, logger *slog.Logger) *GraphBuilder {
	return &GraphBuilder{
		hotels:     hotels,
		store:      store,
		vectorizer: vectorizer,
		logger:     logger,
		staleOnce:  &sync.Once{},
	}
}

// Build scores every hotel within the search radius against the subject,
// keeps the best MaxCompetitors of them and atomically replaces the
// property's edge set. It returns the number of relationships stored.
func (s *GraphBuilder) Build(
	ctx context.Context,
	propertyID int64,
	location geo.Location,
	attrs property.Attributes,
	opts graph.BuildOptions,
) (int, error) {
	if propertyID <= 0 {
		return 0, ErrInvalidPropertyID
	}
	if err := location.Validate(); err != nil {
		return 0, err
	}
	if err := attrs.Validate(); err != nil {
		return 0, err
	}
	if err := opts.Validate(); err != nil {
		return 0, err
	}

	nearby, err := s.hotels.FindNearby(ctx, location, opts.MaxDistanceKm())
	if err != nil {
		return 0, err
	}

	subjectVector := s.vectorizer.Vectorize(hotel.Features{Amenities: attrs.Amenities, StarRating: attrs.StarRating})
	subjectQuality, subjectRated := graph.QualityScore(attrs.StarRating, attrs.ReviewScore)
	weights := opts.Weights()

	candidates := make([]graph.Candidate, len(nearby))
	for i, n := range nearby {
		hotelQuality, hotelRated := graph.QualityScore(n.Hotel.Quality())
		geoSim := graph.GeoSimilarity(n.DistanceKm, opts.MaxDistanceKm())
		amenitySim := graph.AmenitySimilarity(subjectVector, s.hotelVector(n.Hotel))
		reviewSim := graph.ReviewSimilarity(subjectQuality, subjectRated, hotelQuality, hotelRated)
		candidates[i] = graph.Candidate{
			HotelID:           n.Hotel.ID(),
			DistanceKm:        n.DistanceKm,
			GeoSimilarity:     geoSim,
			AmenitySimilarity: amenitySim,
			ReviewSimilarity:  reviewSim,
			OverallSimilarity: weights.Combine(geoSim, amenitySim, reviewSim),
		}
	}

	rels := graph.Rank(propertyID, candidates, weights, opts.MaxCompetitors())
	if err := s.store.Replace(ctx, propertyID, rels); err != nil {
		return 0, fmt.Errorf("replace relationships: %w", err)
	}

	s.logger.Info("competitor graph built",
		slog.Int64("property_id", propertyID),
		slog.Int("candidates", len(candidates)),
		slog.Int("relationships", len(rels)),
	)
	return len(rels), nil
}

// hotelVector returns the hotel's stored amenity vector, or a fresh one
// when it was stored under a dictionary of another dimension. Such hotels
// keep their old vector until ingestion sees them again.
func (s *GraphBuilder) hotelVector(h hotel.Hotel) []float64 {
	stored := h.AmenityVector()
	if len(stored) == s.vectorizer.Dimension() {
		return stored
	}
	s.staleOnce.Do(func() {
		s.logger.Warn("stored amenity vectors do not match the dictionary, re-vectorizing on the fly",
			slog.Int64("hotel_id", h.ID()),
			slog.Int("stored_dimension", len(stored)),
			slog.Int("dictionary_dimension", s.vectorizer.Dimension()),
		)
	})
	star, _ := h.Quality()
	return s.vectorizer.Vectorize(hotel.Features{Amenities: h.Amenities(), StarRating: star})
}

// Relationships returns the property's edges in rank order, keeping those
// with overall similarity of at least minSimilarity. limit <= 0 means all.
func (s *GraphBuilder) Relationships(ctx context.Context, propertyID int64, limit int, minSimilarity float64) ([]graph.Relationship, error) {
	if propertyID <= 0 {
		return nil, ErrInvalidPropertyID
	}
	opts := []query.Option{graph.WithPropertyID(propertyID), graph.ByRank()}
	if minSimilarity > 0 {
		opts = append(opts, graph.WithMinSimilarity(minSimilarity))
	}
	if limit > 0 {
		opts = append(opts, query.WithLimit(limit))
	}
	return s.store.Find(ctx, opts...)
}

// Competitors returns the top limit relationships joined with their hotels.
// Edges whose hotel no longer exists are skipped.
func (s *GraphBuilder) Competitors(ctx context.Context, propertyID int64, limit int) ([]graph.Competitor, error) {
	rels, err := s.Relationships(ctx, propertyID, limit, 0)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(rels))
	for i, r := range rels {
		ids[i] = r.HotelID()
	}
	hotels, err := s.hotels.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load competitor hotels: %w", err)
	}

	out := make([]graph.Competitor, 0, len(rels))
	for _, r := range rels {
		h, ok := hotels[r.HotelID()]
		if !ok {
			continue
		}
		out = append(out, graph.Competitor{Relationship: r, Hotel: h})
	}
	return out, nil
}

// Count returns the number of relationships the property has.
func (s *GraphBuilder) Count(ctx context.Context, propertyID int64) (int64, error) {
	return s.store.Count(ctx, graph.WithPropertyID(propertyID))
}

// BuildOptionsFromConfig returns the configured graph build parameters.
func BuildOptionsFromConfig(cfg config.GraphConfig) graph.BuildOptions {
	geoW, amenityW, reviewW := cfg.Weights()
	return graph.NewBuildOptions(
		graph.WithMaxDistanceKm(cfg.MaxDistanceKm()),
		graph.WithMaxCompetitors(cfg.MaxCompetitors()),
		graph.WithWeights(graph.Weights{Geo: geoW, Amenity: amenityW, Review: reviewW}),
	)
}
