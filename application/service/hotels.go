package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/helixml/compset/domain/geo"
	"github.com/helixml/compset/domain/hotel"
	"github.com/helixml/compset/domain/query"
)

// Nearby is a hotel found within a search radius.
type Nearby struct {
	Hotel      hotel.Hotel
	DistanceKm float64
}

// Hotels is the competitor hotel registry.
type Hotels struct {
	store      hotel.Store
	rates      hotel.RateStore
	vectorizer hotel.Vectorizer
	clock      func() time.Time
	logger     *slog.Logger
}

// NewHotels creates a new Hotels service.
func NewHotels(store hotel.Store, rates hotel.RateStore, vectorizer hotel.Vectorizer, logger *slog.Logger) *Hotels {
	return &Hotels{
		store:      store,
		rates:      rates,
		vectorizer: vectorizer,
		clock:      time.Now,
		logger:     logger,
	}
}

// WithClock overrides the time source used for last_seen_at.
func (s *Hotels) WithClock(clock func() time.Time) *Hotels {
	s.clock = clock
	return s
}

// Upsert stores an ingestion record, recomputing its amenity vector and
// bumping last_seen_at. Re-sighting the same (external ID, source) keeps
// the hotel's ID.
func (s *Hotels) Upsert(ctx context.Context, r hotel.Record) (hotel.Hotel, error) {
	vector := s.vectorizer.Vectorize(hotel.Features{Amenities: r.Amenities, StarRating: r.StarRating})
	h, err := hotel.NewHotel(r, vector, s.clock().UTC())
	if err != nil {
		return hotel.Hotel{}, err
	}

	saved, err := s.store.Upsert(ctx, h)
	if err != nil {
		return hotel.Hotel{}, err
	}

	s.logger.Debug("competitor hotel upserted",
		slog.Int64("hotel_id", saved.ID()),
		slog.String("external_id", saved.ExternalID()),
		slog.String("source", saved.Source()),
	)
	return saved, nil
}

// Get returns a hotel by ID.
func (s *Hotels) Get(ctx context.Context, id int64) (hotel.Hotel, error) {
	return s.store.FindOne(ctx, query.WithID(id))
}

// FindByIDs returns the hotels with the given IDs, keyed by ID.
func (s *Hotels) FindByIDs(ctx context.Context, ids []int64) (map[int64]hotel.Hotel, error) {
	out := make(map[int64]hotel.Hotel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.store.Find(ctx, query.WithIDIn(ids))
	if err != nil {
		return nil, err
	}
	for _, h := range found {
		out[h.ID()] = h
	}
	return out, nil
}

// FindNearby returns the hotels within radiusKm of center, nearest first.
// A bounding box on the coordinate columns narrows the candidates before
// the exact great-circle filter.
func (s *Hotels) FindNearby(ctx context.Context, center geo.Location, radiusKm float64) ([]Nearby, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		return nil, geo.ErrInvalidRadius
	}

	candidates, err := s.store.Find(ctx, hotel.WithinBox(center.Box(radiusKm))...)
	if err != nil {
		return nil, fmt.Errorf("find hotels in box: %w", err)
	}

	nearby := make([]Nearby, 0, len(candidates))
	for _, h := range candidates {
		d := center.DistanceKm(h.Location())
		if d > radiusKm {
			continue
		}
		nearby = append(nearby, Nearby{Hotel: h, DistanceKm: d})
	}
	slices.SortFunc(nearby, func(a, b Nearby) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(a.Hotel.ID(), b.Hotel.ID())
	})
	return nearby, nil
}

// RecordRate stores an observed nightly rate for an existing hotel.
func (s *Hotels) RecordRate(ctx context.Context, hotelID int64, date time.Time, price float64) error {
	r, err := hotel.NewRate(hotelID, date, price)
	if err != nil {
		return err
	}
	if _, err := s.Get(ctx, hotelID); err != nil {
		return err
	}
	return s.rates.Save(ctx, r)
}

// Count returns the number of registered hotels.
func (s *Hotels) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}
