package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/hotel"
	"github.com/helixml/compset/internal/database"
	"gorm.io/gorm/clause"
)

// HotelStore implements hotel.Store using GORM.
type HotelStore struct {
	database.Repository[hotel.Hotel, HotelModel]
}

// NewHotelStore creates a new HotelStore.
func NewHotelStore(db database.Database) HotelStore {
	return HotelStore{
		Repository: database.NewRepository[hotel.Hotel, HotelModel](db, HotelMapper{}, "competitor hotel"),
	}
}

// Upsert inserts the hotel or refreshes the row with the same
// (external_id, source). created_at and the ID survive a refresh.
func (s HotelStore) Upsert(ctx context.Context, h hotel.Hotel) (hotel.Hotel, error) {
	model := s.Mapper().ToModel(h)
	model.ID = 0

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}, {Name: "source"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "latitude", "longitude", "star_rating", "review_score",
			"review_count", "amenities", "amenity_vector", "last_seen_at", "updated_at",
		}),
	}).Create(&model)
	if result.Error != nil {
		return hotel.Hotel{}, fmt.Errorf("upsert competitor hotel: %w", result.Error)
	}

	// The ID reported after a conflicting insert differs between drivers,
	// so read the row back by its natural key.
	return s.FindOne(ctx, hotel.WithExternalKey(h.ExternalID(), h.Source())...)
}

// RateStore implements hotel.RateStore using GORM.
type RateStore struct {
	db database.Database
}

// NewRateStore creates a new RateStore.
func NewRateStore(db database.Database) RateStore {
	return RateStore{db: db}
}

// Save records the rate, overwriting any rate for the same hotel and date.
func (s RateStore) Save(ctx context.Context, r hotel.Rate) error {
	model := HotelRateModel{
		HotelID:  r.HotelID(),
		RateDate: calendar.Format(r.Date()),
		Price:    r.Price(),
	}
	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hotel_id"}, {Name: "rate_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("save hotel rate: %w", result.Error)
	}
	return nil
}

// Latest returns each hotel's most recent rate dated on or before date.
func (s RateStore) Latest(ctx context.Context, hotelIDs []int64, date time.Time) (map[int64]float64, error) {
	prices := make(map[int64]float64, len(hotelIDs))
	if len(hotelIDs) == 0 {
		return prices, nil
	}

	var rows []struct {
		HotelID int64
		Price   float64
	}
	err := s.db.Session(ctx).Raw(`
		SELECT r.hotel_id, r.price
		FROM competitor_hotel_rates r
		JOIN (
			SELECT hotel_id, MAX(rate_date) AS rate_date
			FROM competitor_hotel_rates
			WHERE hotel_id IN ? AND rate_date <= ?
			GROUP BY hotel_id
		) latest ON latest.hotel_id = r.hotel_id AND latest.rate_date = r.rate_date
	`, hotelIDs, calendar.Format(date)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("latest hotel rates: %w", err)
	}
	for _, row := range rows {
		prices[row.HotelID] = row.Price
	}
	return prices, nil
}
