package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/property"
	"github.com/helixml/compset/domain/query"
	"github.com/helixml/compset/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PropertyStore implements property.Store using GORM.
type PropertyStore struct {
	database.Repository[property.Property, PropertyModel]
}

// NewPropertyStore creates a new PropertyStore.
func NewPropertyStore(db database.Database) PropertyStore {
	return PropertyStore{
		Repository: database.NewRepository[property.Property, PropertyModel](db, PropertyMapper{}, "property"),
	}
}

// Get retrieves a property by ID.
func (s PropertyStore) Get(ctx context.Context, id int64) (property.Property, error) {
	return s.FindOne(ctx, query.WithID(id))
}

// Find retrieves properties, honouring the location and relationship filters.
func (s PropertyStore) Find(ctx context.Context, options ...query.Option) ([]property.Property, error) {
	hasLocation, without, with := property.Filters(query.Build(options...))

	db := s.DB(ctx).Model(&PropertyModel{})
	if hasLocation {
		db = db.Where("properties.latitude IS NOT NULL AND properties.longitude IS NOT NULL")
	}
	edges := s.DB(ctx).Model(&RelationshipModel{}).Distinct("property_id")
	if without {
		db = db.Where("properties.id NOT IN (?)", edges)
	}
	if with {
		db = db.Where("properties.id IN (?)", edges)
	}
	if property.OrdersByAttempt(query.Build(options...)) {
		db = db.Joins("LEFT JOIN property_graph_attempts ON property_graph_attempts.property_id = properties.id").
			Order("property_graph_attempts.attempted_at IS NOT NULL").
			Order("property_graph_attempts.attempted_at ASC")
	}
	return s.FindByQuery(database.ApplyOptions(db, options...))
}

// Save creates or updates a property.
func (s PropertyStore) Save(ctx context.Context, p property.Property) (property.Property, error) {
	model := s.Mapper().ToModel(p)

	var result *gorm.DB
	if p.ID() == 0 {
		result = s.DB(ctx).Create(&model)
	} else {
		result = s.DB(ctx).Save(&model)
	}
	if result.Error != nil {
		return property.Property{}, fmt.Errorf("save property: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// SavePrice records a published rate, overwriting the same date.
func (s PropertyStore) SavePrice(ctx context.Context, p property.PricePoint) error {
	model := PropertyPriceModel{
		PropertyID: p.PropertyID(),
		PriceDate:  calendar.Format(p.Date()),
		Price:      p.Price(),
	}
	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}, {Name: "price_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("save property price: %w", result.Error)
	}
	return nil
}

// MarkGraphAttempt stamps the property's last graph build attempt.
func (s PropertyStore) MarkGraphAttempt(ctx context.Context, propertyID int64, at time.Time) error {
	model := GraphAttemptModel{PropertyID: propertyID, AttemptedAt: at.UTC()}
	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"attempted_at"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("mark graph attempt: %w", result.Error)
	}
	return nil
}

// LatestPrice returns the most recent published rate on or before date.
func (s PropertyStore) LatestPrice(ctx context.Context, propertyID int64, date time.Time) (float64, bool, error) {
	var model PropertyPriceModel
	result := s.DB(ctx).
		Where("property_id = ? AND price_date <= ?", propertyID, calendar.Format(date)).
		Order("price_date DESC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("latest property price: %w", result.Error)
	}
	return model.Price, true, nil
}
