// Package property models the subject properties owned by customers.
// Properties are maintained by the main application; this subsystem reads them.
package property

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/errs"
	"github.com/helixml/compset/domain/geo"
	"github.com/helixml/compset/domain/query"
)

// ErrInvalidPrice indicates a non-positive price.
var ErrInvalidPrice = fmt.Errorf("%w: price must be positive", errs.ErrValidation)

// Attributes are the quality fields of a property.
type Attributes struct {
	StarRating  *float64
	ReviewScore *float64
	Amenities   []string
}

// Validate checks rating ranges.
func (a Attributes) Validate() error {
	if a.StarRating != nil && (*a.StarRating < 0 || *a.StarRating > 5) {
		return fmt.Errorf("%w: star_rating must be within 0..5", errs.ErrValidation)
	}
	if a.ReviewScore != nil && (*a.ReviewScore < 0 || *a.ReviewScore > 10) {
		return fmt.Errorf("%w: review_score must be within 0..10", errs.ErrValidation)
	}
	return nil
}

// Rating returns the 0-5 rating used for market classification: the star
// rating, or half the review score when no stars are known.
func (a Attributes) Rating() (float64, bool) {
	if a.StarRating != nil {
		return *a.StarRating, true
	}
	if a.ReviewScore != nil {
		return *a.ReviewScore / 2, true
	}
	return 0, false
}

// Property is a customer's lodging.
type Property struct {
	id         int64
	ownerID    string
	name       string
	location   *geo.Location
	attributes Attributes
	createdAt  time.Time
	updatedAt  time.Time
}

// NewProperty creates an unsaved property. A nil location is allowed.
func NewProperty(ownerID, name string, location *geo.Location, attrs Attributes) Property {
	return Property{
		ownerID:    ownerID,
		name:       name,
		location:   location,
		attributes: attrs,
	}
}

// ReconstructProperty recreates a property from persistence.
func ReconstructProperty(
	id int64,
	ownerID, name string,
	location *geo.Location,
	attrs Attributes,
	createdAt, updatedAt time.Time,
) Property {
	return Property{
		id:         id,
		ownerID:    ownerID,
		name:       name,
		location:   location,
		attributes: attrs,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the property ID.
func (p Property) ID() int64 { return p.id }

// OwnerID returns the identity that owns the property.
func (p Property) OwnerID() string { return p.ownerID }

// Name returns the property name.
func (p Property) Name() string { return p.name }

// Location returns the coordinates, or false when the property has none.
func (p Property) Location() (geo.Location, bool) {
	if p.location == nil {
		return geo.Location{}, false
	}
	return *p.location, true
}

// Attributes returns the quality fields.
func (p Property) Attributes() Attributes {
	a := p.attributes
	a.Amenities = slices.Clone(a.Amenities)
	return a
}

// CreatedAt returns the creation timestamp.
func (p Property) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last update timestamp.
func (p Property) UpdatedAt() time.Time { return p.updatedAt }

// OwnedBy reports whether owner may access the property.
func (p Property) OwnedBy(owner string) bool {
	return owner != "" && p.ownerID == owner
}

// PricePoint is the property's published rate for a date.
type PricePoint struct {
	propertyID int64
	date       time.Time
	price      float64
}

// NewPricePoint creates a validated price point.
func NewPricePoint(propertyID int64, date time.Time, price float64) (PricePoint, error) {
	if price <= 0 {
		return PricePoint{}, ErrInvalidPrice
	}
	return PricePoint{propertyID: propertyID, date: calendar.Day(date), price: price}, nil
}

// PropertyID returns the owning property.
func (p PricePoint) PropertyID() int64 { return p.propertyID }

// Date returns the stay date.
func (p PricePoint) Date() time.Time { return p.date }

// Price returns the published rate.
func (p PricePoint) Price() float64 { return p.price }

// Store reads properties and their price history.
type Store interface {
	Get(ctx context.Context, id int64) (Property, error)
	Find(ctx context.Context, options ...query.Option) ([]Property, error)
	Save(ctx context.Context, p Property) (Property, error)
	SavePrice(ctx context.Context, p PricePoint) error
	// LatestPrice returns the most recent price dated on or before date.
	LatestPrice(ctx context.Context, propertyID int64, date time.Time) (float64, bool, error)
	// MarkGraphAttempt records that a graph build was tried for the
	// property at the given time, whatever its outcome.
	MarkGraphAttempt(ctx context.Context, propertyID int64, at time.Time) error
}

// WithLocation restricts to properties that have coordinates.
func WithLocation() query.Option {
	return query.WithParam(paramHasLocation, true)
}

// WithoutRelationships restricts to properties that have no competitor
// relationships yet.
func WithoutRelationships() query.Option {
	return query.WithParam(paramWithoutRelationships, true)
}

// WithRelationships restricts to properties that have at least one
// competitor relationship.
func WithRelationships() query.Option {
	return query.WithParam(paramWithRelationships, true)
}

// LeastRecentlyAttempted orders properties that never had a graph build
// attempted first, then by the oldest attempt. Batches that keep meeting
// properties with no hotels in range rotate through them instead of
// stalling on the same ones.
func LeastRecentlyAttempted() query.Option {
	return query.WithParam(paramAttemptOrder, true)
}

// WithOwner filters by owner identity.
func WithOwner(owner string) query.Option {
	return query.WithCondition("owner_id", owner)
}

// Query parameter keys understood by Store implementations.
const (
	paramHasLocation          = "has_location"
	paramWithoutRelationships = "without_relationships"
	paramWithRelationships    = "with_relationships"
	paramAttemptOrder         = "least_recently_attempted"
)

// Filters reports which relationship-aware filters a query carries.
func Filters(q query.Query) (hasLocation, withoutRelationships, withRelationships bool) {
	_, hasLocation = q.Param(paramHasLocation)
	_, withoutRelationships = q.Param(paramWithoutRelationships)
	_, withRelationships = q.Param(paramWithRelationships)
	return
}

// OrdersByAttempt reports whether a query asked for LeastRecentlyAttempted.
func OrdersByAttempt(q query.Query) bool {
	_, ok := q.Param(paramAttemptOrder)
	return ok
}
