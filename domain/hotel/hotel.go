// Package hotel models competitor lodgings seen by the ingestion pipeline.
package hotel

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/helixml/compset/domain/errs"
	"github.com/helixml/compset/domain/geo"
)

// ErrInvalidRecord indicates an ingestion record that cannot be stored.
var ErrInvalidRecord = fmt.Errorf("%w: invalid hotel record", errs.ErrValidation)

// Record is an ingestion sighting of a competitor hotel.
type Record struct {
	ExternalID  string
	Source      string
	Name        string
	Latitude    float64
	Longitude   float64
	StarRating  *float64
	ReviewScore *float64
	ReviewCount int
	Amenities   []string
}

// Validate checks the natural key, location and rating ranges.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ExternalID) == "" || strings.TrimSpace(r.Source) == "" {
		return fmt.Errorf("%w: external_id and source are required", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	if _, err := geo.NewLocation(r.Latitude, r.Longitude); err != nil {
		return err
	}
	if r.StarRating != nil && (*r.StarRating < 0 || *r.StarRating > 5) {
		return fmt.Errorf("%w: star_rating must be within 0..5", ErrInvalidRecord)
	}
	if r.ReviewScore != nil && (*r.ReviewScore < 0 || *r.ReviewScore > 10) {
		return fmt.Errorf("%w: review_score must be within 0..10", ErrInvalidRecord)
	}
	if r.ReviewCount < 0 {
		return fmt.Errorf("%w: review_count must not be negative", ErrInvalidRecord)
	}
	return nil
}

// Hotel is a competitor lodging, unique per (external ID, source).
type Hotel struct {
	id            int64
	externalID    string
	source        string
	name          string
	location      geo.Location
	starRating    *float64
	reviewScore   *float64
	reviewCount   int
	amenities     []string
	amenityVector []float64
	lastSeenAt    time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewHotel creates an unsaved hotel from a validated record.
func NewHotel(r Record, vector []float64, seenAt time.Time) (Hotel, error) {
	if err := r.Validate(); err != nil {
		return Hotel{}, err
	}
	loc, _ := geo.NewLocation(r.Latitude, r.Longitude)
	return Hotel{
		externalID:    strings.TrimSpace(r.ExternalID),
		source:        strings.TrimSpace(r.Source),
		name:          strings.TrimSpace(r.Name),
		location:      loc,
		starRating:    copyFloat(r.StarRating),
		reviewScore:   copyFloat(r.ReviewScore),
		reviewCount:   r.ReviewCount,
		amenities:     NormalizeAmenities(r.Amenities),
		amenityVector: slices.Clone(vector),
		lastSeenAt:    seenAt,
	}, nil
}

// ReconstructHotel recreates a hotel from persistence.
func ReconstructHotel(
	id int64,
	externalID, source, name string,
	location geo.Location,
	starRating, reviewScore *float64,
	reviewCount int,
	amenities []string,
	amenityVector []float64,
	lastSeenAt, createdAt, updatedAt time.Time,
) Hotel {
	return Hotel{
		id:            id,
		externalID:    externalID,
		source:        source,
		name:          name,
		location:      location,
		starRating:    starRating,
		reviewScore:   reviewScore,
		reviewCount:   reviewCount,
		amenities:     amenities,
		amenityVector: amenityVector,
		lastSeenAt:    lastSeenAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the hotel ID.
func (h Hotel) ID() int64 { return h.id }

// ExternalID returns the identifier assigned by the source.
func (h Hotel) ExternalID() string { return h.externalID }

// Source returns the feed or site the hotel came from.
func (h Hotel) Source() string { return h.source }

// Name returns the hotel name.
func (h Hotel) Name() string { return h.name }

// Location returns the hotel coordinates.
func (h Hotel) Location() geo.Location { return h.location }

// StarRating returns the 0-5 star rating, nil when unknown.
func (h Hotel) StarRating() *float64 { return copyFloat(h.starRating) }

// ReviewScore returns the 0-10 review score, nil when unknown.
func (h Hotel) ReviewScore() *float64 { return copyFloat(h.reviewScore) }

// ReviewCount returns the number of reviews behind the score.
func (h Hotel) ReviewCount() int { return h.reviewCount }

// Amenities returns the normalized amenity names.
func (h Hotel) Amenities() []string { return slices.Clone(h.amenities) }

// AmenityVector returns the feature vector derived from the amenities.
func (h Hotel) AmenityVector() []float64 { return slices.Clone(h.amenityVector) }

// LastSeenAt returns when ingestion last reported the hotel.
func (h Hotel) LastSeenAt() time.Time { return h.lastSeenAt }

// CreatedAt returns the creation timestamp.
func (h Hotel) CreatedAt() time.Time { return h.createdAt }

// UpdatedAt returns the last update timestamp.
func (h Hotel) UpdatedAt() time.Time { return h.updatedAt }

// Quality returns the hotel's star rating and review score.
func (h Hotel) Quality() (starRating, reviewScore *float64) {
	return h.starRating, h.reviewScore
}

// NormalizeAmenities lower-cases, trims and de-duplicates amenity names,
// keeping first-seen order.
func NormalizeAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		key := strings.ToLower(strings.TrimSpace(a))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
