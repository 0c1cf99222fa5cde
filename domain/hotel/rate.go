package hotel

import (
	"context"
	"fmt"
	"time"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/errs"
)

// ErrInvalidRate indicates a non-positive price or missing date.
var ErrInvalidRate = fmt.Errorf("%w: invalid rate", errs.ErrValidation)

// Rate is an observed nightly price for a competitor hotel.
type Rate struct {
	hotelID int64
	date    time.Time
	price   float64
}

// NewRate creates a validated rate for a calendar date.
func NewRate(hotelID int64, date time.Time, price float64) (Rate, error) {
	if hotelID <= 0 {
		return Rate{}, fmt.Errorf("%w: hotel id is required", ErrInvalidRate)
	}
	if date.IsZero() {
		return Rate{}, fmt.Errorf("%w: date is required", ErrInvalidRate)
	}
	if price <= 0 {
		return Rate{}, fmt.Errorf("%w: price must be positive", ErrInvalidRate)
	}
	return Rate{hotelID: hotelID, date: calendar.Day(date), price: price}, nil
}

// HotelID returns the hotel the rate belongs to.
func (r Rate) HotelID() int64 { return r.hotelID }

// Date returns the stay date.
func (r Rate) Date() time.Time { return r.date }

// Price returns the nightly price.
func (r Rate) Price() float64 { return r.price }

// RateStore persists observed hotel rates.
type RateStore interface {
	Save(ctx context.Context, r Rate) error
	// Latest returns, per hotel, the most recent rate dated on or before date.
	// Hotels without a rate are absent from the result.
	Latest(ctx context.Context, hotelIDs []int64, date time.Time) (map[int64]float64, error)
}
