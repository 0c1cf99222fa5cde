// Package pricing provides pricing-context sources for the neighborhood index.
package pricing

import (
	"context"
	"time"

	"github.com/helixml/compset/domain/hotel"
	"github.com/helixml/compset/domain/pricing"
)

// StoreSource reads competitor prices from observed hotel rates.
type StoreSource struct {
	rates hotel.RateStore
}

var _ pricing.Source = StoreSource{}

// NewStoreSource creates a StoreSource.
func NewStoreSource(rates hotel.RateStore) StoreSource {
	return StoreSource{rates: rates}
}

// CompetitorPrices returns each hotel's latest rate on or before date.
func (s StoreSource) CompetitorPrices(ctx context.Context, hotelIDs []int64, date time.Time) (map[int64]float64, error) {
	return s.rates.Latest(ctx, hotelIDs, date)
}
