// Package pricing defines the pricing-context collaborator used by the index.
package pricing

import (
	"context"
	"time"
)

// Source returns the most recent known competitor prices on or before a date.
// Hotels without a known price are absent from the map. Implementations are
// best-effort; callers bound them with a short timeout.
type Source interface {
	CompetitorPrices(ctx context.Context, hotelIDs []int64, date time.Time) (map[int64]float64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, hotelIDs []int64, date time.Time) (map[int64]float64, error)

// CompetitorPrices calls f.
func (f SourceFunc) CompetitorPrices(ctx context.Context, hotelIDs []int64, date time.Time) (map[int64]float64, error) {
	return f(ctx, hotelIDs, date)
}
