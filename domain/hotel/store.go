package hotel

import (
	"context"

	"github.com/helixml/compset/domain/geo"
	"github.com/helixml/compset/domain/query"
)

// Store persists competitor hotels.
type Store interface {
	// Upsert inserts h or refreshes the row sharing its (external ID, source)
	// and returns the stored hotel with its stable ID.
	Upsert(ctx context.Context, h Hotel) (Hotel, error)
	Find(ctx context.Context, options ...query.Option) ([]Hotel, error)
	FindOne(ctx context.Context, options ...query.Option) (Hotel, error)
	Count(ctx context.Context, options ...query.Option) (int64, error)
}

// WithExternalKey filters by the natural key.
func WithExternalKey(externalID, source string) []query.Option {
	return []query.Option{
		query.WithCondition("external_id", externalID),
		query.WithCondition("source", source),
	}
}

// WithSource filters by ingestion source.
func WithSource(source string) query.Option {
	return query.WithCondition("source", source)
}

// WithinBox filters to hotels whose coordinates fall inside box,
// including boxes that wrap across the antimeridian.
func WithinBox(box geo.BoundingBox) []query.Option {
	lon := query.WithBetween("longitude", box.MinLon, box.MaxLon)
	if box.CrossesAntimeridian() {
		lon = query.WithOutside("longitude", box.MaxLon, box.MinLon)
	}
	return []query.Option{
		query.WithBetween("latitude", box.MinLat, box.MaxLat),
		lon,
	}
}
