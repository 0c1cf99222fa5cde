package index

import (
	"context"
	"time"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/query"
)

// Store persists snapshots.
type Store interface {
	// Upsert writes s, replacing any snapshot for the same property and date.
	Upsert(ctx context.Context, s Snapshot) (Snapshot, error)
	Find(ctx context.Context, options ...query.Option) ([]Snapshot, error)
	FindOne(ctx context.Context, options ...query.Option) (Snapshot, error)
}

// WithPropertyID filters by property.
func WithPropertyID(id int64) query.Option {
	return query.WithCondition("property_id", id)
}

// OnDate filters to a single calendar date.
func OnDate(day time.Time) query.Option {
	return query.WithCondition("snapshot_date", calendar.Format(day))
}

// Between filters to dates within [from, to].
func Between(from, to time.Time) query.Option {
	return query.WithBetween("snapshot_date", calendar.Format(from), calendar.Format(to))
}

// NewestFirst orders by date descending.
func NewestFirst() query.Option {
	return query.WithOrderDesc("snapshot_date")
}

// OldestFirst orders by date ascending.
func OldestFirst() query.Option {
	return query.WithOrderAsc("snapshot_date")
}
