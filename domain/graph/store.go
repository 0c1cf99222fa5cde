package graph

import (
	"context"

	"github.com/helixml/compset/domain/query"
)

// Store persists relationship sets.
type Store interface {
	// Replace deletes the property's relationships and inserts rels in one
	// transaction.
	Replace(ctx context.Context, propertyID int64, rels []Relationship) error
	Find(ctx context.Context, options ...query.Option) ([]Relationship, error)
	Count(ctx context.Context, options ...query.Option) (int64, error)
}

// WithPropertyID filters by subject property.
func WithPropertyID(id int64) query.Option {
	return query.WithCondition("property_id", id)
}

// WithMinSimilarity keeps edges whose overall similarity is at least min.
func WithMinSimilarity(min float64) query.Option {
	return query.WithAtLeast("overall_similarity", min)
}

// ByRank orders edges by similarity rank.
func ByRank() query.Option {
	return query.WithOrderAsc("similarity_rank")
}
