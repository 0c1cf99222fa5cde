package persistence

import (
	"context"
	"fmt"

	"github.com/helixml/compset/domain/index"
	"github.com/helixml/compset/internal/database"
	"gorm.io/gorm/clause"
)

// SnapshotStore implements index.Store using GORM.
type SnapshotStore struct {
	database.Repository[index.Snapshot, SnapshotModel]
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(db database.Database) SnapshotStore {
	return SnapshotStore{
		Repository: database.NewRepository[index.Snapshot, SnapshotModel](db, SnapshotMapper{}, "index snapshot"),
	}
}

// snapshotColumns are overwritten when a snapshot for the same day exists.
var snapshotColumns = []string{
	"overall_index", "price_competitiveness_score", "value_score", "positioning_score",
	"market_position", "price_data_available", "property_price", "neighborhood_median_price",
	"neighborhood_avg_price", "price_percentile", "priced_competitors", "competitors_analyzed",
	"index_change_1d", "index_change_7d", "index_change_30d",
	"competitive_advantage", "competitive_weakness", "updated_at",
}

// Upsert writes the snapshot keyed by (property_id, snapshot_date).
func (s SnapshotStore) Upsert(ctx context.Context, snap index.Snapshot) (index.Snapshot, error) {
	model := s.Mapper().ToModel(snap)
	model.ID = 0

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns(snapshotColumns),
	}).Create(&model)
	if result.Error != nil {
		return index.Snapshot{}, fmt.Errorf("upsert index snapshot: %w", result.Error)
	}

	return s.FindOne(ctx, index.WithPropertyID(snap.PropertyID()), index.OnDate(snap.Date()))
}
