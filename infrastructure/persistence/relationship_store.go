package persistence

import (
	"context"
	"fmt"

	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/internal/database"
	"gorm.io/gorm"
)

// RelationshipStore implements graph.Store using GORM.
type RelationshipStore struct {
	database.Repository[graph.Relationship, RelationshipModel]
}

// NewRelationshipStore creates a new RelationshipStore.
func NewRelationshipStore(db database.Database) RelationshipStore {
	return RelationshipStore{
		Repository: database.NewRepository[graph.Relationship, RelationshipModel](db, RelationshipMapper{}, "competitor relationship"),
	}
}

// Replace swaps the property's edge set inside one transaction.
func (s RelationshipStore) Replace(ctx context.Context, propertyID int64, rels []graph.Relationship) error {
	models := make([]RelationshipModel, len(rels))
	for i, r := range rels {
		if r.PropertyID() != propertyID {
			return fmt.Errorf("replace relationships: edge for property %d in set for %d", r.PropertyID(), propertyID)
		}
		models[i] = s.Mapper().ToModel(r)
		models[i].ID = 0
	}

	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", propertyID).Delete(&RelationshipModel{}).Error; err != nil {
			return fmt.Errorf("delete relationships: %w", err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("insert relationships: %w", err)
		}
		return nil
	})
}
