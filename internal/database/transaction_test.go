package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func widgetDB(t *testing.T) Database {
	t.Helper()
	db := openFileDB(t)
	require.NoError(t, db.Session(context.Background()).AutoMigrate(&widget{}))
	return db
}

func countWidgets(t *testing.T, db Database) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Session(context.Background()).Model(&widget{}).Count(&n).Error)
	return n
}

func TestWithTransaction_Commits(t *testing.T) {
	ctx := context.Background()
	db := widgetDB(t)

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		return tx.Create(&widget{Name: "a"}).Error
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), countWidgets(t, db))
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := widgetDB(t)
	boom := errors.New("boom")

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Create(&widget{Name: "a"}).Error; err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), countWidgets(t, db))
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	db := widgetDB(t)

	assert.Panics(t, func() {
		_ = WithTransaction(ctx, db, func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&widget{Name: "a"}).Error)
			panic("mid-write")
		})
	})
	assert.Equal(t, int64(0), countWidgets(t, db))
}

func TestWithTransaction_SeesOwnWrites(t *testing.T) {
	ctx := context.Background()
	db := widgetDB(t)

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Create(&widget{Name: "a"}).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&widget{}).Count(&n).Error; err != nil {
			return err
		}
		assert.Equal(t, int64(1), n)
		return tx.Where("name = ?", "a").Delete(&widget{}).Error
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), countWidgets(t, db))
}
