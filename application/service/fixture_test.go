package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/helixml/compset/domain/geo"
	"github.com/helixml/compset/domain/hotel"
	"github.com/helixml/compset/domain/pricing"
	"github.com/helixml/compset/domain/property"
	"github.com/helixml/compset/infrastructure/persistence"
	pricingsource "github.com/helixml/compset/infrastructure/pricing"
	"github.com/helixml/compset/infrastructure/vectorizer"
	"github.com/helixml/compset/internal/database"
	"github.com/helixml/compset/internal/testdb"
	"github.com/stretchr/testify/require"
)

var (
	testDay = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	paris   = geo.ReconstructLocation(48.8566, 2.3522)
)

func ptr(f float64) *float64 { return &f }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fixedClock() time.Time { return testDay.Add(9 * time.Hour) }

type fixture struct {
	db         database.Database
	hotels     *Hotels
	graph      *GraphBuilder
	index      *IndexCalculator
	properties persistence.PropertyStore
	rates      persistence.RateStore
	snapshots  persistence.SnapshotStore
}

// newFixture wires the services against an in-memory database. A nil
// source prices competitors from the stored rates.
func newFixture(t *testing.T, source pricing.Source) *fixture {
	t.Helper()
	db := testdb.New(t)
	logger := testLogger()
	vec := vectorizer.NewDefault()

	rates := persistence.NewRateStore(db)
	properties := persistence.NewPropertyStore(db)
	relationships := persistence.NewRelationshipStore(db)
	snapshots := persistence.NewSnapshotStore(db)
	if source == nil {
		source = pricingsource.NewStoreSource(rates)
	}

	hotels := NewHotels(persistence.NewHotelStore(db), rates, vec, logger).WithClock(fixedClock)
	return &fixture{
		db:         db,
		hotels:     hotels,
		graph:      NewGraphBuilder(hotels, relationships, vec, logger),
		index:      NewIndexCalculator(relationships, snapshots, properties, source, logger).WithClock(fixedClock),
		properties: properties,
		rates:      rates,
		snapshots:  snapshots,
	}
}

func (f *fixture) addHotel(t *testing.T, externalID string, loc geo.Location) hotel.Hotel {
	t.Helper()
	h, err := f.hotels.Upsert(context.Background(), hotel.Record{
		ExternalID:  externalID,
		Source:      "feed",
		Name:        "Hotel " + externalID,
		Latitude:    loc.Latitude(),
		Longitude:   loc.Longitude(),
		StarRating:  ptr(4),
		ReviewScore: ptr(8),
		Amenities:   []string{"WiFi", "Pool", "Restaurant"},
	})
	require.NoError(t, err)
	return h
}

func (f *fixture) addProperty(t *testing.T, loc *geo.Location) property.Property {
	t.Helper()
	p, err := f.properties.Save(context.Background(), property.NewProperty("owner-1", "Subject", loc, property.Attributes{
		StarRating:  ptr(4),
		ReviewScore: ptr(8),
		Amenities:   []string{"wifi", "pool", "restaurant"},
	}))
	require.NoError(t, err)
	return p
}

// parisGraph stores hotels 0.5, 2 and 8 km north of the subject plus one
// outside the radius, then builds the subject's graph.
func (f *fixture) parisGraph(t *testing.T) (property.Property, []hotel.Hotel) {
	t.Helper()
	hotels := []hotel.Hotel{
		f.addHotel(t, "near", paris.Offset(0.5, 0)),
		f.addHotel(t, "mid", paris.Offset(2, 0)),
		f.addHotel(t, "far", paris.Offset(8, 0)),
	}
	f.addHotel(t, "outside", paris.Offset(30, 0))

	loc := paris
	p := f.addProperty(t, &loc)
	n, err := f.graph.Build(context.Background(), p.ID(), paris, p.Attributes(), testBuildOptions())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	return p, hotels
}
