package service

import (
	"context"
	"testing"

	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/domain/property"
	"github.com/helixml/compset/infrastructure/persistence"
	"github.com/helixml/compset/infrastructure/vectorizer"
	"github.com/helixml/compset/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuildOptions() graph.BuildOptions {
	return graph.NewBuildOptions(graph.WithMaxDistanceKm(10), graph.WithMaxCompetitors(50))
}

func TestGraphBuilder_BuildRanksByDistance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p, hotels := f.parisGraph(t)

	rels, err := f.graph.Relationships(ctx, p.ID(), 0, 0)
	require.NoError(t, err)
	require.Len(t, rels, 3)

	for i, r := range rels {
		assert.Equal(t, i+1, r.Rank())
		assert.Equal(t, hotels[i].ID(), r.HotelID())
		assert.Equal(t, p.ID(), r.PropertyID())
		assert.Equal(t, graph.DefaultWeights(), r.Weights())
		assert.InDelta(t, 1.0, r.AmenitySimilarity(), 0.0001)
		assert.InDelta(t, 1.0, r.ReviewSimilarity(), 0.0001)
	}
	assert.InDelta(t, 0.5, rels[0].DistanceKm(), 0.01)
	assert.InDelta(t, 8.0, rels[2].DistanceKm(), 0.01)
	assert.Greater(t, rels[0].OverallSimilarity(), rels[1].OverallSimilarity())
	assert.Greater(t, rels[1].OverallSimilarity(), rels[2].OverallSimilarity())
}

func TestGraphBuilder_RebuildReplacesEdges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p, hotels := f.parisGraph(t)

	n, err := f.graph.Build(ctx, p.ID(), paris, p.Attributes(),
		graph.NewBuildOptions(graph.WithMaxDistanceKm(10), graph.WithMaxCompetitors(2)))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := f.graph.Count(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	rels, err := f.graph.Relationships(ctx, p.ID(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, hotels[0].ID(), rels[0].HotelID())
	assert.Equal(t, hotels[1].ID(), rels[1].HotelID())
}

func TestGraphBuilder_BuildWithNoCandidatesClearsEdges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p, _ := f.parisGraph(t)

	n, err := f.graph.Build(ctx, p.ID(), paris.Offset(500, 0), p.Attributes(), testBuildOptions())
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := f.graph.Count(ctx, p.ID())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGraphBuilder_BuildValidatesInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.graph.Build(ctx, 0, paris, property.Attributes{}, testBuildOptions())
	assert.ErrorIs(t, err, ErrInvalidPropertyID)

	_, err = f.graph.Build(ctx, 1, paris, property.Attributes{StarRating: ptr(6)}, testBuildOptions())
	require.Error(t, err)

	_, err = f.graph.Build(ctx, 1, paris, property.Attributes{},
		graph.NewBuildOptions(graph.WithWeights(graph.Weights{Geo: 0.5, Amenity: 0.5, Review: 0.5})))
	assert.ErrorIs(t, err, graph.ErrInvalidWeights)
}

func TestGraphBuilder_RelationshipsFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p, _ := f.parisGraph(t)

	all, err := f.graph.Relationships(ctx, p.ID(), 0, 0)
	require.NoError(t, err)

	limited, err := f.graph.Relationships(ctx, p.ID(), 1, 0)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, 1, limited[0].Rank())

	filtered, err := f.graph.Relationships(ctx, p.ID(), 0, all[1].OverallSimilarity())
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestGraphBuilder_CompetitorsJoinHotels(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p, hotels := f.parisGraph(t)

	competitors, err := f.graph.Competitors(ctx, p.ID(), 2)
	require.NoError(t, err)
	require.Len(t, competitors, 2)
	assert.Equal(t, hotels[0].Name(), competitors[0].Hotel.Name())
	assert.Equal(t, 1, competitors[0].Relationship.Rank())
	assert.Equal(t, hotels[1].Name(), competitors[1].Hotel.Name())
}

func TestBuildOptionsFromConfig(t *testing.T) {
	cfg := config.NewGraphConfig().
		WithMaxDistanceKm(5).
		WithMaxCompetitors(7).
		WithWeights(0.5, 0.25, 0.25)

	opts := BuildOptionsFromConfig(cfg)
	assert.Equal(t, 5.0, opts.MaxDistanceKm())
	assert.Equal(t, 7, opts.MaxCompetitors())
	assert.Equal(t, graph.Weights{Geo: 0.5, Amenity: 0.25, Review: 0.25}, opts.Weights())
	require.NoError(t, opts.Validate())
}

func TestGraphBuilder_RevectorizesHotelsFromAnotherDictionary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.addHotel(t, "near", paris.Offset(0.5, 0))
	loc := paris
	p := f.addProperty(t, &loc)

	small := vectorizer.NewWeighted(vectorizer.Dictionary{
		Version:    1,
		StarWeight: 1,
		Categories: []vectorizer.Category{
			{Name: "wifi", Weight: 1, Keywords: []string{"wifi"}},
			{Name: "pool", Weight: 1, Keywords: []string{"pool"}},
		},
	})
	require.NotEqual(t, small.Dimension(), vectorizer.NewDefault().Dimension())

	relationships := persistence.NewRelationshipStore(f.db)
	builder := NewGraphBuilder(f.hotels, relationships, small, testLogger())
	n, err := builder.Build(ctx, p.ID(), paris, p.Attributes(), testBuildOptions())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	rels, err := builder.Relationships(ctx, p.ID(), 0, 0)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.InDelta(t, 1.0, rels[0].AmenitySimilarity(), 0.0001)
}
