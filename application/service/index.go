package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/domain/index"
	"github.com/helixml/compset/domain/pricing"
	"github.com/helixml/compset/domain/property"
	"github.com/helixml/compset/internal/database"
)

// DefaultPricingTimeout bounds each call to the pricing-context source.
const DefaultPricingTimeout = 2 * time.Second

// changeWindows are the day offsets index_change_* is computed against.
var changeWindows = [...]int{1, 7, 30}

// ComputeRequest carries the inputs of one index computation. A nil
// PropertyPrice or Attributes are read from the property store.
type ComputeRequest struct {
	PropertyID    int64
	Date          time.Time
	PropertyPrice *float64
	Attributes    *property.Attributes
}

// IndexCalculator computes, stores and queries neighborhood index snapshots.
type IndexCalculator struct {
	relationships  graph.Store
	snapshots      index.Store
	properties     property.Store
	prices         pricing.Source
	pricingTimeout time.Duration
	clock          func() time.Time
	logger         *slog.Logger
}

// NewIndexCalculator creates a new IndexCalculator.
func NewIndexCalculator(
	relationships graph.Store,
	snapshots index.Store,
	properties property.Store,
	prices pricing.Source,
	logger *slog.Logger,
) *IndexCalculator {
	return &IndexCalculator{
		relationships:  relationships,
		snapshots:      snapshots,
		properties:     properties,
		prices:         prices,
		pricingTimeout: DefaultPricingTimeout,
		clock:          time.Now,
		logger:         logger,
	}
}

// WithPricingTimeout sets the pricing-context call timeout.
func (s *IndexCalculator) WithPricingTimeout(d time.Duration) *IndexCalculator {
	if d > 0 {
		s.pricingTimeout = d
	}
	return s
}

// WithClock overrides the time source that defines "today" for trends.
func (s *IndexCalculator) WithClock(clock func() time.Time) *IndexCalculator {
	s.clock = clock
	return s
}

// Today returns the current UTC calendar date.
func (s *IndexCalculator) Today() time.Time {
	return calendar.Day(s.clock())
}

// Compute derives the property's index for req.Date from its relationships
// and the pricing context, then upserts the snapshot for that day.
// Pricing-context failures degrade the result instead of failing it.
func (s *IndexCalculator) Compute(ctx context.Context, req ComputeRequest) (index.Snapshot, error) {
	if req.PropertyID <= 0 {
		return index.Snapshot{}, ErrInvalidPropertyID
	}
	if req.Date.IsZero() {
		return index.Snapshot{}, ErrInvalidDate
	}
	if req.PropertyPrice != nil && *req.PropertyPrice <= 0 {
		return index.Snapshot{}, property.ErrInvalidPrice
	}
	day := calendar.Day(req.Date)

	rels, err := s.relationships.Find(ctx, graph.WithPropertyID(req.PropertyID), graph.ByRank())
	if err != nil {
		return index.Snapshot{}, fmt.Errorf("load relationships: %w", err)
	}
	if len(rels) == 0 {
		return index.Snapshot{}, index.ErrNoCompetitors
	}

	attrs, err := s.attributes(ctx, req)
	if err != nil {
		return index.Snapshot{}, err
	}
	if err := attrs.Validate(); err != nil {
		return index.Snapshot{}, err
	}
	subjectPrice, hasPrice, err := s.subjectPrice(ctx, req, day)
	if err != nil {
		return index.Snapshot{}, err
	}

	competitorPrices := s.competitorPrices(ctx, req.PropertyID, rels, day)
	scores := score(attrs, subjectPrice, hasPrice, competitorPrices, rels)

	scores.Changes, err = s.changes(ctx, req.PropertyID, day, scores.OverallIndex)
	if err != nil {
		return index.Snapshot{}, err
	}

	saved, err := s.snapshots.Upsert(ctx, index.NewSnapshot(req.PropertyID, day, scores))
	if err != nil {
		return index.Snapshot{}, fmt.Errorf("store snapshot: %w", err)
	}

	s.logger.Info("neighborhood index computed",
		slog.Int64("property_id", req.PropertyID),
		slog.String("date", calendar.Format(day)),
		slog.Float64("overall_index", saved.OverallIndex()),
		slog.Int("competitors", len(rels)),
		slog.Int("priced_competitors", len(competitorPrices)),
	)
	return saved, nil
}

func (s *IndexCalculator) attributes(ctx context.Context, req ComputeRequest) (property.Attributes, error) {
	if req.Attributes != nil {
		return *req.Attributes, nil
	}
	p, err := s.properties.Get(ctx, req.PropertyID)
	if err != nil {
		return property.Attributes{}, fmt.Errorf("load property: %w", err)
	}
	return p.Attributes(), nil
}

func (s *IndexCalculator) subjectPrice(ctx context.Context, req ComputeRequest, day time.Time) (float64, bool, error) {
	if req.PropertyPrice != nil {
		return *req.PropertyPrice, true, nil
	}
	price, ok, err := s.properties.LatestPrice(ctx, req.PropertyID, day)
	if err != nil {
		return 0, false, fmt.Errorf("load property price: %w", err)
	}
	return price, ok, nil
}

// competitorPrices returns the known prices in rank order. The source is
// best-effort: an error or timeout yields no prices.
func (s *IndexCalculator) competitorPrices(ctx context.Context, propertyID int64, rels []graph.Relationship, day time.Time) []float64 {
	ids := make([]int64, len(rels))
	for i, r := range rels {
		ids[i] = r.HotelID()
	}

	ctx, cancel := context.WithTimeout(ctx, s.pricingTimeout)
	defer cancel()

	byHotel, err := s.prices.CompetitorPrices(ctx, ids, day)
	if err != nil {
		s.logger.Warn("pricing context unavailable, computing without prices",
			slog.Int64("property_id", propertyID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	prices := make([]float64, 0, len(ids))
	for _, id := range ids {
		if p, ok := byHotel[id]; ok && p > 0 {
			prices = append(prices, p)
		}
	}
	return prices
}

// score computes the component scores. Scores are rounded before tagging
// so stored tags agree with stored scores.
func score(attrs property.Attributes, price float64, hasPrice bool, competitorPrices []float64, rels []graph.Relationship) index.Scores {
	priceScore, valueScore := index.NeutralScore, index.NeutralScore
	position := index.MarketMid
	var pricingStats *index.Pricing

	if hasPrice && len(competitorPrices) > 0 {
		median, _ := index.Median(competitorPrices)
		mean, _ := index.Mean(competitorPrices)
		percentile := index.Percentile(price, competitorPrices)
		quality, rated := graph.QualityScore(attrs.StarRating, attrs.ReviewScore)
		rating, hasRating := attrs.Rating()

		priceScore = index.PriceCompetitiveness(price, median)
		valueScore = index.ValueScore(index.QualityNorm(quality, rated), price, mean)
		position = index.Classify(percentile, rating, hasRating)
		pricingStats = &index.Pricing{
			PropertyPrice:     index.Round2(price),
			MedianPrice:       index.Round2(median),
			AvgPrice:          index.Round2(mean),
			Percentile:        index.Round2(percentile),
			PricedCompetitors: len(competitorPrices),
		}
	}

	similarities := make([]float64, len(rels))
	for i, r := range rels {
		similarities[i] = r.OverallSimilarity()
	}
	positioning := index.PositioningScore(len(rels), similarities)
	overall := index.OverallIndex(priceScore, valueScore, positioning)

	scores := index.Scores{
		OverallIndex:         index.Round2(overall),
		PriceCompetitiveness: index.Round2(priceScore),
		ValueScore:           index.Round2(valueScore),
		PositioningScore:     index.Round2(positioning),
		MarketPosition:       position,
		Pricing:              pricingStats,
		CompetitorsAnalyzed:  len(rels),
	}
	scores.Advantages, scores.Weaknesses = index.Tags(
		scores.PriceCompetitiveness,
		scores.ValueScore,
		scores.PositioningScore,
		scores.CompetitorsAnalyzed,
		pricingStats != nil,
	)
	return scores
}

// changes compares overall against the snapshots exactly 1, 7 and 30 days
// earlier; a missing snapshot leaves that change nil.
func (s *IndexCalculator) changes(ctx context.Context, propertyID int64, day time.Time, overall float64) (index.Changes, error) {
	var deltas [len(changeWindows)]*float64
	for i, n := range changeWindows {
		prior, err := s.snapshots.FindOne(ctx, index.WithPropertyID(propertyID), index.OnDate(calendar.DaysBefore(day, n)))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return index.Changes{}, fmt.Errorf("load snapshot %d days prior: %w", n, err)
		}
		d := index.Round2(overall - prior.OverallIndex())
		deltas[i] = &d
	}
	return index.Changes{Day: deltas[0], Week: deltas[1], Month: deltas[2]}, nil
}

// Latest returns the most recent snapshot, or nil when none exists.
func (s *IndexCalculator) Latest(ctx context.Context, propertyID int64) (*index.Snapshot, error) {
	if propertyID <= 0 {
		return nil, ErrInvalidPropertyID
	}
	snap, err := s.snapshots.FindOne(ctx, index.WithPropertyID(propertyID), index.NewestFirst())
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Trend returns the snapshots of the last days calendar days, today
// included, oldest first.
func (s *IndexCalculator) Trend(ctx context.Context, propertyID int64, days int) ([]index.TrendPoint, error) {
	if propertyID <= 0 {
		return nil, ErrInvalidPropertyID
	}
	if days < 1 || days > MaxTrendDays {
		return nil, ErrInvalidTrendWindow
	}
	today := s.Today()
	snaps, err := s.snapshots.Find(ctx,
		index.WithPropertyID(propertyID),
		index.Between(calendar.DaysBefore(today, days-1), today),
		index.OldestFirst(),
	)
	if err != nil {
		return nil, err
	}

	points := make([]index.TrendPoint, len(snaps))
	for i, snap := range snaps {
		points[i] = index.TrendPoint{
			Date:                 snap.Date(),
			OverallIndex:         snap.OverallIndex(),
			PriceCompetitiveness: snap.PriceCompetitiveness(),
		}
	}
	return points, nil
}
