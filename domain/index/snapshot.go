package index

import (
	"fmt"
	"slices"
	"time"

	"github.com/helixml/compset/domain/errs"
)

// ErrNoCompetitors indicates a property without relationships was asked
// for an index.
var ErrNoCompetitors = fmt.Errorf("%w: property has no competitor relationships", errs.ErrValidation)

// Pricing holds the price statistics behind a snapshot. A nil *Pricing on
// a snapshot means price data was unavailable.
type Pricing struct {
	PropertyPrice     float64
	MedianPrice       float64
	AvgPrice          float64
	Percentile        float64
	PricedCompetitors int
}

// Changes are index deltas against earlier snapshots; nil means no
// snapshot existed on that day.
type Changes struct {
	Day   *float64
	Week  *float64
	Month *float64
}

// Snapshot is the index of one property on one calendar date.
type Snapshot struct {
	id                   int64
	propertyID           int64
	date                 time.Time
	overallIndex         float64
	priceCompetitiveness float64
	valueScore           float64
	positioningScore     float64
	marketPosition       MarketPosition
	pricing              *Pricing
	competitorsAnalyzed  int
	changes              Changes
	advantages           []string
	weaknesses           []string
	createdAt            time.Time
	updatedAt            time.Time
}

// Scores are the computed values of a snapshot.
type Scores struct {
	OverallIndex         float64
	PriceCompetitiveness float64
	ValueScore           float64
	PositioningScore     float64
	MarketPosition       MarketPosition
	Pricing              *Pricing
	CompetitorsAnalyzed  int
	Changes              Changes
	Advantages           []string
	Weaknesses           []string
}

// NewSnapshot creates an unsaved snapshot.
func NewSnapshot(propertyID int64, date time.Time, s Scores) Snapshot {
	return ReconstructSnapshot(0, propertyID, date, s, time.Time{}, time.Time{})
}

// ReconstructSnapshot recreates a snapshot from persistence.
func ReconstructSnapshot(id, propertyID int64, date time.Time, s Scores, createdAt, updatedAt time.Time) Snapshot {
	var pricing *Pricing
	if s.Pricing != nil {
		p := *s.Pricing
		pricing = &p
	}
	return Snapshot{
		id:                   id,
		propertyID:           propertyID,
		date:                 date,
		overallIndex:         s.OverallIndex,
		priceCompetitiveness: s.PriceCompetitiveness,
		valueScore:           s.ValueScore,
		positioningScore:     s.PositioningScore,
		marketPosition:       s.MarketPosition,
		pricing:              pricing,
		competitorsAnalyzed:  s.CompetitorsAnalyzed,
		changes:              s.Changes,
		advantages:           nonNil(s.Advantages),
		weaknesses:           nonNil(s.Weaknesses),
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// ID returns the row ID.
func (s Snapshot) ID() int64 { return s.id }

// PropertyID returns the property the snapshot describes.
func (s Snapshot) PropertyID() int64 { return s.propertyID }

// Date returns the calendar date.
func (s Snapshot) Date() time.Time { return s.date }

// OverallIndex returns the composite 0-100 index.
func (s Snapshot) OverallIndex() float64 { return s.overallIndex }

// PriceCompetitiveness returns the 0-100 price score.
func (s Snapshot) PriceCompetitiveness() float64 { return s.priceCompetitiveness }

// ValueScore returns the 0-100 value score.
func (s Snapshot) ValueScore() float64 { return s.valueScore }

// PositioningScore returns the 0-100 positioning score.
func (s Snapshot) PositioningScore() float64 { return s.positioningScore }

// MarketPosition returns the market classification.
func (s Snapshot) MarketPosition() MarketPosition { return s.marketPosition }

// Pricing returns the price statistics, or false when price data was unavailable.
func (s Snapshot) Pricing() (Pricing, bool) {
	if s.pricing == nil {
		return Pricing{}, false
	}
	return *s.pricing, true
}

// CompetitorsAnalyzed returns the number of relationships considered.
func (s Snapshot) CompetitorsAnalyzed() int { return s.competitorsAnalyzed }

// Changes returns the 1, 7 and 30 day index deltas.
func (s Snapshot) Changes() Changes { return s.changes }

// Advantages returns the competitive advantage tags.
func (s Snapshot) Advantages() []string { return slices.Clone(s.advantages) }

// Weaknesses returns the competitive weakness tags.
func (s Snapshot) Weaknesses() []string { return slices.Clone(s.weaknesses) }

// CreatedAt returns when the snapshot was first written.
func (s Snapshot) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns when the snapshot was last overwritten.
func (s Snapshot) UpdatedAt() time.Time { return s.updatedAt }

// Scores returns the computed values of the snapshot.
func (s Snapshot) Scores() Scores {
	var pricing *Pricing
	if s.pricing != nil {
		p := *s.pricing
		pricing = &p
	}
	return Scores{
		OverallIndex:         s.overallIndex,
		PriceCompetitiveness: s.priceCompetitiveness,
		ValueScore:           s.valueScore,
		PositioningScore:     s.positioningScore,
		MarketPosition:       s.marketPosition,
		Pricing:              pricing,
		CompetitorsAnalyzed:  s.competitorsAnalyzed,
		Changes:              s.changes,
		Advantages:           s.Advantages(),
		Weaknesses:           s.Weaknesses(),
	}
}

// TrendPoint is one entry of an index trend series.
type TrendPoint struct {
	Date                 time.Time
	OverallIndex         float64
	PriceCompetitiveness float64
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return slices.Clone(tags)
}
