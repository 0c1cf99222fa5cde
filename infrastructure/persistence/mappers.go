package persistence

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/geo"
	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/domain/hotel"
	"github.com/helixml/compset/domain/index"
	"github.com/helixml/compset/domain/property"
	"github.com/helixml/compset/domain/task"
)

// HotelMapper maps between domain Hotel and persistence HotelModel.
type HotelMapper struct{}

// ToDomain converts a HotelModel to a domain Hotel.
func (m HotelMapper) ToDomain(e HotelModel) hotel.Hotel {
	return hotel.ReconstructHotel(
		e.ID,
		e.ExternalID,
		e.Source,
		e.Name,
		geo.ReconstructLocation(e.Latitude, e.Longitude),
		e.StarRating,
		e.ReviewScore,
		e.ReviewCount,
		nonNilStrings(e.Amenities),
		[]float64(e.AmenityVector),
		e.LastSeenAt,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Hotel to a HotelModel.
func (m HotelMapper) ToModel(h hotel.Hotel) HotelModel {
	loc := h.Location()
	return HotelModel{
		ID:            h.ID(),
		ExternalID:    h.ExternalID(),
		Source:        h.Source(),
		Name:          h.Name(),
		Latitude:      loc.Latitude(),
		Longitude:     loc.Longitude(),
		StarRating:    h.StarRating(),
		ReviewScore:   h.ReviewScore(),
		ReviewCount:   h.ReviewCount(),
		Amenities:     StringSlice(h.Amenities()),
		AmenityVector: Float64Slice(h.AmenityVector()),
		LastSeenAt:    h.LastSeenAt(),
		CreatedAt:     h.CreatedAt(),
		UpdatedAt:     h.UpdatedAt(),
	}
}

// PropertyMapper maps between domain Property and persistence PropertyModel.
type PropertyMapper struct{}

// ToDomain converts a PropertyModel to a domain Property.
func (m PropertyMapper) ToDomain(e PropertyModel) property.Property {
	var loc *geo.Location
	if e.Latitude != nil && e.Longitude != nil {
		l := geo.ReconstructLocation(*e.Latitude, *e.Longitude)
		loc = &l
	}
	return property.ReconstructProperty(
		e.ID,
		e.OwnerID,
		e.Name,
		loc,
		property.Attributes{
			StarRating:  e.StarRating,
			ReviewScore: e.ReviewScore,
			Amenities:   nonNilStrings(e.Amenities),
		},
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Property to a PropertyModel.
func (m PropertyMapper) ToModel(p property.Property) PropertyModel {
	model := PropertyModel{
		ID:        p.ID(),
		OwnerID:   p.OwnerID(),
		Name:      p.Name(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
	if loc, ok := p.Location(); ok {
		lat, lon := loc.Latitude(), loc.Longitude()
		model.Latitude = &lat
		model.Longitude = &lon
	}
	attrs := p.Attributes()
	model.StarRating = attrs.StarRating
	model.ReviewScore = attrs.ReviewScore
	model.Amenities = StringSlice(attrs.Amenities)
	return model
}

// RelationshipMapper maps between domain Relationship and persistence RelationshipModel.
type RelationshipMapper struct{}

// ToDomain converts a RelationshipModel to a domain Relationship.
func (m RelationshipMapper) ToDomain(e RelationshipModel) graph.Relationship {
	return graph.ReconstructRelationship(
		e.ID,
		e.PropertyID,
		e.HotelID,
		e.GeoSimilarity,
		e.AmenitySimilarity,
		e.ReviewSimilarity,
		e.OverallSimilarity,
		e.DistanceKm,
		e.SimilarityRank,
		graph.Weights{Geo: e.WeightGeo, Amenity: e.WeightAmenity, Review: e.WeightReview},
		e.CreatedAt,
	)
}

// ToModel converts a domain Relationship to a RelationshipModel.
func (m RelationshipMapper) ToModel(r graph.Relationship) RelationshipModel {
	w := r.Weights()
	return RelationshipModel{
		ID:                r.ID(),
		PropertyID:        r.PropertyID(),
		HotelID:           r.HotelID(),
		GeoSimilarity:     r.GeoSimilarity(),
		AmenitySimilarity: r.AmenitySimilarity(),
		ReviewSimilarity:  r.ReviewSimilarity(),
		OverallSimilarity: r.OverallSimilarity(),
		DistanceKm:        r.DistanceKm(),
		SimilarityRank:    r.Rank(),
		WeightGeo:         w.Geo,
		WeightAmenity:     w.Amenity,
		WeightReview:      w.Review,
		CreatedAt:         r.CreatedAt(),
	}
}

// SnapshotMapper maps between domain Snapshot and persistence SnapshotModel.
type SnapshotMapper struct{}

// ToDomain converts a SnapshotModel to a domain Snapshot. An unparsable
// date maps to the zero time.
func (m SnapshotMapper) ToDomain(e SnapshotModel) index.Snapshot {
	day, _ := calendar.Parse(e.SnapshotDate)

	var pricing *index.Pricing
	if e.PriceDataAvailable {
		pricing = &index.Pricing{
			PropertyPrice:     deref(e.PropertyPrice),
			MedianPrice:       deref(e.MedianPrice),
			AvgPrice:          deref(e.AvgPrice),
			Percentile:        deref(e.PricePercentile),
			PricedCompetitors: e.PricedCompetitors,
		}
	}

	return index.ReconstructSnapshot(e.ID, e.PropertyID, day, index.Scores{
		OverallIndex:         e.OverallIndex,
		PriceCompetitiveness: e.PriceCompetitivenessScore,
		ValueScore:           e.ValueScore,
		PositioningScore:     e.PositioningScore,
		MarketPosition:       index.MarketPosition(e.MarketPosition),
		Pricing:              pricing,
		CompetitorsAnalyzed:  e.CompetitorsAnalyzed,
		Changes: index.Changes{
			Day:   e.IndexChange1d,
			Week:  e.IndexChange7d,
			Month: e.IndexChange30d,
		},
		Advantages: nonNilStrings(e.CompetitiveAdvantage),
		Weaknesses: nonNilStrings(e.CompetitiveWeakness),
	}, e.CreatedAt, e.UpdatedAt)
}

// ToModel converts a domain Snapshot to a SnapshotModel.
func (m SnapshotMapper) ToModel(s index.Snapshot) SnapshotModel {
	changes := s.Changes()
	model := SnapshotModel{
		ID:                        s.ID(),
		PropertyID:                s.PropertyID(),
		SnapshotDate:              calendar.Format(s.Date()),
		OverallIndex:              s.OverallIndex(),
		PriceCompetitivenessScore: s.PriceCompetitiveness(),
		ValueScore:                s.ValueScore(),
		PositioningScore:          s.PositioningScore(),
		MarketPosition:            string(s.MarketPosition()),
		CompetitorsAnalyzed:       s.CompetitorsAnalyzed(),
		IndexChange1d:             changes.Day,
		IndexChange7d:             changes.Week,
		IndexChange30d:            changes.Month,
		CompetitiveAdvantage:      StringSlice(s.Advantages()),
		CompetitiveWeakness:       StringSlice(s.Weaknesses()),
		CreatedAt:                 s.CreatedAt(),
		UpdatedAt:                 s.UpdatedAt(),
	}
	if p, ok := s.Pricing(); ok {
		model.PriceDataAvailable = true
		model.PropertyPrice = &p.PropertyPrice
		model.MedianPrice = &p.MedianPrice
		model.AvgPrice = &p.AvgPrice
		model.PricePercentile = &p.Percentile
		model.PricedCompetitors = p.PricedCompetitors
	}
	return model
}

// TaskMapper maps between domain Task and persistence TaskModel.
type TaskMapper struct{}

// ToDomain converts a TaskModel to a domain Task.
func (m TaskMapper) ToDomain(e TaskModel) (task.Task, error) {
	var payload map[string]any
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return task.Task{}, fmt.Errorf("failed to unmarshal task payload: %w", err)
		}
	}
	if payload == nil {
		payload = make(map[string]any)
	}

	return task.NewTaskWithID(
		e.ID,
		e.DedupKey,
		task.Operation(e.Type),
		e.Priority,
		payload,
		e.CreatedAt,
		e.UpdatedAt,
	), nil
}

// ToModel converts a domain Task to a TaskModel.
func (m TaskMapper) ToModel(t task.Task) (TaskModel, error) {
	payloadJSON, err := t.PayloadJSON()
	if err != nil {
		return TaskModel{}, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	return TaskModel{
		ID:        t.ID(),
		DedupKey:  t.DedupKey(),
		Type:      t.Operation().String(),
		Payload:   payloadJSON,
		Priority:  t.Priority(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}, nil
}

// JobStatusMapper maps between domain Status and persistence JobStatusModel.
type JobStatusMapper struct{}

// ToDomain converts a JobStatusModel to a domain Status.
func (m JobStatusMapper) ToDomain(e JobStatusModel) task.Status {
	var finished time.Time
	if e.FinishedAt != nil {
		finished = *e.FinishedAt
	}
	return task.ReconstructStatus(
		task.Operation(e.Operation),
		task.State(e.State),
		e.Total,
		e.Succeeded,
		e.Failed,
		e.Message,
		e.StartedAt,
		finished,
	)
}

// ToModel converts a domain Status to a JobStatusModel.
func (m JobStatusMapper) ToModel(s task.Status) JobStatusModel {
	model := JobStatusModel{
		Operation: s.Operation().String(),
		State:     string(s.State()),
		Total:     s.Total(),
		Succeeded: s.Succeeded(),
		Failed:    s.Failed(),
		Message:   s.Message(),
		StartedAt: s.StartedAt(),
	}
	if !s.FinishedAt().IsZero() {
		t := s.FinishedAt()
		model.FinishedAt = &t
	}
	return model
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
