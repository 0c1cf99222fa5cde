package jsonapi

import (
	"strconv"
	"time"

	"github.com/helixml/compset/domain/hotel"
	"github.com/helixml/compset/domain/task"
)

// HotelAttributes represents competitor hotel attributes in JSON:API format.
type HotelAttributes struct {
	ExternalID  string    `json:"external_id"`
	Source      string    `json:"source"`
	Name        string    `json:"name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	StarRating  *float64  `json:"star_rating"`
	ReviewScore *float64  `json:"review_score"`
	ReviewCount int       `json:"review_count"`
	Amenities   []string  `json:"amenities"`
	DistanceKm  *float64  `json:"distance_km,omitempty"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskAttributes represents queued task attributes in JSON:API format.
type TaskAttributes struct {
	Type      string         `json:"type"`
	Priority  int            `json:"priority"`
	Payload   map[string]any `json:"payload"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// JobStatusAttributes represents the last run of a batch job.
type JobStatusAttributes struct {
	State      string     `json:"state"`
	Total      int        `json:"total"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Serializer converts domain objects to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// HotelResource converts a competitor hotel to a JSON:API resource.
func (s *Serializer) HotelResource(h hotel.Hotel) *Resource {
	return NewResource("hotel", strconv.FormatInt(h.ID(), 10), hotelAttributes(h))
}

// NearbyHotelResource converts a hotel found by radius search, with its
// distance from the search center.
func (s *Serializer) NearbyHotelResource(h hotel.Hotel, distanceKm float64) *Resource {
	attrs := hotelAttributes(h)
	attrs.DistanceKm = &distanceKm
	return NewResource("hotel", strconv.FormatInt(h.ID(), 10), attrs)
}

func hotelAttributes(h hotel.Hotel) *HotelAttributes {
	loc := h.Location()
	return &HotelAttributes{
		ExternalID:  h.ExternalID(),
		Source:      h.Source(),
		Name:        h.Name(),
		Latitude:    loc.Latitude(),
		Longitude:   loc.Longitude(),
		StarRating:  h.StarRating(),
		ReviewScore: h.ReviewScore(),
		ReviewCount: h.ReviewCount(),
		Amenities:   h.Amenities(),
		LastSeenAt:  h.LastSeenAt(),
		UpdatedAt:   h.UpdatedAt(),
	}
}

// TaskResource converts a task to a JSON:API resource.
func (s *Serializer) TaskResource(t task.Task) *Resource {
	createdAt := t.CreatedAt()
	updatedAt := t.UpdatedAt()

	attrs := &TaskAttributes{
		Type:      t.Operation().String(),
		Priority:  t.Priority(),
		Payload:   t.Payload(),
		CreatedAt: &createdAt,
		UpdatedAt: &updatedAt,
	}
	return NewResource("task", strconv.FormatInt(t.ID(), 10), attrs)
}

// TaskResources converts multiple tasks to JSON:API resources.
func (s *Serializer) TaskResources(tasks []task.Task) []*Resource {
	resources := make([]*Resource, len(tasks))
	for i, t := range tasks {
		resources[i] = s.TaskResource(t)
	}
	return resources
}

// JobStatusResource converts a job run status to a JSON:API resource.
func (s *Serializer) JobStatusResource(status task.Status) *Resource {
	attrs := &JobStatusAttributes{
		State:     string(status.State()),
		Total:     status.Total(),
		Succeeded: status.Succeeded(),
		Failed:    status.Failed(),
		Message:   status.Message(),
		StartedAt: status.StartedAt(),
	}
	if finished := status.FinishedAt(); !finished.IsZero() {
		attrs.FinishedAt = &finished
	}
	return NewResource("job_status", status.Operation().String(), attrs)
}

// JobStatusResources converts multiple statuses to JSON:API resources.
func (s *Serializer) JobStatusResources(statuses []task.Status) []*Resource {
	resources := make([]*Resource, len(statuses))
	for i, status := range statuses {
		resources[i] = s.JobStatusResource(status)
	}
	return resources
}
