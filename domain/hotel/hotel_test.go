package hotel

import (
	"testing"
	"time"

	"github.com/helixml/compset/domain/errs"
	"github.com/helixml/compset/domain/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func validRecord() Record {
	return Record{
		ExternalID:  "abc",
		Source:      "booking",
		Name:        " Hotel Lumière ",
		Latitude:    48.8566,
		Longitude:   2.3522,
		StarRating:  ptr(4),
		ReviewScore: ptr(8.6),
		ReviewCount: 120,
		Amenities:   []string{"WiFi", "pool", " wifi ", ""},
	}
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"missing external id", func(r *Record) { r.ExternalID = " " }},
		{"missing source", func(r *Record) { r.Source = "" }},
		{"missing name", func(r *Record) { r.Name = "" }},
		{"bad latitude", func(r *Record) { r.Latitude = 123 }},
		{"star rating above 5", func(r *Record) { r.StarRating = ptr(6) }},
		{"review score above 10", func(r *Record) { r.ReviewScore = ptr(11) }},
		{"negative review count", func(r *Record) { r.ReviewCount = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), errs.ErrValidation)
		})
	}
	assert.NoError(t, validRecord().Validate())
}

func TestNewHotel_NormalizesFields(t *testing.T) {
	seen := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	vec := []float64{1, 0}

	h, err := NewHotel(validRecord(), vec, seen)
	require.NoError(t, err)

	assert.Equal(t, "Hotel Lumière", h.Name())
	assert.Equal(t, []string{"wifi", "pool"}, h.Amenities())
	assert.Equal(t, seen, h.LastSeenAt())
	assert.Equal(t, 48.8566, h.Location().Latitude())

	vec[0] = 9
	assert.Equal(t, []float64{1, 0}, h.AmenityVector())
}

func TestNewHotel_RejectsInvalidLocation(t *testing.T) {
	r := validRecord()
	r.Longitude = 200

	_, err := NewHotel(r, nil, time.Now())
	assert.ErrorIs(t, err, geo.ErrInvalidLocation)
}

func TestNewRate(t *testing.T) {
	day := time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)

	r, err := NewRate(3, day, 129)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), r.Date())

	_, err = NewRate(3, day, 0)
	assert.ErrorIs(t, err, ErrInvalidRate)
	_, err = NewRate(0, day, 10)
	assert.ErrorIs(t, err, ErrInvalidRate)
	_, err = NewRate(1, time.Time{}, 10)
	assert.ErrorIs(t, err, ErrInvalidRate)
}
