package vectorizer

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/domain/hotel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func TestDefaultDictionary(t *testing.T) {
	d := DefaultDictionary()
	assert.GreaterOrEqual(t, len(d.Categories), 25)
	assert.NoError(t, d.Validate())
}

func TestVectorize_Normalized(t *testing.T) {
	v := NewDefault()
	stars := 4.0

	vec := v.Vectorize(hotel.Features{Amenities: []string{"Free WiFi", "Outdoor Pool", "Spa"}, StarRating: &stars})

	require.Len(t, vec, v.Dimension())
	assert.InDelta(t, 1.0, norm(vec), 1e-9)
	for _, x := range vec {
		assert.GreaterOrEqual(t, x, 0.0)
	}
}

func TestVectorize_ZeroAmenitiesIsZeroVector(t *testing.T) {
	v := NewDefault()
	stars := 5.0

	for _, amenities := range [][]string{nil, {}, {"  "}, {"unknown thing"}} {
		vec := v.Vectorize(hotel.Features{Amenities: amenities, StarRating: &stars})
		assert.Len(t, vec, v.Dimension())
		assert.Zero(t, norm(vec))
	}
}

func TestVectorize_SimilarAmenitiesAreClose(t *testing.T) {
	v := NewDefault()

	a := v.Vectorize(hotel.Features{Amenities: []string{"wifi", "pool", "spa", "restaurant"}})
	b := v.Vectorize(hotel.Features{Amenities: []string{"Wi-Fi", "swimming pool", "massage", "restaurant"}})
	c := v.Vectorize(hotel.Features{Amenities: []string{"kitchenette", "laundry"}})

	assert.InDelta(t, 1.0, graph.AmenitySimilarity(a, b), 1e-9)
	assert.Less(t, graph.AmenitySimilarity(a, c), 0.1)
	assert.Equal(t, graph.AmenitySimilarity(a, c), graph.AmenitySimilarity(c, a))
}

func TestLoadDictionary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
star_weight: 0
categories:
  - name: wifi
    weight: 1
    keywords: [WiFi]
  - name: pool
    weight: 2
    keywords: [pool]
`), 0o600))

	d, err := LoadDictionary(path)
	require.NoError(t, err)
	v := NewWeighted(d)
	assert.Equal(t, 3, v.Dimension())
	assert.Equal(t, []string{"wifi", "pool"}, v.Categories())

	vec := v.Vectorize(hotel.Features{Amenities: []string{"pool"}})
	assert.Equal(t, []float64{0, 1, 0}, vec)

	def, err := LoadDictionary("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDictionary().Categories, def.Categories)
}

func TestParseDictionary_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":     `categories: []`,
		"duplicate": "categories:\n  - {name: a, weight: 1, keywords: [a]}\n  - {name: a, weight: 1, keywords: [b]}",
		"weight":    "categories:\n  - {name: a, weight: 0, keywords: [a]}",
		"keywords":  "categories:\n  - {name: a, weight: 1}",
		"yaml":      "categories: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDictionary([]byte(body))
			assert.ErrorIs(t, err, ErrInvalidDictionary)
		})
	}
}
