// Package vectorizer maps amenity lists onto fixed-dimension feature vectors
// using a weighted category dictionary.
package vectorizer

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/helixml/compset/domain/hotel"
	"gopkg.in/yaml.v3"
)

//go:embed dictionary.yaml
var defaultDictionary []byte

// ErrInvalidDictionary indicates a dictionary file that cannot be used.
var ErrInvalidDictionary = errors.New("invalid amenity dictionary")

// Category is one weighted dimension of the vector.
type Category struct {
	Name     string   `yaml:"name"`
	Weight   float64  `yaml:"weight"`
	Keywords []string `yaml:"keywords"`
}

// Dictionary is the set of categories plus the weight of the star-class
// dimension appended after them.
type Dictionary struct {
	Version    int        `yaml:"version"`
	StarWeight float64    `yaml:"star_weight"`
	Categories []Category `yaml:"categories"`
}

// Validate checks the dictionary has usable categories.
func (d Dictionary) Validate() error {
	if len(d.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidDictionary)
	}
	if d.StarWeight < 0 {
		return fmt.Errorf("%w: star_weight must not be negative", ErrInvalidDictionary)
	}
	seen := make(map[string]struct{}, len(d.Categories))
	for _, c := range d.Categories {
		if c.Name == "" {
			return fmt.Errorf("%w: category without a name", ErrInvalidDictionary)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidDictionary, c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Weight <= 0 {
			return fmt.Errorf("%w: category %q weight must be positive", ErrInvalidDictionary, c.Name)
		}
		if len(c.Keywords) == 0 {
			return fmt.Errorf("%w: category %q has no keywords", ErrInvalidDictionary, c.Name)
		}
	}
	return nil
}

// ParseDictionary decodes and validates a YAML dictionary.
func ParseDictionary(data []byte) (Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Dictionary{}, fmt.Errorf("%w: %v", ErrInvalidDictionary, err)
	}
	for i := range d.Categories {
		for j, k := range d.Categories[i].Keywords {
			d.Categories[i].Keywords[j] = words(k)
		}
	}
	if err := d.Validate(); err != nil {
		return Dictionary{}, err
	}
	return d, nil
}

// DefaultDictionary returns the built-in dictionary.
func DefaultDictionary() Dictionary {
	d, err := ParseDictionary(defaultDictionary)
	if err != nil {
		panic(fmt.Sprintf("embedded amenity dictionary: %v", err))
	}
	return d
}

// LoadDictionary reads a dictionary from path, or returns the built-in one
// when path is empty.
func LoadDictionary(path string) (Dictionary, error) {
	if path == "" {
		return DefaultDictionary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, fmt.Errorf("read amenity dictionary: %w", err)
	}
	return ParseDictionary(data)
}

// Weighted implements hotel.Vectorizer over a Dictionary.
type Weighted struct {
	dict Dictionary
}

var _ hotel.Vectorizer = Weighted{}

// NewWeighted creates a vectorizer for dict.
func NewWeighted(dict Dictionary) Weighted {
	return Weighted{dict: dict}
}

// NewDefault creates a vectorizer over the built-in dictionary.
func NewDefault() Weighted {
	return NewWeighted(DefaultDictionary())
}

// Dimension is one per category plus the star-class dimension.
func (w Weighted) Dimension() int {
	return len(w.dict.Categories) + 1
}

// Vectorize sets each matched category to its weight and the star-class
// dimension to star_rating/5 × star_weight, then L2-normalizes. An input
// with no recognised amenities is the zero vector, whatever its stars.
func (w Weighted) Vectorize(f hotel.Features) []float64 {
	vec := make([]float64, w.Dimension())

	var matched bool
	for _, amenity := range hotel.NormalizeAmenities(f.Amenities) {
		amenity = words(amenity)
		for i, c := range w.dict.Categories {
			if matches(amenity, c.Keywords) {
				vec[i] = c.Weight
				matched = true
			}
		}
	}
	if !matched {
		return vec
	}

	if f.StarRating != nil {
		stars := math.Max(0, math.Min(5, *f.StarRating))
		vec[len(vec)-1] = stars / 5 * w.dict.StarWeight
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Categories returns the category names in dimension order.
func (w Weighted) Categories() []string {
	names := make([]string, len(w.dict.Categories))
	for i, c := range w.dict.Categories {
		names[i] = c.Name
	}
	return names
}

// matches reports whether any keyword occurs in amenity as a whole-word
// sequence, so "bar" does not match "barbecue".
func matches(amenity string, keywords []string) bool {
	padded := " " + amenity + " "
	for _, k := range keywords {
		if k != "" && strings.Contains(padded, " "+k+" ") {
			return true
		}
	}
	return false
}

// words lower-cases s and reduces it to space-separated alphanumeric words.
func words(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
