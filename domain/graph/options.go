package graph

import (
	"fmt"

	"github.com/helixml/compset/domain/errs"
)

// Default build parameters.
const (
	DefaultMaxDistanceKm  = 10.0
	DefaultMaxCompetitors = 50
)

// BuildOptions parameterize one graph build.
type BuildOptions struct {
	maxDistanceKm  float64
	maxCompetitors int
	weights        Weights
}

// BuildOption configures BuildOptions.
type BuildOption func(*BuildOptions)

// NewBuildOptions returns the defaults with opts applied in order.
func NewBuildOptions(opts ...BuildOption) BuildOptions {
	o := BuildOptions{
		maxDistanceKm:  DefaultMaxDistanceKm,
		maxCompetitors: DefaultMaxCompetitors,
		weights:        DefaultWeights(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxDistanceKm sets the search radius.
func WithMaxDistanceKm(km float64) BuildOption {
	return func(o *BuildOptions) { o.maxDistanceKm = km }
}

// WithMaxCompetitors caps the number of relationships kept.
func WithMaxCompetitors(n int) BuildOption {
	return func(o *BuildOptions) { o.maxCompetitors = n }
}

// WithWeights sets the similarity weights.
func WithWeights(w Weights) BuildOption {
	return func(o *BuildOptions) { o.weights = w }
}

// MaxDistanceKm returns the search radius.
func (o BuildOptions) MaxDistanceKm() float64 { return o.maxDistanceKm }

// MaxCompetitors returns the relationship cap.
func (o BuildOptions) MaxCompetitors() int { return o.maxCompetitors }

// Weights returns the similarity weights.
func (o BuildOptions) Weights() Weights { return o.weights }

// Validate checks the radius, cap and weights.
func (o BuildOptions) Validate() error {
	if o.maxDistanceKm <= 0 {
		return fmt.Errorf("%w: max distance must be positive", errs.ErrValidation)
	}
	if o.maxCompetitors <= 0 {
		return fmt.Errorf("%w: max competitors must be positive", errs.ErrValidation)
	}
	return o.weights.Validate()
}
