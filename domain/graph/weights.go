// Package graph builds and stores the competitor similarity graph of a property.
package graph

import (
	"fmt"
	"math"

	"github.com/helixml/compset/domain/errs"
)

// ErrInvalidWeights indicates weights that are negative or do not sum to 1.
var ErrInvalidWeights = fmt.Errorf("%w: invalid similarity weights", errs.ErrValidation)

const weightTolerance = 1e-6

// Weights combine the three similarity signals into overall similarity.
type Weights struct {
	Geo     float64 `json:"geo"`
	Amenity float64 `json:"amenity"`
	Review  float64 `json:"review"`
}

// DefaultWeights returns the 0.4/0.3/0.3 split.
func DefaultWeights() Weights {
	return Weights{Geo: 0.4, Amenity: 0.3, Review: 0.3}
}

// Validate checks every weight is non-negative and the sum is 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Geo, w.Amenity, w.Review} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: weights must be non-negative", ErrInvalidWeights)
		}
	}
	if sum := w.Geo + w.Amenity + w.Review; math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1", ErrInvalidWeights, sum)
	}
	return nil
}

// Combine returns the weighted sum of the three similarities, clamped to [0,1].
func (w Weights) Combine(geo, amenity, review float64) float64 {
	return Clamp01(w.Geo*geo + w.Amenity*amenity + w.Review*review)
}
