// Package service implements the application services of the competitive
// intelligence subsystem: the hotel registry, graph builder, index
// calculator and the task queue that runs them in the background.
package service

import (
	"fmt"

	"github.com/helixml/compset/domain/errs"
)

// ErrInvalidPropertyID indicates a missing or non-positive property ID.
var ErrInvalidPropertyID = fmt.Errorf("%w: property id is required", errs.ErrValidation)

// ErrInvalidDate indicates a missing computation date.
var ErrInvalidDate = fmt.Errorf("%w: date is required", errs.ErrValidation)

// ErrInvalidTrendWindow indicates a trend window outside 1..90 days.
var ErrInvalidTrendWindow = fmt.Errorf("%w: days must be within 1..%d", errs.ErrValidation, MaxTrendDays)

// MaxTrendDays bounds the trend window.
const MaxTrendDays = 90
