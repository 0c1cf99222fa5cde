// Package handler provides task handlers for processing queued operations.
package handler

import (
	"fmt"
	"time"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/errs"
)

// ExtractInt64 extracts an int64 value from the payload.
func ExtractInt64(payload map[string]any, key string) (int64, error) {
	val, ok := payload[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing required field: %s", errs.ErrValidation, key)
	}

	switch v := val.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: invalid type for %s: %T", errs.ErrValidation, key, val)
	}
}

// ExtractString extracts a string value from the payload.
func ExtractString(payload map[string]any, key string) (string, error) {
	val, ok := payload[key]
	if !ok {
		return "", fmt.Errorf("%w: missing required field: %s", errs.ErrValidation, key)
	}

	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: invalid type for %s: expected string, got %T", errs.ErrValidation, key, val)
	}

	return s, nil
}

// ExtractDate reads a YYYY-MM-DD date from the payload, falling back to
// the calendar date of now when the key is absent.
func ExtractDate(payload map[string]any, key string, now func() time.Time) (time.Time, error) {
	if _, ok := payload[key]; !ok {
		return calendar.Day(now()), nil
	}
	s, err := ExtractString(payload, key)
	if err != nil {
		return time.Time{}, err
	}
	return calendar.Parse(s)
}
