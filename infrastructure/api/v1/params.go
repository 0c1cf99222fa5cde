package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/errs"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errs.ErrValidation, fmt.Sprintf(format, args...))
}

// pathID parses a positive integer URL parameter.
func pathID(req *http.Request, name string) (int64, error) {
	raw := chi.URLParam(req, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validationError("invalid %s %q", name, raw)
	}
	return id, nil
}

// queryInt parses an integer query parameter, returning def when absent.
func queryInt(req *http.Request, name string, def int) (int, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validationError("%s must be an integer", name)
	}
	return v, nil
}

// queryFloat parses a float query parameter, returning def when absent.
func queryFloat(req *http.Request, name string, def float64) (float64, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, validationError("%s must be a number", name)
	}
	return v, nil
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched
// unless required is set.
func decodeBody(req *http.Request, v any, required bool) error {
	dec := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) && !required {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return validationError("request body is required")
		}
		return validationError("invalid request body: %v", err)
	}
	return nil
}

// parseDate parses a YYYY-MM-DD date, falling back to today when empty.
func parseDate(raw string, today func() time.Time) (time.Time, error) {
	if raw == "" {
		return today(), nil
	}
	return calendar.Parse(raw)
}
