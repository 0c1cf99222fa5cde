package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/helixml/compset/internal/log"
)

// CorrelationIDHeader carries the correlation id in and out of a request.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID ensures every request carries a correlation id.
// An incoming header wins, then chi's request id, then a fresh UUID.
// The id is echoed in the response and attached to the context so log
// records emitted while serving the request include it.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" {
			id = chimiddleware.GetReqID(r.Context())
		}
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(CorrelationIDHeader, id)
		next.ServeHTTP(w, r.WithContext(log.WithCorrelationID(r.Context(), id)))
	})
}

// GetCorrelationID returns the correlation id for the request context.
func GetCorrelationID(ctx context.Context) string {
	if id := log.CorrelationID(ctx); id != "" {
		return id
	}
	return chimiddleware.GetReqID(ctx)
}
