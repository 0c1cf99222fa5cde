package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/compset"
	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/geo"
	"github.com/helixml/compset/domain/hotel"
	"github.com/helixml/compset/infrastructure/api/jsonapi"
	"github.com/helixml/compset/infrastructure/api/middleware"
	"github.com/helixml/compset/infrastructure/api/v1/dto"
)

// DefaultNearbyRadiusKm is the search radius when radius_km is omitted.
const DefaultNearbyRadiusKm = 5.0

// HotelsRouter handles the competitor hotel registry endpoints.
type HotelsRouter struct {
	client     *compset.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewHotelsRouter creates a new HotelsRouter.
func NewHotelsRouter(client *compset.Client) *HotelsRouter {
	return &HotelsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for hotel endpoints.
func (r *HotelsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Upsert)
	router.Get("/nearby", r.Nearby)
	router.Get("/{id}", r.Get)
	router.Post("/{id}/rates", r.RecordRate)

	return router
}

// Upsert handles POST /api/v1/hotels.
//
//	@Summary		Upsert competitor hotel
//	@Description	Creates or refreshes a hotel keyed by external_id and source
//	@Tags			hotels
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.HotelRequest	true	"Hotel record"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	middleware.JSONAPIErrorResponse
//	@Security		APIKeyAuth
//	@Router			/hotels [post]
func (r *HotelsRouter) Upsert(w http.ResponseWriter, req *http.Request) {
	var body dto.HotelRequest
	if err := decodeBody(req, &body, true); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if body.Latitude == nil || body.Longitude == nil {
		middleware.WriteError(w, req, validationError("latitude and longitude are required"), r.logger)
		return
	}

	h, err := r.client.Hotels.Upsert(req.Context(), hotel.Record{
		ExternalID:  body.ExternalID,
		Source:      body.Source,
		Name:        body.Name,
		Latitude:    *body.Latitude,
		Longitude:   *body.Longitude,
		StarRating:  body.StarRating,
		ReviewScore: body.ReviewScore,
		ReviewCount: body.ReviewCount,
		Amenities:   body.Amenities,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.HotelResource(h)))
}

// Get handles GET /api/v1/hotels/{id}.
//
//	@Summary		Get competitor hotel
//	@Tags			hotels
//	@Produce		json
//	@Param			id	path		int	true	"Hotel ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	middleware.JSONAPIErrorResponse
//	@Router			/hotels/{id} [get]
func (r *HotelsRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	h, err := r.client.Hotels.Get(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.HotelResource(h)))
}

// Nearby handles GET /api/v1/hotels/nearby.
//
//	@Summary		Hotels near a point
//	@Description	Hotels within radius_km of lat/lon, nearest first
//	@Tags			hotels
//	@Produce		json
//	@Param			lat			query		number	true	"Latitude"
//	@Param			lon			query		number	true	"Longitude"
//	@Param			radius_km	query		number	false	"Radius in km (default: 5)"
//	@Success		200			{object}	jsonapi.Document
//	@Failure		400			{object}	middleware.JSONAPIErrorResponse
//	@Router			/hotels/nearby [get]
func (r *HotelsRouter) Nearby(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	if q.Get("lat") == "" || q.Get("lon") == "" {
		middleware.WriteError(w, req, validationError("lat and lon are required"), r.logger)
		return
	}
	lat, err := queryFloat(req, "lat", 0)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	lon, err := queryFloat(req, "lon", 0)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	radius, err := queryFloat(req, "radius_km", DefaultNearbyRadiusKm)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	center, err := geo.NewLocation(lat, lon)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	nearby, err := r.client.Hotels.FindNearby(req.Context(), center, radius)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resources := make([]*jsonapi.Resource, len(nearby))
	for i, n := range nearby {
		resources[i] = r.serializer.NearbyHotelResource(n.Hotel, n.DistanceKm)
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(resources))
}

// RecordRate handles POST /api/v1/hotels/{id}/rates.
//
//	@Summary		Record observed rate
//	@Description	Stores a nightly rate observed for the hotel on a date
//	@Tags			hotels
//	@Accept			json
//	@Param			id		path	int				true	"Hotel ID"
//	@Param			body	body	dto.RateRequest	true	"Rate"
//	@Success		204
//	@Failure		400	{object}	middleware.JSONAPIErrorResponse
//	@Failure		404	{object}	middleware.JSONAPIErrorResponse
//	@Security		APIKeyAuth
//	@Router			/hotels/{id}/rates [post]
func (r *HotelsRouter) RecordRate(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.RateRequest
	if err := decodeBody(req, &body, true); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	date, err := calendar.Parse(body.Date)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Hotels.RecordRate(req.Context(), id, date, body.Price); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
