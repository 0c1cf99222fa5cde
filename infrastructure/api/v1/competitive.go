// Package v1 provides the v1 API routes.
package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/compset"
	"github.com/helixml/compset/application/service"
	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/geo"
	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/domain/index"
	"github.com/helixml/compset/domain/property"
	"github.com/helixml/compset/infrastructure/api/jsonapi"
	"github.com/helixml/compset/infrastructure/api/middleware"
	"github.com/helixml/compset/infrastructure/api/v1/dto"
	"github.com/helixml/compset/internal/database"
)

// Query defaults of the competitive endpoints.
const (
	DefaultTrendDays       = 30
	DefaultCompetitorLimit = 10
	MaxCompetitorLimit     = 100
)

// CompetitiveRouter handles the per-property competitive intelligence endpoints.
type CompetitiveRouter struct {
	client     *compset.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewCompetitiveRouter creates a new CompetitiveRouter.
func NewCompetitiveRouter(client *compset.Client) *CompetitiveRouter {
	return &CompetitiveRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router, meant to be mounted at
// /properties/{propertyID}/competitive.
func (r *CompetitiveRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/latest", r.withProperty(r.Latest))
	router.Get("/trend", r.withProperty(r.Trend))
	router.Post("/compute", r.withProperty(r.Compute))
	router.Post("/build-graph", r.withProperty(r.BuildGraph))
	router.Get("/competitors", r.withProperty(r.Competitors))
	router.Get("/relationships", r.withProperty(r.Relationships))
	router.Post("/recompute", r.withProperty(r.Recompute))

	return router
}

type propertyHandler func(w http.ResponseWriter, req *http.Request, propertyID int64)

// withProperty parses the property id and, when ownership is enforced,
// checks the caller owns it. Missing and foreign properties both yield 404.
func (r *CompetitiveRouter) withProperty(next propertyHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		propertyID, err := pathID(req, "propertyID")
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		if err := r.authorize(req.Context(), propertyID); err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		next(w, req, propertyID)
	}
}

func (r *CompetitiveRouter) authorize(ctx context.Context, propertyID int64) error {
	if !r.client.EnforceOwnership() {
		return nil
	}
	owner, ok := middleware.UserID(ctx)
	if !ok {
		return middleware.NewAuthenticationError("missing caller identity")
	}
	p, err := r.client.Properties.Get(ctx, propertyID)
	if errors.Is(err, database.ErrNotFound) {
		return middleware.NewAPIError(http.StatusNotFound, "property not found", nil)
	}
	if err != nil {
		return err
	}
	if !p.OwnedBy(owner) {
		return middleware.NewAPIError(http.StatusNotFound, "property not found", nil)
	}
	return nil
}

// Latest handles GET /api/v1/properties/{propertyID}/competitive/latest.
//
//	@Summary		Latest neighborhood index
//	@Description	Most recent index snapshot of the property, or null when none exists
//	@Tags			competitive
//	@Produce		json
//	@Param			propertyID	path		int	true	"Property ID"
//	@Success		200			{object}	dto.SnapshotResponse
//	@Failure		404			{object}	middleware.JSONAPIErrorResponse
//	@Router			/properties/{propertyID}/competitive/latest [get]
func (r *CompetitiveRouter) Latest(w http.ResponseWriter, req *http.Request, propertyID int64) {
	snap, err := r.client.Index.Latest(req.Context(), propertyID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resp := dto.SnapshotResponse{}
	if snap != nil {
		data := snapshotToDTO(*snap)
		resp.Data = &data
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Trend handles GET /api/v1/properties/{propertyID}/competitive/trend.
//
//	@Summary		Index trend
//	@Description	Daily index values of the last N days, oldest first
//	@Tags			competitive
//	@Produce		json
//	@Param			propertyID	path		int	true	"Property ID"
//	@Param			days		query		int	false	"Window in days, 1-90 (default: 30)"
//	@Success		200			{object}	dto.TrendResponse
//	@Failure		400			{object}	middleware.JSONAPIErrorResponse
//	@Router			/properties/{propertyID}/competitive/trend [get]
func (r *CompetitiveRouter) Trend(w http.ResponseWriter, req *http.Request, propertyID int64) {
	days, err := queryInt(req, "days", DefaultTrendDays)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	points, err := r.client.Index.Trend(req.Context(), propertyID, days)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := make([]dto.TrendPoint, len(points))
	for i, p := range points {
		data[i] = dto.TrendPoint{
			Date:                      calendar.Format(p.Date),
			OverallIndex:              p.OverallIndex,
			PriceCompetitivenessScore: p.PriceCompetitiveness,
		}
	}
	middleware.WriteJSON(w, http.StatusOK, dto.TrendResponse{Data: data})
}

// Compute handles POST /api/v1/properties/{propertyID}/competitive/compute.
//
//	@Summary		Compute neighborhood index
//	@Description	Synchronously computes and stores the index for a date
//	@Tags			competitive
//	@Accept			json
//	@Produce		json
//	@Param			propertyID	path		int					true	"Property ID"
//	@Param			body		body		dto.ComputeRequest	true	"Compute request"
//	@Success		200			{object}	dto.SnapshotResponse
//	@Failure		400			{object}	middleware.JSONAPIErrorResponse
//	@Router			/properties/{propertyID}/competitive/compute [post]
func (r *CompetitiveRouter) Compute(w http.ResponseWriter, req *http.Request, propertyID int64) {
	var body dto.ComputeRequest
	if err := decodeBody(req, &body, true); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if body.Date == "" {
		middleware.WriteError(w, req, service.ErrInvalidDate, r.logger)
		return
	}
	date, err := calendar.Parse(body.Date)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	snap, err := r.client.Index.Compute(req.Context(), service.ComputeRequest{
		PropertyID:    propertyID,
		Date:          date,
		PropertyPrice: body.PropertyPrice,
		Attributes:    attributesFromDTO(body.PropertyAttributes),
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := snapshotToDTO(snap)
	middleware.WriteJSON(w, http.StatusOK, dto.SnapshotResponse{Data: &data})
}

// BuildGraph handles POST /api/v1/properties/{propertyID}/competitive/build-graph.
//
//	@Summary		Build similarity graph
//	@Description	Ranks nearby competitor hotels and replaces the property's relationships
//	@Tags			competitive
//	@Accept			json
//	@Produce		json
//	@Param			propertyID	path		int						true	"Property ID"
//	@Param			body		body		dto.BuildGraphRequest	true	"Build request"
//	@Success		200			{object}	dto.BuildGraphResponse
//	@Failure		400			{object}	middleware.JSONAPIErrorResponse
//	@Failure		404			{object}	middleware.JSONAPIErrorResponse
//	@Router			/properties/{propertyID}/competitive/build-graph [post]
func (r *CompetitiveRouter) BuildGraph(w http.ResponseWriter, req *http.Request, propertyID int64) {
	ctx := req.Context()

	var body dto.BuildGraphRequest
	if err := decodeBody(req, &body, true); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if body.Location == nil || body.Location.Latitude == nil || body.Location.Longitude == nil {
		middleware.WriteError(w, req, validationError("location with latitude and longitude is required"), r.logger)
		return
	}
	loc, err := geo.NewLocation(*body.Location.Latitude, *body.Location.Longitude)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	attrs, err := r.buildAttributes(ctx, propertyID, body.Attributes)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	count, err := r.client.Graph.Build(ctx, propertyID, loc, attrs, buildOptionsFromDTO(r.client.BuildOptions(), body.Options))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.BuildGraphResponse{
		Data: dto.BuildGraphResult{PropertyID: propertyID, RelationshipsCreated: count},
	})
}

// buildAttributes prefers the request's attributes and falls back to the
// stored property. Edges are only stored for properties that exist, so an
// unknown property is a 404 even when ownership is not enforced.
func (r *CompetitiveRouter) buildAttributes(ctx context.Context, propertyID int64, in *dto.AttributesRequest) (property.Attributes, error) {
	p, err := r.client.Properties.Get(ctx, propertyID)
	if errors.Is(err, database.ErrNotFound) {
		return property.Attributes{}, middleware.NewAPIError(http.StatusNotFound, "property not found", nil)
	}
	if err != nil {
		return property.Attributes{}, err
	}
	if attrs := attributesFromDTO(in); attrs != nil {
		return *attrs, nil
	}
	return p.Attributes(), nil
}

// Competitors handles GET /api/v1/properties/{propertyID}/competitive/competitors.
//
//	@Summary		Top competitors
//	@Description	Ranked competitors with hotel detail
//	@Tags			competitive
//	@Produce		json
//	@Param			propertyID	path		int	true	"Property ID"
//	@Param			limit		query		int	false	"Maximum competitors (default: 10, max: 100)"
//	@Success		200			{object}	dto.CompetitorListResponse
//	@Router			/properties/{propertyID}/competitive/competitors [get]
func (r *CompetitiveRouter) Competitors(w http.ResponseWriter, req *http.Request, propertyID int64) {
	limit, err := queryInt(req, "limit", DefaultCompetitorLimit)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if limit < 1 || limit > MaxCompetitorLimit {
		middleware.WriteError(w, req, validationError("limit must be within 1..%d", MaxCompetitorLimit), r.logger)
		return
	}

	competitors, err := r.client.Graph.Competitors(req.Context(), propertyID, limit)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := make([]dto.CompetitorData, len(competitors))
	for i, c := range competitors {
		data[i] = competitorToDTO(c)
	}
	middleware.WriteJSON(w, http.StatusOK, dto.CompetitorListResponse{Data: data})
}

// Relationships handles GET /api/v1/properties/{propertyID}/competitive/relationships.
//
//	@Summary		Relationships
//	@Description	Competitor edges in rank order, filtered by minimum similarity
//	@Tags			competitive
//	@Produce		json
//	@Param			propertyID		path		int		true	"Property ID"
//	@Param			limit			query		int		false	"Maximum edges (default: all)"
//	@Param			min_similarity	query		number	false	"Minimum overall similarity, 0-1"
//	@Success		200				{object}	dto.RelationshipListResponse
//	@Router			/properties/{propertyID}/competitive/relationships [get]
func (r *CompetitiveRouter) Relationships(w http.ResponseWriter, req *http.Request, propertyID int64) {
	limit, err := queryInt(req, "limit", 0)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if limit < 0 {
		middleware.WriteError(w, req, validationError("limit must not be negative"), r.logger)
		return
	}
	param := "min_similarity"
	if req.URL.Query().Has("minSimilarity") {
		param = "minSimilarity"
	}
	minSimilarity, err := queryFloat(req, param, 0)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if minSimilarity < 0 || minSimilarity > 1 {
		middleware.WriteError(w, req, validationError("min_similarity must be within 0..1"), r.logger)
		return
	}

	rels, err := r.client.Graph.Relationships(req.Context(), propertyID, limit, minSimilarity)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := make([]dto.RelationshipData, len(rels))
	for i, rel := range rels {
		data[i] = relationshipToDTO(rel)
	}
	middleware.WriteJSON(w, http.StatusOK, dto.RelationshipListResponse{Data: data})
}

// Recompute handles POST /api/v1/properties/{propertyID}/competitive/recompute.
//
//	@Summary		Queue recompute
//	@Description	Queues a graph rebuild followed by an index computation
//	@Tags			competitive
//	@Produce		json
//	@Param			propertyID	path		int		true	"Property ID"
//	@Param			date		query		string	false	"Index date, YYYY-MM-DD (default: today)"
//	@Success		202			{object}	jsonapi.Document
//	@Router			/properties/{propertyID}/competitive/recompute [post]
func (r *CompetitiveRouter) Recompute(w http.ResponseWriter, req *http.Request, propertyID int64) {
	date, err := parseDate(req.URL.Query().Get("date"), r.client.Index.Today)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	tasks, err := r.client.Tasks.EnqueueRecompute(req.Context(), propertyID, date)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, jsonapi.NewListResponse(r.serializer.TaskResources(tasks)))
}

func attributesFromDTO(in *dto.AttributesRequest) *property.Attributes {
	if in == nil {
		return nil
	}
	return &property.Attributes{
		StarRating:  in.StarRating,
		ReviewScore: in.ReviewScore,
		Amenities:   in.Amenities,
	}
}

func buildOptionsFromDTO(base graph.BuildOptions, in *dto.BuildOptionsRequest) graph.BuildOptions {
	opts := []graph.BuildOption{
		graph.WithMaxDistanceKm(base.MaxDistanceKm()),
		graph.WithMaxCompetitors(base.MaxCompetitors()),
		graph.WithWeights(base.Weights()),
	}
	if in != nil {
		if in.MaxDistanceKm != nil {
			opts = append(opts, graph.WithMaxDistanceKm(*in.MaxDistanceKm))
		}
		if in.MaxCompetitors != nil {
			opts = append(opts, graph.WithMaxCompetitors(*in.MaxCompetitors))
		}
		if in.Weights != nil {
			opts = append(opts, graph.WithWeights(*in.Weights))
		}
	}
	return graph.NewBuildOptions(opts...)
}

func snapshotToDTO(s index.Snapshot) dto.SnapshotData {
	data := dto.SnapshotData{
		ID:                        s.ID(),
		PropertyID:                s.PropertyID(),
		Date:                      calendar.Format(s.Date()),
		OverallIndex:              s.OverallIndex(),
		PriceCompetitivenessScore: s.PriceCompetitiveness(),
		ValueScore:                s.ValueScore(),
		PositioningScore:          s.PositioningScore(),
		MarketPosition:            string(s.MarketPosition()),
		CompetitorsAnalyzed:       s.CompetitorsAnalyzed(),
		CompetitiveAdvantages:     s.Advantages(),
		CompetitiveWeaknesses:     s.Weaknesses(),
		CreatedAt:                 s.CreatedAt(),
		UpdatedAt:                 s.UpdatedAt(),
	}
	if p, ok := s.Pricing(); ok {
		data.PropertyPrice = &p.PropertyPrice
		data.NeighborhoodMedianPrice = &p.MedianPrice
		data.NeighborhoodAvgPrice = &p.AvgPrice
		data.PricePercentile = &p.Percentile
	}
	changes := s.Changes()
	data.IndexChange1d = changes.Day
	data.IndexChange7d = changes.Week
	data.IndexChange30d = changes.Month
	if data.CompetitiveAdvantages == nil {
		data.CompetitiveAdvantages = []string{}
	}
	if data.CompetitiveWeaknesses == nil {
		data.CompetitiveWeaknesses = []string{}
	}
	return data
}

func relationshipToDTO(r graph.Relationship) dto.RelationshipData {
	return dto.RelationshipData{
		HotelID:           r.HotelID(),
		SimilarityRank:    r.Rank(),
		GeoSimilarity:     r.GeoSimilarity(),
		AmenitySimilarity: r.AmenitySimilarity(),
		ReviewSimilarity:  r.ReviewSimilarity(),
		OverallSimilarity: r.OverallSimilarity(),
		DistanceKm:        r.DistanceKm(),
		Weights:           r.Weights(),
		CreatedAt:         r.CreatedAt(),
	}
}

func competitorToDTO(c graph.Competitor) dto.CompetitorData {
	loc := c.Hotel.Location()
	return dto.CompetitorData{
		RelationshipData: relationshipToDTO(c.Relationship),
		Hotel: dto.CompetitorHotel{
			ID:          c.Hotel.ID(),
			Name:        c.Hotel.Name(),
			Source:      c.Hotel.Source(),
			Latitude:    loc.Latitude(),
			Longitude:   loc.Longitude(),
			StarRating:  c.Hotel.StarRating(),
			ReviewScore: c.Hotel.ReviewScore(),
			ReviewCount: c.Hotel.ReviewCount(),
			Amenities:   c.Hotel.Amenities(),
		},
	}
}
