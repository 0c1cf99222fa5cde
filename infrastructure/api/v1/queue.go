package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/compset"
	"github.com/helixml/compset/application/service"
	"github.com/helixml/compset/domain/task"
	"github.com/helixml/compset/infrastructure/api/jsonapi"
	"github.com/helixml/compset/infrastructure/api/middleware"
)

// QueueRouter handles task queue API endpoints.
type QueueRouter struct {
	client     *compset.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewQueueRouter creates a new QueueRouter.
func NewQueueRouter(client *compset.Client) *QueueRouter {
	return &QueueRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for queue endpoints.
func (r *QueueRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Get("/{id}", r.Get)

	return router
}

// List handles GET /api/v1/queue.
//
//	@Summary		List pending tasks
//	@Description	Pending tasks, highest priority first
//	@Tags			queue
//	@Produce		json
//	@Param			operation	query		string	false	"Filter by operation"
//	@Param			page		query		int		false	"Page number (default: 1)"
//	@Param			page_size	query		int		false	"Results per page (default: 20, max: 100)"
//	@Success		200			{object}	jsonapi.Document
//	@Router			/queue [get]
func (r *QueueRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pg, err := parsePage(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	params := &service.TaskListParams{
		Limit:  pg.limit(),
		Offset: pg.offset(),
	}
	if op := req.URL.Query().Get("operation"); op != "" {
		operation := task.Operation(op)
		params.Operation = &operation
	}

	tasks, err := r.client.Tasks.List(ctx, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Tasks.Count(ctx, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.TaskResources(tasks))
	pg.annotate(doc, req.URL, total)
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// Get handles GET /api/v1/queue/{id}.
//
//	@Summary		Get task
//	@Tags			queue
//	@Produce		json
//	@Param			id	path		int	true	"Task ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	middleware.JSONAPIErrorResponse
//	@Router			/queue/{id} [get]
func (r *QueueRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	t, err := r.client.Tasks.Get(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.TaskResource(t)))
}
