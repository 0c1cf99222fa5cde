package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/compset"
	"github.com/helixml/compset/domain/task"
	"github.com/helixml/compset/infrastructure/api/jsonapi"
	"github.com/helixml/compset/infrastructure/api/middleware"
	"github.com/helixml/compset/infrastructure/api/v1/dto"
)

// JobsRouter handles the batch job endpoints.
type JobsRouter struct {
	client     *compset.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewJobsRouter creates a new JobsRouter.
func NewJobsRouter(client *compset.Client) *JobsRouter {
	return &JobsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for job endpoints.
func (r *JobsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Get("/{name}", r.Get)
	router.Post("/{name}", r.Enqueue)

	return router
}

func (r *JobsRouter) operation(w http.ResponseWriter, req *http.Request) (task.Operation, bool) {
	name := chi.URLParam(req, "name")
	op, ok := task.ParseJob(name)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusNotFound, "unknown job "+name, nil), r.logger)
		return "", false
	}
	return op, true
}

// List handles GET /api/v1/jobs.
//
//	@Summary		Job statuses
//	@Description	Most recent run of each batch job
//	@Tags			jobs
//	@Produce		json
//	@Success		200	{object}	jsonapi.Document
//	@Router			/jobs [get]
func (r *JobsRouter) List(w http.ResponseWriter, req *http.Request) {
	statuses, err := r.client.JobStatuses.FindAll(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.JobStatusResources(statuses)))
}

// Get handles GET /api/v1/jobs/{name}.
//
//	@Summary		Job status
//	@Tags			jobs
//	@Produce		json
//	@Param			name	path		string	true	"Job name (index or graph)"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		404		{object}	middleware.JSONAPIErrorResponse
//	@Router			/jobs/{name} [get]
func (r *JobsRouter) Get(w http.ResponseWriter, req *http.Request) {
	op, ok := r.operation(w, req)
	if !ok {
		return
	}
	status, err := r.client.JobStatuses.Get(req.Context(), op)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.JobStatusResource(status)))
}

// Enqueue handles POST /api/v1/jobs/{name}.
//
//	@Summary		Queue a batch job
//	@Description	Queues the index or graph job at user-initiated priority
//	@Tags			jobs
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string			true	"Job name (index or graph)"
//	@Param			body	body		dto.JobRequest	false	"Job date"
//	@Success		202		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/jobs/{name} [post]
func (r *JobsRouter) Enqueue(w http.ResponseWriter, req *http.Request) {
	op, ok := r.operation(w, req)
	if !ok {
		return
	}

	var body dto.JobRequest
	if err := decodeBody(req, &body, false); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	date, err := parseDate(body.Date, r.client.Index.Today)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	t, err := r.client.Tasks.EnqueueJob(req.Context(), op, date, task.PriorityUserInitiated)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusAccepted, jsonapi.NewSingleResponse(r.serializer.TaskResource(t)))
}
