package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskit/taskit-go/internal/middleware"
	"github.com/taskit/taskit-go/internal/model"
	"github.com/taskit/taskit-go/internal/service"
)

// TaskHandler handles HTTP requests for task operations. Every route sits
// behind the auth middleware; the owner always comes from the request
// context, never from the payload.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// HandleCreate handles POST /tasks requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	var req model.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		if errors.Is(err, service.ErrDescriptionRequired) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleList handles GET /tasks requests with optional completed, sort,
// limit and skip query parameters.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	q := service.ParseListQuery(
		r.URL.Query().Get("completed"),
		r.URL.Query().Get("sort"),
		r.URL.Query().Get("limit"),
		r.URL.Query().Get("skip"),
	)

	tasks, err := h.service.List(r.Context(), user.ID, q)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	if tasks == nil {
		tasks = []model.TaskResponse{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleGet handles GET /tasks/{id} requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PATCH /tasks/{id} requests.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var updates map[string]any
	if !decodeJSON(w, r, &updates) {
		return
	}

	resp, err := h.service.Update(r.Context(), user.ID, id, updates)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFieldNotAllowed),
			errors.Is(err, service.ErrInvalidFieldValue),
			errors.Is(err, service.ErrDescriptionRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrTaskNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /tasks/{id} requests, returning the removed
// task.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Delete(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"msg": "task deleted", "task": resp})
}

// taskID parses the {id} URL parameter. A malformed ID cannot name any
// existing task, so it reports not found.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse("task not found"))
		return 0, false
	}
	return id, true
}
