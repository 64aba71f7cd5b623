package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/taskrank/internal/adapters/repository"
	service "github.com/okian/taskrank/internal/app"
)

// TasksHandler serves the task archive.
type TasksHandler struct {
	deps ArchiveDependencies
}

// NewTasksHandler creates a new archive handler.
func NewTasksHandler(deps ArchiveDependencies) *TasksHandler {
	return &TasksHandler{deps: deps}
}

type tasksResponse struct {
	Tasks []repository.Record `json:"tasks"`
	Count int                 `json:"count"`
	Limit int                 `json:"limit"`
}

// HandleList handles GET /api/tasks/?limit=N.
func (h *TasksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.tasks.list"
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	records, err := h.deps.StoredTasks(r.Context(), limit)
	if err != nil {
		writeArchiveError(w, op, err)
		return
	}
	if records == nil {
		records = []repository.Record{}
	}
	writeJSON(w, http.StatusOK, tasksResponse{Tasks: records, Count: len(records), Limit: limit})
}

// HandleGet handles GET /api/tasks/{id}.
func (h *TasksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.tasks.get"
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing task id")))
		return
	}

	rec, err := h.deps.StoredTask(r.Context(), id)
	if err != nil {
		writeArchiveError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return repository.DefaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > repository.MaxListLimit {
		return 0, fmt.Errorf("limit must be an integer between 1 and %d", repository.MaxListLimit)
	}
	return n, nil
}

func writeArchiveError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrStoreDisabled):
		writeError(w, http.StatusNotFound, "archive_disabled", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeFailure(w, http.StatusInternalServerError, "archive read failed", Wrap(op, err))
	}
}
