package api

import (
	"errors"
	"net/http"

	service "github.com/okian/taskrank/internal/app"
	"github.com/okian/taskrank/pkg/logger"
)

// AnalyzeHandler handles POST /api/tasks/analyze/.
type AnalyzeHandler struct {
	deps   RankDependencies
	limits limits
	logger logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps RankDependencies, lim limits, log logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps, limits: lim, logger: log}
}

// HandleAnalyze scores and ranks every task in the request body.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			WrapKind(op, ErrMethodNotAllowed, errors.New("only POST allowed")))
		return
	}

	req, err := decodeRankRequest(op, w, r, h.limits, true)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	res, err := h.deps.Analyze(r.Context(), req.Tasks, req.Strategy)
	if err != nil {
		logFailure(h.logger, r, op, err)
		writeRankError(w, "analysis failed", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeRequestError reports a request that failed decoding.
func writeRequestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", err)
	}
}

// writeRankError reports a failure returned by the ranking service.
func writeRankError(w http.ResponseWriter, summary string, err error) {
	if errors.Is(err, service.ErrNotStarted) {
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
		return
	}
	if status, ok := statusForContextErr(err); ok {
		writeFailure(w, status, summary, err)
		return
	}
	writeFailure(w, http.StatusInternalServerError, summary, err)
}

func logFailure(log logger.Logger, r *http.Request, op string, err error) {
	if log == nil {
		return
	}
	log.Error(r.Context(), "request failed",
		logger.String("op", op),
		logger.String("path", r.URL.Path),
		logger.Error(err),
	)
}
