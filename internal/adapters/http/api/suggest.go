package api

import (
	"errors"
	"net/http"

	"github.com/okian/taskrank/pkg/logger"
)

// SuggestHandler handles POST /api/tasks/suggest/.
type SuggestHandler struct {
	deps   RankDependencies
	limits limits
	logger logger.Logger
}

// NewSuggestHandler creates a new suggest handler.
func NewSuggestHandler(deps RankDependencies, lim limits, log logger.Logger) *SuggestHandler {
	return &SuggestHandler{deps: deps, limits: lim, logger: log}
}

// HandleSuggest returns the top tasks with a short reason for each. GET is
// recognized but rejected since suggestions need a task list.
func (h *SuggestHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	const op = "api.suggest"
	switch r.Method {
	case http.MethodPost:
	case http.MethodGet:
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest,
			errors.New("GET not supported for suggest in this simple implementation. Use POST with tasks.")))
		return
	default:
		w.Header().Set("Allow", http.MethodPost+", "+http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			WrapKind(op, ErrMethodNotAllowed, errors.New("only POST or GET allowed")))
		return
	}

	req, err := decodeRankRequest(op, w, r, h.limits, false)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	res, err := h.deps.Suggest(r.Context(), req.Tasks, req.TopN, req.Strategy)
	if err != nil {
		logFailure(h.logger, r, op, err)
		writeRankError(w, "suggest failed", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
