package api

import (
	"net/http"
)

// StrategiesHandler lists the registered scoring strategies.
type StrategiesHandler struct {
	deps StrategyDependencies
}

// NewStrategiesHandler creates a new strategies handler.
func NewStrategiesHandler(deps StrategyDependencies) *StrategiesHandler {
	return &StrategiesHandler{deps: deps}
}

// HandleList handles GET /api/strategies/.
func (h *StrategiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind("api.strategies", ErrMethodNotAllowed))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Strategies())
}
