// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/taskrank/internal/adapters/repository"
	"github.com/okian/taskrank/internal/domain/model"
	"github.com/okian/taskrank/internal/domain/types"
	"github.com/okian/taskrank/pkg/logger"
)

// Default server limits.
const (
	defaultMaxTasks       = 10_000
	defaultMaxBodyBytes   = 8 << 20
	defaultRequestTimeout = 10 * time.Second
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RankDependencies
	StrategyDependencies
	ArchiveDependencies
	StatsProvider
}

// RankDependencies ranks task lists.
type RankDependencies interface {
	Analyze(ctx context.Context, tasks []model.Task, strategy string) (types.Analysis, error)
	Suggest(ctx context.Context, tasks []model.Task, topN int, strategy string) (types.Suggestions, error)
}

// StrategyDependencies exposes the strategy registry.
type StrategyDependencies interface {
	Strategies() types.StrategyList
}

// ArchiveDependencies reads the task archive.
type ArchiveDependencies interface {
	StoredTasks(ctx context.Context, limit int) ([]repository.Record, error)
	StoredTask(ctx context.Context, externalID string) (repository.Record, error)
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxTasks caps the number of tasks accepted in one request.
func WithMaxTasks(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.limits.maxTasks = n
		}
	}
}

// WithMaxBodyBytes caps the request body size.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.limits.maxBodyBytes = n
		}
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

type limits struct {
	maxTasks     int
	maxBodyBytes int64
}

// Server wires HTTP routes for the business API.
type Server struct {
	limits         limits
	requestTimeout time.Duration
	logger         logger.Logger

	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	analyzeHandler    *AnalyzeHandler
	suggestHandler    *SuggestHandler
	strategiesHandler *StrategiesHandler
	tasksHandler      *TasksHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		limits:         limits{maxTasks: defaultMaxTasks, maxBodyBytes: defaultMaxBodyBytes},
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.analyzeHandler = NewAnalyzeHandler(deps, s.limits, s.logger)
	s.suggestHandler = NewSuggestHandler(deps, s.limits, s.logger)
	s.strategiesHandler = NewStrategiesHandler(deps)
	s.tasksHandler = NewTasksHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.Handle(pattern, s.chain(h, endpoint))
	}

	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)

	route("/api/tasks/analyze/", "analyze", s.analyzeHandler.HandleAnalyze)
	route("/api/tasks/analyze", "analyze", s.analyzeHandler.HandleAnalyze)
	route("/api/tasks/suggest/", "suggest", s.suggestHandler.HandleSuggest)
	route("/api/tasks/suggest", "suggest", s.suggestHandler.HandleSuggest)
	route("/api/strategies/", "strategies", s.strategiesHandler.HandleList)
	route("/api/tasks/{$}", "tasks", s.tasksHandler.HandleList)
	route("/api/tasks/{id}", "task", s.tasksHandler.HandleGet)
}

// chain applies the middleware stack shared by every API route.
func (s *Server) chain(h http.HandlerFunc, endpoint string) http.Handler {
	return RequestIDMiddleware(
		RecoverMiddleware(
			TimeoutMiddleware(
				MetricsMiddleware(h, endpoint),
				s.requestTimeout,
			),
			s.logger,
		),
	)
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = publicMessage(err)
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeFailure reports a failed operation with summary as the error and the
// cause in details.
func writeFailure(w http.ResponseWriter, status int, summary string, err error) {
	resp := errorResponse{Error: summary, Code: "internal_error"}
	if err != nil {
		resp.Details = publicMessage(err)
	}
	writeJSON(w, status, resp)
}
