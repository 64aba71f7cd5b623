// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/taskrank/internal/adapters/repository"
	"github.com/okian/taskrank/internal/domain/model"
	"github.com/okian/taskrank/internal/domain/scoring"
	"github.com/okian/taskrank/internal/domain/types"
	"github.com/okian/taskrank/pkg/logger"
	"github.com/okian/taskrank/pkg/metrics"
)

// Metric operation labels.
const (
	opAnalyze = "analyze"
	opSuggest = "suggest"

	defaultSuggestTopN = 3
	archiveTimeout     = 5 * time.Second
)

// Service ranks task lists and optionally archives them.
type Service struct {
	mu sync.RWMutex

	// Core components
	scorer *scoring.Scorer
	store  repository.Store

	// Configuration
	workerCount       int
	parallelThreshold int
	defaultStrategy   string
	suggestTopN       int
	location          *time.Location
	clock             func() time.Time
	storeEnabled      bool
	storePath         string
	injectedStore     repository.Store

	// State
	started bool
	// storeUsers counts calls holding store; Stop waits on it before Close.
	storeUsers sync.WaitGroup

	// Counters
	analyses       atomic.Int64
	suggestions    atomic.Int64
	tasksScored    atomic.Int64
	cyclesDetected atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount bounds the goroutines scoring one large list.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithParallelThreshold sets the list size from which scoring fans out.
func WithParallelThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelThreshold = n
		}
	}
}

// WithDefaultStrategy sets the strategy used when a request names none.
func WithDefaultStrategy(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.defaultStrategy = name
		}
	}
}

// WithSuggestTopN sets the shortlist size used when a request gives none.
func WithSuggestTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.suggestTopN = n
		}
	}
}

// WithLocation sets the zone in which "today" is taken.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock replaces time.Now; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithTaskArchive enables the archive. An empty path keeps it in memory.
func WithTaskArchive(enabled bool, path string) Option {
	return func(s *Service) {
		s.storeEnabled = enabled
		s.storePath = path
	}
}

// WithStore enables the archive on an already opened store. The service
// takes ownership and closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.storeEnabled = true
			s.injectedStore = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		defaultStrategy: scoring.DefaultStrategy,
		suggestTopN:     defaultSuggestTopN,
		location:        time.Local,
		clock:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the scorer and opens the archive when enabled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting taskrank service...")

	scorerOpts := []scoring.Option{
		scoring.WithClock(s.clock),
		scoring.WithLocation(s.location),
		scoring.WithWorkers(s.workerCount),
	}
	if s.parallelThreshold > 0 {
		scorerOpts = append(scorerOpts, scoring.WithParallelThreshold(s.parallelThreshold))
	}
	s.scorer = scoring.New(scorerOpts...)

	if s.storeEnabled {
		store, err := s.openStore(ctx)
		if err != nil {
			return fmt.Errorf("open task archive: %w", err)
		}
		s.store = store
		if n, err := store.Count(ctx); err == nil {
			metrics.UpdateStoredTasks(n)
		}
	}

	s.started = true
	s.logger.Info(ctx, "taskrank service started",
		logger.Int("workers", s.workerCount),
		logger.String("defaultStrategy", s.defaultStrategy),
		logger.String("location", s.location.String()),
		logger.Bool("archive", s.storeEnabled),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	switch {
	case s.injectedStore != nil:
		s.logger.Info(ctx, "using injected task archive")
		return s.injectedStore, nil
	case s.storePath == "":
		s.logger.Info(ctx, "using in-memory task archive")
		return repository.NewMemoryStore(repository.WithClock(s.clock)), nil
	default:
		s.logger.Info(ctx, "using sqlite task archive", logger.String("path", s.storePath))
		return repository.OpenSQLite(ctx, s.storePath, repository.WithClock(s.clock))
	}
}

// Stop closes the archive. Requests already holding the archive, including
// the archive write that follows Analyze or Suggest, finish before Close;
// later calls see ErrNotStarted.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.logger.Info(context.Background(), "stopping taskrank service...")
	store := s.store
	s.store = nil
	s.injectedStore = nil
	s.started = false
	s.mu.Unlock()

	s.storeUsers.Wait()
	if store != nil {
		if err := store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing task archive failed", logger.Error(err))
		}
	}
	s.logger.Info(context.Background(), "taskrank service stopped")
}

func (s *Service) running() (*scoring.Scorer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.scorer, nil
}

// acquireStore returns the archive, or nil when it is disabled, and a release
// func the caller must invoke once done with it.
func (s *Service) acquireStore() (repository.Store, func(), error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, func() {}, ErrNotStarted
	}
	if s.store == nil {
		return nil, func() {}, nil
	}
	s.storeUsers.Add(1)
	return s.store, s.storeUsers.Done, nil
}

// Analyze ranks tasks under strategy, or the default strategy when empty.
func (s *Service) Analyze(ctx context.Context, tasks []model.Task, strategy string) (types.Analysis, error) {
	scorer, err := s.running()
	if err != nil {
		return types.Analysis{}, err
	}
	if strategy == "" {
		strategy = s.defaultStrategy
	}

	start := time.Now()
	res, err := scorer.Analyze(ctx, tasks, strategy)
	if err != nil {
		s.logger.Error(ctx, "analysis failed", logger.Int("tasks", len(tasks)), logger.Error(err))
		return types.Analysis{}, err
	}
	s.record(opAnalyze, strategy, len(tasks), len(res.Cycles), time.Since(start))
	s.analyses.Add(1)
	s.logger.Debug(ctx, "analysis complete",
		logger.Int("tasks", len(tasks)),
		logger.Int("cycles", len(res.Cycles)),
		logger.String("strategy", strategy),
	)

	s.archive(ctx, tasks)
	return res, nil
}

// Suggest shortlists the top tasks. A non-positive topN uses the configured
// default.
func (s *Service) Suggest(ctx context.Context, tasks []model.Task, topN int, strategy string) (types.Suggestions, error) {
	scorer, err := s.running()
	if err != nil {
		return types.Suggestions{}, err
	}
	if strategy == "" {
		strategy = s.defaultStrategy
	}
	if topN <= 0 {
		topN = s.suggestTopN
	}

	start := time.Now()
	res, err := scorer.Suggest(ctx, tasks, topN, strategy)
	if err != nil {
		s.logger.Error(ctx, "suggest failed", logger.Int("tasks", len(tasks)), logger.Error(err))
		return types.Suggestions{}, err
	}
	s.record(opSuggest, strategy, len(tasks), len(res.Cycles), time.Since(start))
	s.suggestions.Add(1)
	metrics.RecordSuggestions(len(res.Suggestions))

	s.archive(ctx, tasks)
	return res, nil
}

func (s *Service) record(op, strategy string, tasks, cycles int, latency time.Duration) {
	label := strategy
	if _, ok := scoring.Resolve(strategy); !ok {
		label = "unknown"
	}
	metrics.RecordAnalysis(op, label, tasks, cycles, latency)
	s.tasksScored.Add(int64(tasks))
	s.cyclesDetected.Add(int64(cycles))
}

// archive writes tasks to the store. Failures are logged and counted only.
func (s *Service) archive(ctx context.Context, tasks []model.Task) {
	store, release, err := s.acquireStore()
	defer release()
	if err != nil || store == nil {
		return
	}
	records := repository.NewRecords(tasks)
	if len(records) == 0 {
		return
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	if _, err := store.Upsert(actx, records); err != nil {
		s.logger.Warn(ctx, "archiving tasks failed", logger.Int("records", len(records)), logger.Error(err))
	}
}

// Strategies lists the registered strategies and the effective default.
func (s *Service) Strategies() types.StrategyList {
	list := scoring.Strategies()
	if _, ok := scoring.Resolve(s.defaultStrategy); ok {
		list.Default = s.defaultStrategy
	}
	return list
}

// StoredTasks lists archived tasks, most recently updated first.
func (s *Service) StoredTasks(ctx context.Context, limit int) ([]repository.Record, error) {
	store, release, err := s.acquireStore()
	defer release()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreDisabled
	}
	return store.List(ctx, limit)
}

// StoredTask returns one archived task.
func (s *Service) StoredTask(ctx context.Context, externalID string) (repository.Record, error) {
	store, release, err := s.acquireStore()
	defer release()
	if err != nil {
		return repository.Record{}, err
	}
	if store == nil {
		return repository.Record{}, ErrStoreDisabled
	}
	return store.Get(ctx, externalID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":        s.started,
		"analyses":       s.analyses.Load(),
		"suggestions":    s.suggestions.Load(),
		"tasksScored":    s.tasksScored.Load(),
		"cyclesDetected": s.cyclesDetected.Load(),
		"storeEnabled":   s.storeEnabled,
	}
	if s.started && s.store != nil {
		if n, err := s.store.Count(context.Background()); err == nil {
			stats["storedTasks"] = n
			metrics.UpdateStoredTasks(n)
		}
	}
	return stats
}
