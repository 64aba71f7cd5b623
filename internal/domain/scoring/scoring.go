// Package scoring ranks tasks by urgency, importance, effort and how many
// other tasks they unblock.
package scoring

import (
	"encoding/json"
	"math"
	"runtime"
	"time"

	"github.com/okian/taskrank/internal/domain/model"
	"github.com/okian/taskrank/internal/domain/types"
)

// Default engine configuration constants.
const (
	defaultParallelThreshold = 256
	scoreDecimals            = 1e4
)

var (
	rawNullJSON       = json.RawMessage(`null`)
	rawImportanceJSON = json.RawMessage(`5`)
	rawHoursJSON      = json.RawMessage(`1`)
	rawEmptyListJSON  = json.RawMessage(`[]`)
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone in which "today" is taken.
func WithLocation(loc *time.Location) Option {
	return func(s *Scorer) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithWorkers bounds the goroutines used to score one large list.
func WithWorkers(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithParallelThreshold sets the list size from which scoring fans out.
func WithParallelThreshold(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.parallelThreshold = n
		}
	}
}

// Scorer is safe for concurrent use; it holds no per-request state.
type Scorer struct {
	now               func() time.Time
	loc               *time.Location
	workers           int
	parallelThreshold int
}

// New creates a Scorer with options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		now:               time.Now,
		loc:               time.Local,
		workers:           runtime.NumCPU(),
		parallelThreshold: defaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current instant in the scorer's location.
func (s *Scorer) Today() time.Time {
	return s.now().In(s.loc)
}

// Score computes one task's result against the dependency graph of the whole
// list it belongs to.
func (s *Scorer) Score(t model.Task, g *Graph, w Weights, today time.Time) types.ScoreResult {
	id := t.TaskID()
	urgency, urgencyMsg := Urgency(t.DueDateText(), today)
	c := types.Components{
		Urgency:    urgency,
		Importance: Importance(t.Importance),
		Effort:     Effort(t.EstimatedHours),
		Dependency: g.Bonus(id),
	}

	sum := w.Urgency*c.Urgency + w.Importance*c.Importance + w.Effort*c.Effort + w.Dependency*c.Dependency
	rounded := types.Components{
		Urgency:    round4(c.Urgency),
		Importance: round4(c.Importance),
		Effort:     round4(c.Effort),
		Dependency: round4(c.Dependency),
	}

	return types.ScoreResult{
		ID:          id,
		Title:       t.TitleText(),
		Score:       round4(clamp01(sum)),
		Components:  rounded,
		Explanation: explain(t, urgencyMsg, rounded, c.Dependency > 0),
		Raw:         rawOf(t),
	}
}

func rawOf(t model.Task) types.Raw {
	r := types.Raw{
		DueDate:        rawNullJSON,
		Importance:     rawImportanceJSON,
		EstimatedHours: rawHoursJSON,
		Dependencies:   rawEmptyListJSON,
	}
	if t.DueDate.Present() {
		r.DueDate = t.DueDate.Raw()
	}
	if t.Importance.Present() {
		r.Importance = t.Importance.Raw()
	}
	if t.EstimatedHours.Present() {
		r.EstimatedHours = t.EstimatedHours.Raw()
	}
	if t.Dependencies.Truthy() {
		r.Dependencies = t.Dependencies.Raw()
	}
	return r
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*scoreDecimals) / scoreDecimals
}
