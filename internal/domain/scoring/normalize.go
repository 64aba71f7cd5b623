package scoring

import (
	"fmt"
	"time"

	"github.com/okian/taskrank/internal/domain/model"
)

// Normalization constants.
const (
	dueDateLayout      = "2006-01-02"
	defaultImportance  = 5
	minImportance      = 1
	maxImportance      = 10
	defaultHours       = 1.0
	secondsPerDay      = 86400
	maxDependencyBonus = 0.2
)

// Urgency maps a due date to deadline pressure in [0,1] plus a short message.
// Overdue and due-today tasks are fully urgent; otherwise urgency decays as
// 1/(1+days). today is only read for its calendar date.
func Urgency(due string, today time.Time) (float64, string) {
	if due == "" {
		return 0, "no due date"
	}
	d, err := time.Parse(dueDateLayout, due)
	if err != nil {
		return 0, "invalid due date"
	}
	delta := daysBetween(today, d)
	switch {
	case delta < 0:
		return 1, fmt.Sprintf("past due by %d day(s)", -delta)
	case delta == 0:
		return 1, "due today"
	}
	return 1 / (1 + float64(delta)), fmt.Sprintf("due in %d day(s)", delta)
}

// daysBetween counts whole calendar days from a to b, ignoring clock time
// and zone offsets. Unix seconds keep the count exact across years 1..9999,
// where time.Duration would saturate.
func daysBetween(a, b time.Time) int {
	from := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

// ImportanceLevel parses raw importance, defaulting to 5, clamped to [1,10].
func ImportanceLevel(raw model.Value) int {
	n, ok := raw.Int()
	if !ok {
		n = defaultImportance
	}
	return max(minImportance, min(maxImportance, n))
}

// Importance maps the 1..10 scale onto [0,1].
func Importance(raw model.Value) float64 {
	return float64(ImportanceLevel(raw)-minImportance) / float64(maxImportance-minImportance)
}

// EstimatedHours parses raw hours; non-numeric or non-positive input is 1.
func EstimatedHours(raw model.Value) float64 {
	h, ok := raw.Float()
	if !ok || h <= 0 {
		return defaultHours
	}
	return h
}

// Effort favors short tasks: 1/(1+hours).
func Effort(raw model.Value) float64 {
	return 1 / (1 + EstimatedHours(raw))
}

// DependencyBonus is a saturating boost for tasks that others depend on:
// 0 for no dependents, approaching 0.2 as the count grows.
func DependencyBonus(dependents int) float64 {
	if dependents <= 0 {
		return 0
	}
	return maxDependencyBonus * (1 - 1/(1+float64(dependents)))
}
