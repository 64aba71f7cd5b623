package scoring

import (
	"context"
	"strings"

	"github.com/okian/taskrank/internal/domain/model"
	"github.com/okian/taskrank/internal/domain/types"
)

// Reason thresholds, applied to the rounded components.
const (
	urgentThreshold    = 0.8
	importantThreshold = 0.6
	quickWinThreshold  = 0.5
)

// Reason tags.
const (
	ReasonUrgent    = "urgent"
	ReasonImportant = "important"
	ReasonQuickWin  = "quick win"
	ReasonUnblocks  = "unblocks others"
	ReasonBalanced  = "balanced priority"
)

// Suggest analyzes tasks and shortlists the first topN with a reason for each.
// A non-positive topN yields no suggestions; cycles are reported either way.
func (s *Scorer) Suggest(ctx context.Context, tasks []model.Task, topN int, strategy string) (types.Suggestions, error) {
	analysis, err := s.Analyze(ctx, tasks, strategy)
	if err != nil {
		return types.Suggestions{}, err
	}

	n := max(0, min(topN, len(analysis.Tasks)))
	out := types.Suggestions{
		Suggestions: make([]types.Suggestion, 0, n),
		Strategy:    analysis.Strategy,
		Cycles:      analysis.Cycles,
	}
	for _, r := range analysis.Tasks[:n] {
		out.Suggestions = append(out.Suggestions, types.Suggestion{
			ID:          r.ID,
			Title:       r.Title,
			Score:       r.Score,
			Reason:      Reason(r.Components),
			Explanation: r.Explanation,
		})
	}
	return out, nil
}

// Reason joins every matching tag in priority order, or returns
// "balanced priority" when none match.
func Reason(c types.Components) string {
	var tags []string
	if c.Urgency >= urgentThreshold {
		tags = append(tags, ReasonUrgent)
	}
	if c.Importance >= importantThreshold {
		tags = append(tags, ReasonImportant)
	}
	if c.Effort >= quickWinThreshold {
		tags = append(tags, ReasonQuickWin)
	}
	if c.Dependency > 0 {
		tags = append(tags, ReasonUnblocks)
	}
	if len(tags) == 0 {
		return ReasonBalanced
	}
	return strings.Join(tags, ", ")
}
