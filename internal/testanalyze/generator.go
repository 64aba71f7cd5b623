package testanalyze

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
)

// Generation ranges.
const (
	dueWindowDays    = 60
	duePastDays      = 10
	maxHours         = 16
	maxImportance    = 10
	maxDependencies  = 3
	noDueDateOneIn   = 5
	sampleFileMode   = 0o644
	dueDateLayout    = "2006-01-02"
	defaultStrategy  = "smart"
	hoursGranularity = 2
)

// Task is one generated sample task.
type Task struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	DueDate        *string  `json:"due_date"`
	EstimatedHours float64  `json:"estimated_hours"`
	Importance     int      `json:"importance"`
	Dependencies   []string `json:"dependencies"`
}

// Sample is the body posted to the API.
type Sample struct {
	Strategy string `json:"strategy"`
	Tasks    []Task `json:"tasks"`
}

// Title word lists.
var (
	verbs = []string{"Fix", "Write", "Review", "Refactor", "Deploy", "Test", "Document", "Plan"}
	nouns = []string{"login", "billing", "search", "onboarding", "cache", "reports", "api", "alerts"}
)

// Generate builds count random tasks. Due dates are spread around today.
// Dependencies only point at earlier tasks, so the result has no cycles.
func Generate(count int, today time.Time, rnd *rand.Rand) Sample {
	tasks := make([]Task, count)
	for i := range tasks {
		t := Task{
			ID:             uuid.NewString(),
			Title:          fmt.Sprintf("%s %s", verbs[rnd.IntN(len(verbs))], nouns[rnd.IntN(len(nouns))]),
			EstimatedHours: float64(1+rnd.IntN(maxHours*hoursGranularity)) / hoursGranularity,
			Importance:     1 + rnd.IntN(maxImportance),
			Dependencies:   []string{},
		}
		if rnd.IntN(noDueDateOneIn) != 0 {
			due := today.AddDate(0, 0, rnd.IntN(dueWindowDays+duePastDays)-duePastDays).Format(dueDateLayout)
			t.DueDate = &due
		}
		if i > 0 {
			seen := map[string]bool{}
			for range rnd.IntN(maxDependencies + 1) {
				dep := tasks[rnd.IntN(i)].ID
				if !seen[dep] {
					seen[dep] = true
					t.Dependencies = append(t.Dependencies, dep)
				}
			}
		}
		tasks[i] = t
	}
	return Sample{Strategy: defaultStrategy, Tasks: tasks}
}

// WriteSample writes s as indented JSON to path.
func WriteSample(path string, s Sample) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), sampleFileMode); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	return nil
}
