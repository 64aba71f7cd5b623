// Package types contains the result shapes shared by the scoring engine, the
// HTTP API and the diagnostic client.
package types

import "encoding/json"

// Weights is one strategy's weight profile.
type Weights struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Effort     float64 `json:"effort"`
	Dependency float64 `json:"dependency"`
}

// Components are the normalized per-task inputs to the weighted sum.
type Components struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Effort     float64 `json:"effort"`
	Dependency float64 `json:"dependency"`
}

// Raw echoes the caller's original field values.
type Raw struct {
	DueDate        json.RawMessage `json:"due_date"`
	Importance     json.RawMessage `json:"importance"`
	EstimatedHours json.RawMessage `json:"estimated_hours"`
	Dependencies   json.RawMessage `json:"dependencies"`
}

// ScoreResult is the scored form of one task.
type ScoreResult struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Score       float64    `json:"score"`
	Components  Components `json:"components"`
	Explanation string     `json:"explanation"`
	Raw         Raw        `json:"raw"`
}

// Cycle is one closed dependency loop; the first id is repeated at the end.
type Cycle []string

// Analysis is the full ranking of a task list.
type Analysis struct {
	Tasks    []ScoreResult `json:"tasks"`
	Cycles   []Cycle       `json:"cycles"`
	Strategy string        `json:"strategy"`
}

// Suggestion is a shortlisted task with a qualitative reason.
type Suggestion struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
	Explanation string  `json:"explanation"`
}

// Suggestions is the top-N shortlist.
type Suggestions struct {
	Suggestions []Suggestion `json:"suggestions"`
	Strategy    string       `json:"strategy"`
	Cycles      []Cycle      `json:"cycles"`
}

// StrategyInfo describes a registered strategy.
type StrategyInfo struct {
	Name    string  `json:"name"`
	Weights Weights `json:"weights"`
}

// StrategyList is the registry as exposed over HTTP.
type StrategyList struct {
	Default    string         `json:"default"`
	Strategies []StrategyInfo `json:"strategies"`
}
