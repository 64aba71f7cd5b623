// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
)

// UnknownID is used for tasks that carry neither id nor external_id.
const UnknownID = "unknown"

// Task is one caller-supplied task. Every field is optional; each keeps the
// JSON the caller sent so that "absent" and "present but equal to the
// default" stay distinguishable.
type Task struct {
	ID             Value `json:"id"`
	ExternalID     Value `json:"external_id"`
	Title          Value `json:"title"`
	DueDate        Value `json:"due_date"`
	EstimatedHours Value `json:"estimated_hours"`
	Importance     Value `json:"importance"`
	Dependencies   Value `json:"dependencies"`
}

// UnmarshalJSON accepts any JSON object. Unknown keys are ignored.
func (t *Task) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("task must be a JSON object: %w", err)
	}
	*t = Task{
		ID:             NewValue(fields["id"]),
		ExternalID:     NewValue(fields["external_id"]),
		Title:          NewValue(fields["title"]),
		DueDate:        NewValue(fields["due_date"]),
		EstimatedHours: NewValue(fields["estimated_hours"]),
		Importance:     NewValue(fields["importance"]),
		Dependencies:   NewValue(fields["dependencies"]),
	}
	return nil
}

// MarshalJSON writes back only the keys that were present.
func (t Task) MarshalJSON() ([]byte, error) {
	out := make(map[string]Value, 7)
	for key, v := range map[string]Value{
		"id":              t.ID,
		"external_id":     t.ExternalID,
		"title":           t.Title,
		"due_date":        t.DueDate,
		"estimated_hours": t.EstimatedHours,
		"importance":      t.Importance,
		"dependencies":    t.Dependencies,
	} {
		if v.Present() {
			out[key] = v
		}
	}
	return json.Marshal(out)
}

// Key returns id, falling back to external_id. It is empty when neither is
// usable, which keeps the task out of the dependency graph.
func (t Task) Key() string {
	if id := t.ID.Text(); id != "" {
		return id
	}
	return t.ExternalID.Text()
}

// TaskID is Key with the "unknown" fallback used in results.
func (t Task) TaskID() string {
	if k := t.Key(); k != "" {
		return k
	}
	return UnknownID
}

// TitleText returns the title, or "" when missing or falsy.
func (t Task) TitleText() string {
	return t.Title.Text()
}

// DueDateText returns the due date text; "" means no due date was given.
// Non-string values come back as their JSON text and fail date parsing.
func (t Task) DueDateText() string {
	return t.DueDate.Text()
}

// DependencyIDs lists the ids this task depends on, in declared order.
func (t Task) DependencyIDs() []string {
	return t.Dependencies.Texts()
}

// HasImportance reports whether the caller supplied an importance field.
func (t Task) HasImportance() bool { return t.Importance.Present() }

// HasEstimatedHours reports whether the caller supplied estimated_hours.
func (t Task) HasEstimatedHours() bool { return t.EstimatedHours.Present() }
