// Package repository archives submitted tasks. The ranking engine never reads
// from it; it only backs the task listing endpoints.
package repository

import (
	"context"
	"time"

	"github.com/okian/taskrank/internal/domain/model"
	"github.com/okian/taskrank/internal/domain/scoring"
)

// Listing bounds.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000

	dueDateLayout = "2006-01-02"
)

// Record is one archived task, keyed by external id.
type Record struct {
	ExternalID     string    `json:"external_id"`
	Title          string    `json:"title"`
	DueDate        *string   `json:"due_date"`
	EstimatedHours float64   `json:"estimated_hours"`
	Importance     int       `json:"importance"`
	Dependencies   []string  `json:"dependencies"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Store provides read/write access to the archive.
type Store interface {
	// Upsert inserts or replaces records by external id. CreatedAt of an
	// existing record is kept. It returns the number of records written.
	Upsert(ctx context.Context, records []Record) (int, error)

	// Get returns one record or ErrNotFound.
	Get(ctx context.Context, externalID string) (Record, error)

	// List returns up to limit records, most recently updated first.
	// Returns ErrInvalidLimit when limit is outside 1..MaxListLimit.
	List(ctx context.Context, limit int) ([]Record, error)

	// Count returns the number of archived records.
	Count(ctx context.Context) (int, error)

	Close() error
}

// NewRecord maps a task onto the archive schema with the same defaulting the
// scorer applies. Tasks without an id or external_id cannot be keyed and
// yield ok == false.
func NewRecord(t model.Task) (Record, bool) {
	key := t.Key()
	if key == "" {
		return Record{}, false
	}
	r := Record{
		ExternalID:     key,
		Title:          t.TitleText(),
		EstimatedHours: scoring.EstimatedHours(t.EstimatedHours),
		Importance:     scoring.ImportanceLevel(t.Importance),
		Dependencies:   t.DependencyIDs(),
	}
	if r.Dependencies == nil {
		r.Dependencies = []string{}
	}
	if due := t.DueDateText(); due != "" {
		if _, err := time.Parse(dueDateLayout, due); err == nil {
			r.DueDate = &due
		}
	}
	return r, true
}

// NewRecords maps every keyable task. A repeated key keeps its last occurrence.
func NewRecords(tasks []model.Task) []Record {
	out := make([]Record, 0, len(tasks))
	index := make(map[string]int, len(tasks))
	for _, t := range tasks {
		r, ok := NewRecord(t)
		if !ok {
			continue
		}
		if i, seen := index[r.ExternalID]; seen {
			out[i] = r
			continue
		}
		index[r.ExternalID] = len(out)
		out = append(out, r)
	}
	return out
}

func checkLimit(limit int) error {
	if limit < 1 || limit > MaxListLimit {
		return ErrInvalidLimit
	}
	return nil
}
