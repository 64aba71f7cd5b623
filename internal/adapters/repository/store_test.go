package repository_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/taskrank/internal/adapters/repository"
	"github.com/okian/taskrank/internal/domain/model"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func stores(t *testing.T) map[string]func(opts ...repository.Option) repository.Store {
	t.Helper()
	return map[string]func(opts ...repository.Option) repository.Store{
		"memory": func(opts ...repository.Option) repository.Store {
			return repository.NewMemoryStore(opts...)
		},
		"sqlite": func(opts ...repository.Option) repository.Store {
			s, err := repository.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "tasks.db"), opts...)
			require.NoError(t, err)
			return s
		},
	}
}

func due(s string) *string { return &s }

func TestStore_Contract(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := &stepClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
			s := open(repository.WithClock(clock.now))
			defer s.Close()

			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, n)

			written, err := s.Upsert(ctx, []repository.Record{
				{ExternalID: "a", Title: "A", DueDate: due("2025-06-02"), EstimatedHours: 2, Importance: 7, Dependencies: []string{"b"}},
				{ExternalID: "b", Title: "B", EstimatedHours: 1, Importance: 5},
			})
			require.NoError(t, err)
			assert.Equal(t, 2, written)

			a, err := s.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "A", a.Title)
			require.NotNil(t, a.DueDate)
			assert.Equal(t, "2025-06-02", *a.DueDate)
			assert.Equal(t, []string{"b"}, a.Dependencies)
			assert.Equal(t, 7, a.Importance)
			firstCreated := a.CreatedAt

			b, err := s.Get(ctx, "b")
			require.NoError(t, err)
			assert.Nil(t, b.DueDate)
			assert.Equal(t, []string{}, b.Dependencies)

			_, err = s.Upsert(ctx, []repository.Record{{ExternalID: "a", Title: "A2", EstimatedHours: 3, Importance: 9}})
			require.NoError(t, err)

			a, err = s.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "A2", a.Title)
			assert.Nil(t, a.DueDate)
			assert.True(t, a.CreatedAt.Equal(firstCreated), "created_at is kept on update")
			assert.True(t, a.UpdatedAt.After(firstCreated))

			list, err := s.List(ctx, 10)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "a", list[0].ExternalID) // most recently updated
			assert.Equal(t, "b", list[1].ExternalID)

			list, err = s.List(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, list, 1)

			_, err = s.List(ctx, 0)
			assert.ErrorIs(t, err, repository.ErrInvalidLimit)
			_, err = s.List(ctx, repository.MaxListLimit+1)
			assert.ErrorIs(t, err, repository.ErrInvalidLimit)

			_, err = s.Get(ctx, "missing")
			assert.ErrorIs(t, err, repository.ErrNotFound)

			n, err = s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		})
	}
}

func TestStore_Closed(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			require.NoError(t, s.Close())
			_, err := s.Count(context.Background())
			assert.ErrorIs(t, err, repository.ErrClosed)
		})
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.db")

	s, err := repository.OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, []repository.Record{{ExternalID: "keep", Title: "Keep me", EstimatedHours: 1, Importance: 5}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = repository.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	r, err := s.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "Keep me", r.Title)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	s, err := repository.OpenSQLite(context.Background(), repository.MemoryDSN)
	require.NoError(t, err)
	defer s.Close()

	written, err := s.Upsert(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, written)

	_, err = repository.OpenSQLite(context.Background(), "")
	assert.Error(t, err)
}

func TestNewRecords(t *testing.T) {
	var tasks []model.Task
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":"a","title":"A","due_date":"2025-06-01","importance":"12","estimated_hours":-1,"dependencies":["b",3]},
		{"external_id":"b","due_date":"not a date"},
		{"title":"no key"},
		{"id":"a","title":"A again"}
	]`), &tasks))

	records := repository.NewRecords(tasks)
	require.Len(t, records, 2)

	a := records[0]
	assert.Equal(t, "a", a.ExternalID)
	assert.Equal(t, "A again", a.Title) // last occurrence wins
	assert.Equal(t, 5, a.Importance)
	assert.Equal(t, []string{}, a.Dependencies)

	first, ok := repository.NewRecord(tasks[0])
	require.True(t, ok)
	assert.Equal(t, 10, first.Importance)
	assert.Equal(t, 1.0, first.EstimatedHours)
	assert.Equal(t, []string{"b", "3"}, first.Dependencies)
	require.NotNil(t, first.DueDate)

	b := records[1]
	assert.Equal(t, "b", b.ExternalID)
	assert.Nil(t, b.DueDate)

	_, ok = repository.NewRecord(tasks[2])
	assert.False(t, ok)
}
