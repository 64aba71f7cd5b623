package repository

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/okian/taskrank/pkg/metrics"
)

// MemoryStore is an in-process Store. Contents are lost on restart.
type MemoryStore struct {
	opts   options
	mu     sync.RWMutex
	byID   map[string]Record
	closed bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts: buildOptions(opts),
		byID: make(map[string]Record),
	}
}

// Upsert implements Store.Upsert.
func (s *MemoryStore) Upsert(ctx context.Context, records []Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := s.opts.now().UTC()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		metrics.RecordStoreError()
		return 0, ErrClosed
	}
	for _, r := range records {
		r.Dependencies = slices.Clone(r.Dependencies)
		if r.Dependencies == nil {
			r.Dependencies = []string{}
		}
		r.CreatedAt, r.UpdatedAt = now, now
		if old, ok := s.byID[r.ExternalID]; ok {
			r.CreatedAt = old.CreatedAt
		}
		s.byID[r.ExternalID] = r
	}
	count := len(s.byID)
	s.mu.Unlock()

	metrics.RecordStoreUpserts(len(records))
	metrics.UpdateStoredTasks(count)
	return len(records), nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, externalID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Record{}, ErrClosed
	}
	r, ok := s.byID[externalID]
	if !ok {
		return Record{}, ErrNotFound
	}
	r.Dependencies = slices.Clone(r.Dependencies)
	return r, nil
}

// List implements Store.List.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	all := make([]Record, 0, len(s.byID))
	for _, r := range s.byID {
		r.Dependencies = slices.Clone(r.Dependencies)
		all = append(all, r)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].UpdatedAt.After(all[j].UpdatedAt)
		}
		return all[i].ExternalID < all[j].ExternalID
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.byID), nil
}

// Close releases the records. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.byID = nil
	return nil
}
