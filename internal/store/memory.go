package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/chaincodegen/internal/project"
)

// MemoryStore implements Store with a map. Projects are cloned on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, p *project.Project) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	stored := p.Clone()
	stored.ID = uuid.New().String()
	rec := Record{Project: stored, CreatedAt: now, UpdatedAt: now}
	s.records[stored.ID] = rec
	return s.copyOut(rec), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.copyOut(rec), nil
}

func (s *MemoryStore) List(_ context.Context, opts ListOptions) ([]Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opts = opts.normalize()
	all := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].Project.ID < all[j].Project.ID
		}
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	total := len(all)
	if opts.Offset >= total {
		return []Record{}, total, nil
	}
	end := min(opts.Offset+opts.Limit, total)
	out := make([]Record, 0, end-opts.Offset)
	for _, rec := range all[opts.Offset:end] {
		out = append(out, *s.copyOut(rec))
	}
	return out, total, nil
}

func (s *MemoryStore) Update(_ context.Context, p *project.Project) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[p.ID]
	if !ok {
		return nil, ErrNotFound
	}
	rec := Record{Project: p.Clone(), CreatedAt: cur.CreatedAt, UpdatedAt: s.now().UTC()}
	s.records[p.ID] = rec
	return s.copyOut(rec), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) copyOut(rec Record) *Record {
	rec.Project = rec.Project.Clone()
	return &rec
}
