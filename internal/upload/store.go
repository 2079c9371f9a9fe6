package upload

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prismfin/prism/internal/core"
)

// Dataset is one parsed upload held for the analytics view.
type Dataset struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Rows      int               `json:"rows"`
	Points    []core.PricePoint `json:"-"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store keeps parsed datasets in memory, bounded by count and TTL.
// Raw files go to archive storage; parsed series only live here for
// the duration of a dashboard session.
type Store struct {
	datasets map[string]*Dataset
	order    []string // Track insertion order for eviction
	maxSize  int
	ttl      time.Duration
	mu       sync.RWMutex
}

// NewStore creates a dataset store.
func NewStore(maxSize int, ttl time.Duration) *Store {
	return &Store{
		datasets: make(map[string]*Dataset),
		order:    make([]string, 0, maxSize),
		maxSize:  maxSize,
		ttl:      ttl,
	}
}

// Put registers a parsed dataset and returns it with a fresh ID.
func (s *Store) Put(name string, points []core.PricePoint) *Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := &Dataset{
		ID:        uuid.NewString(),
		Name:      name,
		Rows:      len(points),
		Points:    points,
		CreatedAt: time.Now(),
	}

	// Evict oldest if at capacity
	if len(s.datasets) >= s.maxSize && len(s.order) > 0 {
		oldest := s.order[0]
		delete(s.datasets, oldest)
		s.order = s.order[1:]
	}

	s.datasets[ds.ID] = ds
	s.order = append(s.order, ds.ID)

	return ds
}

// Get retrieves a dataset by ID. Expired datasets are treated as gone.
func (s *Store) Get(id string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, core.ErrUploadNotFound
	}
	if s.ttl > 0 && time.Since(ds.CreatedAt) > s.ttl {
		return nil, core.ErrUploadNotFound
	}

	// Return copy to prevent race conditions
	dsCopy := *ds
	return &dsCopy, nil
}

// List returns all live datasets.
func (s *Store) List() []Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		if s.ttl > 0 && time.Since(ds.CreatedAt) > s.ttl {
			continue
		}
		result = append(result, *ds)
	}
	return result
}

// Purge removes expired datasets and returns how many were dropped.
func (s *Store) Purge() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	kept := s.order[:0]
	for _, id := range s.order {
		ds, ok := s.datasets[id]
		if ok && time.Since(ds.CreatedAt) > s.ttl {
			delete(s.datasets, id)
			dropped++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return dropped
}
