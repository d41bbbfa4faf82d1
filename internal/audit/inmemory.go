package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps the most recent records in a bounded ring.
type InMemoryStore struct {
	mu       sync.RWMutex
	records  []GenerationRecord
	next     int
	full     bool
	capacity int
}

func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = 1024
	}
	return &InMemoryStore{
		records:  make([]GenerationRecord, capacity),
		capacity: capacity,
	}
}

func (s *InMemoryStore) Record(_ context.Context, record GenerationRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[s.next] = record
	s.next = (s.next + 1) % s.capacity
	if s.next == 0 {
		s.full = true
	}
	return nil
}

func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]GenerationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = s.capacity
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > size {
		limit = size
	}

	out := make([]GenerationRecord, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + s.capacity) % s.capacity
		out = append(out, s.records[idx])
	}
	return out, nil
}

func (s *InMemoryStore) Mode() string { return "memory" }

func (s *InMemoryStore) Close() error { return nil }
