package store

import (
	"context"
	"sync"
)

// DefaultCapacity is used when NewMemory is given a non-positive size.
const DefaultCapacity = 200

// MemoryStore is a fixed-size ring; the oldest record is overwritten first.
type MemoryStore struct {
	mu   sync.RWMutex
	buf  []Record
	next int
	full bool
}

func NewMemory(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{buf: make([]Record, capacity)}
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf[s.next] = rec
	s.next = (s.next + 1) % len(s.buf)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = len(s.buf)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]Record, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.buf)) % len(s.buf)
		out = append(out, s.buf[idx])
	}
	return out, nil
}
