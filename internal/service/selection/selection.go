// Package selection remembers which form and modal each administrator is
// currently editing, so that follow-up commands can omit them.
package selection

import (
	"context"
	"sync"
)

// Kind names the slot a selection is stored in.
type Kind string

const (
	KindForm  Kind = "form"
	KindModal Kind = "modal"
)

// Store keeps one selected id per actor and kind. Entries never expire.
type Store interface {
	Get(ctx context.Context, actorID string, kind Kind) (id int, ok bool, err error)
	Set(ctx context.Context, actorID string, kind Kind, id int) error
	Clear(ctx context.Context, actorID string, kind Kind) error
}

// MemoryStore is a Store for single-process deployments without Redis.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[Kind]map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Kind]map[string]int)}
}

func (s *MemoryStore) Get(_ context.Context, actorID string, kind Kind) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.data[kind][actorID]
	return id, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, actorID string, kind Kind, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[kind] == nil {
		s.data[kind] = make(map[string]int)
	}
	s.data[kind][actorID] = id
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, actorID string, kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[kind], actorID)
	return nil
}
