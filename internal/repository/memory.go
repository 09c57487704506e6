package repository

import (
	"context"
	"sort"
	"sync"

	"cartagent/internal/model"
)

// MemoryStore is the default task store: a mutex-guarded map. Records
// do not survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*model.TaskRecord
}

// NewMemoryStore creates an empty in-memory task store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]*model.TaskRecord),
	}
}

// Put inserts or replaces a task record.
func (s *MemoryStore) Put(ctx context.Context, record *model.TaskRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so later mutations by the caller cannot race readers
	stored := *record
	s.tasks[record.ID] = &stored
	return nil
}

// Get returns the record for a task ID, or ErrTaskNotFound.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	copied := *record
	return &copied, nil
}

// Delete removes a task record.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tasks, id)
	return nil
}

// List returns all known records, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]*model.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*model.TaskRecord, 0, len(s.tasks))
	for _, record := range s.tasks {
		copied := *record
		records = append(records, &copied)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
