package repository

import (
	"context"
	"errors"

	"cartagent/internal/model"
)

// ErrTaskNotFound is returned when a task ID is unknown to the store.
var ErrTaskNotFound = errors.New("task not found")

// TaskStore persists task records. Implementations must be safe for
// concurrent use; every running task writes its record from its own
// goroutine.
type TaskStore interface {
	// Put inserts or replaces a task record.
	Put(ctx context.Context, record *model.TaskRecord) error

	// Get returns the record for a task ID, or ErrTaskNotFound.
	Get(ctx context.Context, id string) (*model.TaskRecord, error)

	// Delete removes a task record. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all known records, newest first.
	List(ctx context.Context) ([]*model.TaskRecord, error)

	// Close releases store resources.
	Close() error
}
