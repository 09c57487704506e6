package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"cartagent/internal/model"
	"cartagent/internal/repository"
	"cartagent/internal/utils"
)

// TaskManager owns the lifecycle of background shopping tasks: it
// assigns IDs, launches one goroutine per run and records progress in
// the task store. Intent validation happens before a task is accepted,
// so callers get validation errors synchronously.
type TaskManager struct {
	store   repository.TaskStore
	shopper *Shopper

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewTaskManager creates a task manager over the given store.
func NewTaskManager(store repository.TaskStore, shopper *Shopper) *TaskManager {
	return &TaskManager{
		store:   store,
		shopper: shopper,
		cancels: make(map[string]context.CancelFunc),
	}
}

// StartCartTask validates the request and launches a single-add run in
// the background, returning its task ID.
func (m *TaskManager) StartCartTask(ctx context.Context, query string, intent *model.ProductIntent) (string, error) {
	resolved, err := m.shopper.ResolveIntent(ctx, query, intent)
	if err != nil {
		return "", err
	}

	id, err := m.begin(ctx, model.TaskKindCart, query, resolved)
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.track(id, cancel)

	go func() {
		defer cancel()
		result := m.shopper.AddToCart(runCtx, query, resolved)
		m.finishCart(runCtx, id, result)
	}()

	return id, nil
}

// StartListTask validates the request and launches a listing run in the
// background, returning its task ID.
func (m *TaskManager) StartListTask(ctx context.Context, query string, intent *model.ProductIntent, maxProducts int) (string, error) {
	resolved, err := m.shopper.ResolveIntent(ctx, query, intent)
	if err != nil {
		return "", err
	}

	id, err := m.begin(ctx, model.TaskKindList, query, resolved)
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.track(id, cancel)

	go func() {
		defer cancel()
		result := m.shopper.ListProducts(runCtx, query, resolved, maxProducts)
		m.finishList(runCtx, id, result)
	}()

	return id, nil
}

// begin stores the initial running record and returns the new task ID.
func (m *TaskManager) begin(ctx context.Context, kind, query string, intent *model.ProductIntent) (string, error) {
	message := utils.Truncate(query, 120)
	if intent != nil {
		message = describeIntent(intent)
	}

	id := uuid.NewString()
	record := &model.TaskRecord{
		ID:        id,
		Kind:      kind,
		Status:    model.TaskStatusRunning,
		Query:     query,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.Put(ctx, record); err != nil {
		return "", err
	}
	return id, nil
}

func (m *TaskManager) track(id string, cancel context.CancelFunc) {
	m.mu.Lock()
	m.cancels[id] = cancel
	m.mu.Unlock()
}

func (m *TaskManager) untrack(id string) {
	m.mu.Lock()
	delete(m.cancels, id)
	m.mu.Unlock()
}

func (m *TaskManager) finishCart(runCtx context.Context, id string, result *model.CartResult) {
	m.untrack(id)

	record, err := m.store.Get(context.Background(), id)
	if err != nil {
		log.Printf("Task %s finished but its record is gone: %v", id, err)
		return
	}

	record.Status = statusFor(runCtx, result.Success)
	record.Message = result.Message
	record.CartResult = result
	now := time.Now().UTC()
	record.CompletedAt = &now

	if err := m.store.Put(context.Background(), record); err != nil {
		log.Printf("Failed to store result for task %s: %v", id, err)
	}
}

func (m *TaskManager) finishList(runCtx context.Context, id string, result *model.ProductListResult) {
	m.untrack(id)

	record, err := m.store.Get(context.Background(), id)
	if err != nil {
		log.Printf("Task %s finished but its record is gone: %v", id, err)
		return
	}

	record.Status = statusFor(runCtx, result.Success)
	record.Message = result.Message
	record.ListResult = result
	now := time.Now().UTC()
	record.CompletedAt = &now

	if err := m.store.Put(context.Background(), record); err != nil {
		log.Printf("Failed to store result for task %s: %v", id, err)
	}
}

// statusFor maps a run outcome to a terminal task status. A cancelled
// context always wins over whatever the run produced.
func statusFor(runCtx context.Context, success bool) string {
	if runCtx.Err() != nil {
		return model.TaskStatusCancelled
	}
	if success {
		return model.TaskStatusCompleted
	}
	return model.TaskStatusFailed
}

// Get returns the record for a task ID.
func (m *TaskManager) Get(ctx context.Context, id string) (*model.TaskRecord, error) {
	return m.store.Get(ctx, id)
}

// Cancel stops a running task. Cancelling a finished or unknown task is
// not an error; the call is idempotent.
func (m *TaskManager) Cancel(ctx context.Context, id string) {
	m.mu.Lock()
	cancel, ok := m.cancels[id]
	m.mu.Unlock()
	if ok {
		cancel()
		log.Printf("Cancelled task %s", id)
	}
}

// Delete cancels a task if still running and removes its record.
func (m *TaskManager) Delete(ctx context.Context, id string) error {
	m.Cancel(ctx, id)
	return m.store.Delete(ctx, id)
}

// List returns known task IDs grouped by running vs finished state.
func (m *TaskManager) List(ctx context.Context) (*model.TaskListResponse, error) {
	records, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &model.TaskListResponse{
		Running:   []string{},
		Completed: []string{},
	}
	for _, record := range records {
		if record.Status == model.TaskStatusRunning {
			resp.Running = append(resp.Running, record.ID)
		} else {
			resp.Completed = append(resp.Completed, record.ID)
		}
	}
	return resp, nil
}
