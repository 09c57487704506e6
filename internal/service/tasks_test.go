package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cartagent/internal/agent"
	"cartagent/internal/model"
	"cartagent/internal/repository"
)

// fakeRunner returns a canned history without a live browser runtime
// and records the task it was handed.
type fakeRunner struct {
	history *agent.History
	err     error
	task    string
}

func (f *fakeRunner) Run(ctx context.Context, task string) (*agent.History, error) {
	f.task = task
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func newTestManager(runner agent.Runner) *TaskManager {
	prompts := NewPromptCompiler("https://www.amazon.in")
	recovery := NewRecoveryPipeline("https://www.amazon.in")
	shopper := NewShopper(runner, prompts, recovery, NewDefaultRanker(), NewIntentParser(nil))
	return NewTaskManager(repository.NewMemoryStore(), shopper)
}

// waitForTerminal polls the store until the task leaves the running
// state or the deadline expires.
func waitForTerminal(t *testing.T, m *TaskManager, id string) *model.TaskRecord {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		record, err := m.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if record.Status != model.TaskStatusRunning {
			return record
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task never reached a terminal state")
	return nil
}

func TestTaskManager_CartTaskLifecycle(t *testing.T) {
	runner := &fakeRunner{history: &agent.History{
		Done:      true,
		FinalText: `{"success": true, "message": "Added to cart", "items": []}`,
	}}
	m := newTestManager(runner)

	id, err := m.StartCartTask(context.Background(), "wireless mouse under 500", nil)
	if err != nil {
		t.Fatalf("StartCartTask() error = %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty task ID")
	}

	record := waitForTerminal(t, m, id)
	if record.Status != model.TaskStatusCompleted {
		t.Errorf("status = %q, want completed", record.Status)
	}
	if record.CartResult == nil || !record.CartResult.Success {
		t.Error("expected successful cart result on record")
	}
	if record.CompletedAt == nil {
		t.Error("expected completion timestamp")
	}
}

// Without an AI parser a bare query runs in raw mode: the user's wording
// goes into the task verbatim and the regex extractor only validates and
// derives the price and rating bounds.
func TestTaskManager_RawQueryKeepsWording(t *testing.T) {
	runner := &fakeRunner{history: &agent.History{
		Done:      true,
		FinalText: `{"success": true, "message": "ok", "items": []}`,
	}}
	m := newTestManager(runner)

	query := "wireless mouse under 500"
	id, err := m.StartCartTask(context.Background(), query, nil)
	if err != nil {
		t.Fatalf("StartCartTask() error = %v", err)
	}
	waitForTerminal(t, m, id)

	if !strings.Contains(runner.task, query) {
		t.Errorf("expected verbatim query in task, got %q", runner.task)
	}
	if !strings.Contains(runner.task, "const targetMax = 500") {
		t.Error("expected extracted price bound embedded in task")
	}
}

// A structured intent bypasses raw mode even without an AI parser.
func TestTaskManager_StructuredIntentCompilesSelectionRules(t *testing.T) {
	runner := &fakeRunner{history: &agent.History{
		Done:      true,
		FinalText: `{"success": true, "message": "ok", "items": []}`,
	}}
	m := newTestManager(runner)

	id, err := m.StartCartTask(context.Background(), "", &model.ProductIntent{Product: "mouse"})
	if err != nil {
		t.Fatalf("StartCartTask() error = %v", err)
	}
	waitForTerminal(t, m, id)

	if !strings.Contains(runner.task, "SELECTION RULES:") {
		t.Errorf("expected structured selection rules in task, got %q", runner.task)
	}
}

func TestTaskManager_ValidationIsSynchronous(t *testing.T) {
	m := newTestManager(&fakeRunner{history: &agent.History{Done: true}})

	_, err := m.StartCartTask(context.Background(), "", &model.ProductIntent{Product: "  "})
	if err == nil {
		t.Fatal("expected synchronous validation error")
	}
	var validationErr *model.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

// Transport failures never surface as errors; they land in the stored
// result instead.
func TestTaskManager_RunFailureAbsorbed(t *testing.T) {
	m := newTestManager(&fakeRunner{err: errors.New("runtime unreachable")})

	id, err := m.StartCartTask(context.Background(), "mouse", nil)
	if err != nil {
		t.Fatalf("StartCartTask() error = %v", err)
	}

	record := waitForTerminal(t, m, id)
	if record.Status != model.TaskStatusFailed {
		t.Errorf("status = %q, want failed", record.Status)
	}
	if record.CartResult == nil || record.CartResult.Success {
		t.Error("expected failed cart result")
	}
}

func TestTaskManager_ListTaskLifecycle(t *testing.T) {
	runner := &fakeRunner{history: &agent.History{
		Done: true,
		Output: []byte(`{"products": [
			{"asin": "B0AAAAAAA1", "title": "Mouse A", "price": 399, "rating": 4.2, "url": "/dp/B0AAAAAAA1"}
		]}`),
	}}
	m := newTestManager(runner)

	id, err := m.StartListTask(context.Background(), "mouse", nil, 5)
	if err != nil {
		t.Fatalf("StartListTask() error = %v", err)
	}

	record := waitForTerminal(t, m, id)
	if record.Status != model.TaskStatusCompleted {
		t.Errorf("status = %q, want completed", record.Status)
	}
	if record.ListResult == nil || record.ListResult.Count != 1 {
		t.Error("expected list result with one product")
	}
}

func TestTaskManager_ListGrouping(t *testing.T) {
	m := newTestManager(&fakeRunner{history: &agent.History{
		Done:      true,
		FinalText: `{"success": true, "message": "ok", "items": []}`,
	}})

	id, err := m.StartCartTask(context.Background(), "mouse", nil)
	if err != nil {
		t.Fatalf("StartCartTask() error = %v", err)
	}
	waitForTerminal(t, m, id)

	resp, err := m.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(resp.Completed) != 1 || resp.Completed[0] != id {
		t.Errorf("expected task in completed group, got %+v", resp)
	}
	if len(resp.Running) != 0 {
		t.Errorf("expected no running tasks, got %v", resp.Running)
	}
}

func TestTaskManager_Delete(t *testing.T) {
	m := newTestManager(&fakeRunner{history: &agent.History{
		Done:      true,
		FinalText: `{"success": true, "message": "ok", "items": []}`,
	}})

	id, err := m.StartCartTask(context.Background(), "mouse", nil)
	if err != nil {
		t.Fatalf("StartCartTask() error = %v", err)
	}
	waitForTerminal(t, m, id)

	if err := m.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := m.Get(context.Background(), id); !errors.Is(err, repository.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound after delete, got %v", err)
	}
}
