package model

import "time"

// Task kinds
const (
	TaskKindCart = "cart"
	TaskKindList = "list"
)

// Task statuses
const (
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
	TaskStatusCancelled = "cancelled"
)

// TaskRecord is the stored state of one automation task.
type TaskRecord struct {
	ID          string             `json:"task_id" db:"id"`
	Kind        string             `json:"kind" db:"kind"`
	Status      string             `json:"status" db:"status"`
	Query       string             `json:"query,omitempty" db:"query"`
	Message     string             `json:"message,omitempty" db:"message"`
	CartResult  *CartResult        `json:"cart_result,omitempty" db:"-"`
	ListResult  *ProductListResult `json:"list_result,omitempty" db:"-"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty" db:"completed_at"`
}

// RunAgentRequest starts a cart or listing task. Either Query or Intent
// must be provided; Intent wins when both are present.
type RunAgentRequest struct {
	Query       string         `json:"query,omitempty"`
	Intent      *ProductIntent `json:"intent,omitempty"`
	MaxProducts int            `json:"max_products,omitempty"`
}

// RunAgentResponse acknowledges a started task.
type RunAgentResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// TaskStatusResponse reports the status and result of a task.
type TaskStatusResponse struct {
	TaskID     string             `json:"task_id"`
	Status     string             `json:"status"`
	CartResult *CartResult        `json:"cart_result,omitempty"`
	ListResult *ProductListResult `json:"list_result,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// TaskListResponse lists known task IDs grouped by state.
type TaskListResponse struct {
	Running   []string `json:"running"`
	Completed []string `json:"completed"`
}
