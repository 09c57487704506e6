package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"cartagent/internal/config"
)

// BrowserUseClient drives a browser-use style cloud agent API:
// create a task, poll until it reaches a terminal state, then expose the
// run history. One client may serve many concurrent runs; each run owns
// its own remote browser session for its lifetime.
type BrowserUseClient struct {
	cfg        *config.AgentConfig
	httpClient *http.Client
}

// NewBrowserUseClient creates a new agent runtime client
func NewBrowserUseClient(cfg *config.AgentConfig) *BrowserUseClient {
	return &BrowserUseClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.StepTimeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the runtime is configured and ready
func (c *BrowserUseClient) IsEnabled() bool {
	return c.cfg.Enabled
}

type createTaskRequest struct {
	Task     string `json:"task"`
	MaxSteps int    `json:"max_steps,omitempty"`
}

type createTaskResponse struct {
	ID string `json:"id"`
}

type taskStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"` // created, running, finished, stopped, paused, failed
	Output string `json:"output,omitempty"`
	Steps  []struct {
		EvaluationPreviousGoal string `json:"evaluation_previous_goal,omitempty"`
		ExtractedContent       string `json:"extracted_content,omitempty"`
		Error                  string `json:"error,omitempty"`
	} `json:"steps,omitempty"`
}

// Run executes the compiled task prompt and blocks until the remote run
// reaches a terminal state, the run timeout elapses, or ctx is cancelled.
// Cancellation is cooperative: it stops the remote task between polls,
// never mid-step.
func (c *BrowserUseClient) Run(ctx context.Context, task string) (*History, error) {
	if !c.cfg.Enabled {
		return nil, fmt.Errorf("browser agent runtime is not enabled (missing API key)")
	}

	taskID, err := c.createTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent task: %w", err)
	}
	log.Printf("Agent task %s created (max_steps=%d)", taskID, c.cfg.MaxSteps)

	deadline := time.Now().Add(time.Duration(c.cfg.RunTimeout) * time.Second)
	interval := time.Duration(c.cfg.PollInterval) * time.Second

	for {
		select {
		case <-ctx.Done():
			c.stopTask(taskID)
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		status, err := c.getTask(ctx, taskID)
		if err != nil {
			// Transient poll failures are not run failures
			log.Printf("Warning: poll for task %s failed: %v", taskID, err)
			continue
		}

		switch status.Status {
		case "finished":
			return historyFromStatus(status, true), nil
		case "failed", "stopped":
			return historyFromStatus(status, false), nil
		}

		if time.Now().After(deadline) {
			c.stopTask(taskID)
			h := historyFromStatus(status, false)
			h.RunErrors = append(h.RunErrors, fmt.Sprintf("run timed out after %ds", c.cfg.RunTimeout))
			return h, nil
		}
	}
}

func historyFromStatus(status *taskStatusResponse, done bool) *History {
	h := &History{
		FinalText: status.Output,
		Done:      done,
	}

	// The runtime's output field may already be structured JSON
	if json.Valid([]byte(status.Output)) {
		h.Output = []byte(status.Output)
	}

	for _, step := range status.Steps {
		h.Steps = append(h.Steps, StepResult{
			ExtractedContent: step.ExtractedContent,
			Error:            step.Error,
		})
		if step.Error != "" {
			h.RunErrors = append(h.RunErrors, step.Error)
		}
	}
	return h
}

func (c *BrowserUseClient) createTask(ctx context.Context, task string) (string, error) {
	body, err := json.Marshal(createTaskRequest{Task: task, MaxSteps: c.cfg.MaxSteps})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp createTaskResponse
	if err := c.doJSON(ctx, "POST", c.cfg.APIBase+"/run-task", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("runtime returned no task id")
	}
	return resp.ID, nil
}

func (c *BrowserUseClient) getTask(ctx context.Context, taskID string) (*taskStatusResponse, error) {
	var resp taskStatusResponse
	if err := c.doJSON(ctx, "GET", c.cfg.APIBase+"/task/"+taskID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// stopTask is best effort and deliberately detached from the caller's
// context, which is usually already cancelled when we get here.
func (c *BrowserUseClient) stopTask(taskID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.doJSON(ctx, "PUT", c.cfg.APIBase+"/stop-task/"+taskID, nil, nil); err != nil {
		log.Printf("Warning: failed to stop agent task %s: %v", taskID, err)
	}
}

func (c *BrowserUseClient) doJSON(ctx context.Context, method, url string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("runtime request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
