package handler

import (
	"errors"
	"net/http"

	"cartagent/internal/model"
	"cartagent/internal/repository"
	"cartagent/internal/service"

	"github.com/gin-gonic/gin"
)

// AgentHandler handles task-related HTTP requests.
type AgentHandler struct {
	tasks              *service.TaskManager
	defaultMaxProducts int
	maxProducts        int
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(tasks *service.TaskManager, defaultMaxProducts, maxProducts int) *AgentHandler {
	return &AgentHandler{
		tasks:              tasks,
		defaultMaxProducts: defaultMaxProducts,
		maxProducts:        maxProducts,
	}
}

// RunAgent handles POST /run-agent: start a single-add cart task.
func (h *AgentHandler) RunAgent(c *gin.Context) {
	var req model.RunAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Query == "" && req.Intent == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either query or intent must be provided"})
		return
	}

	taskID, err := h.tasks.StartCartTask(c.Request.Context(), req.Query, req.Intent)
	if err != nil {
		status := http.StatusInternalServerError
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.RunAgentResponse{
		TaskID:  taskID,
		Status:  model.TaskStatusRunning,
		Message: "Task started",
	})
}

// RunAgentList handles POST /run-agent/list: start a listing task.
func (h *AgentHandler) RunAgentList(c *gin.Context) {
	var req model.RunAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Query == "" && req.Intent == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either query or intent must be provided"})
		return
	}

	// Validate and cap limits
	maxProducts := req.MaxProducts
	if maxProducts <= 0 {
		maxProducts = h.defaultMaxProducts
	}
	if maxProducts > h.maxProducts {
		maxProducts = h.maxProducts
	}

	taskID, err := h.tasks.StartListTask(c.Request.Context(), req.Query, req.Intent, maxProducts)
	if err != nil {
		status := http.StatusInternalServerError
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.RunAgentResponse{
		TaskID:  taskID,
		Status:  model.TaskStatusRunning,
		Message: "Task started",
	})
}

// GetTask handles GET /task/:id: report status and result of a task.
func (h *AgentHandler) GetTask(c *gin.Context) {
	id := c.Param("id")

	record, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.TaskStatusResponse{
		TaskID:     record.ID,
		Status:     record.Status,
		CartResult: record.CartResult,
		ListResult: record.ListResult,
		Message:    record.Message,
	})
}

// DeleteTask handles DELETE /task/:id: cancel if running, then remove.
func (h *AgentHandler) DeleteTask(c *gin.Context) {
	id := c.Param("id")

	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task_id": id, "status": "deleted"})
}

// ListTasks handles GET /tasks: list task IDs grouped by state.
func (h *AgentHandler) ListTasks(c *gin.Context) {
	resp, err := h.tasks.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health handles GET /health.
func (h *AgentHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
