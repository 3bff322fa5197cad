package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/hxkterminal/taskboard-api/internal/dto"
	apierrors "github.com/hxkterminal/taskboard-api/internal/errors"
	"github.com/hxkterminal/taskboard-api/internal/middleware"
	"github.com/hxkterminal/taskboard-api/internal/models"
	"github.com/hxkterminal/taskboard-api/internal/services"
	"github.com/hxkterminal/taskboard-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns a page of tasks. scope=available (default) lists open
// tasks; scope=mine lists tasks the requesting user has accepted.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "Not authenticated")
		return
	}

	scope := services.ScopeAvailable
	if c.Query("scope") == string(services.ScopeMine) {
		scope = services.ScopeMine
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(services.ListTasksInput{
		UserID:   userID,
		Scope:    scope,
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, userID, params.Page, params.Limit, total))
}

// GetTask returns one task's public projection.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, userID))
}

// CreateTask publishes a new task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title          string     `json:"title" binding:"required,min=1,max=200"`
		Description    string     `json:"description" binding:"required,min=1"`
		Kind           string     `json:"kind" binding:"omitempty,oneof=personal team"`
		Priority       int        `json:"priority" binding:"omitempty,min=1,max=4"`
		MaxAcceptCount int        `json:"max_accept_count" binding:"omitempty,min=1,max=100"`
		Deadline       *time.Time `json:"deadline"`
		Tags           []string   `json:"tags"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Kind:           models.TaskKind(req.Kind),
		Priority:       req.Priority,
		MaxAcceptCount: req.MaxAcceptCount,
		Deadline:       req.Deadline,
		Tags:           req.Tags,
		PublisherID:    userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, userID))
}

// UpdateTask applies a partial update. Absent fields are untouched; a null
// deadline clears it.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	// Status is not patchable; it only moves through the lifecycle actions.
	type UpdateTaskRequest struct {
		Title          *string    `json:"title" binding:"omitempty,min=1,max=200"`
		Description    *string    `json:"description" binding:"omitempty,min=1"`
		Priority       *int       `json:"priority" binding:"omitempty,min=1,max=4"`
		MaxAcceptCount *int       `json:"max_accept_count" binding:"omitempty,min=1,max=100"`
		Deadline       *time.Time `json:"deadline"`
		Tags           *[]string  `json:"tags"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		MaxAcceptCount: req.MaxAcceptCount,
		Deadline:       req.Deadline,
		Tags:           req.Tags,
	}

	// Distinguish "deadline": null (clear) from an absent field.
	var raw map[string]any
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err == nil {
		if v, present := raw["deadline"]; present && v == nil {
			input.ClearDeadline = true
		}
	}

	task, err := h.taskService.UpdateTask(taskID, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, userID))
}

// DeleteTask removes a task and its acceptances.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// AcceptTask records the requesting user accepting the task.
func (h *TaskHandler) AcceptTask(c *gin.Context) {
	h.lifecycleAction(c, h.taskService.AcceptTask)
}

// CompleteTask marks the requesting user's acceptance completed.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	h.lifecycleAction(c, h.taskService.CompleteTask)
}

// AbandonTask removes the requesting user's acceptance.
func (h *TaskHandler) AbandonTask(c *gin.Context) {
	h.lifecycleAction(c, h.taskService.AbandonTask)
}

// lifecycleAction runs one accept/complete/abandon transition and responds
// with the updated projection.
func (h *TaskHandler) lifecycleAction(c *gin.Context, action func(taskID, userID uint64) (*models.Task, error)) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := action(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, userID))
}

func parseTaskID(c *gin.Context) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return taskID, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotPublisher):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyAccepted),
		errors.Is(err, services.ErrCapacityExceeded):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrNotAccepted):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidPriority):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
