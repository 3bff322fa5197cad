package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/hxkterminal/taskboard-api/internal/constants"
	"github.com/hxkterminal/taskboard-api/internal/models"
	"github.com/hxkterminal/taskboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrNotPublisher     = errors.New("only the publisher can perform this action")
	ErrAlreadyAccepted  = errors.New("task already accepted")
	ErrCapacityExceeded = errors.New("task has reached its acceptance capacity")
	ErrNotAccepted      = errors.New("task not accepted by this user")
	ErrTitleRequired    = errors.New("title is required")
	ErrTitleEmpty       = errors.New("title cannot be empty")
	ErrInvalidPriority  = errors.New("priority must be between 1 and 4")
)

// taskPreloads load everything the public projection needs.
var taskPreloads = []string{"Publisher", "Acceptances"}

// TaskService implements the task lifecycle state machine on top of the
// repository. The read-decide-write sequence in accept/complete/abandon is
// not atomic against concurrent requests for the same task; callers get
// single-row commit guarantees only.
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// TaskListScope selects which slice of the board a listing returns.
type TaskListScope string

const (
	// ScopeAvailable lists tasks currently open for acceptance.
	ScopeAvailable TaskListScope = "available"
	// ScopeMine lists tasks the requesting user has an acceptance for.
	ScopeMine TaskListScope = "mine"
)

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID   uint64
	Scope    TaskListScope
	Page     int
	PageSize int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title          string
	Description    string
	Kind           models.TaskKind
	Priority       int
	MaxAcceptCount int
	Deadline       *time.Time
	Tags           []string
	PublisherID    uint64
}

// UpdateTaskInput represents a partial update. Nil fields are untouched.
// Status is deliberately absent: it moves only through accept, complete,
// and abandon.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Priority       *int
	MaxAcceptCount *int
	Deadline       *time.Time
	ClearDeadline  bool
	Tags           *[]string
}

// ListTasks returns tasks in the requested scope, newest first.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	switch input.Scope {
	case ScopeMine:
		filter.AcceptedByUserID = &input.UserID
	default:
		status := models.TaskStatusAvailable
		filter.Status = &status
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with its publisher and acceptances loaded.
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a new task in the available state. Personal-kind tasks
// always get a single acceptance slot regardless of the requested value.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Priority != 0 && (input.Priority < constants.MinPriority || input.Priority > constants.MaxPriority) {
		return nil, ErrInvalidPriority
	}

	kind := input.Kind
	if kind == "" {
		kind = models.TaskKindPersonal
	}

	priority := input.Priority
	if priority == 0 {
		priority = 2
	}

	maxAccept := input.MaxAcceptCount
	if maxAccept < constants.MinAcceptCount {
		maxAccept = constants.MinAcceptCount
	}
	if maxAccept > constants.MaxAcceptCount {
		maxAccept = constants.MaxAcceptCount
	}
	if kind == models.TaskKindPersonal {
		maxAccept = 1
	}

	task := &models.Task{
		Title:          input.Title,
		Description:    input.Description,
		Kind:           kind,
		Priority:       priority,
		MaxAcceptCount: maxAccept,
		Deadline:       input.Deadline,
		Status:         models.TaskStatusAvailable,
		PublisherID:    input.PublisherID,
	}
	task.SetTagList(input.Tags)

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UpdateTask applies a partial update. Only the publisher may update a task.
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.PublisherID != actorID {
		return nil, ErrNotPublisher
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if *input.Priority < constants.MinPriority || *input.Priority > constants.MaxPriority {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.MaxAcceptCount != nil {
		// Later edits are not validated against existing acceptances;
		// capacity is enforced at accept time only.
		capacity := *input.MaxAcceptCount
		if capacity < constants.MinAcceptCount {
			capacity = constants.MinAcceptCount
		}
		if capacity > constants.MaxAcceptCount {
			capacity = constants.MaxAcceptCount
		}
		if task.Kind == models.TaskKindPersonal {
			capacity = 1
		}
		task.MaxAcceptCount = capacity
	}
	if input.ClearDeadline {
		task.Deadline = nil
	} else if input.Deadline != nil {
		task.Deadline = input.Deadline
	}
	if input.Tags != nil {
		task.SetTagList(*input.Tags)
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// DeleteTask deletes a task and its acceptances if the actor is the publisher.
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if task.PublisherID != actorID {
		return ErrNotPublisher
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AcceptTask records a user committing to a task. It fails when the user
// already holds an acceptance or the task is at capacity. An available task
// moves to inProgress on its first acceptance.
func (s *TaskService) AcceptTask(taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if _, err := s.taskRepo.FindAcceptance(taskID, userID); err == nil {
		return nil, ErrAlreadyAccepted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check acceptance: %w", err)
	}

	count, err := s.taskRepo.CountAcceptances(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to count acceptances: %w", err)
	}
	if count >= int64(task.MaxAcceptCount) {
		return nil, ErrCapacityExceeded
	}

	acceptance := &models.TaskAcceptance{
		TaskID: taskID,
		UserID: userID,
		Status: models.AcceptanceStatusInProgress,
	}
	if err := s.taskRepo.CreateAcceptance(acceptance); err != nil {
		return nil, fmt.Errorf("failed to create acceptance: %w", err)
	}

	if task.Status == models.TaskStatusAvailable {
		task.Status = models.TaskStatusInProgress
		if err := s.taskRepo.Update(task); err != nil {
			return nil, fmt.Errorf("failed to update task status: %w", err)
		}
	}

	return s.taskRepo.FindByID(taskID, taskPreloads...)
}

// CompleteTask marks the user's acceptance completed. The task itself
// completes once every acceptance on it is completed.
func (s *TaskService) CompleteTask(taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	acceptance, err := s.taskRepo.FindAcceptance(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAccepted
		}
		return nil, fmt.Errorf("failed to find acceptance: %w", err)
	}

	acceptance.Status = models.AcceptanceStatusCompleted
	if err := s.taskRepo.UpdateAcceptance(acceptance); err != nil {
		return nil, fmt.Errorf("failed to update acceptance: %w", err)
	}

	open, err := s.taskRepo.CountOpenAcceptances(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to count open acceptances: %w", err)
	}
	if open == 0 {
		task.Status = models.TaskStatusCompleted
		if err := s.taskRepo.Update(task); err != nil {
			return nil, fmt.Errorf("failed to update task status: %w", err)
		}
	}

	return s.taskRepo.FindByID(taskID, taskPreloads...)
}

// AbandonTask removes the user's acceptance. The task reverts to available
// when no acceptances remain after the deletion.
func (s *TaskService) AbandonTask(taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if _, err := s.taskRepo.FindAcceptance(taskID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAccepted
		}
		return nil, fmt.Errorf("failed to find acceptance: %w", err)
	}

	if err := s.taskRepo.DeleteAcceptance(taskID, userID); err != nil {
		return nil, fmt.Errorf("failed to delete acceptance: %w", err)
	}

	remaining, err := s.taskRepo.CountAcceptances(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to count acceptances: %w", err)
	}
	if remaining == 0 && task.Status != models.TaskStatusAvailable {
		task.Status = models.TaskStatusAvailable
		if err := s.taskRepo.Update(task); err != nil {
			return nil, fmt.Errorf("failed to update task status: %w", err)
		}
	}

	return s.taskRepo.FindByID(taskID, taskPreloads...)
}
