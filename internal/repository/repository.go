package repository

import (
	"github.com/hxkterminal/taskboard-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// Update persists changes to a user
	Update(user *models.User) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	// Status restricts results to tasks in the given state.
	Status *models.TaskStatus

	// AcceptedByUserID restricts results to tasks the user has an
	// acceptance for.
	AcceptedByUserID *uint64

	Page     int
	PageSize int
}

// TaskRepository defines the interface for task and acceptance data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks newest-created-first with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task and all of its acceptances in one transaction
	Delete(id uint64) error

	// CreateAcceptance records a user accepting a task
	CreateAcceptance(acceptance *models.TaskAcceptance) error

	// FindAcceptance finds the acceptance for a (task, user) pair
	FindAcceptance(taskID, userID uint64) (*models.TaskAcceptance, error)

	// CountAcceptances counts the acceptances on a task
	CountAcceptances(taskID uint64) (int64, error)

	// CountOpenAcceptances counts acceptances on a task not yet completed
	CountOpenAcceptances(taskID uint64) (int64, error)

	// UpdateAcceptance persists changes to an acceptance
	UpdateAcceptance(acceptance *models.TaskAcceptance) error

	// DeleteAcceptance hard-deletes the acceptance for a (task, user) pair
	DeleteAcceptance(taskID, userID uint64) error
}
