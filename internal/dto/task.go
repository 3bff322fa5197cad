package dto

import (
	"time"

	"github.com/hxkterminal/taskboard-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	QQ        string    `json:"qq,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskDTO is the public projection of a task, including the derived
// acceptance fields relative to the requesting actor.
type TaskDTO struct {
	ID             uint64            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Kind           models.TaskKind   `json:"kind"`
	Priority       int               `json:"priority"`
	MaxAcceptCount int               `json:"max_accept_count"`
	Deadline       *time.Time        `json:"deadline"`
	Tags           []string          `json:"tags"`
	Status         models.TaskStatus `json:"status"`
	PublisherID    uint64            `json:"publisher_id"`
	PublisherName  string            `json:"publisher_name"`
	AcceptedCount  int               `json:"accepted_count"`
	CreatedAt      time.Time         `json:"created_at"`
	IsAccepted     bool              `json:"is_accepted"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}

// TokenDTO is the credential issuance response.
type TokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Nickname:  user.Nickname,
		Avatar:    user.Avatar,
		QQ:        user.QQ,
		CreatedAt: user.CreatedAt,
	}
}

// ToTaskDTO converts a Task model to its public projection. viewerID is the
// requesting actor; is_accepted is derived from the preloaded acceptances.
func ToTaskDTO(task models.Task, viewerID uint64) TaskDTO {
	dto := TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Kind:           task.Kind,
		Priority:       task.Priority,
		MaxAcceptCount: task.MaxAcceptCount,
		Deadline:       task.Deadline,
		Tags:           task.TagList(),
		Status:         task.Status,
		PublisherID:    task.PublisherID,
		CreatedAt:      task.CreatedAt,
		AcceptedCount:  len(task.Acceptances),
	}

	// Publisher display name falls back to the username.
	if task.Publisher.ID != 0 {
		dto.PublisherName = task.Publisher.Nickname
		if dto.PublisherName == "" {
			dto.PublisherName = task.Publisher.Username
		}
	}

	for _, acceptance := range task.Acceptances {
		if acceptance.UserID == viewerID {
			dto.IsAccepted = true
			break
		}
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, viewerID uint64, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, viewerID)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}
