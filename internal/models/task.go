package models

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusAvailable  TaskStatus = "available"
	TaskStatusInProgress TaskStatus = "inProgress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type TaskKind string

const (
	TaskKindPersonal TaskKind = "personal"
	TaskKindTeam     TaskKind = "team"
)

type Task struct {
	ID             uint64     `gorm:"primarykey" json:"id"`
	Title          string     `gorm:"type:varchar(200);not null" json:"title"`
	Description    string     `gorm:"type:text;not null" json:"description"`
	Kind           TaskKind   `gorm:"type:varchar(20);not null;default:'personal'" json:"kind"`
	Priority       int        `gorm:"not null;default:2" json:"priority"`
	MaxAcceptCount int        `gorm:"not null;default:1" json:"max_accept_count"`
	Deadline       *time.Time `json:"deadline"`
	Tags           string     `gorm:"type:varchar(255)" json:"-"`
	Status         TaskStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	PublisherID    uint64     `gorm:"not null;index" json:"publisher_id"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`

	// Relations
	Publisher   User             `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"`
	Acceptances []TaskAcceptance `gorm:"foreignKey:TaskID" json:"acceptances,omitempty"`
}

// TagList splits the stored comma-joined tags column back into a list.
func (t *Task) TagList() []string {
	if t.Tags == "" {
		return []string{}
	}
	return strings.Split(t.Tags, ",")
}

// SetTagList joins tags into the stored column representation.
func (t *Task) SetTagList(tags []string) {
	t.Tags = strings.Join(tags, ",")
}
