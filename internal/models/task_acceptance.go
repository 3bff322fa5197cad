package models

import "time"

type AcceptanceStatus string

const (
	AcceptanceStatusInProgress AcceptanceStatus = "inProgress"
	AcceptanceStatusCompleted  AcceptanceStatus = "completed"
)

// TaskAcceptance links one user to one task they committed to work on.
// At most one row exists per (task, user) pair.
type TaskAcceptance struct {
	ID         uint64           `gorm:"primarykey" json:"id"`
	TaskID     uint64           `gorm:"not null;uniqueIndex:idx_acceptances_task_user" json:"task_id"`
	UserID     uint64           `gorm:"not null;uniqueIndex:idx_acceptances_task_user" json:"user_id"`
	Status     AcceptanceStatus `gorm:"type:varchar(20);not null;default:'inProgress'" json:"status"`
	AcceptedAt time.Time        `gorm:"autoCreateTime" json:"accepted_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
