package models

import "time"

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Nickname     string    `gorm:"type:varchar(100)" json:"nickname"`
	Avatar       string    `gorm:"type:varchar(255)" json:"avatar"`
	QQ           string    `gorm:"type:varchar(50)" json:"qq"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	PublishedTasks []Task           `gorm:"foreignKey:PublisherID" json:"-"`
	Acceptances    []TaskAcceptance `gorm:"foreignKey:UserID" json:"-"`
}
