package models

import (
	"time"
)

// ComplaintUpdate is one entry of a complaint's audit trail. Rows are only
// ever inserted.
type ComplaintUpdate struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	ComplaintID  uint             `json:"complaint_id" gorm:"not null;index"`
	UserID       uint             `json:"user_id" gorm:"not null"`
	User         *User            `json:"-" gorm:"foreignKey:UserID"`
	Comment      string           `json:"comment" gorm:"type:text;not null"`
	StatusChange *ComplaintStatus `json:"status_change" gorm:"size:20"`
	CreatedAt    time.Time        `json:"created_at"`
}

func (ComplaintUpdate) TableName() string {
	return "complaint_updates"
}
