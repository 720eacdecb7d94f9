package models

import (
	"time"
)

type ComplaintStatus string
type ComplaintPriority string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusAssigned   ComplaintStatus = "assigned"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusClosed     ComplaintStatus = "closed"
)

const (
	PriorityLow    ComplaintPriority = "low"
	PriorityMedium ComplaintPriority = "medium"
	PriorityHigh   ComplaintPriority = "high"
	PriorityUrgent ComplaintPriority = "urgent"
)

func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

func (p ComplaintPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Complaint is a farmer-submitted grievance. UserID is the creator and never
// changes after insert; AssignedTo is nil while the complaint sits in the
// officers' unassigned pool.
type Complaint struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	Title       string            `json:"title" gorm:"size:255;not null"`
	Description string            `json:"description" gorm:"type:text;not null"`
	Category    string            `json:"category" gorm:"size:100;not null;index"`
	Location    string            `json:"location" gorm:"size:255;not null"`
	Status      ComplaintStatus   `json:"status" gorm:"size:20;not null;default:'pending';index"`
	Priority    ComplaintPriority `json:"priority" gorm:"size:20;not null;default:'medium'"`
	UserID      uint              `json:"user_id" gorm:"not null;index"`
	User        *User             `json:"-" gorm:"foreignKey:UserID"`
	AssignedTo  *uint             `json:"assigned_to" gorm:"index"`
	Officer     *User             `json:"-" gorm:"foreignKey:AssignedTo"`
	CreatedAt   time.Time         `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time         `json:"updated_at"`

	Updates []ComplaintUpdate `json:"updates" gorm:"foreignKey:ComplaintID"`
}

func (Complaint) TableName() string {
	return "complaints"
}
