package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleFarmer  UserRole = "farmer"
	RoleOfficer UserRole = "officer"
	RoleExpert  UserRole = "expert"
)

// ParseUserRole maps a role name from seed files or token claims onto a UserRole.
func ParseUserRole(s string) (UserRole, bool) {
	switch UserRole(s) {
	case RoleFarmer, RoleOfficer, RoleExpert:
		return UserRole(s), true
	}
	return "", false
}

type User struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Email          string         `json:"email" gorm:"uniqueIndex;not null"`
	HashedPassword string         `json:"-" gorm:"not null"`
	Name           string         `json:"name" gorm:"not null"`
	Phone          string         `json:"phone"`
	Role           UserRole       `json:"role" gorm:"not null;default:'farmer'"`
	Village        *string        `json:"village"`
	District       *string        `json:"district"`
	Department     *string        `json:"department"`
	Expertise      pq.StringArray `json:"expertise" gorm:"type:text[]"`
	Verified       bool           `json:"verified" gorm:"default:false"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
