package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin UserRole = "system_admin" // manages users and stores
	RoleUser  UserRole = "normal_user"  // browses stores and submits ratings
	RoleOwner UserRole = "store_owner"  // views ratings for their own store
)

// ValidRole reports whether s is one of the three known roles.
func ValidRole(s string) bool {
	switch UserRole(s) {
	case RoleAdmin, RoleUser, RoleOwner:
		return true
	}
	return false
}

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`              // full name, 20-60 chars
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // login identity; owners are matched to stores by email
	PasswordHash string         `gorm:"not null" json:"-"`
	Address      string         `gorm:"type:text" json:"address"` // up to 400 chars
	Role         UserRole       `gorm:"type:varchar(20);default:'normal_user';index" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Ratings []Rating `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
