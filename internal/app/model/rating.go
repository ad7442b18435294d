package model

import (
	"time"
)

// Rating is a single 1-5 star rating of a store by a user. The unique
// composite index enforces one rating per (store, user) pair; updates go
// through the rating update endpoint rather than a second insert.
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StoreID uint `gorm:"not null;index:idx_store_user_rating,unique" json:"store_id"`
	UserID  uint `gorm:"not null;index:idx_store_user_rating,unique" json:"user_id"`
	Value   int  `gorm:"column:rating;not null;check:rating >= 1 AND rating <= 5" json:"rating"`

	Store Store `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Rating) TableName() string {
	return "ratings"
}
