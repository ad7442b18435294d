package model

import (
	"time"

	"gorm.io/gorm"
)

type Store struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Name    string `gorm:"not null;index" json:"name"`        // up to 60 chars; listing sort key
	Email   string `gorm:"uniqueIndex;not null" json:"email"` // uniquely identifies the store; matched against the owner's email
	Address string `gorm:"type:text" json:"address"`          // up to 400 chars
	ImageURL string `json:"image_url"`

	// AverageRating is denormalized: recomputed inside the rating write
	// transaction and reconciled nightly by the scheduler.
	AverageRating float64 `gorm:"default:0" json:"average_rating"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Ratings []Rating `gorm:"foreignKey:StoreID" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}
