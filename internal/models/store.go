package models

import (
	"time"
)

type Store struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Address   string    `gorm:"size:400;not null" json:"address"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Owner     *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreSummary is a store together with the mean of its ratings
type StoreSummary struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	OwnerID       uint      `json:"owner_id"`
	CreatedAt     time.Time `json:"created_at"`
	AverageRating *float64  `json:"average_rating"`
}

// UserStoreView is a StoreSummary plus the requesting user's own rating
type UserStoreView struct {
	StoreSummary
	UserRating *int `json:"user_rating"`
}

// StoreFilter narrows store listings. Empty fields match everything.
type StoreFilter struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Address string `form:"address"`
}

// OwnerDashboard is what a store owner sees about their store
type OwnerDashboard struct {
	Store         Store             `json:"store"`
	AverageRating float64           `json:"averageRating"`
	Ratings       []OwnerRatingView `json:"ratings"`
}
