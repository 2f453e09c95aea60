package models

import (
	"time"
)

// Rating is a single user's score for a single store.
// (user_id, store_id) is unique, resubmissions overwrite the score.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store" json:"user_id"`
	StoreID   uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store;index" json:"store_id"`
	Rating    int       `gorm:"not null;check:chk_ratings_range,rating >= 1 AND rating <= 5" json:"rating"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Store     *Store    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// OwnerRatingView is a rating joined with the identity of whoever left it
type OwnerRatingView struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	StoreID   uint      `json:"store_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
}
