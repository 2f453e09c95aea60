package models

import (
	"time"
)

// Role identifies which parts of the API a user may reach
type Role string

const (
	RoleUser       Role = "user"
	RoleStoreOwner Role = "store_owner"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStoreOwner, RoleAdmin:
		return true
	}
	return false
}

// Label returns the human readable role name used in error messages
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleStoreOwner:
		return "Store owner"
	case RoleUser:
		return "User"
	default:
		return string(r)
	}
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:60;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Address   string    `gorm:"size:400;not null" json:"address"`
	Role      Role      `gorm:"size:20;not null;default:'user'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicUser is the projection of a User that is safe to hand to clients
type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Public strips the password hash and the profile fields
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// UserListItem is a row of the admin user listing
type UserListItem struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	StoreRating *float64  `json:"store_rating"` // nil unless the user owns a rated store
}

// UserFilter narrows the admin user listing. Empty fields match everything.
type UserFilter struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Address string `form:"address"`
	Role    string `form:"role"`
}

// DashboardStats holds the admin dashboard counters
type DashboardStats struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalStores  int64 `json:"totalStores"`
	TotalRatings int64 `json:"totalRatings"`
}
