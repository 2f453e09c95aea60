package services

import (
	"gorm.io/gorm"
)

// Registry bundles every service the HTTP layer depends on
type Registry struct {
	Auth      AuthService
	Users     UserService
	Stores    StoreService
	Ratings   RatingService
	Dashboard DashboardService
}

func NewRegistry(db *gorm.DB, hasher PasswordHasher, tokens TokenIssuer) *Registry {
	users := NewUserService(db, hasher)
	return &Registry{
		Auth:      NewAuthService(users, hasher, tokens),
		Users:     users,
		Stores:    NewStoreService(db),
		Ratings:   NewRatingService(db),
		Dashboard: NewDashboardService(db),
	}
}
