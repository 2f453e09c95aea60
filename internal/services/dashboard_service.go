package services

import (
	"context"
	"fmt"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"gorm.io/gorm"
)

type DashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type dashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) DashboardService {
	return &dashboardService{db: db}
}

func (s *dashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &models.DashboardStats{}

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if err := db.Model(&models.Store{}).Count(&stats.TotalStores).Error; err != nil {
		return nil, fmt.Errorf("counting stores: %w", err)
	}
	if err := db.Model(&models.Rating{}).Count(&stats.TotalRatings).Error; err != nil {
		return nil, fmt.Errorf("counting ratings: %w", err)
	}
	return stats, nil
}
