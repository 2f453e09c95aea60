package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingService records user ratings. A user holds at most one rating per store.
type RatingService interface {
	// SubmitRating creates the user's rating for a store or overwrites the existing one
	SubmitRating(ctx context.Context, userID uint, input RatingInput) (*models.Rating, error)
}

type ratingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) RatingService {
	return &ratingService{db: db}
}

func (s *ratingService) SubmitRating(ctx context.Context, userID uint, input RatingInput) (*models.Rating, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var stores int64
	if err := db.Model(&models.Store{}).Where("id = ?", input.StoreID).Count(&stores).Error; err != nil {
		return nil, fmt.Errorf("checking store %d: %w", input.StoreID, err)
	}
	if stores == 0 {
		return nil, models.NewNotFoundError(msgStoreNotFound)
	}

	rating := &models.Rating{
		UserID:  userID,
		StoreID: input.StoreID,
		Rating:  input.Rating,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating"}),
	}).Create(rating).Error
	if err != nil {
		// the store can vanish between the check and the insert
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, models.NewNotFoundError(msgStoreNotFound)
		}
		return nil, fmt.Errorf("saving rating: %w", err)
	}

	// reload so an overwritten row reports its original id and created_at
	var saved models.Rating
	if err := db.Where("user_id = ? AND store_id = ?", userID, input.StoreID).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("reloading rating: %w", err)
	}
	return &saved, nil
}
